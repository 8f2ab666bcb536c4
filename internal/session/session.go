package session

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"

	"github.com/cuemby/linkproxy/internal/apperr"
	"github.com/cuemby/linkproxy/internal/log"
)

// Resolved is what the bulk orchestrator needs out of a session: which
// language to prefer when a document has multiple translations.
type Resolved struct {
	UserIRI  string
	Language string
}

// storedSession is the JSON document kept in Redis under the session
// id, grounded on the reference service's RedisSession shape.
type storedSession struct {
	Secret       string `json:"secret"`
	UserToken    string `json:"userToken"`
	RefreshToken string `json:"refreshToken"`
	Expire       int64  `json:"_expire"`
	MaxAge       int64  `json:"_maxAge"`
}

// Config is the cookie/JWT/OAuth configuration needed to resolve a
// session end to end.
type Config struct {
	CookieName    string
	SigCookieName string
	CookieSecret  string
	JWTKey        []byte
	OAuth         oauth2.Config
}

// Resolver verifies a request's session cookie, loads the backing
// session from Redis, and refreshes it via OAuth2 if its access token
// has expired.
type Resolver struct {
	cfg   Config
	redis *redis.Client
}

func NewResolver(cfg Config, client *redis.Client) *Resolver {
	return &Resolver{cfg: cfg, redis: client}
}

// Resolve implements spec.md §4.7 step 2 and §6's OAuth refresh flow.
// A missing cookie is not an error the caller should surface: the
// request proceeds as an anonymous (guest) request instead.
func (r *Resolver) Resolve(ctx context.Context, req *http.Request) (*Resolved, error) {
	sessionID, signature, err := signaturePair(req, r.cfg.CookieName, r.cfg.SigCookieName)
	if err != nil {
		return nil, err
	}
	if err := verifyCookieSignature(r.cfg.CookieName, sessionID, signature, r.cfg.CookieSecret); err != nil {
		return nil, err
	}

	stored, err := r.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	claims, err := decodeClaims(stored.UserToken, r.cfg.JWTKey)
	if err == nil {
		return &Resolved{UserIRI: claims.User.IRI, Language: claims.User.Language}, nil
	}
	if apperr.KindOf(err) != apperr.KindExpiredSession {
		return nil, err
	}

	refreshed, rerr := r.refresh(ctx, stored.RefreshToken)
	if rerr != nil {
		return nil, apperr.Wrap(apperr.KindExpiredSession, "session expired and refresh failed", rerr)
	}
	claims, err = decodeClaims(refreshed.AccessToken, r.cfg.JWTKey)
	if err != nil {
		return nil, err
	}
	return &Resolved{UserIRI: claims.User.IRI, Language: claims.User.Language}, nil
}

func (r *Resolver) load(ctx context.Context, sessionID string) (*storedSession, error) {
	raw, err := r.redis.Get(ctx, sessionID).Result()
	if err == redis.Nil {
		return nil, apperr.New(apperr.KindSecurityError, "no session stored for cookie")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBackendUnavailable, "load session from redis", err)
	}

	var stored storedSession
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, apperr.Wrap(apperr.KindSecurityError, "malformed stored session", err)
	}
	return &stored, nil
}

// refresh performs a standard OAuth2 refresh-token grant against the
// configured token endpoint.
func (r *Resolver) refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	src := r.cfg.OAuth.TokenSource(ctx, &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-time.Minute),
	})
	tok, err := src.Token()
	if err != nil {
		log.WithComponent("session").Warn().Err(err).Msg("oauth refresh failed")
		return nil, err
	}
	return tok, nil
}
