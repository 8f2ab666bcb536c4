package session

import (
	"github.com/golang-jwt/jwt/v4"

	"github.com/cuemby/linkproxy/internal/apperr"
)

// UserData is the subject embedded in the session JWT.
type UserData struct {
	Type     string `json:"type"`
	IRI      string `json:"@id"`
	ID       string `json:"id"`
	Email    string `json:"email,omitempty"`
	Language string `json:"language"`
}

// Claims is the session JWT's payload.
type Claims struct {
	ApplicationID int64    `json:"application_id"`
	Scopes        []string `json:"scopes"`
	User          UserData `json:"user"`
	jwt.RegisteredClaims
}

// decodeClaims verifies and parses a session JWT signed with
// HS512, classifying an expired token and a bad signature separately
// so the caller can apply the right fallback (spec.md §7).
func decodeClaims(token string, signingKey []byte) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.New(apperr.KindSecurityError, "unexpected JWT signing method")
		}
		return signingKey, nil
	}, jwt.WithValidMethods([]string{"HS512"}))

	if err != nil {
		if ve, ok := err.(*jwt.ValidationError); ok && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, apperr.Wrap(apperr.KindExpiredSession, "session token expired", err)
		}
		return nil, apperr.Wrap(apperr.KindSecurityError, "invalid session token signature", err)
	}
	return claims, nil
}
