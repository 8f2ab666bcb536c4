package session

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/cuemby/linkproxy/internal/apperr"
)

// signaturePair reads the session cookie and its companion signature
// cookie from r, named cookieName and cookieName+".sig" respectively.
func signaturePair(r *http.Request, cookieName, sigCookieName string) (value, signature string, err error) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return "", "", apperr.New(apperr.KindSecurityError, "no session cookie present")
	}
	s, err := r.Cookie(sigCookieName)
	if err != nil {
		return "", "", apperr.New(apperr.KindSecurityError, "session cookie has no signature")
	}
	return c.Value, s.Value, nil
}

// verifyCookieSignature reproduces the node-cookie-signature scheme:
// HMAC-SHA1 over "name=value", base64, with URL-unsafe characters
// swapped and padding stripped.
func verifyCookieSignature(cookieName, value, signature, secret string) error {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(cookieName + "=" + value))
	sum := mac.Sum(nil)

	expected := base64.StdEncoding.EncodeToString(sum)
	expected = strings.NewReplacer("/", "_", "+", "-", "=", "").Replace(expected)

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return apperr.New(apperr.KindCookieInvalidSignature, "session cookie signature mismatch")
	}
	return nil
}
