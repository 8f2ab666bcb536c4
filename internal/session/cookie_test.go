package session

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cuemby/linkproxy/internal/apperr"
)

func sign(cookieName, value, secret string) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(cookieName + "=" + value))
	enc := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return strings.NewReplacer("/", "_", "+", "-", "=", "").Replace(enc)
}

func TestVerifyCookieSignatureValid(t *testing.T) {
	sig := sign("session", "abc123", "s3cret")
	if err := verifyCookieSignature("session", "abc123", sig, "s3cret"); err != nil {
		t.Errorf("expected valid signature, got %v", err)
	}
}

func TestVerifyCookieSignatureInvalid(t *testing.T) {
	err := verifyCookieSignature("session", "abc123", "bogus", "s3cret")
	if apperr.KindOf(err) != apperr.KindCookieInvalidSignature {
		t.Errorf("expected CookieInvalidSignature, got %v", err)
	}
}

func TestSignaturePairMissingCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, _, err := signaturePair(req, "session", "session.sig")
	if apperr.KindOf(err) != apperr.KindSecurityError {
		t.Errorf("expected SecurityError for missing cookie, got %v", err)
	}
}

func TestSignaturePairFound(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "abc"})
	req.AddCookie(&http.Cookie{Name: "session.sig", Value: "xyz"})

	value, sig, err := signaturePair(req, "session", "session.sig")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "abc" || sig != "xyz" {
		t.Errorf("got (%q, %q)", value, sig)
	}
}
