package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cuemby/linkproxy/internal/apperr"
	"github.com/cuemby/linkproxy/internal/rdf"
)

func TestNegotiateEncodingPrefersExtension(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/foo.ttl", nil)
	r.Header.Set("Accept", "application/n-quads")

	enc := negotiateEncoding(r, ".ttl")
	assert.Equal(t, rdf.OutputTurtle, enc)
}

func TestNegotiateEncodingFallsBackToAccept(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/foo", nil)
	r.Header.Set("Accept", "application/n-quads")

	enc := negotiateEncoding(r, "")
	assert.Equal(t, rdf.OutputNQuads, enc)
}

func TestNegotiateEncodingUnknownExtensionFallsBackToAccept(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/foo.bogus", nil)
	r.Header.Set("Accept", "application/n-triples")

	enc := negotiateEncoding(r, ".bogus")
	assert.Equal(t, rdf.OutputNTriples, enc)
}

func TestHTTPStatusForMapsKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", apperr.New(apperr.KindNotFound, "missing"), http.StatusNotFound},
		{"invalid request", apperr.New(apperr.KindInvalidRequest, "bad"), http.StatusBadRequest},
		{"unexpected", apperr.New(apperr.KindUnexpected, "boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, httpStatusFor(tt.err))
		})
	}
}

func TestRequestHostPrefersForwardedHost(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Host = "internal.local"
	r.Header.Set("X-Forwarded-Host", "public.example.org")

	assert.Equal(t, "public.example.org", requestHost(r))
}

func TestRequestHostFallsBackToHost(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Host = "internal.local"

	assert.Equal(t, "internal.local", requestHost(r))
}

func TestIRIFromRequestBuildsHTTPSIRI(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Host = "example.org"

	assert.Equal(t, "https://example.org/some/path", iriFromRequest(r, "some/path"))
}

func TestRequestOriginBuildsSchemeAndHost(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Host = "example.org"

	assert.Equal(t, "https://example.org", requestOrigin(r))
}

func TestServiceInfoHandlerReturnsOperatorsAndEndpoints(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	serviceInfoHandler(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/ld+json", w.Header().Get("Content-Type"))

	var body map[string]interface{}
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "linkproxy", body["name"])
	assert.Contains(t, body, "operators")
	assert.Contains(t, body, "endpoints")
}
