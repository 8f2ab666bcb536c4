package authclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cuemby/linkproxy/internal/apperr"
)

func TestFindTenantOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/_public/spi/find_tenant" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"iri_prefix":"example.com/acme"}`))
	}))
	defer srv.Close()

	c := New(Config{DataServerURL: srv.URL})
	path, err := c.FindTenant(t.Context(), nil, "https://acme.example.com/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/acme" {
		t.Errorf("got path %q", path)
	}
}

func TestFindTenantNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(Config{DataServerURL: srv.URL})
	_, err := c.FindTenant(t.Context(), nil, "https://nowhere.example.com/")
	if apperr.KindOf(err) != apperr.KindNoTenant {
		t.Errorf("expected NoTenant, got %v", err)
	}
}

func TestBulkAuthorizePropagatesHeadersAndBuildsBody(t *testing.T) {
	var gotAuth, gotWebsiteIRI string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotWebsiteIRI = r.Header.Get("Website-IRI")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = buf
		w.Write([]byte(`[{"iri":"https://example.com/a","status":200,"cache":"public"}]`))
	}))
	defer srv.Close()

	c := New(Config{DataServerURL: srv.URL})
	original := httptest.NewRequest(http.MethodGet, "/", nil)
	original.Header.Set("Authorization", "Bearer xyz")

	results, err := c.BulkAuthorize(t.Context(), original, "https://example.com/", "/acme",
		map[string]bool{"https://example.com/a": true}, []string{"https://example.com/a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].IRI != "https://example.com/a" {
		t.Fatalf("unexpected results: %+v", results)
	}
	if gotAuth != "Bearer xyz" {
		t.Errorf("expected Authorization header propagated, got %q", gotAuth)
	}
	if gotWebsiteIRI != "https://example.com/" {
		t.Errorf("expected Website-IRI header set, got %q", gotWebsiteIRI)
	}
	if len(gotBody) == 0 {
		t.Errorf("expected non-empty request body")
	}
}

func TestBulkAuthorizeRoutesClusterIRIsSeparately(t *testing.T) {
	clusterHit := false
	cluster := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clusterHit = true
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer cluster.Close()

	backendHit := false
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		backendHit = true
		w.Write([]byte(`[]`))
	}))
	defer backend.Close()

	host := cluster.Listener.Addr().String()
	clusterRoutesOverride := clusterRoutes
	clusterRoutes = []clusterRoute{{pattern: clusterRoutes[0].pattern, service: host}}
	defer func() { clusterRoutes = clusterRoutesOverride }()

	c := New(Config{DataServerURL: backend.URL, ClusterProto: "http", ClusterBase: ""})
	_, err := c.BulkAuthorize(t.Context(), nil, "https://example.com/", "/acme",
		nil, []string{"https://example.com/email/welcome"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !clusterHit {
		t.Errorf("expected cluster route to be hit")
	}
	if backendHit {
		t.Errorf("expected backend not to be hit for a cluster-routed iri")
	}
}

func TestFindTenantTimeoutIsKindTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		w.Write([]byte(`{"iri_prefix":"example.com/acme"}`))
	}))
	defer srv.Close()

	c := New(Config{DataServerURL: srv.URL, Timeout: 1 * time.Millisecond})
	_, err := c.FindTenant(t.Context(), nil, "https://acme.example.com/")
	if apperr.KindOf(err) != apperr.KindTimeout {
		t.Errorf("expected KindTimeout, got %v (kind %v)", err, apperr.KindOf(err))
	}
}

func TestRouteForMatchesKnownPatterns(t *testing.T) {
	cases := map[string]string{
		"/email/welcome":        "mailer",
		"/subscribe":            "subscriptions",
		"/users/42/tokens":      "tokens",
		"/compare/votes":        "votes",
		"/acme/site1/od/thing":  "od",
		"/regular/document/iri": "",
	}
	for path, want := range cases {
		service, ok := routeFor(path)
		if want == "" {
			if ok {
				t.Errorf("path %s: expected no route, got %s", path, service)
			}
			continue
		}
		if !ok || service != want {
			t.Errorf("path %s: got (%s, %v), want %s", path, service, ok, want)
		}
	}
}
