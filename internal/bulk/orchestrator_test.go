package bulk

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cuemby/linkproxy/internal/hashing"
)

func TestStatusTripleCarriesStatusAsInteger(t *testing.T) {
	table := hashing.NewTable(7)
	st := statusTriple(table, "http://example.com/doc", 404)

	value, ok := table.ByHash(st.Value)
	if !ok || value != "404" {
		t.Fatalf("expected status value 404, got %q (ok=%v)", value, ok)
	}
	datatype, _ := table.ByHash(st.Datatype)
	if datatype != StatusTripleDatatype {
		t.Errorf("expected integer datatype, got %q", datatype)
	}
	predicate, _ := table.ByHash(st.Predicate)
	if predicate != StatusPredicate {
		t.Errorf("expected statusCode predicate, got %q", predicate)
	}
}

func TestDeriveWebsiteIRIPrefersOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/link-lib/bulk", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Referer", "https://other.example.com/page")

	got := deriveWebsiteIRI(req)
	if got != "https://example.com/" {
		t.Errorf("got %q", got)
	}
}

func TestDeriveWebsiteIRIFallsBackToReferer(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/link-lib/bulk", nil)
	req.Header.Set("Referer", "https://other.example.com/page")

	got := deriveWebsiteIRI(req)
	if got != "https://other.example.com/" {
		t.Errorf("got %q", got)
	}
}

func TestDeriveWebsiteIRIFallsBackToHost(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/link-lib/bulk", nil)
	req.Host = "example.com"

	got := deriveWebsiteIRI(req)
	if got != "http://example.com/" {
		t.Errorf("got %q", got)
	}
}
