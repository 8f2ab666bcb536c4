package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cuemby/linkproxy/internal/bulk"
	"github.com/cuemby/linkproxy/internal/hashing"
	"github.com/cuemby/linkproxy/internal/importer"
	"github.com/cuemby/linkproxy/internal/metrics"
	"github.com/cuemby/linkproxy/internal/store"
)

// Deps collects everything the router needs to handle requests. Every
// handler constructs its own per-request hashing.Table from Seed — C1's
// "owned by a single request" contract.
type Deps struct {
	Store    *store.Store
	Seed     uint32
	Bulk     *bulk.Orchestrator
	Importer *importer.Importer

	EnableUnsafeMethods bool
}

func (d Deps) newTable() *hashing.Table {
	return hashing.NewTable(d.Seed)
}

// NewRouter builds the full HTTP surface of §6 on a chi router.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(varyHeader)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Authorization", "Content-Type", "Origin", "Referer", "X-Requested-With"},
		AllowCredentials: false,
	}))

	r.Get("/health", metrics.HealthHandler())
	r.Get("/ready", metrics.ReadyHandler())
	r.Get("/live", metrics.LivenessHandler())
	r.Get("/metrics", metrics.Handler().ServeHTTP)

	r.Get("/", serviceInfoHandler)

	r.Post("/link-lib/bulk", bulkHandler(deps))
	if deps.EnableUnsafeMethods {
		r.Post("/update", updateHandler(deps))
	}

	r.Get("/tpf", tpfHandler(deps))
	r.Get("/hpf", hpfHandler(deps))
	r.Get("/random", randomHandler(deps))

	r.Get("/*", showResourceHandler(deps))

	return r
}

// varyHeader advertises the request properties that change the response
// representation, per spec.md §6.
func varyHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Accept, Accept-Encoding, Authorization, Origin")
		next.ServeHTTP(w, r)
	})
}
