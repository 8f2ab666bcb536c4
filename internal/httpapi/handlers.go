package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cuemby/linkproxy/internal/apperr"
	"github.com/cuemby/linkproxy/internal/delta"
	"github.com/cuemby/linkproxy/internal/log"
	"github.com/cuemby/linkproxy/internal/model"
	"github.com/cuemby/linkproxy/internal/query"
	"github.com/cuemby/linkproxy/internal/rdf"
)

const maxBulkBody = 1 << 20    // 1 MiB of form-encoded resource IRIs
const maxUpdateBody = 64 << 20 // 64 MiB of delta payload

func negotiateEncoding(r *http.Request, ext string) rdf.OutputEncoding {
	if ext != "" {
		if enc, ok := rdf.EncodingForExtension(ext); ok {
			return enc
		}
	}
	return rdf.NegotiateAccept(r.Header.Get("Accept"))
}

func bulkHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBulkBody)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "malformed form body", http.StatusBadRequest)
			return
		}
		rawIRIs := r.Form["resource[]"]
		if len(rawIRIs) == 0 {
			rawIRIs = r.Form["resource"]
		}
		for i, raw := range rawIRIs {
			if decoded, err := url.QueryUnescape(raw); err == nil {
				rawIRIs[i] = decoded
			}
		}

		table := deps.newTable()
		results, err := deps.Bulk.Run(r.Context(), r, table, deps.Seed, rawIRIs)
		if err != nil {
			log.WithComponent("httpapi").Error().Err(err).Msg("bulk request failed")
			http.Error(w, "bulk request failed", httpStatusFor(err))
			return
		}

		var combined model.HashModel
		for _, res := range results {
			combined = append(combined, res.Statements...)
		}

		enc := negotiateEncoding(r, "")
		body, err := rdf.Encode(table, combined, enc)
		if err != nil {
			http.Error(w, "failed to serialize result", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", enc.ContentType())
		w.Write(body)
	}
}

func httpStatusFor(err error) int {
	return apperr.HTTPStatus(apperr.KindOf(err))
}

func updateHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUpdateBody)
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}

		table := deps.newTable()
		docs, err := rdf.Decode(table, body, rdf.EncodingHextupleNDJSON)
		if err != nil {
			http.Error(w, "malformed delta payload", http.StatusBadRequest)
			return
		}

		total := 0
		for _, stmts := range docs {
			total += len(stmts)
		}
		log.WithComponent("httpapi").Debug().Int("statements", total).Msg("received delta via /update")

		if _, err := deps.Importer.Process(r.Context(), table, deps.Seed, docs); err != nil {
			log.WithComponent("httpapi").Warn().Err(err).Msg("processing delta from /update failed")
			http.Error(w, "failed to apply delta", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func tpfHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := query.ParseTPF(r.URL.Query())
		if err != nil {
			http.Error(w, "malformed query parameters", http.StatusBadRequest)
			return
		}
		runQuery(w, r, deps, req)
	}
}

func hpfHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := query.ParseHPF(r.URL.Query())
		if err != nil {
			http.Error(w, "malformed query parameters", http.StatusBadRequest)
			return
		}
		runQuery(w, r, deps, req)
	}
}

func runQuery(w http.ResponseWriter, r *http.Request, deps Deps, req query.Request) {
	table := deps.newTable()
	origin := requestOrigin(r)

	stmts, err := query.Run(r.Context(), deps.Store, table, deps.Seed, origin, req)
	if err != nil {
		log.WithComponent("httpapi").Error().Err(err).Msg("triple-pattern query failed")
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}

	enc := negotiateEncoding(r, "")
	body, err := rdf.Encode(table, stmts, enc)
	if err != nil {
		http.Error(w, "failed to serialize result", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", enc.ContentType())
	w.Write(body)
}

func randomHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		table := deps.newTable()
		_, stmts, err := deps.Store.RandomDocument(r.Context(), deps.Store.DB(), table, deps.Seed)
		if err != nil {
			switch apperr.KindOf(err) {
			case apperr.KindNotFound, apperr.KindEmptyDocument:
				w.WriteHeader(http.StatusNoContent)
			default:
				http.Error(w, "failed to load random document", http.StatusInternalServerError)
			}
			return
		}

		enc := negotiateEncoding(r, "")
		body, err := rdf.Encode(table, stmts, enc)
		if err != nil {
			http.Error(w, "failed to serialize document", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", enc.ContentType())
		w.Write(body)
	}
}

func showResourceHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/")
		ext := ""
		if idx := strings.LastIndexByte(path, '.'); idx >= 0 {
			candidate := path[idx:]
			if _, ok := rdf.EncodingForExtension(candidate); ok {
				ext = candidate
				path = path[:idx]
			}
		}

		iri := iriFromRequest(r, path)
		if iri == "" {
			http.Error(w, "cannot resolve resource IRI", http.StatusBadRequest)
			return
		}

		table := deps.newTable()
		_, stmts, err := deps.Store.DocByIRI(r.Context(), deps.Store.DB(), table, deps.Seed, iri)
		if err != nil {
			switch apperr.KindOf(err) {
			case apperr.KindNotFound, apperr.KindEmptyDocument:
				http.NotFound(w, r)
			default:
				http.Error(w, "failed to load document", http.StatusInternalServerError)
			}
			return
		}

		enc := negotiateEncoding(r, ext)
		body, err := rdf.Encode(table, stmts, enc)
		if err != nil {
			http.Error(w, "failed to serialize document", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", enc.ContentType())
		w.Write(body)
	}
}

// iriFromRequest reconstructs the resource IRI a request's path names,
// mirroring the reference service's host+path convention.
func iriFromRequest(r *http.Request, path string) string {
	host := requestHost(r)
	if host == "" {
		return ""
	}
	return "https://" + host + "/" + path
}

// requestOrigin returns the scheme+host a query's self-describing
// header IRIs should be built against.
func requestOrigin(r *http.Request) string {
	return "https://" + requestHost(r)
}

// requestHost prefers X-Forwarded-Host, since the service typically
// sits behind a reverse proxy terminating TLS.
func requestHost(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-Host"); forwarded != "" {
		return forwarded
	}
	return r.Host
}

func serviceInfoHandler(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":      "linkproxy",
		"operators": []string{delta.OperatorAdd, delta.OperatorReplace, delta.OperatorSupplantLD, delta.OperatorSupplantLL},
		"endpoints": map[string]interface{}{
			"bulk":   map[string]string{"path": "/link-lib/bulk", "method": "POST"},
			"update": map[string]string{"path": "/update", "method": "POST"},
			"tpf":    map[string]string{"path": "/tpf", "method": "GET"},
			"hpf":    map[string]string{"path": "/hpf", "method": "GET"},
		},
	}
	w.Header().Set("Content-Type", "application/ld+json")
	json.NewEncoder(w).Encode(info)
}
