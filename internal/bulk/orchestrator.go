package bulk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/cuemby/linkproxy/internal/apperr"
	"github.com/cuemby/linkproxy/internal/authclient"
	"github.com/cuemby/linkproxy/internal/delta"
	"github.com/cuemby/linkproxy/internal/hashing"
	"github.com/cuemby/linkproxy/internal/importer"
	"github.com/cuemby/linkproxy/internal/log"
	"github.com/cuemby/linkproxy/internal/metrics"
	"github.com/cuemby/linkproxy/internal/model"
	"github.com/cuemby/linkproxy/internal/rdf"
	"github.com/cuemby/linkproxy/internal/session"
	"github.com/cuemby/linkproxy/internal/store"
)

// Orchestrator runs the per-request bulk state machine of spec.md
// §4.7. It holds no per-request state itself; every Run call is
// independent and owns its own hashing.Table.
type Orchestrator struct {
	store      *store.Store
	auth       *authclient.Client
	importer   *importer.Importer
	sessions   *session.Resolver // nil disables session resolution
	tenantBase string
}

func New(s *store.Store, auth *authclient.Client, imp *importer.Importer, sessions *session.Resolver) *Orchestrator {
	return &Orchestrator{store: s, auth: auth, importer: imp, sessions: sessions}
}

// Run executes the full bulk state machine for rawIRIs against req,
// returning one Resource per requested IRI, already carrying its
// synthesized status-code triple.
func (o *Orchestrator) Run(ctx context.Context, req *http.Request, table *hashing.Table, seed uint32, rawIRIs []string) ([]Resource, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.BulkRequestDuration)

	// 1. Parse / canonicalize.
	iris := make([]string, 0, len(rawIRIs))
	seen := make(map[string]bool, len(rawIRIs))
	for _, raw := range rawIRIs {
		iri := rdf.Stem(raw)
		if iri == "" || seen[iri] {
			continue
		}
		seen[iri] = true
		iris = append(iris, iri)
	}

	// 2. Resolve session (best-effort; failures fall back to guest). The
	// resolved language is logged; later steps do not read it.
	if o.sessions != nil {
		if resolved, err := o.sessions.Resolve(ctx, req); err != nil {
			log.WithComponent("bulk").Debug().Err(err).Msg("session not resolved, continuing as guest")
		} else {
			log.WithComponent("bulk").Debug().Str("language", resolved.Language).Msg("session resolved")
		}
	}

	// 3. Lookup in store.
	docs := make(map[string]*Resource, len(iris))
	resourcesInStore := make(map[string]bool, len(iris))
	var needsBackend []string
	var runningHits, runningMisses int64

	for _, iri := range iris {
		res, _, err := o.lookupOne(ctx, table, seed, iri)
		if err != nil {
			return nil, err
		}
		docs[iri] = res
		if res.Status == http.StatusOK && len(res.Statements) > 0 {
			resourcesInStore[iri] = true
		}
		publicHit := res.Status == http.StatusOK && res.CacheControl == model.CachePublic
		if !publicHit {
			needsBackend = append(needsBackend, iri)
		}
		if publicHit {
			runningHits++
		} else {
			runningMisses++
		}
		metrics.RecordCacheOutcome(publicHit, runningHits, runningMisses)
	}

	// 5. Authorize / fetch.
	if len(needsBackend) > 0 {
		if err := o.authorizeAndMerge(ctx, req, table, docs, resourcesInStore, needsBackend); err != nil {
			return nil, err
		}
	}

	// 7. Persist non-Private backend results.
	if err := o.persist(ctx, table, seed, docs, needsBackend); err != nil {
		return nil, err
	}

	// 8. Assemble final resources with status-code triples.
	out := make([]Resource, 0, len(iris))
	for _, iri := range iris {
		res := docs[iri]
		res.Statements = append(res.Statements, statusTriple(table, iri, res.Status))
		out = append(out, *res)
	}
	return out, nil
}

func (o *Orchestrator) lookupOne(ctx context.Context, table *hashing.Table, seed uint32, iri string) (*Resource, bool, error) {
	doc, stmts, err := o.store.DocByIRI(ctx, o.store.DB(), table, seed, iri)
	if err == nil {
		return &Resource{IRI: iri, Status: http.StatusOK, CacheControl: doc.CacheControl, Statements: stmts}, true, nil
	}
	switch apperr.KindOf(err) {
	case apperr.KindNotFound, apperr.KindEmptyDocument:
		return &Resource{IRI: iri, Status: http.StatusNotFound, CacheControl: model.CachePrivate}, false, nil
	default:
		return nil, false, err
	}
}

func (o *Orchestrator) authorizeAndMerge(ctx context.Context, req *http.Request, table *hashing.Table, docs map[string]*Resource, resourcesInStore map[string]bool, needsBackend []string) error {
	websiteIRI := deriveWebsiteIRI(req)

	tenant, err := o.auth.FindTenant(ctx, req, websiteIRI)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNoTenant {
			for _, iri := range needsBackend {
				docs[iri].Status = http.StatusNotFound
			}
			return nil
		}
		return err
	}

	results, err := o.auth.BulkAuthorize(ctx, req, websiteIRI, tenant, resourcesInStore, needsBackend)
	if err != nil {
		return err
	}

	for _, result := range results {
		res, ok := docs[result.IRI]
		if !ok {
			continue
		}
		res.Status = result.Status
		res.CacheControl = result.Cache

		switch {
		case result.Status == http.StatusOK || result.Status == http.StatusNoContent:
			if result.Body == "" {
				continue
			}
			parsed, perr := rdf.DecodePlainHextuples(table, []byte(result.Body))
			if perr != nil {
				log.WithComponent("bulk").Error().Err(perr).Str("iri", result.IRI).Msg("failed to parse backend body")
				continue
			}
			res.Statements = parsed
		default:
			res.Statements = nil
		}
	}
	return nil
}

// persist writes every backend-resolved document whose cache-control
// is not Private into the store via the importer, then updates the
// cache-control column for those documents (spec.md §4.7 step 7).
func (o *Orchestrator) persist(ctx context.Context, table *hashing.Table, seed uint32, docs map[string]*Resource, needsBackend []string) error {
	toImport := make(model.DocumentSet)
	cacheUpdates := make(map[string]model.CacheControl)

	for _, iri := range needsBackend {
		res := docs[iri]
		if res.CacheControl == model.CachePrivate {
			continue
		}
		if len(res.Statements) > 0 {
			toImport[iri] = rdf.WithOperator(table, res.Statements, delta.OperatorSupplantLD)
		}
		cacheUpdates[iri] = res.CacheControl
	}

	if len(toImport) > 0 {
		if _, err := o.importer.Process(ctx, table, seed, toImport); err != nil {
			return err
		}
	}
	if len(cacheUpdates) > 0 {
		if err := o.store.UpdateCacheControl(ctx, o.store.DB(), cacheUpdates); err != nil {
			return err
		}
	}
	return nil
}

func statusTriple(table *hashing.Table, iri string, status int) model.Statement {
	return model.Statement{
		Subject:   table.Ensure(iri),
		Predicate: table.Ensure(StatusPredicate),
		Value:     table.Ensure(strconv.Itoa(status)),
		Datatype:  table.Ensure(StatusTripleDatatype),
		Language:  table.Ensure(""),
		Graph:     hashing.Zero,
	}
}

// deriveWebsiteIRI builds the mandatory Website-IRI header value from
// the incoming request, preferring Origin, then Referer, then the
// request's own Host (spec.md §4.8).
func deriveWebsiteIRI(req *http.Request) string {
	if req == nil {
		return ""
	}
	if origin := req.Header.Get("Origin"); origin != "" {
		return origin + "/"
	}
	if referer := req.Header.Get("Referer"); referer != "" {
		if u, err := url.Parse(referer); err == nil {
			return u.Scheme + "://" + u.Host + "/"
		}
	}
	scheme := "https"
	if req.TLS == nil {
		scheme = "http"
	}
	return scheme + "://" + req.Host + "/"
}
