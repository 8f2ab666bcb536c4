package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/cuemby/linkproxy/internal/apperr"
	"github.com/cuemby/linkproxy/internal/metrics"
)

// propagatedHeaders are forwarded verbatim from the client's original
// request onto every outbound backend call (spec.md §4.8).
var propagatedHeaders = []string{
	"Authorization", "Accept-Language", "Origin", "Referer", "User-Agent",
	"X-Device-Id", "X-Request-Id", "Host", "Forwarded",
}

// Client composes the bulk-authorize, tenant-resolution and
// in-cluster-route calls the bulk orchestrator needs.
type Client struct {
	httpClient   *http.Client
	dataServer   string
	clusterProto string
	clusterBase  string
	limiter      *rate.Limiter
}

type Config struct {
	DataServerURL string
	Timeout       time.Duration
	ClusterProto  string // "http" or "https", defaults to "http"
	ClusterBase   string // e.g. ".svc.cluster.local"
	// RequestsPerSecond bounds outbound backend calls; zero disables
	// limiting.
	RequestsPerSecond float64
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	proto := cfg.ClusterProto
	if proto == "" {
		proto = "http"
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), int(cfg.RequestsPerSecond))
	}

	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		dataServer:   strings.TrimRight(cfg.DataServerURL, "/"),
		clusterProto: proto,
		clusterBase:  cfg.ClusterBase,
		limiter:      limiter,
	}
}

// FindTenant resolves the tenant path for websiteIRI (spec.md §4.8).
// A 404 from the backend is surfaced as apperr.KindNoTenant.
func (c *Client) FindTenant(ctx context.Context, original *http.Request, websiteIRI string) (string, error) {
	body, err := json.Marshal(findTenantRequest{IRI: websiteIRI})
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnexpected, "marshal find_tenant request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.dataServer+"/_public/spi/find_tenant", bytes.NewReader(body))
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnexpected, "build find_tenant request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	propagateHeaders(req, original, websiteIRI)

	resp, err := c.do(ctx, req, "find_tenant")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", apperr.New(apperr.KindNoTenant, "no tenant for website "+websiteIRI)
	}
	if resp.StatusCode != http.StatusOK {
		return "", apperr.New(apperr.KindBackendUnavailable, fmt.Sprintf("find_tenant returned status %d", resp.StatusCode))
	}

	var parsed findTenantResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", apperr.Wrap(apperr.KindBackendUnavailable, "decode find_tenant response", err)
	}

	u, err := url.Parse("https://" + parsed.IRIPrefix)
	if err != nil {
		return "", apperr.Wrap(apperr.KindBackendUnavailable, "parse tenant iri_prefix", err)
	}
	if u.Path == "/" {
		return "", nil
	}
	return u.Path, nil
}

// BulkAuthorize sends the bulk-authorize request for every IRI not
// already satisfied by a Public cache hit. IRIs matching a cluster
// route are fetched directly instead (spec.md §4.8) and folded into
// the same response slice.
func (c *Client) BulkAuthorize(ctx context.Context, original *http.Request, websiteIRI, tenant string, resourcesInStore map[string]bool, requested []string) ([]ResourceResponse, error) {
	var clusterIRIs, backendIRIs []string
	for _, iri := range requested {
		if path, ok := routeIRIPath(iri); ok {
			if _, routed := routeFor(path); routed {
				clusterIRIs = append(clusterIRIs, iri)
				continue
			}
		}
		backendIRIs = append(backendIRIs, iri)
	}

	var results []ResourceResponse
	for _, iri := range clusterIRIs {
		res, err := c.fetchClusterRoute(ctx, original, iri)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	if len(backendIRIs) == 0 {
		return results, nil
	}

	reqBody := bulkRequestBody{}
	for _, iri := range backendIRIs {
		reqBody.Resources = append(reqBody.Resources, ResourceRequest{IRI: iri, Include: !resourcesInStore[iri]})
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnexpected, "marshal bulk-authorize request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.dataServer+tenant+"/spi/bulk", bytes.NewReader(payload))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnexpected, "build bulk-authorize request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	propagateHeaders(req, original, websiteIRI)

	resp, err := c.do(ctx, req, "bulk_authorize")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.New(apperr.KindBackendUnavailable, fmt.Sprintf("bulk-authorize returned status %d", resp.StatusCode))
	}

	var backendResults []ResourceResponse
	if err := json.NewDecoder(resp.Body).Decode(&backendResults); err != nil {
		return nil, apperr.Wrap(apperr.KindBackendUnavailable, "decode bulk-authorize response", err)
	}

	return append(results, backendResults...), nil
}

// fetchClusterRoute issues a GET against the in-cluster service
// matched by iri's path, wrapping the response body as a single
// Private document whose status is the backend's HTTP status.
func (c *Client) fetchClusterRoute(ctx context.Context, original *http.Request, iri string) (ResourceResponse, error) {
	path, ok := routeIRIPath(iri)
	if !ok {
		return ResourceResponse{}, apperr.New(apperr.KindInvalidRequest, "not a routable iri: "+iri)
	}
	service, _ := routeFor(path)

	target := fmt.Sprintf("%s://%s%s%s", c.clusterProto, service, c.clusterBase, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return ResourceResponse{}, apperr.Wrap(apperr.KindUnexpected, "build cluster route request", err)
	}
	propagateHeaders(req, original, "")

	resp, err := c.do(ctx, req, "cluster_route:"+service)
	if err != nil {
		return ResourceResponse{IRI: iri, Status: http.StatusBadGateway, Cache: "private"}, nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return ResourceResponse{
		IRI:    iri,
		Status: resp.StatusCode,
		Cache:  "private",
		Body:   string(body),
	}, nil
}

func (c *Client) do(ctx context.Context, req *http.Request, route string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, apperr.Wrap(apperr.KindTimeout, "rate limit wait cancelled", err)
		}
	}

	timer := metrics.NewTimer()
	resp, err := c.httpClient.Do(req)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	timer.ObserveDurationVec(metrics.BackendCallDuration, route)
	metrics.BackendCallsTotal.WithLabelValues(route, outcome).Inc()

	if err != nil {
		// ctx.Err() only catches cancellation propagated from the
		// caller's context; the per-request deadline is enforced by
		// httpClient.Timeout, which surfaces as a net.Error with
		// Timeout()==true and leaves ctx.Err() nil (spec.md §5/§7,
		// Timeout -> GATEWAY_TIMEOUT).
		var netErr net.Error
		if ctx.Err() != nil || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, apperr.Wrap(apperr.KindTimeout, "backend call timed out", err)
		}
		return nil, apperr.Wrap(apperr.KindBackendUnavailable, "backend call failed", err)
	}
	return resp, nil
}

func propagateHeaders(out *http.Request, original *http.Request, websiteIRI string) {
	if original != nil {
		for _, name := range propagatedHeaders {
			if v := original.Header.Get(name); v != "" {
				out.Header.Set(name, v)
			}
		}
		for name, values := range original.Header {
			if strings.HasPrefix(strings.ToLower(name), "x-forwarded-") {
				for _, v := range values {
					out.Header.Add(name, v)
				}
			}
		}
	}
	if websiteIRI != "" {
		out.Header.Set("Website-IRI", websiteIRI)
	}
}

// routeIRIPath extracts the URL path component of iri for route
// matching, if it parses as an absolute IRI.
func routeIRIPath(iri string) (string, bool) {
	u, err := url.Parse(iri)
	if err != nil || u.Path == "" {
		return "", false
	}
	return u.Path, true
}
