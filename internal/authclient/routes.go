package authclient

import "regexp"

// clusterRoute matches an IRI's path against an in-cluster service
// instead of sending it through the bulk-authorize call.
type clusterRoute struct {
	pattern *regexp.Regexp
	service string
}

// clusterRoutes is the static partition table from spec.md §4.8: a
// fixed set of path patterns that bypass bulk-authorize and are
// fetched directly from the named in-cluster service.
var clusterRoutes = []clusterRoute{
	{pattern: regexp.MustCompile(`^/email/`), service: "mailer"},
	{pattern: regexp.MustCompile(`^/subscribe$`), service: "subscriptions"},
	{pattern: regexp.MustCompile(`/tokens$`), service: "tokens"},
	{pattern: regexp.MustCompile(`^/compare/votes$`), service: "votes"},
	{pattern: regexp.MustCompile(`^/[^/]+/[^/]+/od/`), service: "od"},
}

// routeFor returns the in-cluster service path should be routed to, or
// ("", false) if iriPath should go through the regular bulk-authorize
// call.
func routeFor(iriPath string) (service string, ok bool) {
	for _, r := range clusterRoutes {
		if r.pattern.MatchString(iriPath) {
			return r.service, true
		}
	}
	return "", false
}
