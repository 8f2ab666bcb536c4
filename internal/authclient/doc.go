// Package authclient is the authorization client (C9): it composes the
// bulk-authorize call to the tenant's backend data server, routes a
// fixed set of IRI patterns to in-cluster services instead, and
// resolves a request's tenant path.
package authclient
