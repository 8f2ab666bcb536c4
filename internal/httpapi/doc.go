// Package httpapi wires the HTTP surface of §6: the bulk endpoint (C8),
// the delta-update endpoint, the triple-pattern query endpoints (C10),
// single-resource lookups, and health/metrics routes, onto a chi
// router with the content negotiation and CORS policy the service
// requires.
package httpapi
