package authclient

import "github.com/cuemby/linkproxy/internal/model"

// ResourceRequest is one entry of the bulk-authorize request body.
type ResourceRequest struct {
	IRI     string `json:"iri"`
	Include bool   `json:"include"`
}

// bulkRequestBody is the JSON body of POST {data_server}{tenant}/spi/bulk.
type bulkRequestBody struct {
	Resources []ResourceRequest `json:"resources"`
}

// ResourceResponse is one entry of the bulk-authorize response.
type ResourceResponse struct {
	IRI      string             `json:"iri"`
	Status   int                `json:"status"`
	Cache    model.CacheControl `json:"cache"`
	Language string             `json:"language,omitempty"`
	Body     string             `json:"body,omitempty"`
}

// findTenantRequest is the body of GET .../spi/find_tenant.
type findTenantRequest struct {
	IRI string `json:"iri"`
}

// findTenantResponse is the 200 body of find_tenant.
type findTenantResponse struct {
	IRIPrefix string `json:"iri_prefix"`
}
