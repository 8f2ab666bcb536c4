package bulk

import "github.com/cuemby/linkproxy/internal/model"

// Resource is one requested IRI's resolved state, merged from the
// store and, if needed, the backend (spec.md §4.7 step 3).
type Resource struct {
	IRI          string
	Status       int
	CacheControl model.CacheControl
	Statements   model.HashModel
}

// StatusTripleDatatype is the XSD datatype the synthesized status-code
// triple's object carries.
const StatusTripleDatatype = "http://www.w3.org/2001/XMLSchema#integer"

// StatusPredicate is the predicate IRI every bulk response entry's
// synthesized status-code triple uses (spec.md §4.7).
const StatusPredicate = "http://www.w3.org/2011/http#statusCode"
