package rdf

import (
	"net/url"
	"strings"

	"github.com/cuemby/linkproxy/internal/apperr"
)

// Object-slot datatype sentinels, spec.md §4.2.
const (
	DatatypeNamedNode  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#namedNode"
	DatatypeBlankNode  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#blankNode"
	DatatypeString     = "http://www.w3.org/2001/XMLSchema#string"
	DatatypeLangString = "http://www.w3.org/1999/02/22-rdf-syntax-ns#langString"
)

// MetaGraph is the link-lib meta-graph IRI (spec.md §3). Statements this
// service stores carry hashing.Zero in the graph slot instead; neither
// the delta engine nor the store assigns this IRI.
const MetaGraph = "http://purl.org/link-lib/meta"

// Encoding selects the wire format Decode parses.
type Encoding int

const (
	EncodingHextupleNDJSON Encoding = iota
	EncodingNQuads
)

// graphSplitMarker is the delimiter spec.md §4.2 uses to pack an
// operator IRI and a target document IRI into one graph string.
const graphSplitMarker = "?graph="

// splitGraph divides a quad's graph field into its delta operator and
// target document IRI. When the right half is present but empty after
// the marker, or the marker is absent altogether, the target falls
// back to the statement's subject IRI (spec.md §4.2; flagged as an
// open question in §9, implemented as written pending product
// confirmation — see DESIGN.md). A bare graph with no marker is also
// the shape of the invalidate-all sentinel (spec.md §6), whose graph
// slot is just the operator IRI with no packed target.
func splitGraph(subjectIRI, graph string) (operator, target string, err error) {
	if graph == "" {
		return "", "", apperr.New(apperr.KindDeltaWithoutOperator, "statement graph slot is empty")
	}

	idx := strings.Index(graph, graphSplitMarker)
	if idx < 0 {
		return graph, subjectIRI, nil
	}

	operator = graph[:idx]
	rawTarget := graph[idx+len(graphSplitMarker):]
	if rawTarget == "" {
		return operator, subjectIRI, nil
	}

	decoded, decErr := url.QueryUnescape(rawTarget)
	if decErr != nil {
		return "", "", apperr.Wrap(apperr.KindInvalidGraphFormat, "malformed percent-encoding in graph target", decErr)
	}
	return operator, decoded, nil
}

// Stem canonicalizes an IRI by removing its fragment, per the GLOSSARY.
func Stem(iri string) string {
	if i := strings.IndexByte(iri, '#'); i >= 0 {
		return iri[:i]
	}
	return iri
}
