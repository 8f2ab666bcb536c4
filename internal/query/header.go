package query

import (
	"net/url"

	"github.com/cuemby/linkproxy/internal/hashing"
	"github.com/cuemby/linkproxy/internal/model"
	"github.com/cuemby/linkproxy/internal/rdf"
)

// RDF reification vocabulary IRIs the Hydra template maps its
// subject/predicate/object variables onto.
const (
	subjectVocabIRI   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#subject"
	predicateVocabIRI = "http://www.w3.org/1999/02/22-rdf-syntax-ns#predicate"
	objectVocabIRI    = "http://www.w3.org/1999/02/22-rdf-syntax-ns#object"

	hydraMapping  = "http://www.w3.org/ns/hydra/core#mapping"
	hydraProperty = "http://www.w3.org/ns/hydra/core#property"
	hydraTemplate = "http://www.w3.org/ns/hydra/core#template"
	hydraVariable = "http://www.w3.org/ns/hydra/core#variable"
	hydraSearch   = "http://www.w3.org/ns/hydra/core#search"
	voidSubset    = "http://rdfs.org/ns/void#subset"
)

// Header builds the fixed Hydra-flavored template describing the query
// interface itself, plus a void#subset statement pointing at the IRI
// this particular request's filters resolve to. origin is the scheme
// and host the request arrived on (e.g. "https://example.com"); every
// IRI in the header is derived from it so the template is
// self-describing regardless of deployment host.
func Header(table *hashing.Table, origin string, req Request) model.HashModel {
	datasetIRI := table.Ensure(origin + "#dataset")
	templateIRI := table.Ensure(origin + "/tpf#template")
	namedNode := table.Ensure(rdf.DatatypeNamedNode)
	stringType := table.Ensure(rdf.DatatypeString)
	empty := table.Ensure("")

	dataset := model.HashModel{
		{
			Subject:   datasetIRI,
			Predicate: table.Ensure(voidSubset),
			Value:     table.Ensure(CollectionIRI(origin, req)),
			Datatype:  namedNode,
			Language:  empty,
			Graph:     empty,
		},
		{
			Subject:   datasetIRI,
			Predicate: table.Ensure(hydraSearch),
			Value:     templateIRI,
			Datatype:  namedNode,
			Language:  empty,
			Graph:     empty,
		},
	}

	return append(dataset, templateStatements(table, origin, namedNode, stringType, empty)...)
}

func templateStatements(table *hashing.Table, origin string, namedNode, stringType, empty hashing.Hash128) model.HashModel {
	tmplBase := origin + "/tpf#template"
	templateIRI := table.Ensure(tmplBase)
	subjectIRI := table.Ensure(tmplBase + "_subject")
	predicateIRI := table.Ensure(tmplBase + "_predicate")
	objectIRI := table.Ensure(tmplBase + "_object")

	mapping := table.Ensure(hydraMapping)
	property := table.Ensure(hydraProperty)
	variable := table.Ensure(hydraVariable)

	return model.HashModel{
		{Subject: templateIRI, Predicate: table.Ensure(hydraTemplate), Value: table.Ensure(origin + "/tpf{?subject,?predicate,?object}"), Datatype: stringType, Language: empty, Graph: empty},
		{Subject: templateIRI, Predicate: mapping, Value: subjectIRI, Datatype: namedNode, Language: empty, Graph: empty},
		{Subject: templateIRI, Predicate: mapping, Value: predicateIRI, Datatype: namedNode, Language: empty, Graph: empty},
		{Subject: templateIRI, Predicate: mapping, Value: objectIRI, Datatype: namedNode, Language: empty, Graph: empty},
		{Subject: subjectIRI, Predicate: variable, Value: table.Ensure("subject"), Datatype: stringType, Language: empty, Graph: empty},
		{Subject: subjectIRI, Predicate: property, Value: table.Ensure(subjectVocabIRI), Datatype: namedNode, Language: empty, Graph: empty},
		{Subject: predicateIRI, Predicate: variable, Value: table.Ensure("predicate"), Datatype: stringType, Language: empty, Graph: empty},
		{Subject: predicateIRI, Predicate: property, Value: table.Ensure(predicateVocabIRI), Datatype: namedNode, Language: empty, Graph: empty},
		{Subject: objectIRI, Predicate: variable, Value: table.Ensure("object"), Datatype: stringType, Language: empty, Graph: empty},
		{Subject: objectIRI, Predicate: property, Value: table.Ensure(objectVocabIRI), Datatype: namedNode, Language: empty, Graph: empty},
	}
}

// CollectionIRI builds the IRI identifying this exact filtered view,
// e.g. "{origin}/tpf?subject=...&predicate=...". With no bound filters
// it is just "{origin}/tpf".
func CollectionIRI(origin string, req Request) string {
	base := origin + "/tpf"
	values := url.Values{}
	if req.Subject != "" {
		values.Set("subject", req.Subject)
	}
	if req.Predicate != "" {
		values.Set("predicate", req.Predicate)
	}
	if req.Value != "" {
		values.Set("object", req.Value)
	}
	if len(values) == 0 {
		return base
	}
	return base + "?" + values.Encode()
}
