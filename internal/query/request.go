package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/cuemby/linkproxy/internal/apperr"
	"github.com/cuemby/linkproxy/internal/rdf"
)

// Request is the raw filter set parsed from a /tpf or /hpf query string.
// A field left at "" is unbound; values prefixed with "?" are explicit
// variable markers and are treated identically to absence.
type Request struct {
	Subject   string
	Predicate string
	Value     string
	Datatype  string
	Language  string
	Page      int64
	PageSize  int64
}

// unbound reports whether a raw query parameter names a variable rather
// than a bound value: absent, empty, or "?"-prefixed (mirrors the
// reference service's VarOrIRI/VarOrId parsing).
func unbound(raw string) bool {
	return raw == "" || strings.HasPrefix(raw, "?")
}

func bindOrEmpty(raw string) string {
	if unbound(raw) {
		return ""
	}
	return raw
}

// ParseTPF reads subject/predicate/object/page/page_size from a Triple
// Pattern Fragment query string, decomposing the combined "object"
// parameter into value/datatype/language per ParseObjectTerm.
func ParseTPF(values url.Values) (Request, error) {
	req := Request{
		Subject:   bindOrEmpty(values.Get("subject")),
		Predicate: bindOrEmpty(values.Get("predicate")),
	}
	value, datatype, language, err := ParseObjectTerm(values.Get("object"))
	if err != nil {
		return Request{}, err
	}
	req.Value, req.Datatype, req.Language = value, datatype, language
	req.Page, req.PageSize = parsePaging(values)
	return req, nil
}

// ParseHPF reads subject/predicate/value/datatype/language/page/page_size
// from a Hex Pattern Fragment query string, where value/datatype/language
// are already independent parameters rather than one packed "object".
func ParseHPF(values url.Values) (Request, error) {
	req := Request{
		Subject:   bindOrEmpty(values.Get("subject")),
		Predicate: bindOrEmpty(values.Get("predicate")),
		Value:     bindOrEmpty(values.Get("value")),
		Datatype:  bindOrEmpty(values.Get("datatype")),
		Language:  bindOrEmpty(values.Get("language")),
	}
	req.Page, req.PageSize = parsePaging(values)
	return req, nil
}

func parsePaging(values url.Values) (page, pageSize int64) {
	page = 0
	if raw := values.Get("page"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			page = n
		}
	}
	if page < 0 {
		page = 0
	}

	pageSize = 500
	if raw := values.Get("page_size"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			pageSize = n
		}
	}
	if pageSize < 0 {
		pageSize = -pageSize
	}
	if pageSize > 100000 {
		pageSize = 100000
	}
	if pageSize < 1 {
		pageSize = 1
	}
	return page, pageSize
}

// ParseObjectTerm decomposes a TPF "object" query parameter into its
// value, datatype and language components:
//
//	absent or ""        -> unbound
//	"?name"              -> unbound
//	"literal"            -> string-typed literal
//	"literal"^^<dt>      -> explicitly typed literal
//	"literal"@lang       -> language-tagged literal
//	bareToken            -> named-node IRI
func ParseObjectTerm(raw string) (value, datatype, language string, err error) {
	if raw == "" {
		return "", "", "", nil
	}
	if strings.HasPrefix(raw, "?") {
		return "", "", "", nil
	}
	if !strings.HasPrefix(raw, `"`) {
		return raw, rdf.DatatypeNamedNode, "", nil
	}

	closeIdx := strings.LastIndexByte(raw, '"')
	if closeIdx <= 0 {
		return "", "", "", apperr.New(apperr.KindInvalidRequest, "malformed object literal: "+raw)
	}
	value = raw[1:closeIdx]
	suffix := raw[closeIdx+1:]

	switch {
	case suffix == "":
		return value, rdf.DatatypeString, "", nil
	case strings.HasPrefix(suffix, "^^<") && strings.HasSuffix(suffix, ">"):
		return value, suffix[3 : len(suffix)-1], "", nil
	case strings.HasPrefix(suffix, "@"):
		return value, rdf.DatatypeLangString, suffix[1:], nil
	default:
		return "", "", "", apperr.New(apperr.KindInvalidRequest, "malformed object literal suffix: "+suffix)
	}
}
