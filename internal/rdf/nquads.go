package rdf

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/cuemby/linkproxy/internal/apperr"
	"github.com/cuemby/linkproxy/internal/hashing"
	"github.com/cuemby/linkproxy/internal/model"
)

// decodeNQuads parses a minimal subset of N-Quads: one quad per line,
// "<subject> <predicate> <object> <graph> .", where object is an IRI
// (<...>), a blank node (_:label) or a literal ("value"[^^<dt>|@lang]).
// Object-slot encoding follows spec.md §4.2, grounded on the reference
// parser's str_from_term mapping (named node / blank node / plain
// literal / language-tagged literal).
func decodeNQuads(table *hashing.Table, data []byte) (model.DocumentSet, error) {
	docs := make(model.DocumentSet)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 || raw[0] == '#' {
			continue
		}

		tokens, err := tokenizeNQuadLine(string(raw))
		if err != nil {
			return nil, err
		}
		if len(tokens) < 4 {
			return nil, apperr.New(apperr.KindParserError, "n-quads line missing graph term: "+string(raw))
		}

		subjectTok, predicateTok, objectTok, graphTok := tokens[0], tokens[1], tokens[2], tokens[3]

		subject, err := termIRIOrBlank(subjectTok)
		if err != nil {
			return nil, err
		}
		predicate, err := termIRIOrBlank(predicateTok)
		if err != nil {
			return nil, err
		}
		graphIRI, err := termIRIOrBlank(graphTok)
		if err != nil {
			return nil, err
		}

		value, datatype, language, err := termObject(objectTok)
		if err != nil {
			return nil, err
		}

		operator, target, err := splitGraph(subject, graphIRI)
		if err != nil {
			return nil, err
		}

		st := model.Statement{
			Subject:   table.Ensure(subject),
			Predicate: table.Ensure(predicate),
			Value:     table.Ensure(value),
			Datatype:  table.Ensure(datatype),
			Language:  table.Ensure(language),
			Graph:     table.Ensure(operator),
		}

		docs[target] = append(docs[target], st)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindParserError, "failed reading n-quads payload", err)
	}

	return docs, nil
}

// tokenizeNQuadLine splits a line into its whitespace-separated terms,
// respecting <...> and "..." boundaries so spaces inside them are not
// treated as separators. The trailing '.' terminator is dropped.
func tokenizeNQuadLine(line string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	inIRI, inLiteral := false, false

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '<' && !inLiteral:
			inIRI = true
			cur.WriteByte(c)
		case c == '>' && inIRI:
			inIRI = false
			cur.WriteByte(c)
		case c == '"' && !inIRI:
			inLiteral = !inLiteral
			cur.WriteByte(c)
		case c == '\\' && inLiteral && i+1 < len(line):
			cur.WriteByte(c)
			i++
			cur.WriteByte(line[i])
		case (c == ' ' || c == '\t') && !inIRI && !inLiteral:
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()

	if inIRI || inLiteral {
		return nil, apperr.New(apperr.KindParserError, "unterminated term in n-quads line: "+line)
	}

	if n := len(tokens); n > 0 && tokens[n-1] == "." {
		tokens = tokens[:n-1]
	}
	return tokens, nil
}

func termIRIOrBlank(tok string) (string, error) {
	switch {
	case strings.HasPrefix(tok, "<") && strings.HasSuffix(tok, ">"):
		return tok[1 : len(tok)-1], nil
	case strings.HasPrefix(tok, "_:"):
		return tok, nil
	default:
		return "", apperr.New(apperr.KindParserError, "expected IRI or blank node, got: "+tok)
	}
}

// termObject decodes an N-Quads object term into the (value, datatype,
// language) triple the object-slot encoding rules call for.
func termObject(tok string) (value, datatype, language string, err error) {
	switch {
	case strings.HasPrefix(tok, "<") && strings.HasSuffix(tok, ">"):
		return tok[1 : len(tok)-1], DatatypeNamedNode, "", nil

	case strings.HasPrefix(tok, "_:"):
		return tok, DatatypeBlankNode, "", nil

	case strings.HasPrefix(tok, "\""):
		body, rest, ok := splitQuotedLiteral(tok)
		if !ok {
			return "", "", "", apperr.New(apperr.KindParserError, "malformed literal: "+tok)
		}
		switch {
		case strings.HasPrefix(rest, "^^<") && strings.HasSuffix(rest, ">"):
			return body, rest[3 : len(rest)-1], "", nil
		case strings.HasPrefix(rest, "@"):
			return body, DatatypeLangString, rest[1:], nil
		case rest == "":
			return body, DatatypeString, "", nil
		default:
			return "", "", "", apperr.New(apperr.KindParserError, "malformed literal suffix: "+rest)
		}

	default:
		return "", "", "", apperr.New(apperr.KindParserError, "unrecognized object term: "+tok)
	}
}

// splitQuotedLiteral splits a leading "..." (honoring backslash escapes)
// from any trailing ^^<datatype> or @lang suffix.
func splitQuotedLiteral(tok string) (body, rest string, ok bool) {
	if len(tok) < 2 || tok[0] != '"' {
		return "", "", false
	}
	for i := 1; i < len(tok); i++ {
		if tok[i] == '\\' {
			i++
			continue
		}
		if tok[i] == '"' {
			return unescapeLiteral(tok[1:i]), tok[i+1:], true
		}
	}
	return "", "", false
}

func unescapeLiteral(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
