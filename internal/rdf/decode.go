package rdf

import (
	"github.com/cuemby/linkproxy/internal/apperr"
	"github.com/cuemby/linkproxy/internal/hashing"
	"github.com/cuemby/linkproxy/internal/model"
)

// Decode parses data under the given encoding into a DocumentSet,
// interning every string it encounters into table.
func Decode(table *hashing.Table, data []byte, enc Encoding) (model.DocumentSet, error) {
	switch enc {
	case EncodingHextupleNDJSON:
		return decodeHextuples(table, data)
	case EncodingNQuads:
		return decodeNQuads(table, data)
	default:
		return nil, apperr.New(apperr.KindParserError, "unknown rdf encoding")
	}
}
