// Package query is the triple-pattern query (C10): it accepts optional
// subject/predicate/value/datatype/language filters plus page/page_size
// cursor pagination over the properties table, and attaches a
// Hydra-flavored template header describing the query interface
// itself, grounded on the reference service's TPF/HPF endpoint.
package query
