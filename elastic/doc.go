// Package elastic builds schema-free query documents for a
// document-search HTTP service and iterates their results.
//
// Queries are assembled as a tree of Nodes with insertion-ordered
// fields. Undefined fields spring into existence as empty child nodes
// on first access, so a deep path can be opened in one chained
// expression. Helper methods cover the common filter, facet and sort
// shapes.
//
// Responses are wrapped in a Results cursor: a forward-only, single
// pass sequence over the matched documents. Cursors built from scan
// requests follow the server-side scroll transparently, fetching
// continuation pages as the caller advances.
package elastic
