package elastic

import "sort"

// Range describes a bound pair for range filters and range facets.
// Use Between for the common fully-inclusive case; nil or empty-string
// bounds are omitted from the emitted clause.
type Range struct {
	From         interface{}
	To           interface{}
	IncludeLower bool
	IncludeUpper bool
}

// Between returns a Range inclusive of both bounds.
func Between(from, to interface{}) Range {
	return Range{From: from, To: to, IncludeLower: true, IncludeUpper: true}
}

// node renders the range as its wire object.
func (r Range) node() *Node {
	n := NewNode()
	if !absent(r.From) {
		n.Set("from", r.From)
	}
	if !absent(r.To) {
		n.Set("to", r.To)
	}
	n.Set("include_lower", r.IncludeLower)
	n.Set("include_upper", r.IncludeUpper)
	return n
}

// absent implements the shared empty-value policy: nil and the empty
// string both mean "the caller had nothing", so optional user input can
// be passed through without pre-filtering.
func absent(v interface{}) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// termClause builds a standalone {"term": {field: value}} node.
func termClause(field string, value interface{}) *Node {
	c := NewNode()
	c.Field("term").Set(field, value)
	return c
}

// TermFilter sets term.<field> = term. Absent terms make this a no-op.
func (n *Node) TermFilter(field string, term interface{}) *Node {
	if absent(term) {
		return n
	}
	n.Field("term").Set(field, term)
	return n
}

// MissingFilter sets missing.field = field.
func (n *Node) MissingFilter(field string) *Node {
	n.Field("missing").Set("field", field)
	return n
}

// RangeFilter sets range.<field> to the given range clause.
func (n *Node) RangeFilter(field string, r Range) *Node {
	n.Field("range").Set(field, r.node())
	return n
}

// RangeFacet sets facets.<name>.range.<field> to a list of range
// objects. No ranges means no facet is added.
func (n *Node) RangeFacet(name, field string, ranges ...Range) *Node {
	if len(ranges) == 0 {
		return n
	}
	f := n.Field("facets").Field(name).Field("range")
	for _, r := range ranges {
		f.Append(field, r.node())
	}
	return n
}

// TermsFacet sets facets.<name>.terms for the field. size <= 0 requests
// all terms instead of a fixed count. Extra parameters are merged in
// sorted key order so the payload is deterministic.
func (n *Node) TermsFacet(name, field string, size int, extra map[string]interface{}) *Node {
	t := n.Field("facets").Field(name).Field("terms")
	t.Set("field", field)
	if size <= 0 {
		t.Set("all_terms", true)
	} else {
		t.Set("size", size)
	}
	mergeSorted(t, extra)
	return n
}

// DateHistogramFacet sets facets.<name>.date_histogram. An empty
// interval defaults to "hour".
func (n *Node) DateHistogramFacet(name, field, interval string, extra map[string]interface{}) *Node {
	if interval == "" {
		interval = "hour"
	}
	h := n.Field("facets").Field(name).Field("date_histogram")
	h.Set("field", field)
	h.Set("interval", interval)
	mergeSorted(h, extra)
	return n
}

// StatsFacet sets facets.<name>.statistical.field = field.
func (n *Node) StatsFacet(name, field string) *Node {
	n.Field("facets").Field(name).Field("statistical").Set("field", field)
	return n
}

// Sort appends {<field>: {"order": order}} to the sort list. An empty
// order means ascending.
func (n *Node) Sort(field, order string) *Node {
	if order == "" {
		order = "asc"
	}
	clause := NewNode()
	clause.Field(field).Set("order", order)
	n.Append("sort", clause)
	return n
}

// ScriptSort appends a script-sort clause to the sort list, omitting
// params when empty. An empty order means ascending.
func (n *Node) ScriptSort(script, typ string, params map[string]interface{}, order string) *Node {
	if order == "" {
		order = "asc"
	}
	clause := NewNode()
	s := clause.Field("_script")
	s.Set("script", script)
	s.Set("type", typ)
	if len(params) > 0 {
		mergeSorted(s.Field("params"), params)
	}
	s.Set("order", order)
	n.Append("sort", clause)
	return n
}

// Unsorted removes the sort field entirely.
func (n *Node) Unsorted() *Node {
	return n.Delete("sort")
}

// AndTermFilter appends a {"term": {field: value}} clause to the "and"
// list, creating the list on first use.
func (n *Node) AndTermFilter(field string, value interface{}) *Node {
	return n.Append("and", termClause(field, value))
}

// OrTermFilter appends a {"term": {field: value}} clause to the "or"
// list, creating the list on first use.
func (n *Node) OrTermFilter(field string, value interface{}) *Node {
	return n.Append("or", termClause(field, value))
}

// AndTerms builds a fresh root whose "and" list holds one term clause
// per non-absent pair, in input order.
func AndTerms(terms ...Term) *Node {
	return termList("and", terms)
}

// OrTerms builds a fresh root whose "or" list holds one term clause per
// non-absent pair, in input order.
func OrTerms(terms ...Term) *Node {
	return termList("or", terms)
}

func termList(op string, terms []Term) *Node {
	n := NewNode()
	for _, t := range terms {
		if absent(t.Value) {
			continue
		}
		n.Append(op, termClause(t.Field, t.Value))
	}
	return n
}

func mergeSorted(n *Node, extra map[string]interface{}) {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n.Set(k, extra[k])
	}
}
