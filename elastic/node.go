package elastic

import (
	"net/url"
	"sort"
)

// Kind discriminates what a field slot on a Node holds.
type Kind int

const (
	// Scalar is a leaf value: string, number, bool, nil, time.Time.
	Scalar Kind = iota
	// List is an ordered sequence of values.
	List
	// Object is a nested child node.
	Object
)

// Value is a tagged slot in a node's field mapping. Exactly one of
// Scalar, List or Node is meaningful, selected by Kind.
type Value struct {
	Kind   Kind
	Scalar interface{}
	List   []Value
	Node   *Node
}

// Term is an ordered field/value pair. Constructors that care about
// input order (NewNode, AndTerms, OrTerms) take Terms instead of a map,
// since Go map iteration order is unspecified.
type Term struct {
	Field string
	Value interface{}
}

type entry struct {
	name  string
	value Value
}

// Node is one node in a query document tree: an insertion-ordered
// mapping from field name to Value. Non-root nodes keep a back-reference
// to the node holding them so they can replace themselves in place
// (see ReplaceWithList). Roots created by NewQuery additionally carry a
// client for Search and Scan.
//
// A Node is not safe for concurrent use.
type Node struct {
	fields []entry
	index  map[string]int

	parent *Node
	key    string

	client *Client
}

// NewNode creates a node and assigns the given pairs in order. Values
// that are maps, slices or nodes recursively become child structure.
func NewNode(fields ...Term) *Node {
	n := &Node{index: make(map[string]int)}
	for _, f := range fields {
		n.Set(f.Field, f.Value)
	}
	return n
}

// NewQuery creates a root node bound to a search service, so that
// Search and Scan can be called on it directly. Index and doctype may
// be empty.
func NewQuery(server string, index, doctype []string, opts ...ClientOption) *Node {
	n := NewNode()
	all := append([]ClientOption{WithIndex(index...), WithType(doctype...)}, opts...)
	n.client = NewClient(server, all...)
	return n
}

// valueOf normalizes an arbitrary assigned value into a tagged Value.
// Maps become child nodes with keys assigned in sorted order, since the
// source map carries no order of its own.
func valueOf(v interface{}) Value {
	switch t := v.(type) {
	case Value:
		return t
	case *Node:
		return Value{Kind: Object, Node: t}
	case []Value:
		return Value{Kind: List, List: t}
	case []interface{}:
		list := make([]Value, len(t))
		for i, el := range t {
			list[i] = valueOf(el)
		}
		return Value{Kind: List, List: list}
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		child := NewNode()
		for _, k := range keys {
			child.Set(k, t[k])
		}
		return Value{Kind: Object, Node: child}
	default:
		return Value{Kind: Scalar, Scalar: v}
	}
}

// put stores a value under name, preserving the position of an existing
// entry and appending otherwise.
func (n *Node) put(name string, v Value) {
	if i, ok := n.index[name]; ok {
		n.fields[i].value = v
		return
	}
	n.index[name] = len(n.fields)
	n.fields = append(n.fields, entry{name: name, value: v})
}

// Set assigns a value under the field name and returns the node for
// chaining. A *Node value gets its back-reference repointed here so a
// later ReplaceWithList on it still works.
func (n *Node) Set(name string, v interface{}) *Node {
	n.attach(name, valueOf(v))
	return n
}

// Field returns the child node under name, creating and attaching an
// empty one on first access. This is the auto-vivification that lets a
// deep path be opened in one expression:
//
//	q.Field("query").Field("filtered").Field("filter").TermFilter("state", "open")
//
// Repeated access to the same field returns the same node. A slot
// currently holding a scalar or list is overwritten by the new node.
func (n *Node) Field(name string) *Node {
	if i, ok := n.index[name]; ok {
		if v := n.fields[i].value; v.Kind == Object && v.Node != nil {
			return v.Node
		}
	}
	child := NewNode()
	child.parent = n
	child.key = name
	n.put(name, Value{Kind: Object, Node: child})
	return child
}

// Get returns the value stored under name.
func (n *Node) Get(name string) (Value, bool) {
	i, ok := n.index[name]
	if !ok {
		return Value{}, false
	}
	return n.fields[i].value, true
}

// Has reports whether the field is currently set on this node,
// including fields created by auto-vivification.
func (n *Node) Has(name string) bool {
	_, ok := n.index[name]
	return ok
}

// Delete removes the field entirely and returns the node for chaining.
// Removing an absent field is a no-op.
func (n *Node) Delete(name string) *Node {
	i, ok := n.index[name]
	if !ok {
		return n
	}
	n.fields = append(n.fields[:i], n.fields[i+1:]...)
	delete(n.index, name)
	for j := i; j < len(n.fields); j++ {
		n.index[n.fields[j].name] = j
	}
	return n
}

// Len returns the number of fields set on this node.
func (n *Node) Len() int {
	return len(n.fields)
}

// Keys returns the field names in insertion order.
func (n *Node) Keys() []string {
	keys := make([]string, len(n.fields))
	for i, f := range n.fields {
		keys[i] = f.name
	}
	return keys
}

// Append appends a value to the list under name, creating the list on
// first use. A slot holding anything other than a list, including an
// object node vivified earlier at the same path, is discarded and
// replaced by a fresh list. This reconciles "every undefined field
// defaults to an object" with "the caller actually wanted an array".
func (n *Node) Append(name string, v interface{}) *Node {
	if i, ok := n.index[name]; ok {
		if n.fields[i].value.Kind == List {
			n.fields[i].value.List = append(n.fields[i].value.List, valueOf(v))
			return n
		}
	}
	n.put(name, Value{Kind: List, List: []Value{valueOf(v)}})
	return n
}

// SetAt sets the i'th element of the list under name, replacing a
// non-list slot with a fresh list first and growing it with nil
// elements as needed. Negative indices are ignored.
func (n *Node) SetAt(name string, i int, v interface{}) *Node {
	if i < 0 {
		return n
	}
	var list []Value
	if j, ok := n.index[name]; ok && n.fields[j].value.Kind == List {
		list = n.fields[j].value.List
	}
	for len(list) <= i {
		list = append(list, Value{Kind: Scalar})
	}
	list[i] = valueOf(v)
	n.put(name, Value{Kind: List, List: list})
	return n
}

// ReplaceWithList asks this node's parent to overwrite the slot that
// currently holds it with a list of the given values. Returns
// ErrNoParent when the node is a root; becoming a list requires a
// holder to rewrite.
func (n *Node) ReplaceWithList(vals ...interface{}) error {
	if n.parent == nil {
		return ErrNoParent
	}
	list := make([]Value, len(vals))
	for i, v := range vals {
		list[i] = valueOf(v)
	}
	n.parent.put(n.key, Value{Kind: List, List: list})
	return nil
}

// Search serializes the tree and submits it as a search request through
// the client this root was created with. A node with no client yields
// an error-state cursor, consistent with how transport failures are
// reported.
func (n *Node) Search(params url.Values) *Results {
	if n.client == nil {
		return NewResults(nil, 0)
	}
	return n.client.Search(n, params)
}

// Scan serializes the tree and submits it as a scan request, returning
// a cursor that will follow the server-side scroll. fetchSize <= 0 and
// an empty keepAlive fall back to DefaultFetchSize and DefaultKeepAlive.
func (n *Node) Scan(fetchSize int, keepAlive string, params url.Values) *Results {
	if n.client == nil {
		return NewResults(nil, 0)
	}
	return n.client.Scan(n, fetchSize, keepAlive, params)
}
