package elastic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// ParseJSON decodes a JSON object into a node tree, preserving the
// document's field order so that serializing the result reproduces the
// input layout. Numbers are kept as json.Number to survive the round
// trip unchanged.
func ParseJSON(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to parse query document: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("query document must be a JSON object, got %v", tok)
	}
	n, err := parseObject(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after query document")
	}
	return n, nil
}

func parseObject(dec *json.Decoder) (*Node, error) {
	n := NewNode()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to parse object key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is not a string: %v", tok)
		}
		v, err := parseValue(dec)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		n.attach(key, v)
	}
	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("unterminated object: %w", err)
	}
	return n, nil
}

func parseList(dec *json.Decoder) (Value, error) {
	list := []Value{}
	for dec.More() {
		v, err := parseValue(dec)
		if err != nil {
			return Value{}, err
		}
		list = append(list, v)
	}
	// Consume the closing bracket.
	if _, err := dec.Token(); err != nil {
		return Value{}, fmt.Errorf("unterminated array: %w", err)
	}
	return Value{Kind: List, List: list}, nil
}

func parseValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, fmt.Errorf("failed to parse value: %w", err)
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			child, err := parseObject(dec)
			if err != nil {
				return Value{}, err
			}
			return Value{Kind: Object, Node: child}, nil
		case '[':
			return parseList(dec)
		default:
			return Value{}, fmt.Errorf("unexpected delimiter %v", t)
		}
	default:
		return Value{Kind: Scalar, Scalar: t}, nil
	}
}

// attach stores a parsed value, wiring up the back-reference when it is
// a child node.
func (n *Node) attach(name string, v Value) {
	if v.Kind == Object && v.Node != nil {
		v.Node.parent = n
		v.Node.key = name
	}
	n.put(name, v)
}
