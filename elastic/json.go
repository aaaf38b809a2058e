package elastic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ToJSON serializes the node's mapping and full subtree to JSON text in
// insertion order.
func (n *Node) ToJSON() (string, error) {
	b, err := n.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// MarshalJSON implements json.Marshaler, emitting fields in the order
// they were set. Scalar leaves go through encoding/json; time.Time
// values are rendered as RFC 3339 strings.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeNode(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeNode(buf *bytes.Buffer, n *Node) error {
	buf.WriteByte('{')
	for i, f := range n.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.name)
		if err != nil {
			return fmt.Errorf("failed to encode field name %q: %w", f.name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		if err := writeValue(buf, f.value); err != nil {
			return fmt.Errorf("field %q: %w", f.name, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeValue(buf *bytes.Buffer, v Value) error {
	switch v.Kind {
	case Object:
		if v.Node == nil {
			buf.WriteString("{}")
			return nil
		}
		return writeNode(buf, v.Node)
	case List:
		buf.WriteByte('[')
		for i, el := range v.List {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, el); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	default:
		return writeScalar(buf, v.Scalar)
	}
}

func writeScalar(buf *bytes.Buffer, v interface{}) error {
	switch t := v.(type) {
	case time.Time:
		v = t.Format(time.RFC3339)
	case *time.Time:
		if t != nil {
			v = t.Format(time.RFC3339)
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}
	buf.Write(b)
	return nil
}
