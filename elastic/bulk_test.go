package elastic

import (
	"encoding/json"
	"testing"
)

func TestIndexOp(t *testing.T) {
	t.Run("builds the action and source pair", func(t *testing.T) {
		lines, err := IndexOp("logstash", "event", "doc-1", map[string]interface{}{"msg": "hi"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(lines) != 2 {
			t.Fatalf("expected 2 lines, got %d", len(lines))
		}
		var action map[string]map[string]interface{}
		if err := json.Unmarshal([]byte(lines[0]), &action); err != nil {
			t.Fatalf("bad action line: %v", err)
		}
		meta := action["index"]
		if meta["_index"] != "logstash" || meta["_type"] != "event" || meta["_id"] != "doc-1" {
			t.Errorf("unexpected metadata: %v", meta)
		}
		if lines[1] != `{"msg":"hi"}` {
			t.Errorf("unexpected source line: %s", lines[1])
		}
	})

	t.Run("an empty id gets a generated one", func(t *testing.T) {
		first, err := IndexOp("a", "t", "", map[string]interface{}{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := IndexOp("a", "t", "", map[string]interface{}{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		id := func(line string) string {
			var action map[string]map[string]interface{}
			if err := json.Unmarshal([]byte(line), &action); err != nil {
				t.Fatalf("bad action line: %v", err)
			}
			s, _ := action["index"]["_id"].(string)
			return s
		}
		a, b := id(first[0]), id(second[0])
		if a == "" || b == "" {
			t.Fatal("expected generated ids")
		}
		if a == b {
			t.Error("expected distinct generated ids")
		}
	})

	t.Run("unencodable source is an error", func(t *testing.T) {
		if _, err := IndexOp("a", "t", "1", func() {}); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestDeleteOp(t *testing.T) {
	line, err := DeleteOp("logstash", "event", "doc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var action map[string]map[string]interface{}
	if err := json.Unmarshal([]byte(line), &action); err != nil {
		t.Fatalf("bad action line: %v", err)
	}
	meta := action["delete"]
	if meta["_index"] != "logstash" || meta["_type"] != "event" || meta["_id"] != "doc-1" {
		t.Errorf("unexpected metadata: %v", meta)
	}
}
