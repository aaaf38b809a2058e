package elastic

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// IndexOp builds the action/metadata and source lines for one bulk
// index operation. An empty id gets a generated UUID so callers can
// bulk-load documents without minting identifiers themselves.
func IndexOp(index, doctype, id string, source interface{}) ([]string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	action, err := json.Marshal(map[string]interface{}{
		"index": map[string]interface{}{
			"_index": index,
			"_type":  doctype,
			"_id":    id,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode bulk action: %w", err)
	}
	src, err := json.Marshal(source)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bulk source for %q: %w", id, err)
	}
	return []string{string(action), string(src)}, nil
}

// DeleteOp builds the action/metadata line for one bulk delete.
func DeleteOp(index, doctype, id string) (string, error) {
	action, err := json.Marshal(map[string]interface{}{
		"delete": map[string]interface{}{
			"_index": index,
			"_type":  doctype,
			"_id":    id,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode bulk delete: %w", err)
	}
	return string(action), nil
}
