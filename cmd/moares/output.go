package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/bd808/moar-elasticsearch/elastic"
)

// printResponse writes the full response in the chosen format. For
// ndjson only the matched documents are written, one per line, which
// makes the output pipeable into another bulk load.
func printResponse(w io.Writer, r *elastic.Results, format string) error {
	switch format {
	case "json":
		body, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode response: %w", err)
		}
		_, err = fmt.Fprintln(w, string(body))
		return err
	case "yaml":
		// Round-trip through the JSON form so yaml sees plain maps and
		// slices rather than the cursor type.
		body, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to encode response: %w", err)
		}
		var tree interface{}
		if err := json.Unmarshal(body, &tree); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		out, err := yaml.Marshal(tree)
		if err != nil {
			return fmt.Errorf("failed to encode response as yaml: %w", err)
		}
		_, err = w.Write(out)
		return err
	case "ndjson":
		for _, hit := range r.Hits() {
			if err := printDoc(w, hit); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// printDoc writes one document as a single JSON line.
func printDoc(w io.Writer, doc interface{}) error {
	line, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	_, err = fmt.Fprintln(w, string(line))
	return err
}
