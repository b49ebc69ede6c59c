package export

import (
	"encoding/json"
	"fmt"
)

// JSONExporter renders arbitrary documents as indented JSON files.
type JSONExporter struct {
	indent string
}

// NewJSONExporter builds a JSON exporter using two-space indentation.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{indent: "  "}
}

// ContentType reports the MIME type of rendered output.
func (e *JSONExporter) ContentType() string {
	return "application/json"
}

// Render marshals v.
func (e *JSONExporter) Render(v interface{}) ([]byte, error) {
	body, err := json.MarshalIndent(v, "", e.indent)
	if err != nil {
		return nil, fmt.Errorf("render json: %w", err)
	}
	return body, nil
}
