// Package render serializes a synthesized configuration for the bundler.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is an output encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("unknown output format %q, expected 'json' or 'yaml'", s)
}

// Encode writes v to w in format f. JSON is indented by two spaces and does
// not escape HTML characters, since loader options carry raw patterns.
func Encode(w io.Writer, v any, f Format) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode configuration as json: %w", err)
		}
		return nil
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode configuration as yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to flush yaml output: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown output format %q", f)
}

// Bytes is Encode into a byte slice.
func Bytes(v any, f Format) ([]byte, error) {
	var sb strings.Builder
	if err := Encode(&sb, v, f); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}
