package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadRequest decodes a YAML or JSON request file into v. The path "-"
// reads from stdin.
func LoadRequest(path string, v any) error {
	if path == "-" {
		return ReadRequest(os.Stdin, v)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read request: %w", err)
	}
	return ParseRequest(data, path, v)
}

// ReadRequest decodes a request of unknown format from r.
func ReadRequest(r io.Reader, v any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read request: %w", err)
	}
	return ParseRequest(data, "", v)
}

// ParseRequest decodes data by the extension of filename, trying JSON and
// then YAML when the extension says nothing. Unknown fields are rejected.
func ParseRequest(data []byte, filename string, v any) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return decodeYAML(data, v)
	case ".json":
		return decodeJSON(data, v)
	}
	if err := decodeJSON(data, v); err == nil {
		return nil
	}
	if err := decodeYAML(data, v); err != nil {
		return fmt.Errorf("failed to parse request (tried JSON and YAML): %w", err)
	}
	return nil
}

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

func decodeYAML(data []byte, v any) error {
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && err != io.EOF {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}
