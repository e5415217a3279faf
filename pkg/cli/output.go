package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
)

// OutputFormat selects how structured results are printed.
type OutputFormat string

const (
	FormatYAML OutputFormat = "yaml"
	FormatJSON OutputFormat = "json"
	// FormatPretty renders with lipgloss where a command supports it and
	// falls back to YAML otherwise.
	FormatPretty OutputFormat = "pretty"
	FormatRaw    OutputFormat = "raw"
)

// ParseFormat validates s. An empty string selects FormatYAML.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case "":
		return FormatYAML, nil
	case FormatYAML, FormatJSON, FormatPretty, FormatRaw:
		return f, nil
	}
	return "", fmt.Errorf("unsupported output format %q (want yaml, json, pretty or raw)", s)
}

// Output writes result to w in format.
func Output(w io.Writer, result any, format OutputFormat) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case FormatYAML, FormatPretty, "":
		data, err := yaml.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		_, err = w.Write(data)
		return err
	case FormatRaw:
		switch v := result.(type) {
		case []byte:
			_, err := w.Write(v)
			return err
		case string:
			_, err := io.WriteString(w, v)
			return err
		case fmt.Stringer:
			_, err := io.WriteString(w, v.String()+"\n")
			return err
		}
		return Output(w, result, FormatYAML)
	}
	return fmt.Errorf("unsupported output format: %s", format)
}

// Success prints a line prefixed with a check mark.
func Success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "✓ "+format+"\n", args...)
}

// Info prints an informational line.
func Info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "ℹ "+format+"\n", args...)
}

// Warning prints a warning line.
func Warning(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "⚠ "+format+"\n", args...)
}
