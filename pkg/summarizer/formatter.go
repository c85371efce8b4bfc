package summarizer

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Formatter defines the interface for formatting a Summary.
type Formatter interface {
	// Format converts a Summary to its file contents.
	Format(summary *Summary) ([]byte, error)
}

// FormatFunc is a function adapter for the Formatter interface.
type FormatFunc func(summary *Summary) ([]byte, error)

// Format implements the Formatter interface.
func (f FormatFunc) Format(summary *Summary) ([]byte, error) {
	return f(summary)
}

// ForPath picks the formatter matching the report file extension.
func ForPath(path string) (Formatter, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return NewMarkdownFormatter(), nil
	case ".yaml", ".yml":
		return NewYAMLFormatter(), nil
	}
	return nil, fmt.Errorf("unsupported report format %q (use .md or .yaml)", filepath.Ext(path))
}
