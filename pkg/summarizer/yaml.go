package summarizer

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// NewYAMLFormatter returns a formatter that marshals the Summary as YAML.
func NewYAMLFormatter() Formatter {
	return FormatFunc(func(summary *Summary) ([]byte, error) {
		data, err := yaml.Marshal(summary)
		if err != nil {
			return nil, fmt.Errorf("marshal summary: %w", err)
		}
		return data, nil
	})
}
