package onnxmodel

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"
)

// maxLabelLine bounds a single label line.
const maxLabelLine = 1 << 20

// LoadLabels reads one label per line. Trailing blank lines are ignored.
// The error wraps fs.ErrNotExist when the file is missing.
func LoadLabels(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("labels %s: %w", path, err)
	}
	labels, err := ParseLabels(data)
	if err != nil {
		return nil, fmt.Errorf("labels %s: %w", path, err)
	}
	return labels, nil
}

// ParseLabels splits label file contents into lines.
// Lines longer than 1 MiB fail with bufio.ErrTooLong.
func ParseLabels(data []byte) ([]string, error) {
	var labels []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), maxLabelLine)
	for sc.Scan() {
		labels = append(labels, strings.TrimRight(sc.Text(), "\r \t"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", len(labels)+1, err)
	}
	for len(labels) > 0 && labels[len(labels)-1] == "" {
		labels = labels[:len(labels)-1]
	}
	return labels, nil
}
