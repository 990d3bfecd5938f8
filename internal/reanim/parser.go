package reanim

import (
	"encoding/xml"
	"fmt"
	"os"
)

// ParseReanimFile reads and parses a Reanim file from disk.
func ParseReanimFile(path string) (*ReanimXML, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reanim file '%s': %w", path, err)
	}

	parsed, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse '%s': %w", path, err)
	}
	return parsed, nil
}

// Parse parses Reanim content. Reanim files have no root element, so the
// content is wrapped in <reanim> before decoding.
func Parse(data []byte) (*ReanimXML, error) {
	wrapped := make([]byte, 0, len(data)+len("<reanim></reanim>"))
	wrapped = append(wrapped, "<reanim>"...)
	wrapped = append(wrapped, data...)
	wrapped = append(wrapped, "</reanim>"...)

	var parsed ReanimXML
	if err := xml.Unmarshal(wrapped, &parsed); err != nil {
		return nil, fmt.Errorf("invalid reanim XML: %w", err)
	}
	if parsed.FPS <= 0 {
		return nil, fmt.Errorf("invalid reanim fps %d", parsed.FPS)
	}
	return &parsed, nil
}
