// Package payload handles the raw JSON shapes statelet pipelines consume:
// splitting array payloads into elements and extracting entity lists from
// enveloped (keyed) responses.
//
// This package is internal to statelet. The pipeline layer decides what a
// payload is expected to look like; this package only knows how to take it
// apart.
package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// SplitList decodes raw as a JSON array and returns its elements.
//
// Empty, whitespace-only, and JSON null payloads are treated as empty
// lists, never as errors: a collection endpoint with nothing to return is
// a normal outcome. Any other non-array payload is an error.
func SplitList(raw json.RawMessage) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []json.RawMessage{}, nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		return nil, fmt.Errorf("payload is not a JSON array: %w", err)
	}
	if elements == nil {
		elements = []json.RawMessage{}
	}
	return elements, nil
}

// ExtractKeyed returns the value stored under key in the enveloped
// response raw.
//
// key uses dot notation to navigate nested objects: "data.results" walks
// {"data": {"results": [...]}}. Each segment must resolve to an object
// member; a missing segment or a non-object intermediate value is an
// error so callers can tell a malformed envelope from an empty list.
func ExtractKeyed(raw json.RawMessage, key string) (json.RawMessage, error) {
	current := bytes.TrimSpace(raw)
	if len(current) == 0 {
		return nil, fmt.Errorf("empty response, expected object with key %q", key)
	}

	for _, segment := range strings.Split(key, ".") {
		var object map[string]json.RawMessage
		if err := json.Unmarshal(current, &object); err != nil {
			return nil, fmt.Errorf("response is not an object at %q: %w", segment, err)
		}
		value, ok := object[segment]
		if !ok {
			return nil, fmt.Errorf("response has no key %q", segment)
		}
		current = value
	}
	return current, nil
}
