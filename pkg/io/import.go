package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ReadJSON decodes a chart document from r.
//
// ReadJSON returns an error if the JSON is malformed, if a count is negative,
// or if the counts do not match the rows and cols header. It does not close r.
func ReadJSON(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode: %w", err)
	}
	if _, err := doc.Chart(); err != nil {
		return Document{}, fmt.Errorf("invalid chart: %w", err)
	}
	return doc, nil
}

// ImportJSON reads a JSON file at path and returns the decoded document.
// The error wraps the underlying cause with the file path for context.
func ImportJSON(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// UnmarshalChart decodes a document produced by [MarshalChart].
func UnmarshalChart(data []byte) (Document, error) {
	return ReadJSON(bytes.NewReader(data))
}
