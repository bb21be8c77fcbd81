package helpers

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
)

// MarshalJson encodes v as indented JSON without HTML escaping, so paths and
// load statements stay readable.
func MarshalJson(v any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	err := enc.Encode(v)
	return buf.Bytes(), err
}

// WriteJsonFile writes v to path, creating parent directories.
func WriteJsonFile(path string, v any) error {
	data, err := MarshalJson(v)
	if err != nil {
		return err
	}
	err = os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
