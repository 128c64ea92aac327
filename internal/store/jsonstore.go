package store

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
)

// JSONStore reads and writes JSON documents under a data directory.
type JSONStore struct {
	Root string // e.g. "data"
}

func NewJSONStore(root string) *JSONStore {
	return &JSONStore{Root: root}
}

func (s *JSONStore) Path(rel string) string {
	return filepath.Join(s.Root, rel)
}

func (s *JSONStore) Exists(rel string) bool {
	_, err := os.Stat(s.Path(rel))
	return err == nil
}

// WriteRaw writes body to rel, creating parent directories. With pretty set,
// valid JSON is re-indented first; anything else is written as is.
func (s *JSONStore) WriteRaw(rel string, body []byte, pretty bool) error {
	path := s.Path(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	if pretty {
		buf := &bytes.Buffer{}
		if err := json.Indent(buf, body, "", "  "); err == nil {
			buf.WriteByte('\n')
			body = buf.Bytes()
		}
	}

	return os.WriteFile(path, body, 0o644)
}

func (s *JSONStore) ReadRaw(rel string) ([]byte, error) {
	return os.ReadFile(s.Path(rel))
}

// WriteJSON marshals v with indentation and writes it to rel.
func (s *JSONStore) WriteJSON(rel string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return s.WriteRaw(rel, append(b, '\n'), false)
}

// ReadJSON decodes rel into v.
func (s *JSONStore) ReadJSON(rel string, v any) error {
	b, err := s.ReadRaw(rel)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
