package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStore serves a single runtime document from a YAML or JSON file.
// It is meant for local development where no database is provisioned.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a FileStore reading from path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Name implements Store.
func (s *FileStore) Name() string { return "file" }

// Fetch reads the file on every call. The stored document matches id when its
// "_id" equals id or is absent.
func (s *FileStore) Fetch(ctx context.Context, id string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := ReadDocumentFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if stored, ok := doc[idField]; ok && stored != nil && fmt.Sprint(stored) != id {
		return nil, ErrNotFound
	}
	return doc, nil
}

// Put overwrites the file with doc, keeping the file's format.
func (s *FileStore) Put(ctx context.Context, id string, doc map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := cloneMap(doc)
	stored[idField] = id

	var (
		data []byte
		err  error
	)
	if isJSONPath(s.path) {
		data, err = json.MarshalIndent(stored, "", "  ")
	} else {
		data, err = yaml.Marshal(stored)
	}
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create document dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write document file: %w", err)
	}
	return nil
}

// Ping checks that the file is readable.
func (s *FileStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := os.Stat(s.path)
	return err
}

// Close implements Store.
func (s *FileStore) Close(context.Context) error { return nil }

// ReadDocumentFile decodes a YAML or JSON document file. JSON is parsed by the
// YAML decoder as well, so both formats share one code path.
func ReadDocumentFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrMalformedDocument, filepath.Base(path), err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return cloneMap(raw), nil
}

func isJSONPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
