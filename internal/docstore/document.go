package docstore

import (
	"errors"
	"fmt"
)

const (
	// Collection is the collection (or table) holding configuration documents.
	Collection = "config"
	// RuntimeDocumentID identifies the runtime configuration document.
	RuntimeDocumentID = "runtime"

	idField     = "_id"
	serverField = "server"
	publicField = "public"
)

// Document is the normalized runtime configuration document.
// Server and Public are never nil after ParseDocument.
type Document struct {
	ID     string
	Server map[string]any
	Public map[string]any
}

// ParseDocument extracts the server and public partitions from a raw document.
// Missing partitions default to empty maps. A partition that is present but is
// not an object is dropped and reported through an error wrapping
// ErrMalformedDocument; the returned Document is usable either way.
func ParseDocument(raw map[string]any) (Document, error) {
	doc := Document{
		Server: map[string]any{},
		Public: map[string]any{},
	}
	if raw == nil {
		return doc, nil
	}

	if id, ok := raw[idField]; ok && id != nil {
		doc.ID = fmt.Sprint(id)
	}

	var errs []error
	if server, err := partition(raw, serverField); err != nil {
		errs = append(errs, err)
	} else if server != nil {
		doc.Server = server
	}
	if public, err := partition(raw, publicField); err != nil {
		errs = append(errs, err)
	} else if public != nil {
		doc.Public = public
	}

	if len(errs) > 0 {
		return doc, fmt.Errorf("%w: %w", ErrMalformedDocument, errors.Join(errs...))
	}
	return doc, nil
}

// Raw converts the document back into its stored shape.
func (d Document) Raw() map[string]any {
	id := d.ID
	if id == "" {
		id = RuntimeDocumentID
	}
	return map[string]any{
		idField:     id,
		serverField: cloneMap(d.Server),
		publicField: cloneMap(d.Public),
	}
}

func partition(raw map[string]any, field string) (map[string]any, error) {
	value, ok := raw[field]
	if !ok || value == nil {
		return nil, nil
	}
	m, ok := asMap(value)
	if !ok {
		return nil, fmt.Errorf("%q partition must be an object, got %T", field, value)
	}
	return m, nil
}

// asMap accepts the map shapes produced by the JSON and YAML decoders.
func asMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return cloneMap(v), true
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[fmt.Sprint(k)] = normalizeValue(val)
		}
		return out, true
	default:
		return nil, false
	}
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[string]any, map[any]any:
		m, _ := asMap(v)
		return m
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}

func cloneMap(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = normalizeValue(v)
	}
	return out
}
