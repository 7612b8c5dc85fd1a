package runtimeconfig

// Status describes how the snapshot's store data was obtained.
type Status string

const (
	StatusLoaded      Status = "loaded"
	StatusNotFound    Status = "not_found"
	StatusDisabled    Status = "disabled"
	StatusUnavailable Status = "unavailable"
	StatusMalformed   Status = "malformed"
)

// Snapshot holds the resolved configuration. It is never modified after
// Initialize returns.
type Snapshot struct {
	server  map[string]any
	public  map[string]any
	environ map[string]string
	status  Status
	source  string
}

// PublicConfig returns a copy of the effective public configuration.
// A nil Snapshot yields an empty, non-nil map.
func (s *Snapshot) PublicConfig() map[string]any {
	if s == nil || s.public == nil {
		return map[string]any{}
	}
	return cloneMap(s.public)
}

// ServerValue looks up key in the server partition.
func (s *Snapshot) ServerValue(key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	value, ok := s.server[key]
	return value, ok
}

// ServerSecret resolves key from the server partition, then from the
// environment captured at initialization, then falls back to def.
func (s *Snapshot) ServerSecret(key string, def any) any {
	if value, ok := s.ServerValue(key); ok {
		return value
	}
	if s != nil {
		if value, ok := s.environ[key]; ok {
			return value
		}
	}
	return def
}

// Status reports the outcome of the store fetch.
func (s *Snapshot) Status() Status {
	if s == nil {
		return StatusDisabled
	}
	return s.status
}

// Source names the store backend the snapshot was read from.
func (s *Snapshot) Source() string {
	if s == nil {
		return ""
	}
	return s.source
}

// PublicLen returns the number of public keys.
func (s *Snapshot) PublicLen() int {
	if s == nil {
		return 0
	}
	return len(s.public)
}

// ServerLen returns the number of server keys.
func (s *Snapshot) ServerLen() int {
	if s == nil {
		return 0
	}
	return len(s.server)
}

func cloneMap(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return cloneMap(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
