// Package importmap holds the specifier-to-path mapping produced by a walk
// and its JSON serialization.
//
// Every registration goes through [ImportMap.SetIfAbsent]: the first write
// for a specifier wins and later writes are no-ops. The check and the write
// happen under one lock, so concurrent directory visits cannot race on a key.
//
// The serialized form is the browser import map document
//
//	{
//	  "imports": {
//	    "a": "./a.js"
//	  }
//	}
//
// with specifiers in sorted order, so unchanged trees produce byte-identical
// output.
package importmap

import (
	"encoding/json"
	"sort"
	"sync"
)

// ImportMap maps specifiers to "./"-prefixed root-relative paths.
// The zero value is not usable; create one with New.
type ImportMap struct {
	mu      sync.RWMutex
	imports map[string]string
}

// New creates an empty ImportMap.
func New() *ImportMap {
	return &ImportMap{imports: make(map[string]string)}
}

// FromMap creates an ImportMap holding a copy of imports.
func FromMap(imports map[string]string) *ImportMap {
	m := New()
	for k, v := range imports {
		m.imports[k] = v
	}
	return m
}

// SetIfAbsent registers spec -> path unless spec is already present or
// empty. It reports whether the registration took effect.
func (m *ImportMap) SetIfAbsent(spec, path string) bool {
	if spec == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.imports[spec]; ok {
		return false
	}
	m.imports[spec] = path
	return true
}

// Get returns the path registered for spec.
func (m *ImportMap) Get(spec string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.imports[spec]
	return p, ok
}

// Len returns the number of specifiers.
func (m *ImportMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.imports)
}

// Keys returns all specifiers in sorted order.
func (m *ImportMap) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.imports))
	for k := range m.imports {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Imports returns a copy of the mapping.
func (m *ImportMap) Imports() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.imports))
	for k, v := range m.imports {
		out[k] = v
	}
	return out
}

type document struct {
	Imports map[string]string `json:"imports"`
}

// MarshalJSON encodes the map as {"imports": {...}}.
// encoding/json sorts map keys, which keeps the output deterministic.
func (m *ImportMap) MarshalJSON() ([]byte, error) {
	return json.Marshal(document{Imports: m.Imports()})
}

// UnmarshalJSON replaces the contents with the "imports" field of data.
func (m *ImportMap) UnmarshalJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.Imports == nil {
		doc.Imports = make(map[string]string)
	}
	m.mu.Lock()
	m.imports = doc.Imports
	m.mu.Unlock()
	return nil
}
