package manifest

import "strings"

// Kind discriminates the variants of an exports Value.
type Kind int

const (
	KindAbsent     Kind = iota // no usable value
	KindPath                   // a plain file path
	KindConditions             // condition name -> value
	KindSubpaths               // "." or "./sub" -> value
	KindFallbacks              // array of alternatives
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindPath:
		return "path"
	case KindConditions:
		return "conditions"
	case KindSubpaths:
		return "subpaths"
	case KindFallbacks:
		return "fallbacks"
	default:
		return "absent"
	}
}

// Value is a decoded exports value.
type Value struct {
	Kind    Kind
	Path    string  // set for KindPath
	Entries []Entry // ordered; set for conditions, subpaths and fallbacks
}

// Entry is one key/value pair of an exports object, in document order.
// Fallback entries have an empty key.
type Entry struct {
	Key   string
	Value Value
}

// RootMarker is the exports key designating the package root.
const RootMarker = "."

// conditionOrder is the precedence used to pick a concrete path from a
// conditions object.
var conditionOrder = []string{"default", "browser", "import", "node"}

// Lookup returns the value stored under key.
func (v Value) Lookup(key string) (Value, bool) {
	for _, e := range v.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Root returns the candidate for the package root: the "." entry of a
// subpath map, or the value itself otherwise.
func (v Value) Root() Value {
	if v.Kind != KindSubpaths {
		return v
	}
	root, _ := v.Lookup(RootMarker)
	return root
}

// Subpaths returns the "./"-prefixed entries of a subpath map in document
// order. The root marker is not included.
func (v Value) Subpaths() []Entry {
	if v.Kind != KindSubpaths {
		return nil
	}
	var out []Entry
	for _, e := range v.Entries {
		if strings.HasPrefix(e.Key, "./") {
			out = append(out, e)
		}
	}
	return out
}

// Resolve reduces v to a single file path.
func (v Value) Resolve() (string, bool) {
	switch v.Kind {
	case KindPath:
		return v.Path, v.Path != ""
	case KindSubpaths:
		return v.Root().Resolve()
	case KindFallbacks:
		return firstResolved(v.Entries)
	case KindConditions:
		for _, cond := range conditionOrder {
			if c, ok := v.Lookup(cond); ok {
				if p, ok := c.Resolve(); ok {
					return p, true
				}
			}
		}
		return firstResolved(v.Entries)
	}
	return "", false
}

func firstResolved(entries []Entry) (string, bool) {
	for _, e := range entries {
		if p, ok := e.Value.Resolve(); ok {
			return p, true
		}
	}
	return "", false
}
