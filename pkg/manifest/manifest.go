package manifest

import (
	"path"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/matzehuels/esmap/pkg/errors"
)

// Filename is the manifest file the walker looks for in every directory.
const Filename = "package.json"

// Manifest holds the fields of a package.json relevant to import maps.
type Manifest struct {
	Name    string
	Main    string
	Exports Value
}

// Registration is one specifier a manifest contributes for its directory.
type Registration struct {
	Specifier string
	Path      string
}

// Parse decodes a package.json document. Unknown fields are ignored and
// fields of the wrong type are treated as absent.
func Parse(data []byte) (*Manifest, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "malformed JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "manifest must be a JSON object")
	}

	m := &Manifest{}
	doc.ForEach(func(key, value gjson.Result) bool {
		switch key.String() {
		case "name":
			if value.Type == gjson.String {
				m.Name = value.Str
			}
		case "main":
			if value.Type == gjson.String {
				m.Main = value.Str
			}
		case "exports":
			m.Exports = decode(value)
		}
		return true
	})
	return m, nil
}

func decode(r gjson.Result) Value {
	switch {
	case r.Type == gjson.String:
		if r.Str == "" {
			return Value{}
		}
		return Value{Kind: KindPath, Path: r.Str}
	case r.IsArray():
		v := Value{Kind: KindFallbacks}
		r.ForEach(func(_, item gjson.Result) bool {
			v.Entries = append(v.Entries, Entry{Value: decode(item)})
			return true
		})
		return v
	case r.IsObject():
		v := Value{Kind: KindConditions}
		r.ForEach(func(key, item gjson.Result) bool {
			k := key.String()
			if strings.HasPrefix(k, ".") {
				v.Kind = KindSubpaths
			}
			v.Entries = append(v.Entries, Entry{Key: k, Value: decode(item)})
			return true
		})
		return v
	}
	return Value{}
}

// Registrations lists the specifiers m contributes for the directory whose
// specifier is dir, in the order they must be applied: main first, then the
// exports root, then subpath exports. Paths are passed through normalize.
// Callers apply them with first-write-wins, so an earlier registration for
// the same specifier always prevails.
//
// The root directory has the empty specifier; it contributes no main or
// root export entry, and its subpaths register without the "./" prefix.
func (m *Manifest) Registrations(dir string, normalize func(string) string) []Registration {
	if m == nil {
		return nil
	}
	var out []Registration

	if m.Main != "" && dir != "" {
		out = append(out, Registration{Specifier: dir, Path: normalize(m.Main)})
	}
	if p, ok := m.Exports.Root().Resolve(); ok && dir != "" {
		out = append(out, Registration{Specifier: dir, Path: normalize(p)})
	}
	for _, e := range m.Exports.Subpaths() {
		// Import maps have no pattern syntax.
		if strings.Contains(e.Key, "*") {
			continue
		}
		p, ok := e.Value.Resolve()
		if !ok {
			continue
		}
		spec := SubpathSpecifier(dir, e.Key)
		if spec == "" {
			continue
		}
		out = append(out, Registration{Specifier: spec, Path: normalize(p)})
	}
	return out
}

// SubpathSpecifier joins a directory specifier and an exports subpath key:
// ("pkg", "./feature") gives "pkg/feature"; ("", "./feature") gives "feature".
//
// At the root the leading slash is dropped: "/feature" is a URL path in an
// import map, not a bare specifier.
func SubpathSpecifier(dir, key string) string {
	rest := strings.TrimPrefix(key, ".")
	if dir == "" {
		return strings.TrimPrefix(rest, "/")
	}
	return dir + rest
}

// RelativeTo returns a normalization function that maps a path declared in
// the manifest of dir to a root-relative "./" path value.
func RelativeTo(dir string) func(string) string {
	return func(p string) string {
		return "./" + path.Join(dir, p)
	}
}
