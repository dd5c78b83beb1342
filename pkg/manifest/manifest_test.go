package manifest

import (
	"reflect"
	"testing"

	"github.com/matzehuels/esmap/pkg/errors"
)

func TestParse(t *testing.T) {
	m, err := Parse([]byte(`{
  "name": "widgets",
  "version": "1.0.0",
  "main": "lib/entry.js",
  "exports": {
    ".": "./lib/entry.js",
    "./button": { "import": "./lib/button.mjs", "default": "./lib/button.js" }
  }
}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if m.Name != "widgets" {
		t.Errorf("Name = %q, want %q", m.Name, "widgets")
	}
	if m.Main != "lib/entry.js" {
		t.Errorf("Main = %q, want %q", m.Main, "lib/entry.js")
	}
	if m.Exports.Kind != KindSubpaths {
		t.Fatalf("Exports.Kind = %v, want %v", m.Exports.Kind, KindSubpaths)
	}
	if len(m.Exports.Entries) != 2 {
		t.Errorf("len(Exports.Entries) = %d, want 2", len(m.Exports.Entries))
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"truncated", `{"main": "x.js"`},
		{"not json", `main = x.js`},
		{"array", `["x.js"]`},
		{"string", `"x.js"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if err == nil {
				t.Fatal("Parse succeeded, want error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidManifest) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidManifest)
			}
		})
	}
}

func TestParseIgnoresWrongTypes(t *testing.T) {
	m, err := Parse([]byte(`{"main": 42, "name": ["x"], "exports": null}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if m.Main != "" || m.Name != "" {
		t.Errorf("Main, Name = %q, %q; want empty", m.Main, m.Name)
	}
	if m.Exports.Kind != KindAbsent {
		t.Errorf("Exports.Kind = %v, want absent", m.Exports.Kind)
	}
}

func TestResolveRoot(t *testing.T) {
	tests := []struct {
		name    string
		exports string
		want    string
		wantOK  bool
	}{
		{"plain path", `"./index.js"`, "./index.js", true},
		{"root marker path", `{".": "./main.js"}`, "./main.js", true},
		{"root marker conditions", `{".": {"import": "./esm.js", "require": "./cjs.js"}}`, "./esm.js", true},
		{"bare conditions", `{"node": "./node.js", "browser": "./browser.js"}`, "./browser.js", true},
		{"default wins", `{"import": "./i.js", "node": "./n.js", "browser": "./b.js", "default": "./d.js"}`, "./d.js", true},
		{"browser before import", `{"import": "./i.js", "browser": "./b.js"}`, "./b.js", true},
		{"import before node", `{"node": "./n.js", "import": "./i.js"}`, "./i.js", true},
		{"first in key order", `{"worker": "./w.js", "deno": "./d.js"}`, "./w.js", true},
		{"nested conditions", `{"browser": {"development": "./dev.js", "production": "./prod.js"}}`, "./dev.js", true},
		{"fallback array", `[{"unknown": null}, "./fallback.js"]`, "./fallback.js", true},
		{"precedence skips unresolvable", `{"default": null, "node": "./n.js"}`, "./n.js", true},
		{"subpaths without root", `{"./a": "./a.js"}`, "", false},
		{"null", `null`, "", false},
		{"empty string", `""`, "", false},
		{"all null conditions", `{"import": null, "default": null}`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse([]byte(`{"exports": ` + tt.exports + `}`))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			got, ok := m.Exports.Root().Resolve()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Root().Resolve() = %q, %v; want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestRegistrations(t *testing.T) {
	m, err := Parse([]byte(`{
  "main": "lib/main.js",
  "exports": {
    ".": {"import": "./lib/esm.js"},
    "./feature": {"browser": "./lib/feature.browser.js", "node": "./lib/feature.node.js"},
    "./broken": {"types": null},
    "./icons/*": "./lib/icons/*.js",
    "./utils": "./lib/utils.js"
  }
}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	got := m.Registrations("pkgdir", RelativeTo("pkgdir"))
	want := []Registration{
		{Specifier: "pkgdir", Path: "./pkgdir/lib/main.js"},
		{Specifier: "pkgdir", Path: "./pkgdir/lib/esm.js"},
		{Specifier: "pkgdir/feature", Path: "./pkgdir/lib/feature.browser.js"},
		{Specifier: "pkgdir/utils", Path: "./pkgdir/lib/utils.js"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Registrations =\n%v\nwant\n%v", got, want)
	}
}

func TestRegistrationsAtRoot(t *testing.T) {
	m, err := Parse([]byte(`{"main": "main.js", "exports": {".": "./main.js", "./extra": "./src/extra.js"}}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	got := m.Registrations("", RelativeTo("."))
	want := []Registration{
		{Specifier: "extra", Path: "./src/extra.js"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Registrations = %v, want %v", got, want)
	}
}

func TestRegistrationsEmpty(t *testing.T) {
	var nilManifest *Manifest
	if regs := nilManifest.Registrations("x", RelativeTo("x")); regs != nil {
		t.Errorf("nil manifest Registrations = %v, want nil", regs)
	}

	m, err := Parse([]byte(`{"name": "bare", "version": "0.0.1"}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if regs := m.Registrations("x", RelativeTo("x")); len(regs) != 0 {
		t.Errorf("Registrations = %v, want none", regs)
	}
}

func TestSubpathSpecifier(t *testing.T) {
	tests := []struct {
		dir, key, want string
	}{
		{"pkg", "./feature", "pkg/feature"},
		{"a/b", "./x/y", "a/b/x/y"},
		{"", "./feature", "feature"},
		{"", "./", ""},
	}
	for _, tt := range tests {
		if got := SubpathSpecifier(tt.dir, tt.key); got != tt.want {
			t.Errorf("SubpathSpecifier(%q, %q) = %q, want %q", tt.dir, tt.key, got, tt.want)
		}
	}
}

func TestRelativeTo(t *testing.T) {
	tests := []struct {
		dir, p, want string
	}{
		{"pkgdir", "lib/entry.js", "./pkgdir/lib/entry.js"},
		{"pkgdir", "./lib/entry.js", "./pkgdir/lib/entry.js"},
		{".", "index.js", "./index.js"},
		{"a/b", "../c.js", "./a/c.js"},
	}
	for _, tt := range tests {
		if got := RelativeTo(tt.dir)(tt.p); got != tt.want {
			t.Errorf("RelativeTo(%q)(%q) = %q, want %q", tt.dir, tt.p, got, tt.want)
		}
	}
}
