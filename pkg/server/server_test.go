package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/esmap/pkg/buildinfo"
	"github.com/matzehuels/esmap/pkg/scan"
)

func fixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"app.js":       "export default 1",
		"lib/index.js": "export {}",
		".env":         "SECRET=1",
		".git/config":  "[core]",
	}
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestImportMapRoute(t *testing.T) {
	root := fixture(t)
	s := New(root, Options{Scan: scan.Options{Output: filepath.Join(root, "never-written.json")}})

	rec := get(t, s, MapPath)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != ContentType {
		t.Errorf("Content-Type = %q, want %q", ct, ContentType)
	}

	var doc struct {
		Imports map[string]string `json:"imports"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Imports["lib"] != "./lib/index.js" || doc.Imports["app"] != "./app.js" {
		t.Errorf("imports = %v", doc.Imports)
	}
	if _, err := os.Stat(filepath.Join(root, "never-written.json")); !os.IsNotExist(err) {
		t.Error("serving must not persist the import map")
	}
}

func TestImportMapReflectsChanges(t *testing.T) {
	root := fixture(t)
	s := New(root, Options{})

	if strings.Contains(get(t, s, MapPath).Body.String(), `"late"`) {
		t.Fatal("late module present before it was created")
	}
	if err := os.WriteFile(filepath.Join(root, "late.mjs"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(get(t, s, MapPath).Body.String(), `"late": "./late.mjs"`) {
		t.Error("import map should be regenerated per request")
	}
}

func TestImportMapMissingRoot(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "gone"), Options{})
	rec := get(t, s, MapPath)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "does not exist") {
		t.Errorf("body = %q", rec.Body)
	}
}

func TestHealthz(t *testing.T) {
	rec := get(t, New(t.TempDir(), Options{}), "/healthz")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body)
	}
	if got := rec.Header().Get("Server"); got != buildinfo.UserAgent() {
		t.Errorf("Server header = %q", got)
	}
}

func TestStaticFiles(t *testing.T) {
	s := New(fixture(t), Options{})

	tests := []struct {
		path   string
		status int
	}{
		{"/app.js", http.StatusOK},
		{"/lib/index.js", http.StatusOK},
		{"/.env", http.StatusNotFound},
		{"/.git/config", http.StatusNotFound},
		{"/missing.js", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if rec := get(t, s, tt.path); rec.Code != tt.status {
				t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.status)
			}
		})
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	s := New(fixture(t), Options{})
	ln, err := s.Listen()
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("body = %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
