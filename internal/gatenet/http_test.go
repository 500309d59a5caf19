package gatenet

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestHandleStaticServesKnownFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "login.html"), []byte("<html>login</html>"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "404.html"), []byte("<html>missing</html>"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	h := &HTTPServer{webRoot: dir}

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	h.handleStatic(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200 for /, got %d", rec.Code)
	}
	if rec.Body.String() != "<html>login</html>" {
		t.Fatalf("expected login.html body, got %q", rec.Body.String())
	}
}

func TestHandleStaticFallsBackTo404(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "404.html"), []byte("<html>missing</html>"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	h := &HTTPServer{webRoot: dir}

	req := httptest.NewRequest("GET", "/no-such-page.html", nil)
	rec := httptest.NewRecorder()
	h.handleStatic(rec, req)

	if rec.Body.String() != "<html>missing</html>" {
		t.Fatalf("expected the 404 fallback body, got %q", rec.Body.String())
	}
}
