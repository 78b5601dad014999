package media

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeFixture(t *testing.T, n int) string {
	t.Helper()
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(i % 251)
	}
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func serve(t *testing.T, path, rangeHeader string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/uploads/movies/clip.mp4", nil)
	if rangeHeader != "" {
		r.Header.Set("Range", rangeHeader)
	}
	w := httptest.NewRecorder()
	ServeFile(w, r, path)
	return w
}

func TestServeFullFile(t *testing.T) {
	path := writeFixture(t, 1000)
	w := serve(t, path, "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Content-Length"); got != "1000" {
		t.Fatalf("Content-Length = %q", got)
	}
	if got := w.Header().Get("Content-Type"); got != "video/mp4" {
		t.Fatalf("Content-Type = %q", got)
	}
	if w.Body.Len() != 1000 {
		t.Fatalf("body length = %d", w.Body.Len())
	}
}

func TestServeBoundedRange(t *testing.T) {
	path := writeFixture(t, 1000)
	w := serve(t, path, "bytes=100-199")

	if w.Code != http.StatusPartialContent {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Content-Range"); got != "bytes 100-199/1000" {
		t.Fatalf("Content-Range = %q", got)
	}
	if got := w.Header().Get("Content-Length"); got != "100" {
		t.Fatalf("Content-Length = %q", got)
	}
	if got := w.Header().Get("Accept-Ranges"); got != "bytes" {
		t.Fatalf("Accept-Ranges = %q", got)
	}

	want := make([]byte, 100)
	for i := range want {
		want[i] = byte((100 + i) % 251)
	}
	if !bytes.Equal(w.Body.Bytes(), want) {
		t.Fatal("body does not match the requested span")
	}
}

func TestServeOpenEndedRange(t *testing.T) {
	path := writeFixture(t, 1000)
	w := serve(t, path, "bytes=900-")

	if w.Code != http.StatusPartialContent {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Content-Range"); got != "bytes 900-999/1000" {
		t.Fatalf("Content-Range = %q", got)
	}
	if w.Body.Len() != 100 {
		t.Fatalf("body length = %d", w.Body.Len())
	}
}

func TestServeRangeClampedToEOF(t *testing.T) {
	path := writeFixture(t, 1000)
	w := serve(t, path, "bytes=950-5000")

	if w.Code != http.StatusPartialContent {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Content-Range"); got != "bytes 950-999/1000" {
		t.Fatalf("Content-Range = %q", got)
	}
}

func TestServeInvalidRange(t *testing.T) {
	path := writeFixture(t, 1000)

	for _, h := range []string{
		"bytes=1000-1100", // start past EOF
		"bytes=-100",      // suffix form unsupported
		"bytes=200-100",   // inverted
		"items=0-10",      // wrong unit
	} {
		w := serve(t, path, h)
		if w.Code != http.StatusRequestedRangeNotSatisfiable {
			t.Fatalf("%q: status = %d", h, w.Code)
		}
		if got := w.Header().Get("Content-Range"); got != "bytes */1000" {
			t.Fatalf("%q: Content-Range = %q", h, got)
		}
	}
}

func TestServeMissingFile(t *testing.T) {
	w := serve(t, filepath.Join(t.TempDir(), "absent.mp4"), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("Content-Type = %q", got)
	}
}

func TestServeHeadSkipsBody(t *testing.T) {
	path := writeFixture(t, 1000)
	r := httptest.NewRequest(http.MethodHead, "/uploads/movies/clip.mp4", nil)
	r.Header.Set("Range", "bytes=0-99")
	w := httptest.NewRecorder()
	ServeFile(w, r, path)

	if w.Code != http.StatusPartialContent {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("HEAD wrote %d body bytes", w.Body.Len())
	}
	if got := w.Header().Get("Content-Length"); got != "100" {
		t.Fatalf("Content-Length = %q", got)
	}
}
