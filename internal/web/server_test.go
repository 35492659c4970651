package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/philipparndt/gobox/internal/config"
	"github.com/philipparndt/gobox/internal/controls"
	"github.com/philipparndt/gobox/internal/pipeline"
	"github.com/philipparndt/gobox/pkg/export"
	"github.com/philipparndt/gobox/pkg/stl"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Addr:       ":0",
		WorkDir:    t.TempDir(),
		SessionTTL: time.Minute,
		Engine:     "builtin",
	}
	p := pipeline.New(&export.Builtin{}, cfg.WorkDir)
	return NewServer(cfg, p)
}

func downloadURL(t *testing.T, body string) string {
	t.Helper()
	i := strings.Index(body, `href="/download/`)
	if i < 0 {
		t.Fatalf("page failed: no download link in %s", body)
	}
	rest := body[i+len(`href="`):]
	return rest[:strings.Index(rest, `"`)]
}

func TestIndexDefaults(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("GET / failed: expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		"CadQuery Box Test",
		"Preview:",
		"<svg",
		"Download stl",
		"Rendered in 0 seconds",
		`value="#00f900"`,
		"https://www.patreon.com/medicationforall",
		"https://github.com/medicationforall/cqboxtestui",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("GET / failed: expected page to contain %q", want)
		}
	}
}

func TestIndexRenderOff(t *testing.T) {
	s := newTestServer(t)

	form := url.Values{"render": {"off"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("POST / failed: expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, "Preview:") || strings.Contains(body, "Download") {
		t.Errorf("POST / failed: expected no preview or download with render off")
	}
	if !strings.Contains(body, "disabled") {
		t.Errorf("POST / failed: expected disabled color inputs")
	}
	if s.sessions.len() != 0 {
		t.Errorf("POST / failed: expected no session, got %d", s.sessions.len())
	}
}

func TestIndexRejectsInvalidInput(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?length=0", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("GET /?length=0 failed: expected 400, got %d", w.Code)
	}
}

func TestDownloadServesAndReleases(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?name=crate&format=stl", nil))
	link := downloadURL(t, w.Body.String())

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, link, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("download failed: expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "model/stl" {
		t.Errorf("Content-Type failed: expected model/stl, got %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="crate.stl"` {
		t.Errorf("Content-Disposition failed: got %s", cd)
	}

	model, err := stl.ParseReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("stl.ParseReader failed: %v", err)
	}
	if model.TriangleCount() != 12 {
		t.Errorf("download failed: expected 12 triangles, got %d", model.TriangleCount())
	}

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, link, nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("second download failed: expected 404, got %d", w.Code)
	}
}

func TestDownloadUnknownSession(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("download failed: expected 404, got %d", w.Code)
	}
}

func TestAPIRender(t *testing.T) {
	s := newTestServer(t)

	payload := `{"parameters":{"length":4,"width":5,"height":6},"file":{"name":"lid","format":"step"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("POST /api/render failed: expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	var resp renderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if resp.Download == nil || resp.Download.FileName != "lid.step" || resp.Download.MIME != "model/step" {
		t.Errorf("download failed: got %+v", resp.Download)
	}
	if len(resp.Notices) != 1 || resp.Notices[0].Kind != pipeline.NoticeSuccess {
		t.Errorf("notices failed: got %+v", resp.Notices)
	}

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, resp.PreviewURL, nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "<svg") {
		t.Errorf("preview failed: expected svg, got %d", w.Code)
	}
}

func TestAPIRenderRejectsInvalid(t *testing.T) {
	s := newTestServer(t)

	for _, payload := range []string{
		`{"parameters":{"length":-1}}`,
		`{"primary_color":"#12"}`,
		`{"file":{"format":"obj"}}`,
		`not json`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("POST /api/render %s failed: expected 400, got %d", payload, w.Code)
		}
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"engine":"builtin"`) {
		t.Errorf("healthz failed: got %d %s", w.Code, w.Body.String())
	}
}

func TestSessionExpiry(t *testing.T) {
	s := newTestServer(t)

	now := time.Now()
	s.sessions.now = func() time.Time { return now }

	result, err := s.pipeline.Run(t.Context(), defaultsWithFormat(export.FormatSTL))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	id := s.sessions.put(result)

	if _, ok := s.sessions.get(id); !ok {
		t.Fatalf("get failed: expected live session")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := s.sessions.get(id); ok {
		t.Errorf("get failed: expected expired session")
	}
	if n := s.sessions.sweep(); n != 1 {
		t.Errorf("sweep failed: expected 1, got %d", n)
	}
	if _, err := os.Stat(result.Workspace.Dir()); !os.IsNotExist(err) {
		t.Errorf("sweep failed: workspace still exists")
	}
}

func defaultsWithFormat(format export.Format) controls.Config {
	cfg := controls.Defaults()
	cfg.File.Format = format
	return cfg
}
