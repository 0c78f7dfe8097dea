package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/margdarshak/schemeseek/internal/config"
	"github.com/margdarshak/schemeseek/internal/embedding"
	"github.com/margdarshak/schemeseek/internal/engine"
	"github.com/margdarshak/schemeseek/internal/generation"
	"github.com/margdarshak/schemeseek/internal/models"
	"github.com/margdarshak/schemeseek/internal/session"
)

type stubGenerator struct {
	response string
	err      error
}

func (s *stubGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	return s.response, s.err
}

const testCorpus = `[
	{"scheme_name": "National Health Support", "details": "Health coverage for all citizens of the country", "benefits": "Cashless treatment up to rs. 5,00,000"},
	{"scheme_name": "Women Entrepreneurship Programme", "details": "Financial assistance for women entrepreneurs to start businesses", "benefits": "Collateral free loan up to rs. 10,00,000"}
]`

func newTestServer(t *testing.T, loadCorpus bool, gen generation.Generator) *Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.json")
	if err := os.WriteFile(path, []byte(testCorpus), 0o644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}

	logger := zap.NewNop()
	eng := engine.New(
		engine.Options{ChatTopK: 5, CorpusPaths: []string{path}},
		embedding.NewMockEmbedder(8),
		gen,
		session.NewStore(session.Options{MaxTurns: 50}),
		logger,
	)
	if loadCorpus {
		if err := eng.LoadCorpus(context.Background()); err != nil {
			t.Fatalf("LoadCorpus: %v", err)
		}
	}
	return NewServer(eng, config.Default(), logger)
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	r := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(buf))
	w := httptest.NewRecorder()
	handler(w, r)
	return w
}

func maleProfile() models.UserProfile {
	return models.UserProfile{Age: 30, Gender: "male", FamilyIncome: 50000, State: "Bihar"}
}

func TestHandleRecommend(t *testing.T) {
	srv := newTestServer(t, true, nil)

	w := postJSON(t, srv.handleRecommend, "/api/v1/recommend", models.RecommendRequest{Profile: maleProfile()})
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}
	var resp models.RecommendResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.EligibleCount != 1 {
		t.Errorf("eligible_count = %d, want 1", resp.EligibleCount)
	}
	if len(resp.TopSchemes) != 1 || resp.TopSchemes[0].Name != "National Health Support" {
		t.Errorf("top_schemes = %v", resp.TopSchemes)
	}
}

func TestHandleRecommendInvalidBody(t *testing.T) {
	srv := newTestServer(t, true, nil)

	r := httptest.NewRequest(http.MethodPost, "/api/v1/recommend", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	srv.handleRecommend(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestHandleRecommendMissingProfileFields(t *testing.T) {
	srv := newTestServer(t, true, nil)

	w := postJSON(t, srv.handleRecommend, "/api/v1/recommend",
		models.RecommendRequest{Profile: models.UserProfile{Gender: "male"}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestHandleRecommendBeforeReady(t *testing.T) {
	srv := newTestServer(t, false, nil)

	w := postJSON(t, srv.handleRecommend, "/api/v1/recommend", models.RecommendRequest{Profile: maleProfile()})
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", w.Code)
	}
}

func TestHandleChat(t *testing.T) {
	srv := newTestServer(t, true, &stubGenerator{response: "Here is a scheme."})

	profile := maleProfile()
	w := postJSON(t, srv.handleChat, "/api/v1/chat",
		models.ChatRequest{UserID: "u1", Message: "what can I apply for?", Profile: &profile})
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}
	var resp models.ChatResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Response != "Here is a scheme." {
		t.Errorf("response = %q", resp.Response)
	}
	if resp.EligibleCount != 1 {
		t.Errorf("eligible_count = %d, want 1", resp.EligibleCount)
	}
}

func TestHandleChatEmptyMessage(t *testing.T) {
	srv := newTestServer(t, true, &stubGenerator{response: "ok"})

	w := postJSON(t, srv.handleChat, "/api/v1/chat", models.ChatRequest{UserID: "u1"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestHandleChatUpstreamFailure(t *testing.T) {
	srv := newTestServer(t, true, &stubGenerator{err: generation.ErrUpstream})

	w := postJSON(t, srv.handleChat, "/api/v1/chat", models.ChatRequest{UserID: "u1", Message: "hi"})
	if w.Code != http.StatusBadGateway {
		t.Errorf("status: got %d, want 502", w.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	srv := newTestServer(t, true, &stubGenerator{response: "ok"})

	r := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	srv.handleStatus(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var resp models.StatusResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.SchemesLoaded != 2 {
		t.Errorf("schemes_loaded = %d, want 2", resp.SchemesLoaded)
	}
	if !resp.IndexReady {
		t.Error("index_ready should be true")
	}
	if !resp.GenerationConfigured {
		t.Error("generation_configured should be true")
	}
}

func TestHandleSchemeSearch(t *testing.T) {
	srv := newTestServer(t, true, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/schemes/search?q=health&limit=5", nil)
	w := httptest.NewRecorder()
	srv.handleSchemeSearch(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}
	var out struct {
		Hits  []engine.SchemeHit `json:"hits"`
		Total int                `json:"total"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Total == 0 || out.Hits[0].Scheme.Name != "National Health Support" {
		t.Errorf("hits = %v", out.Hits)
	}
}

func TestHandleSchemeSearchMissingQuery(t *testing.T) {
	srv := newTestServer(t, true, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/schemes/search", nil)
	w := httptest.NewRecorder()
	srv.handleSchemeSearch(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func schemeRequest(id string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/schemes/"+id, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestHandleGetScheme(t *testing.T) {
	srv := newTestServer(t, true, nil)

	w := httptest.NewRecorder()
	srv.handleGetScheme(w, schemeRequest("scheme_1"))
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var scheme models.SchemeProfile
	if err := json.NewDecoder(w.Body).Decode(&scheme); err != nil {
		t.Fatal(err)
	}
	if scheme.Name != "National Health Support" {
		t.Errorf("name = %q", scheme.Name)
	}

	w = httptest.NewRecorder()
	srv.handleGetScheme(w, schemeRequest("scheme_99"))
	if w.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", w.Code)
	}
}

func TestHandleGetSchemeBeforeReady(t *testing.T) {
	srv := newTestServer(t, false, nil)

	w := httptest.NewRecorder()
	srv.handleGetScheme(w, schemeRequest("scheme_1"))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", w.Code)
	}
}

func TestHandleReload(t *testing.T) {
	srv := newTestServer(t, true, nil)

	r := httptest.NewRequest(http.MethodPost, "/api/v1/reload", nil)
	w := httptest.NewRecorder()
	srv.handleReload(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d, body %s", w.Code, w.Body.String())
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, true, nil)

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.handleHealth(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d", w.Code)
	}
	var out map[string]string
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out["status"] != "ok" {
		t.Errorf("body = %v", out)
	}
}
