package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hyperjump/yoyaku/internal/config"
	"github.com/hyperjump/yoyaku/internal/engine"
	"github.com/hyperjump/yoyaku/internal/fileid"
	"github.com/hyperjump/yoyaku/internal/metrics"
	"github.com/hyperjump/yoyaku/internal/models"
	"github.com/hyperjump/yoyaku/internal/nlp"
	"github.com/hyperjump/yoyaku/internal/ranking"
	"github.com/hyperjump/yoyaku/internal/storage"
)

type mockWatchService struct {
	dirs []string
}

func (m *mockWatchService) Directories() []string {
	return append([]string(nil), m.dirs...)
}

var docs = []string{
	"The cat sat. It was happy. The dog ran.",
	"Dogs bark loudly.",
}

func newTestServer(t *testing.T, watch WatchService) (http.Handler, *storage.SQLiteStorage) {
	t.Helper()
	cfg := &config.Config{}
	cfg.Storage.DatabasePath = filepath.Join(t.TempDir(), "db.sqlite")
	cfg.Summarize.SentenceSplitter = nlp.SplitterSimple
	config.ApplyDefaults(cfg)

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics()
	if err := m.Register(reg); err != nil {
		t.Fatal(err)
	}
	eng := engine.NewEngine(store, cfg, engine.WithMetrics(m))
	srv := NewServer(eng, store, &cfg.Server, nil, watch, reg)
	return srv.Router(), store
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}
	r := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
}

func TestHandleSummarize(t *testing.T) {
	h, _ := newTestServer(t, nil)
	w := do(t, h, http.MethodPost, "/api/v1/summarize", models.SummarizeRequest{
		Documents: docs,
		Strategy:  "lexrank",
		Limit:     2,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}
	var resp models.SummarizeResponse
	decode(t, w, &resp)
	if resp.Strategy != "lexrank" || len(resp.Sentences) != 2 || resp.ID != "" {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.Sentences[0].DocID != 2 {
		t.Errorf("Expected the one-sentence document first, got %+v", resp.Sentences[0])
	}
}

func TestHandleSummarize_noDocuments(t *testing.T) {
	h, _ := newTestServer(t, nil)
	w := do(t, h, http.MethodPost, "/api/v1/summarize", `{"documents": []}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", w.Code, w.Body.String())
	}
	var resp models.SummarizeResponse
	decode(t, w, &resp)
	if len(resp.Sentences) != 0 || resp.Summary != "" {
		t.Errorf("Expected an empty summary, got %+v", resp)
	}
}

func TestHandleSummarize_errors(t *testing.T) {
	h, _ := newTestServer(t, nil)
	tests := []struct {
		name string
		body any
	}{
		{"malformed body", "{not json"},
		{"bad order", models.SummarizeRequest{Documents: docs, Order: "random"}},
		{"unknown strategy", models.SummarizeRequest{Documents: docs, Strategy: "luhn"}},
		{"negative limit", models.SummarizeRequest{Documents: docs, Limit: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/api/v1/summarize", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want 400", w.Code)
			}
			var out map[string]string
			decode(t, w, &out)
			if out["error"] == "" {
				t.Error("Expected an error message")
			}
		})
	}
}

func TestSummaryLifecycle(t *testing.T) {
	h, _ := newTestServer(t, nil)
	w := do(t, h, http.MethodPost, "/api/v1/summarize", models.SummarizeRequest{
		Documents: docs,
		Persist:   true,
		Title:     "Animals",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201", w.Code)
	}
	var created models.SummarizeResponse
	decode(t, w, &created)
	if created.ID == "" {
		t.Fatal("Expected an ID")
	}

	w = do(t, h, http.MethodGet, "/api/v1/summaries/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: got %d", w.Code)
	}
	var rec models.SummaryRecord
	decode(t, w, &rec)
	if rec.Title != "Animals" || len(rec.Sentences) != len(created.Sentences) {
		t.Errorf("unexpected record %+v", rec)
	}

	w = do(t, h, http.MethodGet, "/api/v1/summaries", nil)
	var list models.SummaryListResponse
	decode(t, w, &list)
	if list.Total != 1 || len(list.Summaries) != 1 || list.Limit != defaultPageLimit {
		t.Errorf("unexpected list %+v", list)
	}

	w = do(t, h, http.MethodDelete, "/api/v1/summaries/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: got %d", w.Code)
	}
	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		if w = do(t, h, method, "/api/v1/summaries/"+created.ID, nil); w.Code != http.StatusNotFound {
			t.Errorf("%s after delete: got %d, want 404", method, w.Code)
		}
	}
}

func TestHandleGetSummary_bySource(t *testing.T) {
	h, store := newTestServer(t, nil)
	sourceID := fileid.SourceID("/inbox/report.txt")
	rec := &models.SummaryRecord{
		SourceID:   sourceID,
		SourcePath: "/inbox/report.txt",
		Strategy:   "lede",
		Order:      models.OrderDocument,
		Documents:  1,
		Ranked:     1,
		Sentences:  []models.SummarySentence{{DocID: 1, Position: 1, Text: "Quarterly numbers are up.", Score: 1, Rank: 1}},
	}
	if err := store.ReplaceSummary(context.Background(), rec); err != nil {
		t.Fatal(err)
	}

	w := do(t, h, http.MethodGet, "/api/v1/summaries/"+sourceID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var got models.SummaryRecord
	decode(t, w, &got)
	if got.ID != rec.ID || len(got.Sentences) != 1 {
		t.Errorf("unexpected record %+v", got)
	}

	w = do(t, h, http.MethodGet, "/api/v1/summaries/"+fileid.SourceID("/inbox/other.txt"), nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown source, got %d", w.Code)
	}
}

func TestHandleListSummaries_paging(t *testing.T) {
	h, _ := newTestServer(t, nil)
	for i := 0; i < 3; i++ {
		req := models.SummarizeRequest{Documents: docs, Persist: true, Title: fmt.Sprintf("run %d", i)}
		if w := do(t, h, http.MethodPost, "/api/v1/summarize", req); w.Code != http.StatusCreated {
			t.Fatalf("create: got %d", w.Code)
		}
	}
	w := do(t, h, http.MethodGet, "/api/v1/summaries?offset=1&limit=500", nil)
	var list models.SummaryListResponse
	decode(t, w, &list)
	if list.Total != 3 || len(list.Summaries) != 2 || list.Offset != 1 || list.Limit != maxPageLimit {
		t.Errorf("unexpected page %+v", list)
	}

	for _, q := range []string{"offset=-1", "limit=0", "limit=abc"} {
		if w := do(t, h, http.MethodGet, "/api/v1/summaries?"+q, nil); w.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want 400", q, w.Code)
		}
	}
}

func TestHandleStrategies(t *testing.T) {
	h, _ := newTestServer(t, nil)
	w := do(t, h, http.MethodGet, "/api/v1/strategies", nil)
	var infos []models.StrategyInfo
	decode(t, w, &infos)
	if len(infos) != len(ranking.Strategies()) {
		t.Errorf("Expected %d strategies, got %d", len(ranking.Strategies()), len(infos))
	}
}

func TestHandleStatus(t *testing.T) {
	h, _ := newTestServer(t, &mockWatchService{dirs: []string{"/tmp/inbox"}})
	w := do(t, h, http.MethodGet, "/api/v1/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var status models.StatusResponse
	decode(t, w, &status)
	if status.Summaries != 0 || len(status.Watching) != 1 || status.Watching[0] != "/tmp/inbox" {
		t.Errorf("unexpected status %+v", status)
	}
}

func TestHandleHealthAndMetrics(t *testing.T) {
	h, _ := newTestServer(t, nil)
	if w := do(t, h, http.MethodGet, "/health", nil); w.Code != http.StatusOK {
		t.Errorf("health: got %d", w.Code)
	}
	do(t, h, http.MethodPost, "/api/v1/summarize", models.SummarizeRequest{Documents: docs, Strategy: "centroid"})
	w := do(t, h, http.MethodGet, "/metrics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("metrics: got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `summaries_total{status="success",strategy="centroid"} 1`) {
		t.Errorf("metrics output missing run counter:\n%s", w.Body.String())
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrap: %w", models.ErrInvalidRequest), http.StatusBadRequest},
		{&ranking.AnnotationError{Strategy: ranking.StrategyDEMS, Feature: "pos"}, http.StatusBadRequest},
		{fmt.Errorf("%w: x", storage.ErrNotFound), http.StatusNotFound},
		{engine.ErrNoStorage, http.StatusNotImplemented},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
