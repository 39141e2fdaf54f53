package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Hydrohaven/cs121-A3/internal/searcher/executor"
	"github.com/Hydrohaven/cs121-A3/internal/searcher/parser"
)

type stubExecutor struct {
	result   *executor.SearchResult
	err      error
	gotPlan  *parser.QueryPlan
	gotLimit int
}

func (s *stubExecutor) Execute(ctx context.Context, plan *parser.QueryPlan, limit int) (*executor.SearchResult, error) {
	s.gotPlan = plan
	s.gotLimit = limit
	return s.result, s.err
}

func newTestHandler(exec SearchExecutor) *Handler {
	return New(exec, nil, nil, nil, 50, 200)
}

func doSearch(t *testing.T, h *Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)
	return rec
}

func TestSearchReturnsResults(t *testing.T) {
	stub := &stubExecutor{result: &executor.SearchResult{
		Query:     "fox",
		TotalHits: 2,
		Results: []executor.Hit{
			{Rank: 1, Doc: 0, URL: "https://example.edu/a", Score: 1.5},
			{Rank: 2, Doc: 3, URL: "https://example.edu/b", Score: 0.7},
		},
	}}
	h := newTestHandler(stub)

	rec := doSearch(t, h, "/api/v1/search?q=fox")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result executor.SearchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if result.TotalHits != 2 || len(result.Results) != 2 {
		t.Errorf("unexpected result %+v", result)
	}
	if stub.gotLimit != 50 {
		t.Errorf("default limit = %d, want 50", stub.gotLimit)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	h := newTestHandler(&stubExecutor{})
	rec := doSearch(t, h, "/api/v1/search")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing q: status = %d, want 400", rec.Code)
	}
}

func TestSearchLimitValidation(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantLimit  int
	}{
		{"explicit limit", "/api/v1/search?q=fox&limit=10", http.StatusOK, 10},
		{"capped at max", "/api/v1/search?q=fox&limit=9999", http.StatusOK, 200},
		{"zero rejected", "/api/v1/search?q=fox&limit=0", http.StatusBadRequest, 0},
		{"negative rejected", "/api/v1/search?q=fox&limit=-5", http.StatusBadRequest, 0},
		{"garbage rejected", "/api/v1/search?q=fox&limit=abc", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubExecutor{result: &executor.SearchResult{Results: []executor.Hit{}}}
			h := newTestHandler(stub)
			rec := doSearch(t, h, tt.target)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && stub.gotLimit != tt.wantLimit {
				t.Errorf("limit passed to executor = %d, want %d", stub.gotLimit, tt.wantLimit)
			}
		})
	}
}

func TestSearchStopWordOnlyQueryShortCircuits(t *testing.T) {
	stub := &stubExecutor{}
	h := newTestHandler(stub)
	rec := doSearch(t, h, "/api/v1/search?q=the+and+of")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if stub.gotPlan != nil {
		t.Error("executor was called for a query with no searchable terms")
	}
	var result executor.SearchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Results) != 0 {
		t.Errorf("expected empty results, got %+v", result.Results)
	}
}

func TestSearchExecutorFailure(t *testing.T) {
	h := newTestHandler(&stubExecutor{err: errors.New("index went away")})
	rec := doSearch(t, h, "/api/v1/search?q=fox")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if body := rec.Body.String(); !json.Valid([]byte(body)) {
		t.Errorf("error response not JSON: %s", body)
	}
}

func TestCacheStatsDisabled(t *testing.T) {
	h := newTestHandler(&stubExecutor{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil)
	rec := httptest.NewRecorder()
	h.CacheStats(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "disabled" {
		t.Errorf("body = %v, want disabled marker", body)
	}
}

func TestCacheInvalidateDisabled(t *testing.T) {
	h := newTestHandler(&stubExecutor{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", nil)
	rec := httptest.NewRecorder()
	h.CacheInvalidate(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
