package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func staticCheck(status Status) Check {
	return func(ctx context.Context) ComponentHealth {
		return ComponentHealth{Status: status}
	}
}

func TestRunAggregatesWorstStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"all up", []Status{StatusUp, StatusUp}, StatusUp},
		{"one degraded", []Status{StatusUp, StatusDegraded}, StatusDegraded},
		{"one down", []Status{StatusUp, StatusDegraded, StatusDown}, StatusDown},
		{"no checks", nil, StatusUp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker()
			for i, s := range tt.statuses {
				c.Register(string(rune('a'+i)), staticCheck(s))
			}
			report := c.Run(context.Background())
			if report.Status != tt.want {
				t.Errorf("Run().Status = %v, want %v", report.Status, tt.want)
			}
			if len(report.Components) != len(tt.statuses) && tt.want != StatusDown {
				t.Errorf("got %d components, want %d", len(report.Components), len(tt.statuses))
			}
		})
	}
}

func TestRunRecordsLatency(t *testing.T) {
	c := NewChecker()
	c.Register("fast", staticCheck(StatusUp))
	report := c.Run(context.Background())
	if report.Components["fast"].Latency == "" {
		t.Error("component latency not recorded")
	}
}

func TestReadyHandlerStatusCodes(t *testing.T) {
	c := NewChecker()
	c.Register("dep", staticCheck(StatusUp))
	rec := httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("ready with healthy deps = %d, want 200", rec.Code)
	}

	c.Register("broken", staticCheck(StatusDown))
	rec = httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready with a down dep = %d, want 503", rec.Code)
	}
}

func TestLiveHandlerAlwaysOK(t *testing.T) {
	c := NewChecker()
	c.Register("broken", staticCheck(StatusDown))
	rec := httptest.NewRecorder()
	c.LiveHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("liveness = %d, want 200 regardless of dependencies", rec.Code)
	}
}
