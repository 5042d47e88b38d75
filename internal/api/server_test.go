// internal/api/server_test.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vantagelabs/vantage/internal/metrics"
	"github.com/vantagelabs/vantage/internal/report"
)

// fakeRunner satisfies Runner without a real pipeline.
type fakeRunner struct {
	mu      sync.Mutex
	last    *report.Report
	runErr  error
	runs    int
	running bool
}

func (f *fakeRunner) RunOnce(ctx context.Context) (*report.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs++
	if f.runErr != nil {
		return nil, f.runErr
	}
	rep := report.New("run-123", time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC))
	rep.Add(report.TickerSection{Symbol: "AAPL"})
	f.last = rep
	return rep, nil
}

func (f *fakeRunner) LastReport() *report.Report {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func (f *fakeRunner) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func newTestServer(t *testing.T, runner Runner, apiKey string) *Server {
	t.Helper()
	return NewServer(Config{Host: "127.0.0.1", Port: 0, APIKey: apiKey},
		runner, nil, metrics.NewRegistry(), zap.NewNop())
}

func TestHealth(t *testing.T) {
	runner := &fakeRunner{running: true}
	runner.RunOnce(context.Background())
	srv := newTestServer(t, runner, "")

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data["status"] != "ok" {
		t.Errorf("status = %v", resp.Data["status"])
	}
	if resp.Data["running"] != true {
		t.Errorf("running = %v", resp.Data["running"])
	}
	if resp.Data["last_run_id"] != "run-123" {
		t.Errorf("last_run_id = %v", resp.Data["last_run_id"])
	}
}

func TestRun_TriggersPipeline(t *testing.T) {
	runner := &fakeRunner{}
	srv := newTestServer(t, runner, "")

	req := httptest.NewRequest("POST", "/api/v1/run", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", w.Code)
	}

	var resp struct {
		Data struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.ID == "" {
		t.Fatal("expected job id")
	}

	// Poll the job until the background run completes.
	deadline := time.After(5 * time.Second)
	for {
		jreq := httptest.NewRequest("GET", "/api/v1/jobs/"+resp.Data.ID, nil)
		jw := httptest.NewRecorder()
		srv.Handler().ServeHTTP(jw, jreq)
		if jw.Code != http.StatusOK {
			t.Fatalf("job status = %d", jw.Code)
		}

		var jresp struct {
			Data struct {
				Status string         `json:"status"`
				Result map[string]any `json:"result"`
			} `json:"data"`
		}
		json.Unmarshal(jw.Body.Bytes(), &jresp)
		if jresp.Data.Status == "complete" {
			if jresp.Data.Result["run_id"] != "run-123" {
				t.Errorf("result = %v", jresp.Data.Result)
			}
			return
		}

		select {
		case <-deadline:
			t.Fatal("job never completed")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func TestRun_FailureMarksJobFailed(t *testing.T) {
	runner := &fakeRunner{runErr: errors.New("collector down")}
	srv := newTestServer(t, runner, "")

	req := httptest.NewRequest("POST", "/api/v1/run", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)

	deadline := time.After(5 * time.Second)
	for {
		jreq := httptest.NewRequest("GET", "/api/v1/jobs/"+resp.Data.ID, nil)
		jw := httptest.NewRecorder()
		srv.Handler().ServeHTTP(jw, jreq)

		var jresp struct {
			Data struct {
				Status string `json:"status"`
			} `json:"data"`
		}
		json.Unmarshal(jw.Body.Bytes(), &jresp)
		if jresp.Data.Status == "failed" {
			return
		}

		select {
		case <-deadline:
			t.Fatal("job never failed")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func TestRun_RequiresAPIKey(t *testing.T) {
	srv := newTestServer(t, &fakeRunner{}, "secret")

	req := httptest.NewRequest("POST", "/api/v1/run", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest("POST", "/api/v1/run", nil)
	req.Header.Set("X-API-Key", "secret")
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", w.Code)
	}
}

func TestLatestReport(t *testing.T) {
	runner := &fakeRunner{}
	srv := newTestServer(t, runner, "")

	// No report yet
	req := httptest.NewRequest("GET", "/api/v1/report/latest", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 before first run", w.Code)
	}

	runner.RunOnce(context.Background())

	req = httptest.NewRequest("GET", "/api/v1/report/latest", nil)
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("content type = %s", ct)
	}
	if !strings.Contains(w.Body.String(), "AAPL") {
		t.Error("report body missing ticker")
	}
}

func TestJob_NotFound(t *testing.T) {
	srv := newTestServer(t, &fakeRunner{}, "")

	req := httptest.NewRequest("GET", "/api/v1/jobs/unknown", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeRunner{}, "")

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("expected runtime metrics in exposition")
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t, &fakeRunner{}, "")

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}
