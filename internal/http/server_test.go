package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"grafico/internal/core"
	"grafico/internal/services"
)

type fakeChartAPI struct {
	generateResult services.GenerateResult
	generateErr    error
	saveResult     core.ChartRequest
	saveErr        error
	recent         []core.ChartRequest
	recentErr      error
	recentCalls    int
}

func (f *fakeChartAPI) Generate(_ context.Context, _ string, _ core.DataFilter) (services.GenerateResult, error) {
	return f.generateResult, f.generateErr
}

func (f *fakeChartAPI) Save(_ context.Context, _ string, _ core.DataFilter, _ string) (core.ChartRequest, error) {
	return f.saveResult, f.saveErr
}

func (f *fakeChartAPI) ListRecent(_ context.Context, _ int) ([]core.ChartRequest, error) {
	f.recentCalls++
	return f.recent, f.recentErr
}

func newTestServer(t *testing.T, api ChartAPI) *Server {
	t.Helper()
	s := NewServer(":0", api)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func doRequest(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, &fakeChartAPI{})

	if rec := doRequest(s, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}
	if rec := doRequest(s, http.MethodGet, "/readyz", ""); rec.Code != http.StatusOK {
		t.Errorf("readyz status = %d, want 200", rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t, &fakeChartAPI{})

	rec := doRequest(s, http.MethodGet, "/api/charts/recent", "")
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, &fakeChartAPI{})

	if rec := doRequest(s, http.MethodGet, "/api/charts/generate", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET generate status = %d, want 405", rec.Code)
	}
	if rec := doRequest(s, http.MethodDelete, "/api/charts", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE charts status = %d, want 405", rec.Code)
	}
}
