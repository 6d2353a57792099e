package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/applydash/internal/config"
	"github.com/nfrund/applydash/internal/domain"
	"github.com/nfrund/applydash/internal/handlers"
	"github.com/nfrund/applydash/internal/module"
	"github.com/nfrund/applydash/internal/modules/dashboard"
	"github.com/nfrund/applydash/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPErrorHandler_WithStackTrace(t *testing.T) {
	e := echo.New()

	var logBuffer bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuffer, &slog.HandlerOptions{AddSource: true}))
	original := slog.Default()
	slog.SetDefault(logger)
	defer slog.SetDefault(original)

	setupErrorHandling(e)
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("a deliberate unhandled error occurred")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	out := logBuffer.String()
	assert.Contains(t, out, "Internal Server Error (Unhandled)")
	assert.Contains(t, out, "error=\"a deliberate unhandled error occurred\"")
	assert.Contains(t, out, "stack_trace=")
	// The trace must come from a real stack, down to this test.
	assert.Contains(t, out, "runtime/debug/stack.go")
	assert.Contains(t, out, "internal/server/server_test.go")
}

func TestHTTPErrorHandler_HTTPError(t *testing.T) {
	e := echo.New()
	setupErrorHandling(e)
	e.GET("/missing", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "no such thing")
	})

	t.Run("json", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"message":"no such thing"}`, rec.Body.String())
	})

	t.Run("htmx", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/missing", nil)
		req.Header.Set("HX-Request", "true")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "no such thing", rec.Body.String())
	})
}

// newWebhookServer fakes the workflow engine. Every call is counted.
func newWebhookServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		switch strings.TrimPrefix(r.URL.Path, "/") {
		case domain.EndpointGetStats.Kebab():
			_, _ = w.Write([]byte(`{"totalApplications":12,"activeCampaigns":2,"responseRate":25,"interviews":3}`))
		case domain.EndpointGetCampaigns.Kebab():
			_, _ = w.Write([]byte(`[{"name":"Acme Backend","status":"active","applied":10,"responses":2,"interviews":1,"progress":40}]`))
		case domain.EndpointGetApplications.Kebab():
			_, _ = w.Write([]byte(`[{"jobTitle":"Go Engineer","company":"Initech","location":"Remote","appliedDate":"2024-03-01T00:00:00Z","status":"applied"}]`))
		case domain.EndpointFindJobs.Kebab():
			_, _ = w.Write([]byte(`{"count":7}`))
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T, webhookURL string) (*Server, context.CancelFunc) {
	t.Helper()
	env := map[string]string{
		"WEBHOOK_BASE_URL": webhookURL,
		"SESSION_SECRET":   "test-secret",
		"WEBHOOK_TIMEOUT":  "2s",
	}
	cfg := config.Load(func(k string) string { return env[k] })

	s, err := New(cfg, []module.Module{dashboard.New(dashboard.WithInterval(time.Hour))})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Boot(ctx))
	t.Cleanup(func() {
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = s.Shutdown(shutdownCtx)
	})
	return s, cancel
}

func TestServer_BootRendersFirstCycle(t *testing.T) {
	var calls atomic.Int32
	webhooks := newWebhookServer(t, &calls)
	s, _ := newTestServer(t, webhooks.URL)

	b := registry.MustGet(s.Registry, registry.BoardKey)
	require.Eventually(t, func() bool {
		c, okC := b.Fragment(domain.RegionCampaigns)
		a, okA := b.Fragment(domain.RegionApplications)
		return okC && okA &&
			bytes.Contains(c.HTML, []byte("Acme Backend")) &&
			bytes.Contains(a.HTML, []byte("Initech"))
	}, 3*time.Second, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	s.E.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Acme Backend")
	assert.Contains(t, rec.Body.String(), "Initech")
	assert.Contains(t, rec.Body.String(), `ws-connect="/ws/html"`)
}

func TestServer_Health(t *testing.T) {
	var calls atomic.Int32
	webhooks := newWebhookServer(t, &calls)
	s, _ := newTestServer(t, webhooks.URL)

	rec := httptest.NewRecorder()
	s.E.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Clients["html"])
}

func TestServer_ActionAndRefreshRoutes(t *testing.T) {
	var calls atomic.Int32
	webhooks := newWebhookServer(t, &calls)
	s, _ := newTestServer(t, webhooks.URL)

	form := url.Values{"jobTitle": {"Go Engineer"}, "location": {"Remote"}, "platforms": {"linkedin, indeed"}}
	req := httptest.NewRequest(http.MethodPost, "/actions/find-jobs", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	s.E.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/actions/find-jobs", strings.NewReader(url.Values{}.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.Header.Set("HX-Request", "true")
	rec = httptest.NewRecorder()
	before := calls.Load()
	s.E.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code, "an aborted action answers with no content")
	assert.Equal(t, before, calls.Load(), "an aborted action performs no webhook call")

	rec = httptest.NewRecorder()
	s.E.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/refresh", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	s.E.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/actions/teleport", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_StaticAssets(t *testing.T) {
	var calls atomic.Int32
	webhooks := newWebhookServer(t, &calls)
	s, _ := newTestServer(t, webhooks.URL)

	rec := httptest.NewRecorder()
	s.E.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/dashboard.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "#notifications")
}
