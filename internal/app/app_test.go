package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hirehub/core/internal/config"
	"github.com/hirehub/core/internal/database/dbtest"
	"github.com/hirehub/core/internal/models"
	pkgredis "github.com/hirehub/core/internal/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMatchOriginPattern(t *testing.T) {
	tests := []struct {
		pattern, host string
		want          bool
	}{
		{"hirehub.io", "hirehub.io", true},
		{"https://hirehub.io", "hirehub.io", true},
		{"*.hirehub.io", "app.hirehub.io", true},
		{"*.hirehub.io", "hirehub.io", false},
		{"localhost:*", "localhost:5173", true},
		{"localhost:*", "evil.com", false},
		{"HireHub.io", "hirehub.io", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchOriginPattern(tt.pattern, tt.host), "%s vs %s", tt.pattern, tt.host)
	}

	assert.Equal(t, "app.hirehub.io:8443", extractOriginHost("https://app.hirehub.io:8443"))
	assert.Equal(t, "not a url", extractOriginHost("not a url"))
	assert.True(t, originAllowed([]string{"a.com", "*.hirehub.io"}, "https://x.hirehub.io"))
	assert.False(t, originAllowed([]string{"a.com"}, "https://b.com"))
}

func TestParseTimezoneLocation(t *testing.T) {
	loc, err := parseTimezoneLocation("+05:30")
	require.NoError(t, err)
	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 5*3600+30*60, offset)

	loc, err = parseTimezoneLocation("-03:00")
	require.NoError(t, err)
	_, offset = time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, -3*3600, offset)

	loc, err = parseTimezoneLocation("UTC")
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	_, err = parseTimezoneLocation("+25:00")
	assert.Error(t, err)
	_, err = parseTimezoneLocation("Mars/Olympus")
	assert.Error(t, err)
}

func TestHumanizeDuration(t *testing.T) {
	assert.Equal(t, "42s", humanizeDuration(42*time.Second+300*time.Millisecond))
	assert.Equal(t, "5m0s", humanizeDuration(5*time.Minute+10*time.Second))
	assert.Equal(t, "3h0m0s", humanizeDuration(3*time.Hour+59*time.Minute))
	assert.Equal(t, "48h0m0s", humanizeDuration(50*time.Hour))
}

func newTestApp(t *testing.T, withRedis bool) *App {
	t.Helper()

	cfg, err := config.Parse([]byte(`
env: production
jwt_secret: app-test
allowed_origins: ["*.hirehub.io"]
storage:
  local:
    dir: ` + t.TempDir() + `
`))
	require.NoError(t, err)
	require.NoError(t, applyRuntimeSettings(cfg, zap.NewNop()))

	var rc *pkgredis.Client
	if withRedis {
		mr := miniredis.RunT(t)
		rc, err = pkgredis.Connect("redis://" + mr.Addr())
		require.NoError(t, err)
		t.Cleanup(func() { _ = rc.Close() })
	}

	a, err := build(zap.NewNop(), cfg, dbtest.Open(t, models.All()...), rc)
	require.NoError(t, err)
	return a
}

func serve(a *App, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, req)
	return w
}

func TestApp_Basics(t *testing.T) {
	a := newTestApp(t, false)
	assert.Equal(t, ":8000", a.Addr())

	w := serve(a, http.MethodGet, "/api/v1/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":"pong"}`, w.Body.String())

	w = serve(a, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"database":"ok","redis":"disabled","storage":"local"}`, w.Body.String())

	w = serve(a, http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"ok":0,"code":404,"message":"Not found."}`, w.Body.String())

	w = serve(a, http.MethodDelete, "/api/v1/ping", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestApp_CORS(t *testing.T) {
	a := newTestApp(t, false)

	w := serve(a, http.MethodGet, "/api/v1/ping", "", map[string]string{"Origin": "https://jobs.hirehub.io"})
	assert.Equal(t, "https://jobs.hirehub.io", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(a, http.MethodGet, "/api/v1/ping", "", map[string]string{"Origin": "https://evil.example"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestApp_SignupAndIdempotence(t *testing.T) {
	a := newTestApp(t, true)

	payload := `{"email": "lin@example.com", "first_name": "Lin", "last_name": "Chen", "password": "pa55word!"}`
	w := serve(a, http.MethodPost, "/api/v1/user/create/", payload, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = serve(a, http.MethodPost, "/api/v1/user/create/", payload, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// token requests are never deduplicated
	login := `{"email": "lin@example.com", "password": "pa55word!"}`
	for i := 0; i < 2; i++ {
		w = serve(a, http.MethodPost, "/api/v1/auth/token/", login, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	var tok map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))

	w = serve(a, http.MethodGet, "/api/v1/user/list/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(a, http.MethodGet, "/api/v1/user/list/", "", map[string]string{"Authorization": "Bearer " + tok["token"].(string)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "lin@example.com")

	w = serve(a, http.MethodGet, "/api/v1/health", "", nil)
	assert.JSONEq(t, `{"database":"ok","redis":"ok","storage":"local"}`, w.Body.String())
}
