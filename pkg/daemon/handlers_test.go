package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlie0129/bmi/pkg/analytics"
	"github.com/charlie0129/bmi/pkg/app"
	"github.com/charlie0129/bmi/pkg/client"
	"github.com/charlie0129/bmi/pkg/events"
	"github.com/charlie0129/bmi/pkg/i18n"
	"github.com/charlie0129/bmi/pkg/offline"
	"github.com/charlie0129/bmi/pkg/storage"
)

type testDaemon struct {
	server *Server
	router *gin.Engine
	hub    *events.Hub
}

func newTestDaemon(t *testing.T, origin string) *testDaemon {
	t.Helper()
	kv := storage.NewMemory()
	resolver := i18n.New(i18n.EmbeddedLoader(), kv)
	resolver.Init(context.Background(), "en-US")
	hub := events.NewHub()

	s, err := NewServer(Options{
		State:  app.New(kv, resolver, analytics.NewTracker(nil, hub)),
		Hub:    hub,
		Cache:  offline.New(kv, ""),
		Origin: origin,
	})
	require.NoError(t, err)
	return &testDaemon{server: s, router: s.Router(), hub: hub}
}

func (d *testDaemon) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if strings.HasPrefix(body, "{") {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	d.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestCalculateHandler(t *testing.T) {
	d := newTestDaemon(t, "")

	w := d.do(t, http.MethodPost, "/api/calculate", `{"height": "170", "weight": "65"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[client.ResultResponse](t, w)
	require.NotNil(t, resp.Result)
	assert.Equal(t, 22.5, resp.Result.BMI)
	assert.Equal(t, "22.5", resp.View.Result.BMI)
	assert.Len(t, resp.View.History, 1)

	w = d.do(t, http.MethodPost, "/api/calculate", `{"height": "abc", "weight": "65"}`)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeBody[client.ResultResponse](t, w)
	assert.Nil(t, resp.Result)
	assert.Nil(t, resp.View.Result)

	w = d.do(t, http.MethodPost, "/api/calculate", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPage(t *testing.T) {
	d := newTestDaemon(t, "")

	w := d.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "BMI Calculator")
	assert.NotContains(t, w.Body.String(), `id="result-container"`)
	assert.Contains(t, w.Body.String(), "No calculations yet")

	d.do(t, http.MethodPost, "/api/calculate", `{"height": "170", "weight": "65"}`)
	w = d.do(t, http.MethodGet, "/index.html", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="result-container"`)
	assert.Contains(t, w.Body.String(), "BMI: 22.5 (170.0 cm / 65.0 kg)")

	w = d.do(t, http.MethodGet, "/css/style.css", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "--accent")
}

func TestUnitHandler(t *testing.T) {
	d := newTestDaemon(t, "")
	d.do(t, http.MethodPost, "/api/calculate", `{"height": "170", "weight": "65"}`)

	w := d.do(t, http.MethodPut, "/api/unit", "imperial")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[client.ResultResponse](t, w)
	assert.EqualValues(t, "imperial", resp.View.Unit)
	assert.Equal(t, "ft", resp.View.HeightLabel)
	assert.Equal(t, app.Input{Height: "5.58", Weight: "143.3"}, resp.View.Input)

	w = d.do(t, http.MethodPut, "/api/unit", `"stone"`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryHandlers(t *testing.T) {
	d := newTestDaemon(t, "")
	d.do(t, http.MethodPost, "/api/calculate", `{"height": "170", "weight": "65"}`)

	w := d.do(t, http.MethodDelete, "/api/history", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, decodeBody[[]json.RawMessage](t, d.do(t, http.MethodGet, "/api/history", "")), 1)

	w = d.do(t, http.MethodDelete, "/api/history?confirm=true", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody[[]json.RawMessage](t, d.do(t, http.MethodGet, "/api/history", "")))
}

func TestLanguageAndThemeHandlers(t *testing.T) {
	d := newTestDaemon(t, "")

	assert.Equal(t, "en", decodeBody[string](t, d.do(t, http.MethodGet, "/api/language", "")))

	w := d.do(t, http.MethodPut, "/api/language", "de")
	require.Equal(t, http.StatusOK, w.Code)
	v := decodeBody[app.View](t, d.do(t, http.MethodGet, "/api/view", ""))
	assert.Equal(t, "de", v.Language)
	assert.NotEqual(t, "Check your body mass index", v.Text.Subtitle)

	w = d.do(t, http.MethodPut, "/api/language", "xx")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "de", decodeBody[string](t, d.do(t, http.MethodGet, "/api/language", "")))

	assert.Equal(t, "dark", decodeBody[string](t, d.do(t, http.MethodGet, "/api/theme", "")))
	assert.Equal(t, "light", decodeBody[string](t, d.do(t, http.MethodPut, "/api/theme", "toggle")))
	assert.Equal(t, "dark", decodeBody[string](t, d.do(t, http.MethodPut, "/api/theme", "dark")))
	assert.Equal(t, http.StatusBadRequest, d.do(t, http.MethodPut, "/api/theme", "sepia").Code)
}

func TestShareHandler(t *testing.T) {
	d := newTestDaemon(t, "")

	assert.Equal(t, http.StatusConflict, d.do(t, http.MethodPost, "/api/share", "").Code)

	d.do(t, http.MethodPost, "/api/calculate", `{"height": "170", "weight": "65"}`)
	w := d.do(t, http.MethodPost, "/api/share", `{"method": "clipboard"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[client.ShareResponse](t, w)
	assert.Contains(t, resp.Message.Text, "22.5")
}

func TestEventHandlers(t *testing.T) {
	d := newTestDaemon(t, "")

	w := d.do(t, http.MethodPost, "/api/events", `{"name": "scroll_engagement", "params": {"scrollY": 150}}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.True(t, decodeBody[bool](t, w))
	w = d.do(t, http.MethodPost, "/api/events", `{"name": "scroll_engagement", "params": {"scrollY": 300}}`)
	assert.False(t, decodeBody[bool](t, w))

	w = d.do(t, http.MethodPost, "/api/events", `{"name": "timer_engagement", "params": {"engagement_time_msec": 5000}}`)
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = d.do(t, http.MethodPost, "/api/events", `{"name": "purchase"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEventStream(t *testing.T) {
	d := newTestDaemon(t, "")
	srv := httptest.NewServer(d.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	require.Eventually(t, func() bool { return d.hub.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)
	d.hub.Publish(events.Calculated, events.NewPayload(map[string]any{"bmi": 22.5}))

	sc := bufio.NewScanner(resp.Body)
	var eventLine, dataLine string
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "event:") {
			eventLine = line
		}
		if strings.HasPrefix(line, "data:") {
			dataLine = line
			break
		}
	}
	assert.Equal(t, "event:"+events.Calculated, eventLine)
	assert.Contains(t, dataLine, `"bmi":22.5`)
}

func TestLocaleAndGaugeHandlers(t *testing.T) {
	d := newTestDaemon(t, "")

	w := d.do(t, http.MethodGet, "/locales/ko.json", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "정상")
	assert.Equal(t, http.StatusOK, d.do(t, http.MethodGet, "/js/locales/fr.json", "").Code)
	assert.Equal(t, http.StatusNotFound, d.do(t, http.MethodGet, "/locales/xx.json", "").Code)

	w = d.do(t, http.MethodGet, "/gauge.svg?bmi=22.5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<svg")

	w = d.do(t, http.MethodGet, "/gauge.png?bmi=31&dpr=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "\x89PNG"))

	assert.Equal(t, http.StatusBadRequest, d.do(t, http.MethodGet, "/gauge.png?dpr=abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, d.do(t, http.MethodGet, "/gauge.svg?bmi=x", "").Code)

	assert.Equal(t, "v0.0.0-dev", decodeBody[string](t, d.do(t, http.MethodGet, "/version", "")))
}

func TestCacheWithoutOrigin(t *testing.T) {
	d := newTestDaemon(t, "")

	w := d.do(t, http.MethodGet, "/api/cache", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[client.CacheResponse](t, w)
	assert.Equal(t, offline.DefaultName, resp.Status.Name)
	assert.Empty(t, resp.Status.Paths)

	assert.Equal(t, http.StatusBadRequest, d.do(t, http.MethodPost, "/api/cache/refresh", "").Code)
	assert.Equal(t, http.StatusNotFound, d.do(t, http.MethodGet, "/offline/index.html", "").Code)
}

func TestCacheRefreshAndOfflineProxy(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "origin "+r.URL.Path)
	}))

	d := newTestDaemon(t, origin.URL)

	w := d.do(t, http.MethodPost, "/api/cache/refresh", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[client.CacheResponse](t, w)
	assert.Len(t, resp.Status.Paths, len(offline.DefaultManifest()))
	assert.False(t, resp.Refresh.LastRun.IsZero())

	w = d.do(t, http.MethodGet, "/offline/css/style.css", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "origin /css/style.css", w.Body.String())

	origin.Close()

	w = d.do(t, http.MethodGet, "/offline/css/style.css", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "origin /css/style.css", w.Body.String())
	assert.Equal(t, "hit", w.Header().Get("X-Offline-Cache"))

	w = d.do(t, http.MethodGet, "/offline/some/page", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "origin /index.html", w.Body.String())

	w = d.do(t, http.MethodPost, "/api/cache/refresh", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Len(t, decodeBody[client.CacheResponse](t, d.do(t, http.MethodGet, "/api/cache", "")).Status.Paths,
		len(offline.DefaultManifest()))
}

func TestNewServerRejectsBadOrigin(t *testing.T) {
	_, err := NewServer(Options{Origin: "not a url", Cache: offline.New(storage.NewMemory(), "")})
	assert.Error(t, err)
}
