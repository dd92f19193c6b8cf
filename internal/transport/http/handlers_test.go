package transporthttp_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/kalendas/internal/config"
	"example.com/kalendas/internal/log"
	"example.com/kalendas/internal/resource"
	"example.com/kalendas/internal/storage/driver"
	transport "example.com/kalendas/internal/transport/http"
)

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("down") }

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(newHandler(t))
	t.Cleanup(srv.Close)
	return srv
}

func newHandler(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()

	cfg := config.Service{ReferencePolicy: config.ReferenceTolerate, RequirePositiveDuration: true, MaxBodyBytes: 1 << 16}
	cfg.StoreDriver = config.DriverBolt
	cfg.BoltPath = filepath.Join(t.TempDir(), "kalendas.db")
	cfg.StoreTimeout = time.Second

	store, err := driver.Open(ctx, cfg.StoreConfig)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(ctx) })

	cals, err := resource.NewCalendarService(ctx, store, cfg)
	require.NoError(t, err)
	evs, err := resource.NewEventService(ctx, store, cfg)
	require.NoError(t, err)

	deps := &transport.ServerDeps{Name: "Calendar", Store: store, MaxBodyBytes: cfg.MaxBodyBytes, Log: log.Discard()}
	return deps.Router(
		transport.Resource("calendars", cals),
		transport.Resource("events", evs),
	)
}

func do(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if resp.StatusCode != http.StatusNoContent && strings.Contains(resp.Header.Get("Content-Type"), "json") {
		var raw any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
		if m, ok := raw.(map[string]any); ok {
			out = m
		} else {
			out = map[string]any{"items": raw}
		}
	}
	return resp, out
}

func TestCalendarLifecycle(t *testing.T) {
	srv := newServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/calendars/",
		`{"title":"City Sports","organizer":"City Hall","keywords":["sport","city"],"isPublic":true,"parentCalendarId":null}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id, _ := body["id"].(string)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, true, body["isPublic"])

	resp, body = do(t, http.MethodPut, srv.URL+"/calendars/"+id, `{"title":"City Sports 2025"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "City Sports 2025", body["title"])
	assert.Equal(t, "City Hall", body["organizer"])

	resp, body = do(t, http.MethodGet, srv.URL+"/calendars/?organizer=hall", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, id, items[0].(map[string]any)["id"])

	resp, _ = do(t, http.MethodDelete, srv.URL+"/calendars/"+id, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = do(t, http.MethodDelete, srv.URL+"/calendars/"+id, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body["detail"], id)

	resp, _ = do(t, http.MethodGet, srv.URL+"/calendars/"+id, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCollectionPathWithoutSlash(t *testing.T) {
	srv := newServer(t)

	resp, _ := do(t, http.MethodPost, srv.URL+"/calendars", `{"title":"t","organizer":"o"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := do(t, http.MethodGet, srv.URL+"/calendars", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["items"], 1)
}

func TestEmptyListIsArray(t *testing.T) {
	srv := newServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/events/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{}, body["items"])
}

func TestRejectedInput(t *testing.T) {
	srv := newServer(t)

	cases := []struct {
		name, method, path, body string
		status                   int
	}{
		{"unknown field", http.MethodPost, "/calendars/", `{"title":"t","organizer":"o","colour":"red"}`, http.StatusUnprocessableEntity},
		{"missing title", http.MethodPost, "/calendars/", `{"organizer":"o"}`, http.StatusUnprocessableEntity},
		{"not an object", http.MethodPost, "/calendars/", `[1,2]`, http.StatusUnprocessableEntity},
		{"null body", http.MethodPost, "/calendars/", `null`, http.StatusUnprocessableEntity},
		{"trailing data", http.MethodPost, "/calendars/", `{"title":"t","organizer":"o"}{"x":1}`, http.StatusUnprocessableEntity},
		{"trailing garbage", http.MethodPost, "/calendars/", `{"title":"t","organizer":"o"} x`, http.StatusUnprocessableEntity},
		{"zero duration", http.MethodPost, "/events/", `{"calendarId":"` + uuid.NewString() + `","title":"t","startTime":"2025-05-01T09:00:00","durationMinutes":0,"place":"p","organizer":"o"}`, http.StatusUnprocessableEntity},
		{"bad range bound", http.MethodGet, "/events/?durationMinMinutes=lots", "", http.StatusUnprocessableEntity},
		{"bad id", http.MethodGet, "/events/123", "", http.StatusUnprocessableEntity},
		{"unknown id", http.MethodGet, "/events/" + uuid.NewString(), "", http.StatusNotFound},
		{"unknown id on update", http.MethodPut, "/events/" + uuid.NewString(), `{"title":"x"}`, http.StatusNotFound},
		{"method", http.MethodPatch, "/events/" + uuid.NewString(), "", http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, _ := do(t, tc.method, srv.URL+tc.path, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestRequireJSON(t *testing.T) {
	srv := newServer(t)

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/calendars/", strings.NewReader(`{"title":"t","organizer":"o"}`))
	req.Header.Set("Content-Type", "text/plain")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestBodyLimit(t *testing.T) {
	h := newHandler(t)

	big := `{"title":"` + strings.Repeat("x", 1<<17) + `","organizer":"o"}`
	req := httptest.NewRequest(http.MethodPost, "/calendars/", strings.NewReader(big))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestEventTimestampsRenderInUTC(t *testing.T) {
	srv := newServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/events/",
		`{"calendarId":"`+uuid.NewString()+`","title":"Run","startTime":"2025-05-01T11:00:00+02:00","durationMinutes":60,"place":"Park","organizer":"Club"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "2025-05-01T09:00:00Z", body["startTime"])

	resp, body = do(t, http.MethodGet, srv.URL+"/events/?startTimeFrom=2025-05-01T09:00:00&durationMaxMinutes=60", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["items"], 1)
}

func TestServiceHealthEndpoints(t *testing.T) {
	srv := newServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["message"], "Calendar")

	resp, _ = do(t, http.MethodGet, srv.URL+"/readyz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	deps := &transport.ServerDeps{Name: "Event", Store: failingPinger{}, Log: log.Discard()}
	rec := httptest.NewRecorder()
	deps.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
