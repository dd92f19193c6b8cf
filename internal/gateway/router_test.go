package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/kalendas/internal/log"
)

type seen struct {
	method, path, query, body, xff, contentType string
}

// capture records what the fake upstream received.
type capture struct {
	hits atomic.Int32
	last atomic.Pointer[seen]
}

func (c *capture) got() seen {
	if s := c.last.Load(); s != nil {
		return *s
	}
	return seen{}
}

func upstream(t *testing.T, status int, reply string, c *capture) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.hits.Add(1)
		b, _ := io.ReadAll(r.Body)
		c.last.Store(&seen{
			method:      r.Method,
			path:        r.URL.Path,
			query:       r.URL.RawQuery,
			body:        string(b),
			xff:         r.Header.Get("X-Forwarded-For"),
			contentType: r.Header.Get("Content-Type"),
		})
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Upstream", "calendar")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func gatewayFor(t *testing.T, services map[string]string, timeout time.Duration) http.Handler {
	t.Helper()
	return gatewayWith(t, services, Options{Timeout: timeout})
}

func gatewayWith(t *testing.T, services map[string]string, opts Options) http.Handler {
	t.Helper()
	reg, err := NewRegistry(services)
	require.NoError(t, err)
	opts.Log = log.Discard()
	return NewRouter(reg, opts).Handler()
}

func TestUnknownServiceIsNotForwarded(t *testing.T) {
	var c capture
	up := upstream(t, http.StatusOK, `[]`, &c)
	h := gatewayFor(t, map[string]string{"calendar": up.URL}, time.Second)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/unknownservice/x", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknownservice")
	assert.EqualValues(t, 0, c.hits.Load())
}

func TestForwardRelaysStatusAndBody(t *testing.T) {
	var c capture
	up := upstream(t, http.StatusOK, `[{"id":"1","title":"City Sports"}]`, &c)
	h := gatewayFor(t, map[string]string{"calendar": up.URL}, time.Second)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/calendar/calendars/?organizer=hall&keywords=a&keywords=b", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `[{"id":"1","title":"City Sports"}]`, rec.Body.String())
	assert.Equal(t, "calendar", rec.Header().Get("X-Upstream"))
	got := c.got()
	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, "/calendars/", got.path)
	assert.Equal(t, "organizer=hall&keywords=a&keywords=b", got.query)
	assert.NotEmpty(t, got.xff)
}

func TestForwardPreservesMethodAndBody(t *testing.T) {
	var c capture
	up := upstream(t, http.StatusCreated, `{"id":"abc"}`, &c)
	h := gatewayFor(t, map[string]string{"event": up.URL + "/v1"}, time.Second)

	req := httptest.NewRequest(http.MethodPost, "/event/events/", strings.NewReader(`{"title":"Run"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	got := c.got()
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/v1/events/", got.path)
	assert.Equal(t, `{"title":"Run"}`, got.body)
	assert.Equal(t, "application/json", got.contentType)
}

func TestUpstreamErrorStatusIsRelayed(t *testing.T) {
	var c capture
	up := upstream(t, http.StatusNotFound, `{"detail":"calendar with id x not found"}`, &c)
	h := gatewayFor(t, map[string]string{"calendar": up.URL}, time.Second)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/calendar/calendars/x", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"calendar with id x not found"}`, rec.Body.String())
	got := c.got()
	assert.Equal(t, http.MethodDelete, got.method)
}

func TestUnreachableUpstreamIsBadGateway(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	addr := dead.URL
	dead.Close()

	h := gatewayFor(t, map[string]string{"calendar": addr}, time.Second)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/calendar/calendars/", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "service 'calendar' unavailable")
}

func TestSlowUpstreamTimesOut(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(slow.Close)

	h := gatewayFor(t, map[string]string{"calendar": slow.URL}, 50*time.Millisecond)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/calendar/calendars/", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestOversizeBodyWithLengthIsRejectedAtEdge(t *testing.T) {
	var c capture
	up := upstream(t, http.StatusCreated, `{"id":"abc"}`, &c)
	h := gatewayWith(t, map[string]string{"calendar": up.URL}, Options{Timeout: time.Second, MaxBodyBytes: 150})

	body := `{"title":"` + strings.Repeat("x", 200) + `","organizer":"o"}`
	req := httptest.NewRequest(http.MethodPost, "/calendar/calendars/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.NotContains(t, rec.Body.String(), "unavailable")
	assert.EqualValues(t, 0, c.hits.Load())
}

func TestOversizeStreamedBodyIsNotBadGateway(t *testing.T) {
	var c capture
	up := upstream(t, http.StatusCreated, `{"id":"abc"}`, &c)
	h := gatewayWith(t, map[string]string{"calendar": up.URL}, Options{Timeout: time.Second, MaxBodyBytes: 150})

	body := `{"title":"` + strings.Repeat("x", 200) + `","organizer":"o"}`
	// An opaque reader leaves the length unknown, so the limit trips mid-stream.
	req := httptest.NewRequest(http.MethodPost, "/calendar/calendars/", io.NopCloser(strings.NewReader(body)))
	req.Header.Set("Content-Type", "application/json")
	require.EqualValues(t, -1, req.ContentLength)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.NotContains(t, rec.Body.String(), "unavailable")
}

func TestBodyWithinLimitIsForwarded(t *testing.T) {
	var c capture
	up := upstream(t, http.StatusCreated, `{"id":"abc"}`, &c)
	h := gatewayWith(t, map[string]string{"calendar": up.URL}, Options{Timeout: time.Second, MaxBodyBytes: 150})

	req := httptest.NewRequest(http.MethodPost, "/calendar/calendars/", strings.NewReader(`{"title":"Sports","organizer":"o"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.EqualValues(t, 1, c.hits.Load())
}

func TestWelcomeAndMethods(t *testing.T) {
	h := gatewayFor(t, map[string]string{"calendar": "http://calendar_service:8000"}, time.Second)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, welcome, body["message"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/calendar/calendars/x", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPreflightAnsweredAtEdge(t *testing.T) {
	var c capture
	up := upstream(t, http.StatusOK, `[]`, &c)
	h := gatewayFor(t, map[string]string{"calendar": up.URL}, time.Second)

	req := httptest.NewRequest(http.MethodOptions, "/calendar/calendars/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Less(t, rec.Code, 300)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.EqualValues(t, 0, c.hits.Load())
}

func TestRegistryRejectsRelativeAddress(t *testing.T) {
	_, err := NewRegistry(map[string]string{"calendar": "calendar_service:8000/x"})
	assert.Error(t, err)
}

func TestSingleJoiningSlash(t *testing.T) {
	assert.Equal(t, "/calendars/", singleJoiningSlash("", "/calendars/"))
	assert.Equal(t, "/v1/calendars", singleJoiningSlash("/v1/", "/calendars"))
	assert.Equal(t, "/v1/calendars", singleJoiningSlash("/v1", "calendars"))
	assert.Equal(t, "/v1", singleJoiningSlash("/v1", ""))
}
