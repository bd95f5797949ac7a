package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echoserver/internal/echo/counter"
	"echoserver/internal/echo/engine"
	"echoserver/internal/safeio"
)

func newHandler(t *testing.T) *EchoHandler {
	t.Helper()
	fs, err := safeio.NewSafeFS(t.TempDir())
	require.NoError(t, err)
	return NewEchoHandler(engine.New(fs, counter.NewStore(), 16))
}

func doEcho(t *testing.T, h *EchoHandler, spec string) *httptest.ResponseRecorder {
	t.Helper()
	target := "/foo?_echo_response=" + url.QueryEscape(spec)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestEchoHandlerStaticWithStatus(t *testing.T) {
	h := newHandler(t)
	rec := doEcho(t, h, "201 created")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "created", rec.Body.String())
}

func TestEchoHandlerDefaultContentType(t *testing.T) {
	h := newHandler(t)
	rec := doEcho(t, h, "hello")
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestEchoHandlerNamedPathParameter(t *testing.T) {
	h := newHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/users/id:7?_echo_response="+url.QueryEscape("hi {id}"), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "hi 7", rec.Body.String())
}

func TestEchoHandlerMatchesSecondRule(t *testing.T) {
	h := newHandler(t)
	rec := doEcho(t, h, "PATH:/zzz/ first\nPATH:/foo/ second")
	assert.Equal(t, "second", rec.Body.String())
}

func TestEchoHandlerRoundRobinAcrossRequests(t *testing.T) {
	h := newHandler(t)
	spec := "PATH:/foo/\n--[1]--\nfirst\n--[2]--\nsecond"
	first := doEcho(t, h, spec)
	second := doEcho(t, h, spec)
	third := doEcho(t, h, spec)
	assert.Equal(t, "first\n", first.Body.String())
	assert.Equal(t, "second", second.Body.String())
	assert.Equal(t, "first\n", third.Body.String())
}

func TestEchoHandlerResponseHeadersApplied(t *testing.T) {
	h := newHandler(t)
	rec := doEcho(t, h, "text:HEADER:X-Custom:yes\nbody")
	assert.Equal(t, "yes", rec.Header().Get("X-Custom"))
	assert.Equal(t, "body", rec.Body.String())
}
