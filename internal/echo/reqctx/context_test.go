package reqctx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBuildSplitsPathParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/users/id:42/profile", nil)
	ctx := Build(req, nil)
	if ctx.NormalizedPath != "/users/profile" {
		t.Fatalf("got normalized path %q", ctx.NormalizedPath)
	}
	if ctx.PathParams["id"] != "42" {
		t.Fatalf("got path params %+v", ctx.PathParams)
	}
	if ctx.QueryParams["id"] != "42" {
		t.Fatalf("path params should be merged into query params, got %+v", ctx.QueryParams)
	}
}

func TestBuildQueryParamsTakeFirstValue(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?name=a&name=b", nil)
	ctx := Build(req, nil)
	if ctx.QueryParams["name"] != "a" {
		t.Fatalf("got %q", ctx.QueryParams["name"])
	}
}

func TestBuildInvalidJSONBodyYieldsEmptyTree(t *testing.T) {
	body := []byte("not json")
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(string(body)))
	ctx := Build(req, body)
	if _, ok := ctx.JSON.(map[string]any); !ok {
		t.Fatalf("got JSON tree %T, want empty map[string]any", ctx.JSON)
	}
}

func TestHeaderLookupNormalizesUnderscoreAndHyphen(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "abc")
	ctx := Build(req, nil)
	v, ok := ctx.Header("X_Request_Id")
	if !ok || v != "abc" {
		t.Fatalf("got %q, %v", v, ok)
	}
}
