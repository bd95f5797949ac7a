// Package reqctx builds the read-only snapshot of an incoming request that
// the rest of the echo engine evaluates against: path, query/path params,
// headers, and a lenient JSON body tree.
package reqctx

import (
	"net/http"
	"regexp"
	"strings"

	"echoserver/internal/util/jsonutil"
)

var pathParamSegment = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*):(.*)$`)

// Context is an immutable snapshot of one request. Nothing on it is mutated
// after Build returns, so it can be shared across recursive file-include
// evaluations without risk of aliasing.
type Context struct {
	Path           string
	NormalizedPath string
	PathParams     map[string]string
	QueryParams    map[string]string // pathParams merged in, taking precedence
	Headers        map[string]string // canonical header name -> first value
	Body           []byte
	JSON           any // decoded tree, or an empty map on decode failure
}

// Build extracts everything the selector and interpolator may reference
// from r. It never returns an error: a body that isn't valid JSON yields an
// empty JSON tree rather than failing the request (spec's "maximally
// tolerant core").
func Build(r *http.Request, body []byte) *Context {
	ctx := &Context{
		Path:       r.URL.Path,
		PathParams: map[string]string{},
		Headers:    map[string]string{},
		Body:       body,
	}

	ctx.NormalizedPath, ctx.PathParams = splitPathParams(r.URL.Path)

	ctx.QueryParams = map[string]string{}
	for name, values := range r.URL.Query() {
		if len(values) > 0 {
			ctx.QueryParams[name] = values[0]
		}
	}
	for name, value := range ctx.PathParams {
		ctx.QueryParams[name] = value
	}

	for name, values := range r.Header {
		if len(values) > 0 {
			ctx.Headers[http.CanonicalHeaderKey(name)] = values[0]
		}
	}

	var tree any
	if len(body) > 0 {
		if err := jsonutil.Unmarshal(body, &tree); err != nil {
			tree = map[string]any{}
		}
	} else {
		tree = map[string]any{}
	}
	ctx.JSON = tree

	return ctx
}

// splitPathParams strips "name:value" segments from path and returns the
// normalized path (used to key the round-robin counter) alongside the
// extracted params.
func splitPathParams(path string) (string, map[string]string) {
	params := map[string]string{}
	segments := strings.Split(path, "/")
	kept := make([]string, 0, len(segments))
	for _, seg := range segments {
		if m := pathParamSegment.FindStringSubmatch(seg); m != nil {
			params[m[1]] = m[2]
			continue
		}
		kept = append(kept, seg)
	}
	return strings.Join(kept, "/"), params
}

// Header looks up a header value using the interpolator's canonicalization
// rule: underscores and hyphens are interchangeable, the result is
// Title-Cased the way net/http canonicalizes header names.
func (c *Context) Header(name string) (string, bool) {
	canon := http.CanonicalHeaderKey(strings.ReplaceAll(name, "_", "-"))
	v, ok := c.Headers[canon]
	return v, ok
}
