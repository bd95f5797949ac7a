// Package template substitutes "{name}" placeholders inside rule content,
// file-path strings, pattern texts, and status-code tokens against a
// request context, enabling fully parameterized specs.
package template

import (
	"regexp"
	"strings"

	"echoserver/internal/echo/reqctx"
	"echoserver/internal/util/jsonutil"
)

// placeholderRe only matches a well-formed name between braces (a letter or
// underscore, then letters, digits, '_', '.' or '-', so header names such as
// X-Token are accepted), which is what implements the "literal brace" escape
// rule: a brace adjacent to anything else (a quote, a space, another brace)
// simply never matches and passes through untouched.
var placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_.\-]*)\}`)

// Interpolate replaces every placeholder in s with its resolved value.
func Interpolate(s string, ctx *reqctx.Context) string {
	return placeholderRe.ReplaceAllStringFunc(s, func(match string) string {
		name := match[1 : len(match)-1]
		return resolve(name, ctx)
	})
}

func resolve(name string, ctx *reqctx.Context) string {
	switch {
	case strings.HasPrefix(name, "json."):
		v, ok := jsonutil.LookupPath(ctx.JSON, name[len("json."):])
		if !ok {
			return ""
		}
		return v
	case strings.HasPrefix(name, "header."):
		v, _ := ctx.Header(name[len("header."):])
		return v
	default:
		return ctx.QueryParams[name]
	}
}
