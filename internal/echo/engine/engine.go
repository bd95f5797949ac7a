// Package engine ties the lexer, parser, pattern matcher, template
// interpolator, and counter store together into the recursive rule
// selector described by the response-specification grammar.
package engine

import (
	"strings"
	"time"

	"echoserver/internal/echo/counter"
	"echoserver/internal/echo/pattern"
	"echoserver/internal/echo/reqctx"
	"echoserver/internal/echo/respspec"
	"echoserver/internal/echo/template"
	"echoserver/internal/safeio"
	"echoserver/internal/util/jsonutil"
)

// Result is the fully resolved outcome of one evaluation: what the
// response emitter writes to the wire.
type Result struct {
	StatusCode int
	Delay      int // milliseconds
	Headers    map[string]string
	Body       string
}

// Engine evaluates an _echo_response spec (inline or file-rooted) against a
// request context. FS roots every file: location at a fixed directory;
// Store holds the process-wide round-robin counters.
type Engine struct {
	FS            *safeio.SafeFS
	Store         *counter.Store
	MaxDepth      int
	DefaultStatus int
	DefaultDelay  int // milliseconds
}

func New(fs *safeio.SafeFS, store *counter.Store, maxDepth int) *Engine {
	if maxDepth <= 0 {
		maxDepth = 16
	}
	return &Engine{FS: fs, Store: store, MaxDepth: maxDepth, DefaultStatus: 200}
}

// Resolve evaluates the top-level spec text for a request, inheriting the
// engine's configured default status/delay and zero as the default "after".
func (e *Engine) Resolve(ctx *reqctx.Context, text string) Result {
	now := time.Now().UnixMilli()
	res, ok := e.evaluate("", e.DefaultStatus, e.DefaultDelay, 0, text, ctx, now, 1, map[string]bool{})
	if !ok {
		return Result{StatusCode: res.StatusCode, Delay: res.Delay, Headers: map[string]string{}, Body: ""}
	}
	return res
}

// evaluate implements spec's rule-selector pseudocode, including the two
// documented open-question resolutions: a matched .echo include's content
// always wins even if the rule that produced it lives deep in the file,
// while an empty/no-match include falls through to the next rule rather
// than short-circuiting the whole request; and the innermost selected
// variant's headers fully replace outer headers.
func (e *Engine) evaluate(source string, defaultStatus, defaultDelay, defaultAfter int, text string, ctx *reqctx.Context, nowMillis int64, depth int, visited map[string]bool) (Result, bool) {
	status, delay, rules := respspec.Parse(source, defaultStatus, defaultDelay, defaultAfter, template.Interpolate(text, ctx))
	lastReset := e.Store.LastReset()

	for _, rule := range rules {
		if nowMillis-lastReset <= int64(rule.After) {
			continue
		}
		if rule.SelectorType != respspec.SelectorNone && !e.matches(rule, ctx) {
			continue
		}

		key := rule.IdentityKey(ctx.NormalizedPath)
		n := e.Store.Next(key)
		slot := rule.Variants[n%len(rule.Variants)]

		for _, loc := range slot.Locations {
			if loc.Kind == respspec.LocationFile {
				res, ok := e.resolveFileLocation(rule, loc, ctx, nowMillis, depth, visited)
				if ok {
					return res, true
				}
				continue
			}

			headers := slot.Headers
			if headers == nil {
				headers = map[string]string{}
			}
			return Result{
				StatusCode: rule.StatusCode,
				Delay:      rule.Delay,
				Headers:    headers,
				Body:       template.Interpolate(loc.Content, ctx),
			}, true
		}
	}

	return Result{StatusCode: status, Delay: delay, Headers: map[string]string{}, Body: ""}, false
}

func (e *Engine) resolveFileLocation(rule *respspec.Rule, loc respspec.Location, ctx *reqctx.Context, nowMillis int64, depth int, visited map[string]bool) (Result, bool) {
	path := template.Interpolate(loc.Content, ctx)
	raw, err := e.FS.SafeReadFile(path)
	if err != nil {
		return Result{}, false
	}

	if !strings.HasSuffix(path, ".echo") {
		return Result{
			StatusCode: rule.StatusCode,
			Delay:      rule.Delay,
			Headers:    map[string]string{},
			Body:       string(raw),
		}, true
	}

	if visited[path] || depth >= e.MaxDepth {
		return Result{}, false
	}
	nextVisited := make(map[string]bool, len(visited)+1)
	for k := range visited {
		nextVisited[k] = true
	}
	nextVisited[path] = true

	return e.evaluate(path, rule.StatusCode, rule.Delay, rule.After, string(raw), ctx, nowMillis, depth+1, nextVisited)
}

// matches evaluates a rule's selector predicate against ctx, interpolating
// both the selector target name and the pattern text first so fully
// parameterized specs work.
func (e *Engine) matches(rule *respspec.Rule, ctx *reqctx.Context) bool {
	patternStr := template.Interpolate(rule.Pattern, ctx)

	var target string
	switch rule.SelectorType {
	case respspec.SelectorPath:
		target = ctx.Path
	case respspec.SelectorParam:
		target = ctx.QueryParams[template.Interpolate(rule.SelectorTarget, ctx)]
	case respspec.SelectorHeader:
		v, _ := ctx.Header(template.Interpolate(rule.SelectorTarget, ctx))
		target = v
	case respspec.SelectorJSON:
		v, ok := jsonutil.LookupPath(ctx.JSON, template.Interpolate(rule.SelectorTarget, ctx))
		if ok {
			target = v
		}
	case respspec.SelectorBody:
		target = string(ctx.Body)
	default:
		return true
	}

	ok, err := pattern.Matches(patternStr, target)
	if err != nil {
		return false
	}
	return ok
}
