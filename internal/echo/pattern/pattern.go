// Package pattern parses and evaluates the "[!]/<regex>/[i]" pattern spec
// grammar used by selector rules. Parsing is a straight prefix/suffix strip,
// not a regex-of-regexes: spec's Design Notes call this out explicitly.
package pattern

import (
	"fmt"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Spec is a parsed pattern: [!]/<regex>/[i].
type Spec struct {
	Negate          bool
	CaseInsensitive bool
	Body            string // the regex source, with delimiters removed
}

// compiledCache memoizes the compiled *regexp.Regexp for a raw pattern
// string. This caches the compiled pattern object only, never rule content
// or file contents — spec's invariant that files are re-read on every
// evaluation is untouched by this cache.
var compiledCache, _ = lru.New[string, *cacheEntry](512)

type cacheEntry struct {
	spec *Spec
	re   *regexp.Regexp
	err  error
}

// Parse splits raw into its negate flag, case-insensitivity flag, and regex
// body: strip a leading "!", strip an optional trailing "i", then strip one
// leading and one trailing "/".
func Parse(raw string) (*Spec, error) {
	s := raw
	spec := &Spec{}

	if strings.HasPrefix(s, "!") {
		spec.Negate = true
		s = s[1:]
	}

	if !strings.HasPrefix(s, "/") {
		return nil, fmt.Errorf("pattern: missing leading '/' in %q", raw)
	}

	if strings.HasSuffix(s, "i") {
		spec.CaseInsensitive = true
		s = s[:len(s)-1]
	}

	if !strings.HasSuffix(s, "/") || len(s) < 2 {
		return nil, fmt.Errorf("pattern: missing trailing '/' in %q", raw)
	}

	spec.Body = s[1 : len(s)-1]
	return spec, nil
}

// compile returns the compiled regex for raw, consulting the shared LRU
// cache keyed by the exact pattern-spec string.
func compile(raw string) (*Spec, *regexp.Regexp, error) {
	if entry, ok := compiledCache.Get(raw); ok {
		return entry.spec, entry.re, entry.err
	}

	spec, err := Parse(raw)
	if err != nil {
		entry := &cacheEntry{spec: nil, re: nil, err: err}
		compiledCache.Add(raw, entry)
		return nil, nil, err
	}

	body := spec.Body
	if spec.CaseInsensitive {
		body = "(?i)" + body
	}
	re, err := regexp.Compile(body)
	entry := &cacheEntry{spec: spec, re: re, err: err}
	compiledCache.Add(raw, entry)
	return spec, re, err
}

// Matches reports whether text satisfies the pattern spec raw, honoring
// negation: a "!/re/" pattern matches when the regex does NOT match.
func Matches(raw string, text string) (bool, error) {
	spec, re, err := compile(raw)
	if err != nil {
		return false, err
	}
	found := re.MatchString(text)
	if spec.Negate {
		return !found, nil
	}
	return found, nil
}
