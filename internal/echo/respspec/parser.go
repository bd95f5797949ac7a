// Package respspec implements the response-specification grammar: the
// lexer/normalizer, the line-priority parser, and the rules adjuster that
// lifts HEADER: directives and trims rule content. It turns the raw text of
// an `_echo_response` value (or an included .echo file) into an ordered
// list of Rule values ready for selection.
package respspec

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	statusRe = regexp.MustCompile(`(?s)^\s*(\d{3})\b\s*(.*)$`)
	delayRe  = regexp.MustCompile(`(?s)^\s*delay\s*=(\d+)ms\b\s*(.*)$`)
	afterRe  = regexp.MustCompile(`(?s)^\s*after\s*=(\d+)ms\b\s*(.*)$`)

	hyphenRunRe = regexp.MustCompile(`^\s*-{2,}`)
	scopeSepRe  = regexp.MustCompile(`(?s)^\s*-{2,}\s*(.*)$`)
	seqMarkerRe = regexp.MustCompile(`(?s)^\s*--\[\s*\d*\s*\]--\s*(.*)$`)

	// HEADER:/PARAM:/JSON: carry a selector target between the keyword and
	// the pattern; PATH:/BODY: do not.
	targetedSelectorRe = regexp.MustCompile(`(?s)^\s*(HEADER|PARAM|JSON):\s*(.+?)\s*(!?/.*?/i?)\s*(?:(\d{3})\b\s*)?(?:delay=(\d+)ms\s*)?(?:after=(\d+)ms\s*)?(?:(text|file):)?\s*(.*)$`)
	untargetedSelectorRe = regexp.MustCompile(`(?s)^\s*(PATH|BODY):\s*(!?/.*?/i?)\s*(?:(\d{3})\b\s*)?(?:delay=(\d+)ms\s*)?(?:after=(\d+)ms\s*)?(?:(text|file):)?\s*(.*)$`)

	explicitLocationRe = regexp.MustCompile(`(?s)^\s*(?:(\d{3})\b\s*)?(?:delay=(\d+)ms\s*)?(?:after=(\d+)ms\s*)?(text|file):\s*(.*)$`)
	fallbackRe          = regexp.MustCompile(`(?s)^(?:\s*(\d{3})\b)?(?:\s*delay=(\d+)ms)?(?:\s*after=(\d+)ms)?(.*)$`)

	commentRe = regexp.MustCompile(`^\s*#`)
	blankRe   = regexp.MustCompile(`^\s*$`)

	headerLinePat = regexp.MustCompile(`^\s*HEADER:\s*(.+)\s*:\s*(.*)$`)
)

// wipSlot mirrors the original implementation's two parallel lists: one
// location-kind entry per explicit location directive, and a flat value
// list that additionally accumulates raw continuation lines after the last
// kind entry. The two are reconciled into final Locations during adjust.
type wipSlot struct {
	kinds  []string // "text" or "file", one per explicit location directive
	values []string
}

type wipRule struct {
	source     string
	selType    SelectorType
	selTarget  string
	pattern    string
	statusCode int
	delay      int
	after      int
	slots      []wipSlot
}

// Parse turns text (already template-interpolated by the caller) into an
// ordered rule list, given the inherited global defaults. It returns the
// effective default status/delay after any global directives in text have
// been applied, alongside the rules.
func Parse(source string, defaultStatus, defaultDelay, defaultAfter int, text string) (status int, delay int, rules []*Rule) {
	p := &parser{
		source:      source,
		statusCode:  defaultStatus,
		delay:       defaultDelay,
		after:       defaultAfter,
		globalScope: true,
		lines:       normalize(text),
	}
	for len(p.lines) > 0 {
		line := p.lines[0]
		p.lines = p.lines[1:]
		p.processLine(line)
		if len(p.rules) > 0 {
			p.globalScope = false
		}
	}
	return p.statusCode, p.delay, adjust(source == "", p.rules)
}

type parser struct {
	source      string
	statusCode  int
	delay       int
	after       int
	globalScope bool
	isSequenced bool
	lines       []string
	rules       []*wipRule
}

func (p *parser) pushFront(s string) {
	if s == "" {
		return
	}
	p.lines = append([]string{s}, p.lines...)
}

func (p *parser) processLine(line string) {
	switch {
	case commentRe.MatchString(line):
		return

	case p.globalScope && statusRe.MatchString(line):
		m := statusRe.FindStringSubmatch(line)
		p.statusCode, _ = strconv.Atoi(m[1])
		p.pushFront(m[2])
		return

	case p.globalScope && delayRe.MatchString(line):
		m := delayRe.FindStringSubmatch(line)
		p.delay, _ = strconv.Atoi(m[1])
		p.pushFront(m[2])
		return

	case p.globalScope && afterRe.MatchString(line):
		m := afterRe.FindStringSubmatch(line)
		p.after, _ = strconv.Atoi(m[1])
		p.pushFront(m[2])
		return

	case hyphenRunRe.MatchString(line) && !seqMarkerRe.MatchString(line):
		p.globalScope = false
		if m := scopeSepRe.FindStringSubmatch(line); m != nil {
			p.pushFront(m[1])
		}
		return

	case targetedSelectorRe.MatchString(line):
		m := targetedSelectorRe.FindStringSubmatch(line)
		p.addRule(selectorFromKeyword(m[1]), m[2], m[3], optInt(m[4]), optInt(m[5]), optInt(m[6]), m[7], m[8])
		p.isSequenced = false
		return

	case untargetedSelectorRe.MatchString(line):
		m := untargetedSelectorRe.FindStringSubmatch(line)
		p.addRule(selectorFromKeyword(m[1]), "", m[2], optInt(m[3]), optInt(m[4]), optInt(m[5]), m[6], m[7])
		p.isSequenced = false
		return

	case seqMarkerRe.MatchString(line):
		m := seqMarkerRe.FindStringSubmatch(line)
		p.beginOrAdvanceSequence()
		p.pushFront(m[1])
		return

	case explicitLocationRe.MatchString(line):
		m := explicitLocationRe.FindStringSubmatch(line)
		p.addOrAppend(optInt(m[1]), optInt(m[2]), optInt(m[3]), m[4], m[5])
		return

	case p.currentlyProcessingTextRule():
		p.appendContinuation(line)
		return

	case blankRe.MatchString(line):
		return

	default:
		m := fallbackRe.FindStringSubmatch(line)
		p.addOrAppend(optInt(m[1]), optInt(m[2]), optInt(m[3]), "text", m[4])
		return
	}
}

func selectorFromKeyword(kw string) SelectorType {
	switch kw {
	case "HEADER":
		return SelectorHeader
	case "PATH":
		return SelectorPath
	case "PARAM":
		return SelectorParam
	case "JSON":
		return SelectorJSON
	case "BODY":
		return SelectorBody
	default:
		return SelectorNone
	}
}

func optInt(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// addRule always creates a brand-new rule: selector lines terminate any
// in-progress sequenced content (mirrors the original's reset_sequence=true
// default for HEADER/PATH/PARAM/JSON/BODY lines).
func (p *parser) addRule(selType SelectorType, target, pattern string, status, delay, after *int, kind, value string) {
	statusCode := p.statusCode
	if status != nil {
		statusCode = *status
	}
	delayMs := p.delay
	if delay != nil {
		delayMs = *delay
	}
	afterMs := p.after
	if after != nil {
		afterMs = *after
	}
	if kind == "" {
		kind = "text"
	}
	rule := &wipRule{
		source:     p.source,
		selType:    selType,
		selTarget:  target,
		pattern:    pattern,
		statusCode: statusCode,
		delay:      delayMs,
		after:      afterMs,
		slots:      []wipSlot{{kinds: []string{kind}, values: []string{value}}},
	}
	p.rules = append(p.rules, rule)
}

// addOrAppend implements the explicit-location and fallback-implicit-text
// dispatch: while sequenced, it appends a new location to the current
// slot; otherwise it starts a brand-new rule. Neither path resets
// isSequenced (mirrors reset_sequence=false in the original).
func (p *parser) addOrAppend(status, delay, after *int, kind, value string) {
	if kind == "" {
		kind = "text"
	}
	if p.isSequenced && len(p.rules) > 0 {
		slot := p.currentSlot()
		slot.kinds = append(slot.kinds, kind)
		slot.values = append(slot.values, value)
		return
	}
	p.addRule(SelectorNone, "", "", status, delay, after, kind, value)
}

// beginOrAdvanceSequence handles "--[ N ]--": opens a new slot if already
// sequenced, otherwise resets the current rule's only slot to empty and
// enters sequenced mode.
func (p *parser) beginOrAdvanceSequence() {
	if p.isSequenced {
		p.rules[len(p.rules)-1].slots = append(p.rules[len(p.rules)-1].slots, wipSlot{})
		return
	}
	if len(p.rules) == 0 {
		p.addRule(SelectorNone, "", "", nil, nil, nil, "text", "")
	}
	rule := p.rules[len(p.rules)-1]
	rule.slots = []wipSlot{{}}
	p.isSequenced = true
}

func (p *parser) currentSlot() *wipSlot {
	rule := p.rules[len(p.rules)-1]
	return &rule.slots[len(rule.slots)-1]
}

// currentlyProcessingTextRule reports whether the most recently opened
// location in the current slot is a text location, meaning a line that
// matches nothing else gets appended to it verbatim rather than starting a
// new rule.
func (p *parser) currentlyProcessingTextRule() bool {
	if len(p.rules) == 0 {
		return false
	}
	rule := p.rules[len(p.rules)-1]
	if len(rule.slots) == 0 {
		return false
	}
	slot := rule.slots[len(rule.slots)-1]
	if len(slot.kinds) == 0 {
		return false
	}
	return slot.kinds[len(slot.kinds)-1] == "text"
}

func (p *parser) appendContinuation(line string) {
	slot := p.currentSlot()
	slot.values = append(slot.values, line)
}

// adjust lifts HEADER: directives out of each slot's leading values and,
// for specs not sourced from a file, trims leading whitespace off the
// first remaining value, then reconciles kinds/values into final Locations.
func adjust(isInline bool, wips []*wipRule) []*Rule {
	rules := make([]*Rule, 0, len(wips))
	for _, w := range wips {
		rule := &Rule{
			Source:         w.source,
			SelectorType:   w.selType,
			SelectorTarget: w.selTarget,
			Pattern:        w.pattern,
			StatusCode:     w.statusCode,
			Delay:          w.delay,
			After:          w.after,
		}
		for _, slot := range w.slots {
			kinds := append([]string(nil), slot.kinds...)
			values := append([]string(nil), slot.values...)
			headers := map[string]string{}
			for len(values) > 0 {
				line := strings.TrimSuffix(values[0], "\n")
				m := headerLinePat.FindStringSubmatch(line)
				if m == nil {
					break
				}
				headers[strings.TrimSpace(m[1])] = m[2]
				values = values[1:]
				if len(kinds) > 0 {
					kinds = kinds[1:]
				}
			}
			if len(values) > 0 && isInline {
				values[0] = trimLeadingSpace(values[0])
			}
			rule.Variants = append(rule.Variants, VariantSlot{
				Locations: reconstructLocations(kinds, values),
				Headers:   headers,
			})
		}
		rules = append(rules, rule)
	}
	return rules
}

// reconstructLocations turns the parallel kinds/values lists into ordered
// Locations: leading "file" kinds each consume exactly one value; whatever
// remains (normally a single trailing "text" kind) consumes every
// remaining value joined together, since continuation lines accumulate
// onto the flat values list without a parallel kind entry.
func reconstructLocations(kinds, values []string) []Location {
	var locs []Location
	for len(kinds) > 0 && kinds[0] == "file" && len(values) > 0 {
		locs = append(locs, Location{Kind: LocationFile, Content: values[0]})
		kinds = kinds[1:]
		values = values[1:]
	}
	if len(values) > 0 {
		locs = append(locs, Location{Kind: LocationText, Content: strings.Join(values, "")})
	}
	return locs
}

func trimLeadingSpace(s string) string {
	return strings.TrimLeftFunc(s, unicode.IsSpace)
}
