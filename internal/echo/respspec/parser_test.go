package respspec

import "testing"

func firstLocation(t *testing.T, r *Rule, variant int) Location {
	t.Helper()
	if variant >= len(r.Variants) || len(r.Variants[variant].Locations) == 0 {
		t.Fatalf("rule has no location at variant %d: %+v", variant, r)
	}
	return r.Variants[variant].Locations[0]
}

func TestParsePlainTextBody(t *testing.T) {
	status, delay, rules := Parse("", 200, 0, 0, "hello")
	if status != 200 || delay != 0 {
		t.Fatalf("got status=%d delay=%d", status, delay)
	}
	if len(rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(rules))
	}
	loc := firstLocation(t, rules[0], 0)
	if loc.Kind != LocationText || loc.Content != "hello" {
		t.Fatalf("got %+v", loc)
	}
}

func TestParseGlobalStatusDirective(t *testing.T) {
	status, _, rules := Parse("", 200, 0, 0, "404\nnot found")
	if status != 404 {
		t.Fatalf("got status=%d, want 404", status)
	}
	loc := firstLocation(t, rules[0], 0)
	if loc.Content != "not found" {
		t.Fatalf("got content %q", loc.Content)
	}
}

func TestParsePathSelectorWithRuleStatus(t *testing.T) {
	_, _, rules := Parse("", 200, 0, 0, "PATH:/foo/ 201 hello")
	if len(rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(rules))
	}
	r := rules[0]
	if r.SelectorType != SelectorPath || r.Pattern != "/foo/" || r.StatusCode != 201 {
		t.Fatalf("got %+v", r)
	}
	if loc := firstLocation(t, r, 0); loc.Content != "hello" {
		t.Fatalf("got content %q", loc.Content)
	}
}

func TestParseSequenceMarkerProducesRoundRobinVariants(t *testing.T) {
	_, _, rules := Parse("", 200, 0, 0, "--[1]--\nfirst\n--[2]--\nsecond")
	if len(rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(rules))
	}
	r := rules[0]
	if len(r.Variants) != 2 {
		t.Fatalf("got %d variants, want 2", len(r.Variants))
	}
	if loc := firstLocation(t, r, 0); loc.Content != "first\n" {
		t.Fatalf("variant 0 got %q", loc.Content)
	}
	if loc := firstLocation(t, r, 1); loc.Content != "second" {
		t.Fatalf("variant 1 got %q", loc.Content)
	}
}

func TestParseHeaderDirectiveIsLifted(t *testing.T) {
	_, _, rules := Parse("", 200, 0, 0, "text:HEADER:Content-Type:application/json\nbody text")
	r := rules[0]
	if got := r.Variants[0].Headers["Content-Type"]; got != "application/json" {
		t.Fatalf("got headers %+v", r.Variants[0].Headers)
	}
	if loc := firstLocation(t, r, 0); loc.Content != "body text" {
		t.Fatalf("got content %q", loc.Content)
	}
}

func TestParseFileLocation(t *testing.T) {
	_, _, rules := Parse("", 200, 0, 0, "file:widget.echo")
	loc := firstLocation(t, rules[0], 0)
	if loc.Kind != LocationFile || loc.Content != "widget.echo" {
		t.Fatalf("got %+v", loc)
	}
}

func TestParseHeaderLiftBlockedByEmptyLeadingValue(t *testing.T) {
	_, _, rules := Parse("", 200, 0, 0, "text:\nHEADER:X-Foo:bar\nbody")
	r := rules[0]
	if len(r.Variants[0].Headers) != 0 {
		t.Fatalf("expected no headers lifted, got %+v", r.Variants[0].Headers)
	}
	loc := firstLocation(t, r, 0)
	if loc.Content != "HEADER:X-Foo:bar\nbody" {
		t.Fatalf("got content %q", loc.Content)
	}
}

func TestParseKeepsRulesInDeclarationOrder(t *testing.T) {
	_, _, rules := Parse("", 200, 0, 0, "PATH:/zzz/ first\nPATH:/foo/ second")
	if len(rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(rules))
	}
	if rules[0].Pattern != "/zzz/" || rules[1].Pattern != "/foo/" {
		t.Fatalf("unexpected rule order: %+v", rules)
	}
}
