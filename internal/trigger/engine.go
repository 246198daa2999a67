// Package trigger decides whether free-form text contains a durable fact
// worth persisting as a long-term memory.
//
// The engine is a pure function over an ordered, data-driven rule table:
// no I/O, no state, safe for unguarded concurrent use. New rules can be
// added without touching any other component.
package trigger

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// minContentRunes is the minimum captured fragment length for a rule to
// count as a match. Shorter fragments carry no searchable signal.
const minContentRunes = 2

// Rule pairs a regex pattern with the category it detects. Patterns must
// capture the salient fragment in one or more groups.
type Rule struct {
	// Pattern is a regex pattern string, compiled at construction time.
	Pattern string
	// Category is the target category when the pattern matches.
	Category Category
}

// compiledRule is a Rule with its pattern compiled. Rules are evaluated
// in order; the first match wins.
type compiledRule struct {
	regex    *regexp.Regexp
	raw      string
	category Category
}

// Match is the result of evaluating one piece of text. It is an
// ephemeral value: produced and consumed within a single memorize call,
// never persisted.
type Match struct {
	// Matched reports whether any rule fired.
	Matched bool `json:"matched"`
	// Category is the matched rule's category; empty when Matched is false.
	Category Category `json:"category,omitempty"`
	// Pattern is the raw pattern of the matched rule; empty when Matched is false.
	Pattern string `json:"pattern,omitempty"`
	// Content is the captured fragment that triggered the match.
	Content string `json:"content,omitempty"`
}

// Engine evaluates text against an ordered rule table.
// Thread-safe: all patterns are compiled at construction time and the
// engine is immutable afterwards.
type Engine struct {
	rules []compiledRule
}

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	extra    []Rule
	builtins bool
}

// WithRules prepends custom rules ahead of the built-in table, so they
// take priority. Invalid patterns surface as a construction error.
func WithRules(rules ...Rule) Option {
	return func(c *engineConfig) {
		c.extra = append(c.extra, rules...)
	}
}

// WithoutBuiltins drops the built-in rule table entirely, leaving only
// rules supplied via WithRules. Intended for tests and custom deployments.
func WithoutBuiltins() Option {
	return func(c *engineConfig) {
		c.builtins = false
	}
}

// New creates an engine with the built-in bilingual rule table, plus any
// custom rules supplied via options.
func New(opts ...Option) (*Engine, error) {
	cfg := engineConfig{builtins: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	ordered := cfg.extra
	if cfg.builtins {
		ordered = append(ordered, builtinRules()...)
	}

	compiled := make([]compiledRule, 0, len(ordered))
	for _, r := range ordered {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compiling trigger pattern %q: %w", r.Pattern, err)
		}
		if !IsValidCategory(string(r.Category)) {
			return nil, fmt.Errorf("unknown trigger category %q for pattern %q", r.Category, r.Pattern)
		}
		compiled = append(compiled, compiledRule{
			regex:    re,
			raw:      r.Pattern,
			category: r.Category,
		})
	}

	return &Engine{rules: compiled}, nil
}

// MustNew is like New but panics on an invalid rule table. Intended for
// the built-in table, which is covered by tests.
func MustNew(opts ...Option) *Engine {
	e, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// Evaluate runs the text through the rule table and returns the first
// match. Empty or whitespace-only input never matches. Evaluate never
// returns an error: unmatched text is a normal outcome, not a failure.
func (e *Engine) Evaluate(text string) Match {
	text = strings.TrimSpace(text)
	if text == "" {
		return Match{}
	}

	for _, rule := range e.rules {
		groups := rule.regex.FindStringSubmatch(text)
		if groups == nil {
			continue
		}

		content := capturedContent(groups)
		if utf8.RuneCountInString(content) < minContentRunes {
			// Too short to be a useful fact; let a later rule try.
			continue
		}

		return Match{
			Matched:  true,
			Category: rule.category,
			Pattern:  rule.raw,
			Content:  content,
		}
	}

	return Match{}
}

// capturedContent joins the non-empty capture groups of a match. Falls
// back to the whole match for patterns without groups.
func capturedContent(groups []string) string {
	if len(groups) == 1 {
		return strings.TrimSpace(groups[0])
	}
	parts := make([]string, 0, len(groups)-1)
	for _, g := range groups[1:] {
		if g = strings.TrimSpace(g); g != "" {
			parts = append(parts, g)
		}
	}
	return strings.Join(parts, " ")
}
