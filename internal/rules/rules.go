// Package rules holds the keyword rule set that decides an exercise's new
// category. The rule set is data: each source category owns an ordered list of
// rules and the first rule whose keywords match wins.
package rules

import (
	"bytes"
	_ "embed"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"recat/internal/errors"
)

//go:embed default_rules.yaml
var defaultRules []byte

// Rule assigns Target to a record when any muscle keyword occurs in the
// record's muscle text or any name keyword occurs in its name.
type Rule struct {
	Target  string   `yaml:"target"`
	Muscles []string `yaml:"muscles"`
	Names   []string `yaml:"names"`
}

// Matches reports whether the rule applies. Both arguments must already be
// lower-cased.
func (r Rule) Matches(name, muscleText string) bool {
	for _, kw := range r.Muscles {
		if strings.Contains(muscleText, kw) {
			return true
		}
	}
	for _, kw := range r.Names {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// Group is the ordered rule list for records currently in Category.
type Group struct {
	Category string `yaml:"category"`
	Rules    []Rule `yaml:"rules"`
}

// Match returns the first rule that applies.
func (g Group) Match(name, muscleText string) (Rule, bool) {
	for _, r := range g.Rules {
		if r.Matches(name, muscleText) {
			return r, true
		}
	}
	return Rule{}, false
}

// RuleSet is the complete set of recategorization rules.
type RuleSet struct {
	Groups []Group `yaml:"groups"`

	index map[string]int
}

// Default returns the built-in rule set.
func Default() (*RuleSet, error) {
	return Parse(defaultRules)
}

// Parse decodes a YAML rule set, normalizes its keywords and validates it.
// Unknown YAML fields are rejected. Keywords are trimmed and lower-cased so
// that matching only has to lower-case the record side.
func Parse(data []byte) (*RuleSet, error) {
	var rs RuleSet

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rs); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.NewRulesError("rule set is empty", nil)
		}
		return nil, errors.NewRulesError("failed to parse rule set", err)
	}

	rs.normalize()
	if err := rs.Validate(); err != nil {
		return nil, err
	}

	rs.index = make(map[string]int, len(rs.Groups))
	for i, g := range rs.Groups {
		rs.index[g.Category] = i
	}
	return &rs, nil
}

func (rs *RuleSet) normalize() {
	for gi := range rs.Groups {
		g := &rs.Groups[gi]
		g.Category = strings.TrimSpace(g.Category)
		for ri := range g.Rules {
			r := &g.Rules[ri]
			r.Target = strings.TrimSpace(r.Target)
			r.Muscles = normalizeKeywords(r.Muscles)
			r.Names = normalizeKeywords(r.Names)
		}
	}
}

func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		out = append(out, strings.ToLower(strings.TrimSpace(kw)))
	}
	return out
}

// Validate checks the structural rules of a rule set. A rule target may never
// be a source category, which keeps a second classification pass a no-op.
func (rs *RuleSet) Validate() error {
	if len(rs.Groups) == 0 {
		return errors.NewRulesError("rule set has no groups", nil)
	}

	sources := make(map[string]bool, len(rs.Groups))
	for _, g := range rs.Groups {
		if g.Category == "" {
			return errors.NewRulesError("group with empty category", nil)
		}
		if sources[g.Category] {
			return errors.NewRulesError(fmt.Sprintf("duplicate group for category %q", g.Category), nil)
		}
		sources[g.Category] = true
	}

	for _, g := range rs.Groups {
		if len(g.Rules) == 0 {
			return errors.NewRulesError(fmt.Sprintf("group %q has no rules", g.Category), nil)
		}
		for i, r := range g.Rules {
			if err := validateRule(g.Category, i, r, sources); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateRule(category string, i int, r Rule, sources map[string]bool) error {
	if r.Target == "" {
		return errors.NewRulesError(fmt.Sprintf("group %q rule %d has no target", category, i), nil)
	}
	if sources[r.Target] {
		return errors.NewRulesError(fmt.Sprintf("group %q rule %d targets source category %q", category, i, r.Target), nil)
	}
	if len(r.Muscles) == 0 && len(r.Names) == 0 {
		return errors.NewRulesError(fmt.Sprintf("group %q rule %q has no keywords", category, r.Target), nil)
	}
	for _, kw := range append(append([]string{}, r.Muscles...), r.Names...) {
		if kw == "" {
			return errors.NewRulesError(fmt.Sprintf("group %q rule %q has an empty keyword", category, r.Target), nil)
		}
	}
	return nil
}

// Lookup returns the group for a source category.
func (rs *RuleSet) Lookup(category string) (Group, bool) {
	i, ok := rs.index[category]
	if !ok {
		return Group{}, false
	}
	return rs.Groups[i], true
}

// Classify returns the new category for a record in category with the given
// name and muscle text. ok is false when no rule applies.
func (rs *RuleSet) Classify(category, name, muscleText string) (target string, ok bool) {
	g, found := rs.Lookup(category)
	if !found {
		return "", false
	}
	r, matched := g.Match(strings.ToLower(name), strings.ToLower(muscleText))
	if !matched {
		return "", false
	}
	return r.Target, true
}

// Categories returns the source categories in rule set order.
func (rs *RuleSet) Categories() []string {
	out := make([]string, 0, len(rs.Groups))
	for _, g := range rs.Groups {
		out = append(out, g.Category)
	}
	return out
}
