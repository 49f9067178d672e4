package speaker

import "strings"

// Match is the outcome of running the chain over one title.
type Match struct {
	Speaker string
	Rule    string
}

// Found reports whether a rule produced a speaker.
func (m Match) Found() bool {
	return m.Speaker != ""
}

// Chain is an immutable, ordered rule list.
type Chain struct {
	rules []Rule
}

// NewChain copies rules into a new chain. Rules without a Find function are
// dropped.
func NewChain(rules ...Rule) *Chain {
	kept := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		if rule.Find == nil {
			continue
		}
		rule.Reject = append([]Predicate(nil), rule.Reject...)
		kept = append(kept, rule)
	}
	return &Chain{rules: kept}
}

var defaultChain = NewChain(Rules()...)

// DefaultChain returns the shared chain built from [Rules].
func DefaultChain() *Chain {
	return defaultChain
}

// RuleNames lists rule names in evaluation order.
func (c *Chain) RuleNames() []string {
	names := make([]string, 0, len(c.rules))
	for _, rule := range c.rules {
		names = append(names, rule.Name)
	}
	return names
}

// Attribute runs the rules in order and returns the first candidate that is
// non-empty after trimming and passes every predicate of its rule. A rejected
// candidate does not stop the chain. The zero Match means no rule fired.
func (c *Chain) Attribute(title string) Match {
	if c == nil || title == "" {
		return Match{}
	}
	for _, rule := range c.rules {
		raw, ok := rule.Find(title)
		if !ok {
			continue
		}
		candidate := strings.TrimSpace(raw)
		if candidate == "" || rejected(rule.Reject, candidate) {
			continue
		}
		return Match{Speaker: candidate, Rule: rule.Name}
	}
	return Match{}
}

// Extract returns the attributed speaker, or fallback when the title is empty
// or no rule fires. It never fails; the result may be empty only when fallback
// is.
func (c *Chain) Extract(title, fallback string) string {
	return c.Explain(title, fallback).Speaker
}

// Explain is Extract that also names the winning rule, or RuleNameFallback
// when the fallback was used.
func (c *Chain) Explain(title, fallback string) Match {
	if title == "" {
		return Match{Speaker: fallback, Rule: RuleNameFallback}
	}
	if m := c.Attribute(title); m.Found() {
		return m
	}
	return Match{Speaker: fallback, Rule: RuleNameFallback}
}

func rejected(predicates []Predicate, candidate string) bool {
	for _, reject := range predicates {
		if reject != nil && reject(candidate) {
			return true
		}
	}
	return false
}

// Extract attributes title with the default chain.
func Extract(title, fallback string) string {
	return defaultChain.Extract(title, fallback)
}

// Attribute runs the default chain without a fallback.
func Attribute(title string) Match {
	return defaultChain.Attribute(title)
}
