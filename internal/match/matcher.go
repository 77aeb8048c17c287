// Package match implements the rule matching engine: condition evaluation,
// deterministic winner selection, and the built-in brand fallback.
package match

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/calebds/ledgertag/internal/model"
)

// Matcher evaluates transactions against a snapshot of rules.
type Matcher struct {
	compiledRegex map[int]*regexp.Regexp
	rules         []model.CategoryRule
}

// NewMatcher creates a matcher over the given rules. Regex patterns are
// pre-compiled; a rule whose pattern fails to compile never matches.
func NewMatcher(rules []model.CategoryRule) *Matcher {
	m := &Matcher{
		rules:         rules,
		compiledRegex: make(map[int]*regexp.Regexp),
	}

	for _, rule := range rules {
		if rule.RegexPattern != "" {
			if re, err := regexp.Compile(rule.RegexPattern); err == nil {
				m.compiledRegex[rule.ID] = re
			}
		}
	}

	return m
}

// Match returns every active rule whose conditions all hold for the
// transaction, in winner order.
func (m *Matcher) Match(txn model.Transaction) []model.CategoryRule {
	var matches []model.CategoryRule

	for _, rule := range m.rules {
		if !rule.IsActive {
			continue
		}
		if m.matchesRule(txn, rule) {
			matches = append(matches, rule)
		}
	}

	sortWinnerOrder(matches)
	return matches
}

// Winner returns the single winning rule for the transaction, or nil if
// nothing matches.
func (m *Matcher) Winner(txn model.Transaction) *model.CategoryRule {
	matches := m.Match(txn)
	if len(matches) == 0 {
		return nil
	}
	return &matches[0]
}

// matchesRule checks every condition of one rule; conditions are ANDed.
// A rule with no conditions never matches.
func (m *Matcher) matchesRule(txn model.Transaction, rule model.CategoryRule) bool {
	if !rule.HasConditions() {
		return false
	}

	desc := txn.Description

	if rule.MerchantExact != "" && !strings.EqualFold(desc, rule.MerchantExact) {
		return false
	}
	if rule.MerchantContains != "" && !containsFold(desc, rule.MerchantContains) {
		return false
	}
	if rule.DescriptionContains != "" && !containsFold(desc, rule.DescriptionContains) {
		return false
	}
	if rule.RegexPattern != "" {
		re, ok := m.compiledRegex[rule.ID]
		if !ok || !re.MatchString(desc) {
			return false
		}
	}

	abs := math.Abs(txn.Amount)
	if rule.AmountMin != nil && abs < *rule.AmountMin {
		return false
	}
	if rule.AmountMax != nil && abs > *rule.AmountMax {
		return false
	}

	// Zero-amount transactions match neither sign-specific rule.
	switch rule.AmountSign {
	case model.SignPositive:
		if txn.Amount <= 0 {
			return false
		}
	case model.SignNegative:
		if txn.Amount >= 0 {
			return false
		}
	}

	return true
}

// sortWinnerOrder sorts rules by priority descending, then confidence
// descending, then creation time ascending, then ID ascending. The ordering
// is total so winner selection never depends on store iteration order.
func sortWinnerOrder(rules []model.CategoryRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		a, b := rules[i], rules[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// containsFold reports whether s contains substr, case-insensitively.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
