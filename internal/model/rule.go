package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// AmountSign restricts a rule to transactions of a particular sign.
type AmountSign string

// Amount sign constants. Zero-amount transactions match only SignAny.
const (
	SignAny      AmountSign = "any"
	SignPositive AmountSign = "positive"
	SignNegative AmountSign = "negative"
)

// Priority tiers for rules. User-promoted rules sit strictly above the
// shipped defaults so a learned rule always wins a priority tie against
// a built-in one.
const (
	PriorityDefault       = 50
	PriorityUserGenerated = 100
)

// Rule validation errors.
var (
	ErrRuleNoConditions    = errors.New("rule must specify at least one condition")
	ErrRuleMixedConditions = errors.New("rule cannot combine a regex pattern with substring or exact conditions")
	ErrRuleBadConfidence   = errors.New("confidence must be between 0 and 1")
	ErrRuleBadAmountRange  = errors.New("amount_min cannot exceed amount_max")
	ErrRuleBadSign         = errors.New("invalid amount sign")
	ErrRuleBadRegex        = errors.New("invalid regex pattern")
)

// CategoryRule maps matching transactions to a category. A rule carries
// either textual conditions (MerchantContains / MerchantExact /
// DescriptionContains) or a RegexPattern, never both.
type CategoryRule struct {
	CreatedAt           time.Time
	UpdatedAt           time.Time
	LastMatched         *time.Time
	AmountMin           *float64
	AmountMax           *float64
	RuleName            string
	RuleDescription     string
	MerchantContains    string
	MerchantExact       string
	DescriptionContains string
	RegexPattern        string
	AmountSign          AmountSign
	ID                  int
	CategoryID          int
	Priority            int
	MatchCount          int
	Confidence          float64
	IsActive            bool
}

// HasConditions reports whether the rule constrains anything at all.
// A rule with zero conditions is invalid and must never match.
func (r *CategoryRule) HasConditions() bool {
	return r.MerchantContains != "" ||
		r.MerchantExact != "" ||
		r.DescriptionContains != "" ||
		r.RegexPattern != "" ||
		r.AmountMin != nil ||
		r.AmountMax != nil ||
		(r.AmountSign != "" && r.AmountSign != SignAny)
}

// Validate checks the rule's structural invariants. It does not verify
// that CategoryID resolves; referential checks belong to the store.
func (r *CategoryRule) Validate() error {
	if !r.HasConditions() {
		return ErrRuleNoConditions
	}
	if r.RegexPattern != "" {
		if r.MerchantContains != "" || r.MerchantExact != "" || r.DescriptionContains != "" {
			return ErrRuleMixedConditions
		}
		if _, err := regexp.Compile(r.RegexPattern); err != nil {
			return fmt.Errorf("%w: %v", ErrRuleBadRegex, err)
		}
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return ErrRuleBadConfidence
	}
	if r.AmountMin != nil && r.AmountMax != nil && *r.AmountMin > *r.AmountMax {
		return ErrRuleBadAmountRange
	}
	switch r.AmountSign {
	case "", SignAny, SignPositive, SignNegative:
	default:
		return fmt.Errorf("%w: %s", ErrRuleBadSign, r.AmountSign)
	}
	return nil
}

// Summary builds the human-readable condition summary stored in
// RuleDescription.
func (r *CategoryRule) Summary() string {
	var parts []string
	if r.MerchantExact != "" {
		parts = append(parts, fmt.Sprintf("merchant is %q", r.MerchantExact))
	}
	if r.MerchantContains != "" {
		parts = append(parts, fmt.Sprintf("merchant contains %q", r.MerchantContains))
	}
	if r.DescriptionContains != "" {
		parts = append(parts, fmt.Sprintf("description contains %q", r.DescriptionContains))
	}
	if r.RegexPattern != "" {
		parts = append(parts, fmt.Sprintf("description matches /%s/", r.RegexPattern))
	}
	switch {
	case r.AmountMin != nil && r.AmountMax != nil:
		parts = append(parts, fmt.Sprintf("amount between $%.2f and $%.2f", *r.AmountMin, *r.AmountMax))
	case r.AmountMin != nil:
		parts = append(parts, fmt.Sprintf("amount at least $%.2f", *r.AmountMin))
	case r.AmountMax != nil:
		parts = append(parts, fmt.Sprintf("amount at most $%.2f", *r.AmountMax))
	}
	switch r.AmountSign {
	case SignPositive:
		parts = append(parts, "credits only")
	case SignNegative:
		parts = append(parts, "debits only")
	}
	if len(parts) == 0 {
		return "no conditions"
	}
	return strings.Join(parts, ", ")
}
