package learning

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/calebds/ledgertag/internal/model"
	"github.com/calebds/ledgertag/internal/service"
)

// Promoter materializes accepted suggestions into persisted rules.
type Promoter struct {
	storage service.Storage
}

// NewPromoter creates a promoter writing to the given rule store.
func NewPromoter(storage service.Storage) *Promoter {
	return &Promoter{storage: storage}
}

// CreateRuleFromSuggestion builds and persists a rule from an accepted
// suggestion. The rule matches on the merchant signature verbatim, carries
// the suggestion's vote-share confidence, sits in the user-generated
// priority tier above all shipped defaults, and infers its amount sign from
// the sign of the average corrected amount.
func (p *Promoter) CreateRuleFromSuggestion(ctx context.Context, suggestion model.RuleSuggestion) (*model.CategoryRule, error) {
	if suggestion.MerchantPattern == "" {
		return nil, fmt.Errorf("suggestion has an empty merchant pattern")
	}

	sign := model.SignAny
	switch {
	case suggestion.AverageAmount > 0:
		sign = model.SignPositive
	case suggestion.AverageAmount < 0:
		sign = model.SignNegative
	}

	rule := model.CategoryRule{
		RuleName:         "Auto: " + suggestion.MerchantPattern,
		CategoryID:       suggestion.SuggestedCategoryID,
		MerchantContains: suggestion.MerchantPattern,
		AmountSign:       sign,
		Confidence:       suggestion.Confidence,
		Priority:         model.PriorityUserGenerated,
		IsActive:         true,
	}
	rule.RuleDescription = rule.Summary()

	if err := p.storage.CreateRule(ctx, &rule); err != nil {
		return nil, fmt.Errorf("failed to promote suggestion %q: %w", suggestion.MerchantPattern, err)
	}

	slog.Info("promoted suggestion to rule",
		"merchant_pattern", suggestion.MerchantPattern,
		"rule_id", rule.ID,
		"category_id", rule.CategoryID,
		"confidence", rule.Confidence)
	return &rule, nil
}

// SaveRule validates and persists a caller-constructed rule, used by bulk
// categorization flows. Malformed rules are rejected, never dropped
// silently.
func (p *Promoter) SaveRule(ctx context.Context, rule *model.CategoryRule) error {
	if rule == nil {
		return fmt.Errorf("rule cannot be nil")
	}
	if err := rule.Validate(); err != nil {
		return err
	}
	if rule.AmountSign == "" {
		rule.AmountSign = model.SignAny
	}
	return p.storage.CreateRule(ctx, rule)
}
