package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/calebds/ledgertag/internal/common"
	"github.com/calebds/ledgertag/internal/model"
	"github.com/calebds/ledgertag/internal/service"
)

// defaultRule describes one shipped rule before category resolution.
type defaultRule struct {
	name       string
	category   string
	regex      string
	contains   string
	sign       model.AmountSign
	confidence float64
	priority   int
}

// defaultRules are the shipped rule set. They occupy the default priority
// tier; promoted user rules always outrank them.
var defaultRules = []defaultRule{
	{
		name:       "Direct Deposit",
		category:   "Income",
		regex:      `(?i)\b(DIRECT\s*DEP(OSIT)?|DIR\s*DEP|PAYROLL|SALARY|WAGES)\b`,
		sign:       model.SignPositive,
		confidence: 0.95,
		priority:   model.PriorityDefault + 10,
	},
	{
		name:       "Interest Income",
		category:   "Income",
		regex:      `(?i)\b(INTEREST\s*(EARNED|PAYMENT)|DIVIDEND)\b`,
		sign:       model.SignPositive,
		confidence: 0.9,
		priority:   model.PriorityDefault + 5,
	},
	{
		name:       "ATM Withdrawal",
		category:   "Fees",
		regex:      `(?i)\b(ATM\s*WITHDRAWAL|CASH\s*WITHDRAWAL)\b`,
		confidence: 0.85,
		priority:   model.PriorityDefault,
	},
	{
		name:       "Card Payment",
		category:   "Payments",
		regex:      `(?i)\b(PAYMENT\s*THANK\s*YOU|AUTOPAY|ONLINE\s*PAYMENT)\b`,
		confidence: 0.9,
		priority:   model.PriorityDefault + 5,
	},
	{
		name:       "Bank Fee",
		category:   "Fees",
		regex:      `(?i)\b(SERVICE\s*FEE|OVERDRAFT|LATE\s*FEE|ANNUAL\s*FEE)\b`,
		sign:       model.SignNegative,
		confidence: 0.9,
		priority:   model.PriorityDefault,
	},
	{
		name:       "Rent",
		category:   "Housing",
		contains:   "RENT",
		sign:       model.SignNegative,
		confidence: 0.7,
		priority:   model.PriorityDefault - 10,
	},
}

// SeedDefaultRules inserts the shipped rules, skipping any whose name is
// already present. Rules whose category is missing are skipped with a
// warning rather than failing the seed.
func SeedDefaultRules(ctx context.Context, storage service.Storage) error {
	existing, err := storage.GetActiveRules(ctx)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	present := make(map[string]bool, len(existing))
	for _, rule := range existing {
		present[rule.RuleName] = true
	}

	for _, def := range defaultRules {
		if present[def.name] {
			continue
		}

		category, catErr := storage.GetCategoryByName(ctx, def.category)
		if catErr != nil {
			if errors.Is(catErr, common.ErrNotFound) {
				slog.Warn("skipping default rule, category missing", "rule", def.name, "category", def.category)
				continue
			}
			return catErr
		}

		sign := def.sign
		if sign == "" {
			sign = model.SignAny
		}
		rule := model.CategoryRule{
			RuleName:         def.name,
			CategoryID:       category.ID,
			RegexPattern:     def.regex,
			MerchantContains: def.contains,
			AmountSign:       sign,
			Confidence:       def.confidence,
			Priority:         def.priority,
			IsActive:         true,
		}
		if createErr := storage.CreateRule(ctx, &rule); createErr != nil {
			return fmt.Errorf("failed to seed rule %q: %w", def.name, createErr)
		}
	}

	return nil
}
