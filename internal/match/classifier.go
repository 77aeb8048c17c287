package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/calebds/ledgertag/internal/common"
	"github.com/calebds/ledgertag/internal/model"
	"github.com/calebds/ledgertag/internal/service"
)

// Classifier assigns categories to transactions using the rule store with
// a brand-table fallback. Classification is read-mostly; only the winning
// rule's statistics are mutated, serialized by a mutex.
type Classifier struct {
	storage service.Storage
	statsMu sync.Mutex
}

// NewClassifier creates a classifier backed by the given storage.
func NewClassifier(storage service.Storage) *Classifier {
	return &Classifier{storage: storage}
}

// Classify evaluates the transaction against all active rules and returns
// the winning category with its confidence. When no rule matches it falls
// back to the brand table at BrandConfidence, and failing that returns
// (nil, 0) meaning uncategorized. It never fails on unusual field values;
// an empty description simply matches nothing.
func (c *Classifier) Classify(ctx context.Context, txn model.Transaction) (*model.Category, float64, error) {
	rules, err := c.storage.GetActiveRules(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load rules: %w", err)
	}

	matcher := NewMatcher(rules)
	if winner := matcher.Winner(txn); winner != nil {
		c.statsMu.Lock()
		statErr := c.storage.RecordRuleMatch(ctx, winner.ID, time.Now())
		c.statsMu.Unlock()
		if statErr != nil {
			// Statistics are best-effort; the decision stands.
			slog.Warn("failed to record rule match", "rule_id", winner.ID, "error", statErr)
		}

		category, catErr := c.storage.GetCategoryByID(ctx, winner.CategoryID)
		if catErr != nil {
			return nil, 0, fmt.Errorf("winning rule %d references missing category: %w", winner.ID, catErr)
		}

		slog.Debug("classified by rule",
			"transaction_id", txn.ID,
			"rule_id", winner.ID,
			"category", category.Name,
			"confidence", winner.Confidence)
		return category, winner.Confidence, nil
	}

	return c.brandFallback(ctx, txn.Description)
}

// SuggestCategoryForMerchant performs only the brand-table lookup. It is a
// cheap hint independent of the full rule pass.
func (c *Classifier) SuggestCategoryForMerchant(ctx context.Context, description string) (*model.Category, float64, error) {
	return c.brandFallback(ctx, description)
}

func (c *Classifier) brandFallback(ctx context.Context, description string) (*model.Category, float64, error) {
	token, categoryName, ok := LookupBrand(description)
	if !ok {
		return nil, 0, nil
	}

	category, err := c.storage.GetCategoryByName(ctx, categoryName)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Brand table references a category the user removed.
			return nil, 0, nil
		}
		return nil, 0, err
	}

	slog.Debug("classified by brand table", "brand", token, "category", category.Name)
	return category, BrandConfidence, nil
}
