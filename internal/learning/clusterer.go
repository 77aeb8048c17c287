package learning

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/calebds/ledgertag/internal/model"
	"github.com/calebds/ledgertag/internal/service"
)

// Clusterer rebuilds the per-merchant pattern view from the correction
// ledger. Patterns are derived data: the ledger is the source of truth and
// a rebuild from scratch always reproduces the same vote counts and running
// means. Example selection is the one order-dependent part: the first five
// corrections seen for a signature keep their transaction IDs.
type Clusterer struct {
	storage service.Storage
}

// NewClusterer creates a clusterer over the correction ledger.
func NewClusterer(storage service.Storage) *Clusterer {
	return &Clusterer{storage: storage}
}

// Rebuild folds every correction into a signature-keyed pattern map.
// Corrections with descriptions that yield no signature are skipped.
func (c *Clusterer) Rebuild(ctx context.Context) (map[string]*model.Pattern, error) {
	corrections, err := c.storage.GetCorrections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load corrections: %w", err)
	}

	patterns := make(map[string]*model.Pattern)
	skipped := 0
	for _, correction := range corrections {
		signature := Signature(correction.Transaction.Description)
		if signature == "" {
			skipped++
			continue
		}

		p := patterns[signature]
		if p == nil {
			p = &model.Pattern{Signature: signature}
			patterns[signature] = p
		}
		p.Vote(correction.NewCategoryID, correction.Transaction.Amount,
			correction.Transaction.ID, correction.Timestamp)
	}

	slog.Debug("rebuilt correction patterns",
		"corrections", len(corrections),
		"patterns", len(patterns),
		"skipped", skipped)
	return patterns, nil
}
