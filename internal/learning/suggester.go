package learning

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/calebds/ledgertag/internal/model"
	"github.com/calebds/ledgertag/internal/service"
)

// Default thresholds for suggestion generation.
const (
	DefaultMinOccurrences = 3
	DefaultMinAgreement   = 0.7
)

// Suggester generates rule suggestions from correction patterns. The
// suggestion set is session-scoped: refreshes recompute it wholesale and
// the latest refresh wins, dismissals persist until cleared, and promoted
// suggestions drop out permanently through rule-store de-duplication.
type Suggester struct {
	storage     service.Storage
	clusterer   *Clusterer
	dismissed   map[string]bool
	suggestions []model.RuleSuggestion
	generation  uint64
	mu          sync.Mutex
}

// NewSuggester creates a suggester over the correction ledger and rule store.
func NewSuggester(storage service.Storage) *Suggester {
	return &Suggester{
		storage:   storage,
		clusterer: NewClusterer(storage),
		dismissed: make(map[string]bool),
	}
}

// Refresh recomputes the suggestion set. A pattern qualifies when it has at
// least minOccurrences corrections, its plurality category holds at least
// minAgreement of the votes, and no active rule already carries the
// signature as its merchant-contains condition. Refresh is idempotent and
// safe to call concurrently: each call recomputes the full set and only the
// most recently started call publishes its result.
func (s *Suggester) Refresh(ctx context.Context, minOccurrences int, minAgreement float64) ([]model.RuleSuggestion, error) {
	if minOccurrences <= 0 {
		minOccurrences = DefaultMinOccurrences
	}
	if minAgreement <= 0 {
		minAgreement = DefaultMinAgreement
	}

	s.mu.Lock()
	s.generation++
	myGeneration := s.generation
	s.mu.Unlock()

	patterns, err := s.clusterer.Rebuild(ctx)
	if err != nil {
		return nil, err
	}

	covered, err := s.coveredSignatures(ctx)
	if err != nil {
		return nil, err
	}

	signatures := make([]string, 0, len(patterns))
	for signature := range patterns {
		signatures = append(signatures, signature)
	}
	sort.Strings(signatures)

	var suggestions []model.RuleSuggestion
	for _, signature := range signatures {
		pattern := patterns[signature]
		if pattern.OccurrenceCount < minOccurrences {
			continue
		}
		categoryID, agreement := pattern.PluralityCategory()
		if agreement < minAgreement {
			continue
		}
		if covered[strings.ToUpper(signature)] {
			continue
		}

		suggestions = append(suggestions, model.RuleSuggestion{
			MerchantPattern:     signature,
			SuggestedCategoryID: categoryID,
			Confidence:          agreement,
			TransactionCount:    pattern.OccurrenceCount,
			AverageAmount:       pattern.AverageAmount,
			ExampleTransactions: pattern.ExampleTransactionIDs,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if myGeneration != s.generation {
		// A newer refresh superseded this one; discard.
		slog.Debug("discarding stale suggestion refresh", "generation", myGeneration)
		return nil, nil
	}
	s.suggestions = suggestions
	slog.Info("refreshed suggestions", "count", len(suggestions))
	return s.visibleLocked(), nil
}

// Suggestions returns the current suggestion set, excluding dismissed ones.
func (s *Suggester) Suggestions() []model.RuleSuggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visibleLocked()
}

// Dismiss hides one suggestion until ClearDismissed is called.
func (s *Suggester) Dismiss(merchantPattern string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dismissed[merchantPattern] = true
}

// ClearDismissed resets the dismissal flags.
func (s *Suggester) ClearDismissed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dismissed = make(map[string]bool)
}

// Remove drops a suggestion from the current set, typically after it has
// been promoted into a real rule.
func (s *Suggester) Remove(merchantPattern string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	filtered := s.suggestions[:0]
	for _, suggestion := range s.suggestions {
		if suggestion.MerchantPattern != merchantPattern {
			filtered = append(filtered, suggestion)
		}
	}
	s.suggestions = filtered
}

// Invalidate empties the cached suggestion set, used when the underlying
// ledger is cleared.
func (s *Suggester) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestions = nil
}

func (s *Suggester) visibleLocked() []model.RuleSuggestion {
	visible := make([]model.RuleSuggestion, 0, len(s.suggestions))
	for _, suggestion := range s.suggestions {
		if s.dismissed[suggestion.MerchantPattern] {
			continue
		}
		visible = append(visible, suggestion)
	}
	return visible
}

// coveredSignatures collects the merchant-contains conditions of all active
// rules, upper-cased, so already-codified merchants are not re-suggested.
func (s *Suggester) coveredSignatures(ctx context.Context) (map[string]bool, error) {
	rules, err := s.storage.GetActiveRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	covered := make(map[string]bool)
	for _, rule := range rules {
		if rule.MerchantContains != "" {
			covered[strings.ToUpper(rule.MerchantContains)] = true
		}
	}
	return covered, nil
}
