// Package engine wires the taxonomy, rule matching, correction ledger and
// learning components behind one synchronous facade for callers.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/calebds/ledgertag/internal/learning"
	"github.com/calebds/ledgertag/internal/match"
	"github.com/calebds/ledgertag/internal/model"
	"github.com/calebds/ledgertag/internal/service"
	"github.com/calebds/ledgertag/internal/taxonomy"
)

// Engine orchestrates transaction categorization and pattern learning.
// Each store has a single logical writer: ledger writes are serialized
// here, rule statistics inside the classifier, taxonomy writes inside the
// taxonomy store. Reads run concurrently.
type Engine struct {
	storage    service.Storage
	taxonomy   *taxonomy.Store
	classifier *match.Classifier
	suggester  *learning.Suggester
	promoter   *learning.Promoter
	notifier   notifier
	ledgerMu   sync.Mutex
}

// New creates an engine over the given storage. Each component is
// constructed once and shares the storage handle.
func New(storage service.Storage) *Engine {
	return &Engine{
		storage:    storage,
		taxonomy:   taxonomy.NewStore(storage),
		classifier: match.NewClassifier(storage),
		suggester:  learning.NewSuggester(storage),
		promoter:   learning.NewPromoter(storage),
	}
}

// Taxonomy exposes the category tree store.
func (e *Engine) Taxonomy() *taxonomy.Store {
	return e.taxonomy
}

// Subscribe registers a callback invoked after engine state changes.
func (e *Engine) Subscribe(fn func(Event)) {
	e.notifier.subscribe(fn)
}

// Classify assigns a category and confidence to a transaction.
func (e *Engine) Classify(ctx context.Context, txn model.Transaction) (*model.Category, float64, error) {
	return e.classifier.Classify(ctx, txn)
}

// SuggestCategoryForMerchant returns a cheap brand-table hint for a
// description without running the full rule pass.
func (e *Engine) SuggestCategoryForMerchant(ctx context.Context, description string) (*model.Category, float64, error) {
	return e.classifier.SuggestCategoryForMerchant(ctx, description)
}

// RecordCorrection appends a user override to the correction ledger. The
// append is unconditional: confirming the existing category is still
// evidence, and an empty description is accepted gracefully.
func (e *Engine) RecordCorrection(ctx context.Context, txn model.Transaction, originalCategoryID *int, newCategoryID int) error {
	correction := model.Correction{
		ID:                 uuid.NewString(),
		Transaction:        txn,
		OriginalCategoryID: originalCategoryID,
		NewCategoryID:      newCategoryID,
		Timestamp:          time.Now(),
	}

	e.ledgerMu.Lock()
	err := e.storage.SaveCorrection(ctx, &correction)
	e.ledgerMu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to record correction: %w", err)
	}

	e.notifier.publish(Event{Kind: EventCorrectionRecorded})
	return nil
}

// Corrections returns the full correction ledger.
func (e *Engine) Corrections(ctx context.Context) ([]model.Correction, error) {
	return e.storage.GetCorrections(ctx)
}

// RefreshSuggestions recomputes rule suggestions from the ledger. Zero
// thresholds select the defaults. Latest-wins: a refresh started later
// supersedes this one, in which case the returned slice is nil.
func (e *Engine) RefreshSuggestions(ctx context.Context, minOccurrences int, minAgreement float64) ([]model.RuleSuggestion, error) {
	suggestions, err := e.suggester.Refresh(ctx, minOccurrences, minAgreement)
	if err != nil {
		return nil, err
	}
	e.notifier.publish(Event{Kind: EventSuggestionsRefreshed})
	return suggestions, nil
}

// GetSuggestions returns the current suggestion set minus dismissed entries.
func (e *Engine) GetSuggestions() []model.RuleSuggestion {
	return e.suggester.Suggestions()
}

// DismissSuggestion hides a suggestion for the rest of the session.
func (e *Engine) DismissSuggestion(merchantPattern string) {
	e.suggester.Dismiss(merchantPattern)
}

// ClearDismissedSuggestions resets the session's dismissal flags.
func (e *Engine) ClearDismissedSuggestions() {
	e.suggester.ClearDismissed()
}

// CreateRuleFromSuggestion promotes an accepted suggestion into a persisted
// rule and removes it from the active suggestion list. The next refresh
// suppresses it regardless via rule-store de-duplication.
func (e *Engine) CreateRuleFromSuggestion(ctx context.Context, suggestion model.RuleSuggestion) (*model.CategoryRule, error) {
	rule, err := e.promoter.CreateRuleFromSuggestion(ctx, suggestion)
	if err != nil {
		return nil, err
	}

	e.suggester.Remove(suggestion.MerchantPattern)
	e.notifier.publish(Event{Kind: EventRuleAdded})
	return rule, nil
}

// SaveRule validates and persists a caller-constructed rule.
func (e *Engine) SaveRule(ctx context.Context, rule *model.CategoryRule) error {
	if err := e.promoter.SaveRule(ctx, rule); err != nil {
		return err
	}
	e.notifier.publish(Event{Kind: EventRuleAdded})
	return nil
}

// ClearAllData empties the correction ledger and invalidates the derived
// suggestion view. Idempotent.
func (e *Engine) ClearAllData(ctx context.Context) error {
	e.ledgerMu.Lock()
	err := e.storage.ClearCorrections(ctx)
	e.ledgerMu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to clear corrections: %w", err)
	}

	e.suggester.Invalidate()
	e.notifier.publish(Event{Kind: EventDataCleared})
	return nil
}

// Categories returns all active categories.
func (e *Engine) Categories(ctx context.Context) ([]model.Category, error) {
	return e.taxonomy.Categories(ctx)
}

// RootCategories returns the active root categories.
func (e *Engine) RootCategories(ctx context.Context) ([]model.Category, error) {
	return e.taxonomy.RootCategories(ctx)
}

// Children returns the active children of a category.
func (e *Engine) Children(ctx context.Context, parentID int) ([]model.Category, error) {
	return e.taxonomy.Children(ctx, parentID)
}

// Category returns one category by ID.
func (e *Engine) Category(ctx context.Context, id int) (*model.Category, error) {
	return e.taxonomy.Category(ctx, id)
}

// HierarchyPath returns the root-to-leaf name path for a category.
func (e *Engine) HierarchyPath(ctx context.Context, id int) (string, error) {
	return e.taxonomy.HierarchyPath(ctx, id)
}

// CreateCategory validates and inserts a new category.
func (e *Engine) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := e.taxonomy.Create(ctx, category); err != nil {
		return err
	}
	e.notifier.publish(Event{Kind: EventCategoriesChanged})
	return nil
}

// ResetCategories restores the built-in system category set, removing all
// custom categories and the rules that reference them.
func (e *Engine) ResetCategories(ctx context.Context) error {
	if err := e.taxonomy.Reset(ctx); err != nil {
		return err
	}
	e.notifier.publish(Event{Kind: EventCategoriesChanged})
	return nil
}

// Bootstrap migrates the schema and seeds the system categories and
// shipped default rules. Safe to run on every start.
func (e *Engine) Bootstrap(ctx context.Context) error {
	if err := e.storage.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if err := e.taxonomy.EnsureDefaults(ctx); err != nil {
		return fmt.Errorf("failed to seed system categories: %w", err)
	}
	if err := match.SeedDefaultRules(ctx, e.storage); err != nil {
		return fmt.Errorf("failed to seed default rules: %w", err)
	}
	slog.Debug("engine bootstrap complete")
	return nil
}
