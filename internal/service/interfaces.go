// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/calebds/ledgertag/internal/model"
)

// Storage defines the contract for the persistence layer. Categories, rules
// and corrections are independently consistent; no cross-entity transaction
// is required by any consumer.
type Storage interface {
	// Category operations.
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetAllCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, id int) (*model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	GetChildCategories(ctx context.Context, parentID *int) ([]model.Category, error)
	CreateCategory(ctx context.Context, category *model.Category) error
	UpdateCategory(ctx context.Context, category *model.Category) error
	DeactivateCategory(ctx context.Context, id int) error
	DeleteCustomCategories(ctx context.Context) ([]int, error)

	// Rule operations.
	CreateRule(ctx context.Context, rule *model.CategoryRule) error
	GetRule(ctx context.Context, id int) (*model.CategoryRule, error)
	GetActiveRules(ctx context.Context) ([]model.CategoryRule, error)
	GetRulesByCategory(ctx context.Context, categoryID int) ([]model.CategoryRule, error)
	UpdateRule(ctx context.Context, rule *model.CategoryRule) error
	DeactivateRule(ctx context.Context, id int) error
	DeactivateRulesByCategory(ctx context.Context, categoryID int) (int, error)
	DeleteRule(ctx context.Context, id int) error
	RecordRuleMatch(ctx context.Context, id int, at time.Time) error

	// Correction operations.
	SaveCorrection(ctx context.Context, correction *model.Correction) error
	GetCorrections(ctx context.Context) ([]model.Correction, error)
	CountCorrections(ctx context.Context) (int, error)
	ClearCorrections(ctx context.Context) error

	// Lifecycle.
	Migrate(ctx context.Context) error
	Close() error
}
