package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/calebds/ledgertag/internal/common"
	"github.com/calebds/ledgertag/internal/model"
)

const categoryColumns = `id, name, icon, color, parent_id, is_system, is_active,
	sort_order, budget_amount, created_at, updated_at`

// scanCategory scans one category row. Callers iterating a result set skip
// rows that fail to scan so one corrupted record cannot poison a load.
func scanCategory(row interface{ Scan(...any) error }) (*model.Category, error) {
	var cat model.Category
	var parentID sql.NullInt64
	var budget sql.NullFloat64
	err := row.Scan(
		&cat.ID, &cat.Name, &cat.Icon, &cat.Color, &parentID, &cat.IsSystem,
		&cat.IsActive, &cat.SortOrder, &budget, &cat.CreatedAt, &cat.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		p := int(parentID.Int64)
		cat.ParentID = &p
	}
	if budget.Valid {
		b := budget.Float64
		cat.BudgetAmount = &b
	}
	return &cat, nil
}

func (s *SQLiteStorage) queryCategories(ctx context.Context, query string, args ...any) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		cat, scanErr := scanCategory(rows)
		if scanErr != nil {
			slog.Warn("skipping corrupted category record", "error", scanErr)
			continue
		}
		categories = append(categories, *cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// GetCategories returns all active categories ordered for display.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + categoryColumns + `
		FROM categories
		WHERE is_active = 1
		ORDER BY sort_order, name`

	return s.queryCategories(ctx, query)
}

// GetAllCategories returns every category including inactive ones.
func (s *SQLiteStorage) GetAllCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + categoryColumns + `
		FROM categories
		ORDER BY sort_order, name`

	return s.queryCategories(ctx, query)
}

// GetCategoryByID returns a category by its ID, or common.ErrNotFound.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id int) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + categoryColumns + `
		FROM categories
		WHERE id = ?`

	cat, err := scanCategory(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: category %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return cat, nil
}

// GetCategoryByName returns an active category by case-insensitive name,
// or common.ErrNotFound.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	query := `SELECT ` + categoryColumns + `
		FROM categories
		WHERE name = ? COLLATE NOCASE AND is_active = 1`

	cat, err := scanCategory(s.db.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: category %q", common.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return cat, nil
}

// GetChildCategories returns active categories under the given parent,
// ordered by sort order. A nil parentID selects root categories.
func (s *SQLiteStorage) GetChildCategories(ctx context.Context, parentID *int) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	if parentID == nil {
		query := `SELECT ` + categoryColumns + `
			FROM categories
			WHERE is_active = 1 AND parent_id IS NULL
			ORDER BY sort_order, name`
		return s.queryCategories(ctx, query)
	}

	query := `SELECT ` + categoryColumns + `
		FROM categories
		WHERE is_active = 1 AND parent_id = ?
		ORDER BY sort_order, name`
	return s.queryCategories(ctx, query, *parentID)
}

// CreateCategory inserts a new category and fills in its ID and timestamps.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}

	query := `
		INSERT INTO categories (name, icon, color, parent_id, is_system, is_active, sort_order, budget_amount, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now()
	result, err := s.db.ExecContext(ctx, query,
		category.Name, category.Icon, category.Color, nullableInt(category.ParentID),
		category.IsSystem, category.IsActive, category.SortOrder,
		nullableFloat(category.BudgetAmount), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get category ID: %w", err)
	}

	category.ID = int(id)
	category.CreatedAt = now
	category.UpdatedAt = now

	slog.Info("created category", "name", category.Name, "id", category.ID)
	return nil
}

// UpdateCategory persists changes to an existing category.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}

	query := `
		UPDATE categories SET
			name = ?, icon = ?, color = ?, parent_id = ?, is_system = ?,
			is_active = ?, sort_order = ?, budget_amount = ?, updated_at = ?
		WHERE id = ?`

	now := time.Now()
	result, err := s.db.ExecContext(ctx, query,
		category.Name, category.Icon, category.Color, nullableInt(category.ParentID),
		category.IsSystem, category.IsActive, category.SortOrder,
		nullableFloat(category.BudgetAmount), now, category.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: category %d", common.ErrNotFound, category.ID)
	}

	category.UpdatedAt = now
	return nil
}

// DeactivateCategory soft-deletes a category.
func (s *SQLiteStorage) DeactivateCategory(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE categories SET is_active = 0, updated_at = ? WHERE id = ?`,
		time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: category %d", common.ErrNotFound, id)
	}

	return nil
}

// DeleteCustomCategories removes every non-system category together with
// the rules referencing them. Affected rules are deactivated before being
// removed so the cascade never leaves a rule pointing at a missing
// category. Returns the IDs of the deleted categories.
func (s *SQLiteStorage) DeleteCustomCategories(ctx context.Context) ([]int, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `SELECT id FROM categories WHERE is_system = 0`)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom categories: %w", err)
	}
	var ids []int
	for rows.Next() {
		var id int
		if scanErr := rows.Scan(&id); scanErr != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan category ID: %w", scanErr)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("error iterating custom categories: %w", err)
	}
	_ = rows.Close()

	if len(ids) == 0 {
		return nil, tx.Commit()
	}

	queries := []string{
		`UPDATE category_rules SET is_active = 0
			WHERE category_id IN (SELECT id FROM categories WHERE is_system = 0)`,
		`DELETE FROM category_rules
			WHERE category_id IN (SELECT id FROM categories WHERE is_system = 0)`,
		`DELETE FROM categories WHERE is_system = 0`,
	}
	for _, query := range queries {
		if _, execErr := tx.ExecContext(ctx, query); execErr != nil {
			return nil, fmt.Errorf("failed to delete custom categories: %w", execErr)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit custom category deletion: %w", err)
	}

	slog.Info("deleted custom categories", "count", len(ids))
	return ids, nil
}

// nullableInt converts an optional int to a driver-friendly value.
func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// nullableFloat converts an optional float to a driver-friendly value.
func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
