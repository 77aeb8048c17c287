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

const ruleColumns = `id, category_id, rule_name, rule_description, priority,
	confidence, match_count, last_matched, is_active, merchant_contains,
	merchant_exact, description_contains, amount_min, amount_max, amount_sign,
	regex_pattern, created_at, updated_at`

func scanRule(row interface{ Scan(...any) error }) (*model.CategoryRule, error) {
	var rule model.CategoryRule
	var lastMatched sql.NullTime
	var amountMin, amountMax sql.NullFloat64
	var sign string
	err := row.Scan(
		&rule.ID, &rule.CategoryID, &rule.RuleName, &rule.RuleDescription,
		&rule.Priority, &rule.Confidence, &rule.MatchCount, &lastMatched,
		&rule.IsActive, &rule.MerchantContains, &rule.MerchantExact,
		&rule.DescriptionContains, &amountMin, &amountMax, &sign,
		&rule.RegexPattern, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastMatched.Valid {
		t := lastMatched.Time
		rule.LastMatched = &t
	}
	if amountMin.Valid {
		v := amountMin.Float64
		rule.AmountMin = &v
	}
	if amountMax.Valid {
		v := amountMax.Float64
		rule.AmountMax = &v
	}
	rule.AmountSign = model.AmountSign(sign)
	return &rule, nil
}

func (s *SQLiteStorage) queryRules(ctx context.Context, query string, args ...any) ([]model.CategoryRule, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.CategoryRule
	for rows.Next() {
		rule, scanErr := scanRule(rows)
		if scanErr != nil {
			slog.Warn("skipping corrupted rule record", "error", scanErr)
			continue
		}
		rules = append(rules, *rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}

	return rules, nil
}

// verifyCategoryActive checks that a rule's category reference resolves.
func (s *SQLiteStorage) verifyCategoryActive(ctx context.Context, categoryID int) error {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM categories WHERE id = ? AND is_active = 1",
		categoryID).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to verify category: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: category %d", common.ErrRuleReference, categoryID)
	}
	return nil
}

// CreateRule inserts a new rule and fills in its ID and timestamps.
func (s *SQLiteStorage) CreateRule(ctx context.Context, rule *model.CategoryRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}
	if err := s.verifyCategoryActive(ctx, rule.CategoryID); err != nil {
		return err
	}

	if rule.AmountSign == "" {
		rule.AmountSign = model.SignAny
	}
	if rule.RuleDescription == "" {
		rule.RuleDescription = rule.Summary()
	}

	query := `
		INSERT INTO category_rules (
			category_id, rule_name, rule_description, priority, confidence,
			match_count, last_matched, is_active, merchant_contains, merchant_exact,
			description_contains, amount_min, amount_max, amount_sign, regex_pattern,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now()
	result, err := s.db.ExecContext(ctx, query,
		rule.CategoryID, rule.RuleName, rule.RuleDescription, rule.Priority,
		rule.Confidence, rule.MatchCount, rule.LastMatched, rule.IsActive,
		rule.MerchantContains, rule.MerchantExact, rule.DescriptionContains,
		nullableFloat(rule.AmountMin), nullableFloat(rule.AmountMax),
		string(rule.AmountSign), rule.RegexPattern, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get rule ID: %w", err)
	}

	rule.ID = int(id)
	rule.CreatedAt = now
	rule.UpdatedAt = now

	slog.Info("created rule", "name", rule.RuleName, "id", rule.ID, "category_id", rule.CategoryID)
	return nil
}

// GetRule retrieves a rule by ID, or common.ErrNotFound.
func (s *SQLiteStorage) GetRule(ctx context.Context, id int) (*model.CategoryRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + ruleColumns + ` FROM category_rules WHERE id = ?`

	rule, err := scanRule(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: rule %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}

	return rule, nil
}

// GetActiveRules retrieves all active rules in deterministic winner order:
// priority descending, confidence descending, creation ascending.
func (s *SQLiteStorage) GetActiveRules(ctx context.Context) ([]model.CategoryRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + ruleColumns + `
		FROM category_rules
		WHERE is_active = 1
		ORDER BY priority DESC, confidence DESC, created_at ASC, id ASC`

	return s.queryRules(ctx, query)
}

// GetRulesByCategory retrieves all rules for one category.
func (s *SQLiteStorage) GetRulesByCategory(ctx context.Context, categoryID int) ([]model.CategoryRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + ruleColumns + `
		FROM category_rules
		WHERE category_id = ?
		ORDER BY priority DESC, created_at ASC`

	return s.queryRules(ctx, query, categoryID)
}

// UpdateRule persists changes to an existing rule.
func (s *SQLiteStorage) UpdateRule(ctx context.Context, rule *model.CategoryRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}
	if err := s.verifyCategoryActive(ctx, rule.CategoryID); err != nil {
		return err
	}

	query := `
		UPDATE category_rules SET
			category_id = ?, rule_name = ?, rule_description = ?, priority = ?,
			confidence = ?, is_active = ?, merchant_contains = ?, merchant_exact = ?,
			description_contains = ?, amount_min = ?, amount_max = ?, amount_sign = ?,
			regex_pattern = ?, updated_at = ?
		WHERE id = ?`

	now := time.Now()
	result, err := s.db.ExecContext(ctx, query,
		rule.CategoryID, rule.RuleName, rule.RuleDescription, rule.Priority,
		rule.Confidence, rule.IsActive, rule.MerchantContains, rule.MerchantExact,
		rule.DescriptionContains, nullableFloat(rule.AmountMin),
		nullableFloat(rule.AmountMax), string(rule.AmountSign), rule.RegexPattern,
		now, rule.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: rule %d", common.ErrNotFound, rule.ID)
	}

	rule.UpdatedAt = now
	return nil
}

// DeactivateRule soft-deletes a rule.
func (s *SQLiteStorage) DeactivateRule(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE category_rules SET is_active = 0, updated_at = ? WHERE id = ?`,
		time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate rule: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: rule %d", common.ErrNotFound, id)
	}

	return nil
}

// DeactivateRulesByCategory soft-deletes every rule referencing a category.
// Used before a category itself is removed. Returns the number of rules
// deactivated.
func (s *SQLiteStorage) DeactivateRulesByCategory(ctx context.Context, categoryID int) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE category_rules SET is_active = 0, updated_at = ? WHERE category_id = ?`,
		time.Now(), categoryID)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate rules for category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}

// DeleteRule removes a rule permanently.
func (s *SQLiteStorage) DeleteRule(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM category_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: rule %d", common.ErrNotFound, id)
	}

	return nil
}

// RecordRuleMatch increments a rule's match count and stamps the match time.
func (s *SQLiteStorage) RecordRuleMatch(ctx context.Context, id int, at time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE category_rules SET match_count = match_count + 1, last_matched = ? WHERE id = ?`,
		at, id)
	if err != nil {
		return fmt.Errorf("failed to record rule match: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: rule %d", common.ErrNotFound, id)
	}

	return nil
}
