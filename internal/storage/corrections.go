package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/calebds/ledgertag/internal/model"
)

// SaveCorrection appends a correction to the ledger. The ledger is
// append-only; corrections are never updated in place.
func (s *SQLiteStorage) SaveCorrection(ctx context.Context, correction *model.Correction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCorrection(correction); err != nil {
		return err
	}

	query := `
		INSERT INTO corrections (
			id, transaction_id, transaction_date, transaction_description,
			transaction_amount, original_category_id, new_category_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		correction.ID, correction.Transaction.ID, correction.Transaction.Date,
		correction.Transaction.Description, correction.Transaction.Amount,
		nullableInt(correction.OriginalCategoryID), correction.NewCategoryID,
		correction.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to save correction: %w", err)
	}

	slog.Debug("recorded correction",
		"transaction_id", correction.Transaction.ID,
		"new_category_id", correction.NewCategoryID)
	return nil
}

// GetCorrections returns every correction in insertion order.
func (s *SQLiteStorage) GetCorrections(ctx context.Context) ([]model.Correction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, transaction_id, transaction_date, transaction_description,
			transaction_amount, original_category_id, new_category_id, created_at
		FROM corrections
		ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query corrections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var corrections []model.Correction
	for rows.Next() {
		var c model.Correction
		var originalID sql.NullInt64
		var date sql.NullTime
		scanErr := rows.Scan(
			&c.ID, &c.Transaction.ID, &date, &c.Transaction.Description,
			&c.Transaction.Amount, &originalID, &c.NewCategoryID, &c.Timestamp,
		)
		if scanErr != nil {
			slog.Warn("skipping corrupted correction record", "error", scanErr)
			continue
		}
		if date.Valid {
			c.Transaction.Date = date.Time
		}
		if originalID.Valid {
			id := int(originalID.Int64)
			c.OriginalCategoryID = &id
		}
		corrections = append(corrections, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating corrections: %w", err)
	}

	return corrections, nil
}

// CountCorrections returns the number of corrections in the ledger.
func (s *SQLiteStorage) CountCorrections(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM corrections`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count corrections: %w", err)
	}

	return count, nil
}

// ClearCorrections empties the ledger.
func (s *SQLiteStorage) ClearCorrections(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM corrections`); err != nil {
		return fmt.Errorf("failed to clear corrections: %w", err)
	}

	slog.Info("cleared correction ledger")
	return nil
}
