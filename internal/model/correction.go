package model

import "time"

// Correction is an immutable record of a user overriding a transaction's
// category. A correction where the original and new categories agree is
// still recorded: it is explicit confirmation of that category.
type Correction struct {
	Timestamp          time.Time
	ID                 string
	Transaction        Transaction
	OriginalCategoryID *int
	NewCategoryID      int
}
