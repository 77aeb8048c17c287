package model

import "time"

// Transaction represents a single financial transaction produced by the
// ingestion pipeline. Only the fields the categorization engine needs are
// modeled here.
type Transaction struct {
	Date        time.Time
	ID          string
	Description string
	Category    string
	Amount      float64
}
