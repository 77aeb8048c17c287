package model

import "time"

// MaxPatternExamples bounds the example transactions retained per pattern.
const MaxPatternExamples = 5

// Pattern aggregates correction statistics for one merchant signature.
// Patterns are a derived, rebuildable view over the correction ledger and
// are never persisted as primary data.
type Pattern struct {
	LastSeen              time.Time
	CategoryVotes         map[int]int
	Signature             string
	ExampleTransactionIDs []string
	OccurrenceCount       int
	AverageAmount         float64
}

// Vote folds one correction into the pattern: a vote for categoryID, a
// running-mean amount update, and first-seen example retention.
func (p *Pattern) Vote(categoryID int, amount float64, transactionID string, at time.Time) {
	if p.CategoryVotes == nil {
		p.CategoryVotes = make(map[int]int)
	}
	p.OccurrenceCount++
	p.CategoryVotes[categoryID]++
	p.AverageAmount += (amount - p.AverageAmount) / float64(p.OccurrenceCount)
	if len(p.ExampleTransactionIDs) < MaxPatternExamples && transactionID != "" {
		p.ExampleTransactionIDs = append(p.ExampleTransactionIDs, transactionID)
	}
	if at.After(p.LastSeen) {
		p.LastSeen = at
	}
}

// PluralityCategory returns the category with the most votes and its vote
// share. Ties resolve to the lowest category ID so the result is stable
// across rebuilds.
func (p *Pattern) PluralityCategory() (categoryID int, agreement float64) {
	if p.OccurrenceCount == 0 || len(p.CategoryVotes) == 0 {
		return 0, 0
	}
	best := -1
	bestVotes := 0
	for id, votes := range p.CategoryVotes {
		if votes > bestVotes || (votes == bestVotes && (best == -1 || id < best)) {
			best = id
			bestVotes = votes
		}
	}
	return best, float64(bestVotes) / float64(p.OccurrenceCount)
}
