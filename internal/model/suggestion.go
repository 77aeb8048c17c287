package model

// RuleSuggestion is a candidate rule proposed from a correction pattern,
// pending user acceptance. Suggestions live in memory for the session; only
// promoted suggestions become durable rules.
type RuleSuggestion struct {
	MerchantPattern     string
	ExampleTransactions []string
	SuggestedCategoryID int
	TransactionCount    int
	Confidence          float64
	AverageAmount       float64
	Dismissed           bool
}
