package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebds/ledgertag/internal/model"
)

func floatPtr(f float64) *float64 { return &f }

func TestMatcher_Match_Conditions(t *testing.T) {
	tests := []struct {
		name    string
		rules   []model.CategoryRule
		txn     model.Transaction
		wantIDs []int
	}{
		{
			name: "merchant contains case insensitive",
			rules: []model.CategoryRule{
				{ID: 1, MerchantContains: "uber", IsActive: true},
			},
			txn:     model.Transaction{Description: "UBER TRIP 482", Amount: -14.50},
			wantIDs: []int{1},
		},
		{
			name: "merchant exact full string only",
			rules: []model.CategoryRule{
				{ID: 1, MerchantExact: "NETFLIX.COM", IsActive: true},
			},
			txn:     model.Transaction{Description: "NETFLIX.COM SUBSCRIPTION", Amount: -15},
			wantIDs: nil,
		},
		{
			name: "merchant exact case insensitive",
			rules: []model.CategoryRule{
				{ID: 1, MerchantExact: "netflix.com", IsActive: true},
			},
			txn:     model.Transaction{Description: "NETFLIX.COM", Amount: -15},
			wantIDs: []int{1},
		},
		{
			name: "description condition ANDed with merchant",
			rules: []model.CategoryRule{
				{ID: 1, MerchantContains: "UBER", DescriptionContains: "EATS", IsActive: true},
			},
			txn:     model.Transaction{Description: "UBER TRIP 482", Amount: -20},
			wantIDs: nil,
		},
		{
			name: "sign condition rejects refund",
			rules: []model.CategoryRule{
				{ID: 1, MerchantContains: "UBER", AmountSign: model.SignNegative, IsActive: true},
			},
			txn:     model.Transaction{Description: "UBER EATS REFUND", Amount: 12.00},
			wantIDs: nil,
		},
		{
			name: "amount bounds use absolute value",
			rules: []model.CategoryRule{
				{ID: 1, AmountMin: floatPtr(10), AmountMax: floatPtr(20), IsActive: true},
			},
			txn:     model.Transaction{Description: "COFFEE", Amount: -15},
			wantIDs: []int{1},
		},
		{
			name: "amount bounds inclusive",
			rules: []model.CategoryRule{
				{ID: 1, AmountMin: floatPtr(15), AmountMax: floatPtr(15), IsActive: true},
			},
			txn:     model.Transaction{Description: "COFFEE", Amount: -15},
			wantIDs: []int{1},
		},
		{
			name: "zero amount matches neither sign",
			rules: []model.CategoryRule{
				{ID: 1, MerchantContains: "FEE", AmountSign: model.SignPositive, IsActive: true},
				{ID: 2, MerchantContains: "FEE", AmountSign: model.SignNegative, IsActive: true},
				{ID: 3, MerchantContains: "FEE", AmountSign: model.SignAny, IsActive: true},
			},
			txn:     model.Transaction{Description: "SERVICE FEE", Amount: 0},
			wantIDs: []int{3},
		},
		{
			name: "regex matches description",
			rules: []model.CategoryRule{
				{ID: 1, RegexPattern: `(?i)\bpayroll\b`, IsActive: true},
			},
			txn:     model.Transaction{Description: "ACME CORP PAYROLL 0142", Amount: 2500},
			wantIDs: []int{1},
		},
		{
			name: "invalid regex never matches",
			rules: []model.CategoryRule{
				{ID: 1, RegexPattern: `(`, IsActive: true},
			},
			txn:     model.Transaction{Description: "ANYTHING", Amount: -5},
			wantIDs: nil,
		},
		{
			name: "rule with no conditions never matches",
			rules: []model.CategoryRule{
				{ID: 1, IsActive: true},
			},
			txn:     model.Transaction{Description: "ANYTHING", Amount: -5},
			wantIDs: nil,
		},
		{
			name: "inactive rule skipped",
			rules: []model.CategoryRule{
				{ID: 1, MerchantContains: "UBER", IsActive: false},
			},
			txn:     model.Transaction{Description: "UBER TRIP", Amount: -5},
			wantIDs: nil,
		},
		{
			name:    "empty description matches nothing",
			rules:   []model.CategoryRule{{ID: 1, MerchantContains: "UBER", IsActive: true}},
			txn:     model.Transaction{Description: "", Amount: -5},
			wantIDs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatcher(tt.rules)
			matches := m.Match(tt.txn)
			var ids []int
			for _, rule := range matches {
				ids = append(ids, rule.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestMatcher_Winner_PriorityOrdering(t *testing.T) {
	rules := []model.CategoryRule{
		{ID: 1, MerchantContains: "UBER", Priority: 50, Confidence: 0.9, IsActive: true},
		{ID: 2, MerchantContains: "UBER", Priority: 80, Confidence: 0.5, IsActive: true},
	}
	txn := model.Transaction{Description: "UBER TRIP", Amount: -10}

	// Same winner regardless of creation order.
	winner := NewMatcher(rules).Winner(txn)
	require.NotNil(t, winner)
	assert.Equal(t, 2, winner.ID)

	reversed := []model.CategoryRule{rules[1], rules[0]}
	winner = NewMatcher(reversed).Winner(txn)
	require.NotNil(t, winner)
	assert.Equal(t, 2, winner.ID)
}

func TestMatcher_Winner_TieBreaks(t *testing.T) {
	earlier := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	later := earlier.Add(24 * time.Hour)

	t.Run("confidence breaks priority tie", func(t *testing.T) {
		rules := []model.CategoryRule{
			{ID: 1, MerchantContains: "UBER", Priority: 50, Confidence: 0.6, IsActive: true},
			{ID: 2, MerchantContains: "UBER", Priority: 50, Confidence: 0.9, IsActive: true},
		}
		winner := NewMatcher(rules).Winner(model.Transaction{Description: "UBER", Amount: -10})
		require.NotNil(t, winner)
		assert.Equal(t, 2, winner.ID)
	})

	t.Run("earlier creation breaks full tie", func(t *testing.T) {
		rules := []model.CategoryRule{
			{ID: 2, MerchantContains: "UBER", Priority: 50, Confidence: 0.9, CreatedAt: later, IsActive: true},
			{ID: 1, MerchantContains: "UBER", Priority: 50, Confidence: 0.9, CreatedAt: earlier, IsActive: true},
		}
		winner := NewMatcher(rules).Winner(model.Transaction{Description: "UBER", Amount: -10})
		require.NotNil(t, winner)
		assert.Equal(t, 1, winner.ID)
	})
}

func TestMatcher_Winner_NoMatch(t *testing.T) {
	m := NewMatcher([]model.CategoryRule{
		{ID: 1, MerchantContains: "UBER", IsActive: true},
	})
	assert.Nil(t, m.Winner(model.Transaction{Description: "STARBUCKS", Amount: -4}))
}
