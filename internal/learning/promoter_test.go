package learning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebds/ledgertag/internal/model"
	"github.com/calebds/ledgertag/internal/testutil"
)

func TestPromoter_CreateRuleFromSuggestion(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStorage(t)
	transport := seedCategory(t, store, "Transportation")

	p := NewPromoter(store)

	rule, err := p.CreateRuleFromSuggestion(ctx, model.RuleSuggestion{
		MerchantPattern:     "UBER",
		SuggestedCategoryID: transport.ID,
		Confidence:          0.85,
		TransactionCount:    4,
		AverageAmount:       -15.50,
	})
	require.NoError(t, err)

	assert.Equal(t, "Auto: UBER", rule.RuleName)
	assert.Equal(t, transport.ID, rule.CategoryID)
	assert.Equal(t, "UBER", rule.MerchantContains)
	assert.Equal(t, model.SignNegative, rule.AmountSign)
	assert.InDelta(t, 0.85, rule.Confidence, 0.001)
	assert.Equal(t, model.PriorityUserGenerated, rule.Priority)
	assert.True(t, rule.IsActive)

	// The rule is persisted, not just constructed.
	saved, err := store.GetRule(ctx, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, rule.RuleName, saved.RuleName)
}

func TestPromoter_SignInference(t *testing.T) {
	tests := []struct {
		name          string
		averageAmount float64
		want          model.AmountSign
	}{
		{"negative average", -20, model.SignNegative},
		{"positive average", 1500, model.SignPositive},
		{"zero average", 0, model.SignAny},
	}

	ctx := context.Background()
	store := testutil.NewStorage(t)
	income := seedCategory(t, store, "Income")
	p := NewPromoter(store)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := p.CreateRuleFromSuggestion(ctx, model.RuleSuggestion{
				MerchantPattern:     "PAYROLL " + tt.name,
				SuggestedCategoryID: income.ID,
				Confidence:          1,
				AverageAmount:       tt.averageAmount,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, rule.AmountSign)
		})
	}
}

func TestPromoter_EmptyPatternRejected(t *testing.T) {
	store := testutil.NewStorage(t)
	p := NewPromoter(store)

	_, err := p.CreateRuleFromSuggestion(context.Background(), model.RuleSuggestion{
		SuggestedCategoryID: 1,
		Confidence:          1,
	})
	assert.Error(t, err)
}

func TestPromoter_SaveRule_Validates(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStorage(t)
	transport := seedCategory(t, store, "Transportation")
	p := NewPromoter(store)

	err := p.SaveRule(ctx, &model.CategoryRule{
		RuleName:   "no conditions",
		CategoryID: transport.ID,
		Confidence: 1,
	})
	assert.ErrorIs(t, err, model.ErrRuleNoConditions)

	rule := &model.CategoryRule{
		RuleName:         "starbucks",
		CategoryID:       transport.ID,
		MerchantContains: "STARBUCKS",
		Confidence:       0.9,
		Priority:         model.PriorityDefault,
		IsActive:         true,
	}
	require.NoError(t, p.SaveRule(ctx, rule))
	assert.Equal(t, model.SignAny, rule.AmountSign)
}

// Promotion permanently removes a signature from the suggestion pipeline:
// once a rule carries the merchant condition, refreshes stop proposing it no
// matter how many further corrections accumulate.
func TestPromotion_SuppressesFutureSuggestions(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStorage(t)
	transport := seedCategory(t, store, "Transportation")

	for i := 0; i < 3; i++ {
		recordCorrection(t, store, "UBER TRIP", -10, transport.ID)
	}

	s := NewSuggester(store)
	suggestions, err := s.Refresh(ctx, 3, 0.7)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)

	p := NewPromoter(store)
	_, err = p.CreateRuleFromSuggestion(ctx, suggestions[0])
	require.NoError(t, err)
	s.Remove(suggestions[0].MerchantPattern)
	assert.Empty(t, s.Suggestions())

	// More corrections arrive; the promoted signature stays out.
	for i := 0; i < 5; i++ {
		recordCorrection(t, store, "UBER TRIP", -10, transport.ID)
	}
	suggestions, err = s.Refresh(ctx, 3, 0.7)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}
