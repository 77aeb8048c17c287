package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryRule_Validate(t *testing.T) {
	floatPtr := func(f float64) *float64 { return &f }

	tests := []struct {
		wantErr error
		name    string
		rule    CategoryRule
	}{
		{
			name: "merchant contains only",
			rule: CategoryRule{MerchantContains: "UBER", Confidence: 0.9},
		},
		{
			name: "amount range only",
			rule: CategoryRule{AmountMin: floatPtr(10), AmountMax: floatPtr(20), Confidence: 0.5},
		},
		{
			name: "amount sign only",
			rule: CategoryRule{AmountSign: SignNegative, Confidence: 0.5},
		},
		{
			name: "regex only",
			rule: CategoryRule{RegexPattern: `UBER\s+TRIP`, Confidence: 0.8},
		},
		{
			name:    "no conditions",
			rule:    CategoryRule{Confidence: 0.9},
			wantErr: ErrRuleNoConditions,
		},
		{
			name:    "sign any alone is no condition",
			rule:    CategoryRule{AmountSign: SignAny, Confidence: 0.9},
			wantErr: ErrRuleNoConditions,
		},
		{
			name:    "regex mixed with substring",
			rule:    CategoryRule{RegexPattern: "UBER", MerchantContains: "UBER"},
			wantErr: ErrRuleMixedConditions,
		},
		{
			name:    "invalid regex",
			rule:    CategoryRule{RegexPattern: "("},
			wantErr: ErrRuleBadRegex,
		},
		{
			name:    "confidence above one",
			rule:    CategoryRule{MerchantContains: "UBER", Confidence: 1.5},
			wantErr: ErrRuleBadConfidence,
		},
		{
			name:    "inverted amount range",
			rule:    CategoryRule{AmountMin: floatPtr(50), AmountMax: floatPtr(10)},
			wantErr: ErrRuleBadAmountRange,
		},
		{
			name:    "unknown sign",
			rule:    CategoryRule{MerchantContains: "UBER", AmountSign: AmountSign("sideways")},
			wantErr: ErrRuleBadSign,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCategoryRule_Summary(t *testing.T) {
	min := 5.0
	rule := CategoryRule{
		MerchantContains: "STARBUCKS",
		AmountMin:        &min,
		AmountSign:       SignNegative,
	}
	summary := rule.Summary()
	assert.Contains(t, summary, `merchant contains "STARBUCKS"`)
	assert.Contains(t, summary, "amount at least $5.00")
	assert.Contains(t, summary, "debits only")
}
