package match

import "strings"

// BrandConfidence is the fixed confidence assigned to brand-table matches.
// Brand lookups are a last-resort hint, weaker than any explicit rule.
const BrandConfidence = 0.6

// brandEntry maps a well-known merchant token to a system category name.
type brandEntry struct {
	Token    string
	Category string
}

// brandTable lists well-known merchant tokens, most specific first so
// "UBER EATS" resolves before "UBER".
var brandTable = []brandEntry{
	{"UBER EATS", "Food & Dining"},
	{"DOORDASH", "Food & Dining"},
	{"GRUBHUB", "Food & Dining"},
	{"STARBUCKS", "Food & Dining"},
	{"MCDONALD", "Food & Dining"},
	{"CHIPOTLE", "Food & Dining"},
	{"WHOLE FOODS", "Food & Dining"},
	{"AMAZON", "Shopping"},
	{"WALMART", "Shopping"},
	{"TARGET", "Shopping"},
	{"COSTCO", "Shopping"},
	{"UBER", "Transportation"},
	{"LYFT", "Transportation"},
	{"CHEVRON", "Transportation"},
	{"SHELL", "Transportation"},
	{"EXXON", "Transportation"},
	{"NETFLIX", "Subscriptions"},
	{"SPOTIFY", "Subscriptions"},
	{"HULU", "Subscriptions"},
	{"AIRBNB", "Travel"},
	{"MARRIOTT", "Travel"},
	{"DELTA AIR", "Travel"},
	{"PAYPAL", "Payments"},
	{"VENMO", "Payments"},
	{"COMCAST", "Utilities"},
	{"VERIZON", "Utilities"},
	{"CVS", "Healthcare"},
	{"WALGREENS", "Healthcare"},
}

// LookupBrand scans a transaction description for a well-known brand token
// and returns the token and its category name.
func LookupBrand(description string) (token, category string, ok bool) {
	upper := strings.ToUpper(description)
	for _, entry := range brandTable {
		if strings.Contains(upper, entry.Token) {
			return entry.Token, entry.Category, true
		}
	}
	return "", "", false
}

// BrandTokens returns the known brand tokens, most specific first. The
// learning signature extractor shares this list so brand transactions
// cluster under one signature.
func BrandTokens() []string {
	tokens := make([]string, len(brandTable))
	for i, entry := range brandTable {
		tokens[i] = entry.Token
	}
	return tokens
}
