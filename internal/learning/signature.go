// Package learning turns the correction ledger into rule suggestions:
// it clusters corrections by merchant signature, generates candidate rules
// from qualifying clusters, and promotes accepted candidates into the rule
// store.
package learning

import (
	"strings"

	"github.com/calebds/ledgertag/internal/match"
)

// Signature extracts the normalized merchant signature from a transaction
// description. Known brand tokens win; otherwise the first one or two
// tokens longer than two characters are upper-cased and joined. The result
// is deliberately coarse so suffix variants ("UBER TRIP 482", "UBER *EATS")
// cluster together, and it is used verbatim as a merchant-contains
// condition when promoted.
func Signature(description string) string {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return ""
	}

	upper := strings.ToUpper(trimmed)
	for _, token := range match.BrandTokens() {
		if strings.Contains(upper, token) {
			return token
		}
	}

	var picked []string
	for _, token := range strings.Fields(upper) {
		if len(token) <= 2 {
			continue
		}
		picked = append(picked, token)
		if len(picked) == 2 {
			break
		}
	}
	return strings.Join(picked, " ")
}
