package analytics

import (
	"strings"

	"ledger/internal/core"
)

// Filter keeps transactions whose description contains search
// (case-insensitive) and whose category equals category. Empty arguments
// match everything. Order is preserved and the input is not modified.
func Filter(txs []core.Transaction, search string, category core.Category) []core.Transaction {
	needle := strings.ToLower(search)
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if needle != "" && !strings.Contains(strings.ToLower(t.Description), needle) {
			continue
		}
		if category != "" && t.Category != category {
			continue
		}
		out = append(out, t.Clone())
	}
	return out
}
