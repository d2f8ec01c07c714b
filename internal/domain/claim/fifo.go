package claim

import "github.com/shopspring/decimal"

// MatchFIFO selects outstanding entitlements to settle against qty units of incoming free stock.
//
// items must already be in FIFO order (oldest first). Items are taken whole while demand
// remains above zero; an item is never split, so the last match may overshoot qty.
// Non-claimable items are skipped. The returned remainder is qty minus the matched free
// quantities and is negative on overshoot.
func MatchFIFO(items []OrderItem, qty decimal.Decimal) (matched []string, remaining decimal.Decimal) {
	remaining = qty
	matched = make([]string, 0)
	for i := range items {
		if !remaining.IsPositive() {
			break
		}
		if !items[i].IsClaimable() {
			continue
		}
		matched = append(matched, items[i].ID)
		remaining = remaining.Sub(items[i].FreeQuantity)
	}
	return matched, remaining
}

// UnionClaimIDs merges explicit and matched ids, dropping blanks and duplicates while
// keeping first-seen order.
func UnionClaimIDs(explicit, matched []string) []string {
	seen := make(map[string]struct{}, len(explicit)+len(matched))
	result := make([]string, 0, len(explicit)+len(matched))
	for _, list := range [][]string{explicit, matched} {
		for _, id := range list {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			result = append(result, id)
		}
	}
	return result
}
