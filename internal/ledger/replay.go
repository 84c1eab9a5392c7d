package ledger

import (
	"fmt"
	"sort"

	"steward/internal/core"
)

// Replay reconstructs the balance that existed immediately after every
// transaction in one account's history, walking backward from the single
// known current balance instead of forward from a ledger origin.
//
// Walking newest to oldest: the running value is the balance after the
// transaction being visited, and undoing that transaction's effect yields
// the balance before it, which is the correct "after" value for the next,
// older entry. An UPDATE entry is a balance anchor: its amount is both
// its own balanceAfter and the new replay baseline, regardless of the
// prior running value.
//
// The returned map is keyed by transaction id. An empty history returns
// an empty map. The input slice is not mutated.
func Replay(currentBalance core.Money, history []core.Transaction, accountID string) (map[string]core.Money, error) {
	after := make(map[string]core.Money, len(history))
	if len(history) == 0 {
		return after, nil
	}

	sorted := make([]core.Transaction, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.After(sorted[j].Date)
		}
		// Dates are the ordering key and should be unique; ids break the
		// tie deterministically if they are not.
		return sorted[i].ID > sorted[j].ID
	})

	running := currentBalance
	for _, tx := range sorted {
		if tx.Type == core.TxUpdate && tx.AccountID == accountID {
			after[tx.ID] = tx.Amount
			running = tx.Amount
			continue
		}

		after[tx.ID] = running

		effect, err := effectOn(tx, accountID)
		if err != nil {
			return nil, err
		}
		running = running.Sub(effect)
	}
	return after, nil
}

// effectOn is the signed balance impact of tx on the given account.
// Transactions unrelated to the account contribute zero.
func effectOn(tx core.Transaction, accountID string) (core.Money, error) {
	switch tx.Type {
	case core.TxIncome:
		if tx.AccountID == accountID {
			return tx.Amount, nil
		}
	case core.TxExpense:
		if tx.AccountID == accountID {
			return tx.Amount.Neg(), nil
		}
	case core.TxTransfer:
		if tx.AccountID == accountID {
			return tx.Amount.Neg(), nil
		}
		if tx.ToAccountID == accountID {
			return tx.Amount, nil
		}
	case core.TxUpdate:
		// Anchors for other accounts are unrelated entries.
	default:
		return core.Money{}, fmt.Errorf("%w: %q", core.ErrUnrecognizedTransactionType, tx.Type)
	}
	return core.Money{}, nil
}
