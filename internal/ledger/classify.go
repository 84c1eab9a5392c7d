// Package ledger is the derived ledger state engine. It turns a raw,
// possibly out-of-order set of transactions and sparse balance anchors
// into consistent derived views: effective classifications, per-day and
// per-period totals, replayed historical balances and budget-vs-actual
// reconciliation.
//
// Every function here is pure: it reads an immutable snapshot and returns
// a derived structure. Nothing is cached or incrementally maintained;
// callers re-derive from a fresh snapshot whenever the underlying data
// may have changed.
package ledger

import (
	"fmt"

	"steward/internal/core"
)

// AccountLookup resolves an account id against the snapshot's account
// registry. A missing account is legal and classified like CASH.
type AccountLookup func(id string) (core.Account, bool)

// LookupFrom builds an AccountLookup over a slice of accounts.
func LookupFrom(accounts []core.Account) AccountLookup {
	byID := make(map[string]core.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	return func(id string) (core.Account, bool) {
		a, ok := byID[id]
		return a, ok
	}
}

// Classify maps a transaction to its effective economic meaning for
// aggregation. The stored type is reclassified depending on the
// settlement semantics of the involved account so the same economic
// event is never counted twice:
//
//   - spending from a prepaid instrument already counted when it was
//     loaded, so the expense becomes TRANSFER_LIKE;
//   - spending on an invoice-style credit account settles later, so the
//     expense becomes TRANSFER_LIKE and the later invoice payment
//     (a transfer into the account) becomes the EXPENSE;
//   - loading a prepaid instrument is the moment the money is spent, so
//     the transfer becomes an EXPENSE.
//
// An account reference that does not resolve is treated like CASH. Enum
// values outside the closed sets fail fast.
func Classify(tx core.Transaction, lookup AccountLookup) (core.EffectiveType, error) {
	switch tx.Type {
	case core.TxUpdate:
		return core.EffectUpdate, nil

	case core.TxIncome:
		return core.EffectIncome, nil

	case core.TxExpense:
		src, ok := lookup(tx.AccountID)
		if !ok {
			return core.EffectExpense, nil
		}
		switch src.Type {
		case core.AccountPrepaid:
			return core.EffectTransferLike, nil
		case core.AccountCredit:
			switch src.DebitMethod {
			case core.DebitInvoice:
				return core.EffectTransferLike, nil
			case core.DebitPerPurchase, "":
				return core.EffectExpense, nil
			default:
				return "", fmt.Errorf("%w: %q", core.ErrUnrecognizedDebitMethod, src.DebitMethod)
			}
		case core.AccountCash:
			return core.EffectExpense, nil
		default:
			return "", fmt.Errorf("%w: %q", core.ErrUnrecognizedAccountType, src.Type)
		}

	case core.TxTransfer:
		dst, ok := lookup(tx.ToAccountID)
		if !ok {
			return core.EffectTransferLike, nil
		}
		switch dst.Type {
		case core.AccountPrepaid:
			return core.EffectExpense, nil
		case core.AccountCredit:
			switch dst.DebitMethod {
			case core.DebitInvoice:
				return core.EffectExpense, nil
			case core.DebitPerPurchase, "":
				return core.EffectTransferLike, nil
			default:
				return "", fmt.Errorf("%w: %q", core.ErrUnrecognizedDebitMethod, dst.DebitMethod)
			}
		case core.AccountCash:
			return core.EffectTransferLike, nil
		default:
			return "", fmt.Errorf("%w: %q", core.ErrUnrecognizedAccountType, dst.Type)
		}

	default:
		return "", fmt.Errorf("%w: %q", core.ErrUnrecognizedTransactionType, tx.Type)
	}
}
