package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	AccountCash    AccountType = "CASH"
	AccountCredit  AccountType = "CREDIT"
	AccountPrepaid AccountType = "PREPAID"
)

const (
	DebitInvoice     DebitMethod = "INVOICE"
	DebitPerPurchase DebitMethod = "PER_PURCHASE"
)

const (
	TxIncome   TransactionType = "INCOME"
	TxExpense  TransactionType = "EXPENSE"
	TxTransfer TransactionType = "TRANSFER"
	TxUpdate   TransactionType = "UPDATE"
)

// Effective types are derived for aggregation only and never persisted.
// EffectTransferLike and EffectUpdate contribute zero to every
// income/expense sum; they exist so the transaction stays visible in
// listings.
const (
	EffectIncome       EffectiveType = "INCOME"
	EffectExpense      EffectiveType = "EXPENSE"
	EffectTransferLike EffectiveType = "TRANSFER_LIKE"
	EffectUpdate       EffectiveType = "UPDATE"
)

type (
	AccountType     string
	DebitMethod     string
	TransactionType string
	EffectiveType   string

	// Account is a settlement instrument a congregation member or group
	// moves money through. DebitMethod is meaningful only for CREDIT
	// accounts and may be empty.
	Account struct {
		ID          string
		Name        string
		Type        AccountType
		DebitMethod DebitMethod
		UserID      string
		GroupID     string
	}

	// Transaction is a single ledger entry. Amount is a non-negative
	// magnitude; direction is implied by Type, never by sign. Date is the
	// unique ordering key. ToAccountID is set only for TRANSFER,
	// SubcategoryID only for INCOME and EXPENSE. An UPDATE entry is a
	// balance anchor: Amount carries the observed balance, not a delta.
	Transaction struct {
		ID            string
		Type          TransactionType
		Amount        Money
		Date          time.Time
		AccountID     string
		ToAccountID   string
		SubcategoryID string
		Description   string
		UserID        string
		GroupID       string
	}

	Category struct {
		ID   string
		Name string
	}

	Subcategory struct {
		ID         string
		Name       string
		CategoryID string
	}
)

var (
	ErrUnrecognizedAccountType     = errors.New("unrecognized account type")
	ErrUnrecognizedDebitMethod     = errors.New("unrecognized debit method")
	ErrUnrecognizedTransactionType = errors.New("unrecognized transaction type")
	ErrInvalidAmount               = errors.New("invalid amount")
	ErrEmptyAccount                = errors.New("empty account reference")
	ErrEmptySubcategory            = errors.New("empty subcategory reference")
	ErrSameAccountTransfer         = errors.New("transfer source and destination are the same account")
	ErrZeroDate                    = errors.New("date cannot be zero")
)

// ParseAccountType maps a stored string onto the closed AccountType set.
// Anything outside the set fails fast to surface data-model drift early.
func ParseAccountType(s string) (AccountType, error) {
	switch AccountType(strings.ToUpper(strings.TrimSpace(s))) {
	case AccountCash:
		return AccountCash, nil
	case AccountCredit:
		return AccountCredit, nil
	case AccountPrepaid:
		return AccountPrepaid, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnrecognizedAccountType, s)
}

// ParseDebitMethod maps a stored string onto the closed DebitMethod set.
// The empty string is valid and means "no debit method".
func ParseDebitMethod(s string) (DebitMethod, error) {
	switch DebitMethod(strings.ToUpper(strings.TrimSpace(s))) {
	case "":
		return "", nil
	case DebitInvoice:
		return DebitInvoice, nil
	case DebitPerPurchase:
		return DebitPerPurchase, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnrecognizedDebitMethod, s)
}

// ParseTransactionType maps a stored string onto the closed
// TransactionType set.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToUpper(strings.TrimSpace(s))) {
	case TxIncome:
		return TxIncome, nil
	case TxExpense:
		return TxExpense, nil
	case TxTransfer:
		return TxTransfer, nil
	case TxUpdate:
		return TxUpdate, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnrecognizedTransactionType, s)
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return ErrEmptyAccount
	}
	if _, err := ParseAccountType(string(a.Type)); err != nil {
		return err
	}
	if _, err := ParseDebitMethod(string(a.DebitMethod)); err != nil {
		return err
	}
	return nil
}

func (t Transaction) Validate() error {
	if _, err := ParseTransactionType(string(t.Type)); err != nil {
		return err
	}
	if t.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	if strings.TrimSpace(t.AccountID) == "" {
		return ErrEmptyAccount
	}
	switch t.Type {
	case TxTransfer:
		if strings.TrimSpace(t.ToAccountID) == "" {
			return ErrEmptyAccount
		}
		if t.ToAccountID == t.AccountID {
			return ErrSameAccountTransfer
		}
	case TxIncome, TxExpense:
		if strings.TrimSpace(t.SubcategoryID) == "" {
			return ErrEmptySubcategory
		}
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}
