package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"steward/internal/core"
	"steward/internal/ledger"
	"steward/internal/storage"
)

// LedgerService derives read-only views from a consistent snapshot. It
// holds no state across invocations; every call fetches fresh and
// re-derives.
type LedgerService struct {
	registry AccountRegistry
	ledger   TransactionLedger
	balances BalanceSource
	loc      *time.Location
}

func NewLedgerService(registry AccountRegistry, txs TransactionLedger, balances BalanceSource, loc *time.Location) *LedgerService {
	if loc == nil {
		loc = time.UTC
	}
	return &LedgerService{
		registry: registry,
		ledger:   txs,
		balances: balances,
		loc:      loc,
	}
}

// CreateAccount registers an account in the ledger, returning it with
// its assigned id. New accounts start with a zero balance anchor.
func (s *LedgerService) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	if _, err := core.ParseAccountType(string(a.Type)); err != nil {
		return core.Account{}, err
	}
	if _, err := core.ParseDebitMethod(string(a.DebitMethod)); err != nil {
		return core.Account{}, err
	}
	id, err := s.registry.CreateAccount(ctx, a)
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	a.ID = id
	return a, nil
}

// RecordBalance stores a newly observed balance anchor for the account.
// Every historical balance view replays backward from this value.
func (s *LedgerService) RecordBalance(ctx context.Context, accountID string, amount core.Money, asOf time.Time) error {
	if asOf.IsZero() {
		asOf = time.Now().In(s.loc)
	}
	return s.balances.SetCurrentBalance(ctx, accountID, amount, asOf)
}

// OverviewQuery selects the snapshot for a period overview. The caller
// owns the range; the service never decides a "month" on its own.
type OverviewQuery struct {
	From      time.Time
	To        time.Time
	AccountID string
	UserID    string
	GroupID   string
}

// Overview buckets the selected transactions by day and sums by
// effective type.
func (s *LedgerService) Overview(ctx context.Context, q OverviewQuery) (ledger.PeriodAggregate, error) {
	var (
		accounts []core.Account
		txs      []core.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = s.registry.ListAccounts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = s.ledger.ListTransactions(gctx, storage.TxFilter{
			From:      q.From,
			To:        q.To,
			AccountID: q.AccountID,
			UserID:    q.UserID,
			GroupID:   q.GroupID,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return ledger.PeriodAggregate{}, fmt.Errorf("fetch overview snapshot: %w", err)
	}

	return ledger.AggregateByDay(txs, ledger.LookupFrom(accounts), s.loc)
}

type (
	// BalanceEntry pairs a transaction with the balance that existed
	// immediately after it.
	BalanceEntry struct {
		Transaction  core.Transaction
		BalanceAfter core.Money
	}

	// AccountBalances is one account's replayed history, newest first.
	AccountBalances struct {
		Account core.Account
		Current storage.BalanceAnchor
		Entries []BalanceEntry
	}
)

// AccountBalances replays the account's full history backward from its
// current-balance anchor and returns the entries falling inside
// [from, to]. The replay always runs over the complete history: a
// partial window would detach the older entries from the anchor and
// yield wrong balances.
func (s *LedgerService) AccountBalances(ctx context.Context, accountID string, from, to time.Time) (AccountBalances, error) {
	var (
		account core.Account
		anchor  storage.BalanceAnchor
		history []core.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		account, err = s.registry.GetAccount(gctx, accountID)
		return err
	})
	g.Go(func() error {
		var err error
		anchor, err = s.balances.GetCurrentBalance(gctx, accountID)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = s.ledger.ListTransactions(gctx, storage.TxFilter{AccountID: accountID})
		return err
	})
	if err := g.Wait(); err != nil {
		return AccountBalances{}, fmt.Errorf("fetch balance snapshot: %w", err)
	}

	after, err := ledger.Replay(anchor.Amount, history, accountID)
	if err != nil {
		return AccountBalances{}, err
	}

	out := AccountBalances{Account: account, Current: anchor}
	for _, tx := range history { // already newest first
		if !from.IsZero() && tx.Date.Before(from) {
			continue
		}
		if !to.IsZero() && tx.Date.After(to) {
			continue
		}
		out.Entries = append(out.Entries, BalanceEntry{
			Transaction:  tx,
			BalanceAfter: after[tx.ID],
		})
	}
	return out, nil
}

// ListAccountsWithBalances returns every account together with its
// current anchor, for the accounts listing.
func (s *LedgerService) ListAccountsWithBalances(ctx context.Context) ([]AccountBalances, error) {
	accounts, err := s.registry.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	out := make([]AccountBalances, 0, len(accounts))
	for _, a := range accounts {
		anchor, err := s.balances.GetCurrentBalance(ctx, a.ID)
		if err != nil {
			return nil, fmt.Errorf("balance for account %s: %w", a.ID, err)
		}
		out = append(out, AccountBalances{Account: a, Current: anchor})
	}
	return out, nil
}
