// Package http exposes the derived ledger views and the two write
// operations over a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"steward/internal/cache"
	"steward/internal/core"
	"steward/internal/ledger"
	"steward/internal/middleware/ratelimit"
	"steward/internal/middleware/trace"
	"steward/internal/services"
	"steward/internal/storage"
)

// Service surfaces the handlers work against. The services package
// provides the production implementations; tests substitute fakes.
type (
	LedgerViews interface {
		Overview(ctx context.Context, q services.OverviewQuery) (ledger.PeriodAggregate, error)
		AccountBalances(ctx context.Context, accountID string, from, to time.Time) (services.AccountBalances, error)
		ListAccountsWithBalances(ctx context.Context) ([]services.AccountBalances, error)
		CreateAccount(ctx context.Context, a core.Account) (core.Account, error)
		RecordBalance(ctx context.Context, accountID string, amount core.Money, asOf time.Time) error
	}

	BudgetViews interface {
		MonthCells(ctx context.Context, year, month int, groupID string) ([]ledger.Cell, error)
		YearReport(ctx context.Context, year int, groupID string) (services.YearReport, error)
		Upsert(ctx context.Context, b core.Budget) (core.Budget, error)
	}

	TransactionWriter interface {
		Create(ctx context.Context, tx core.Transaction) (string, error)
		Delete(ctx context.Context, id string) error
		List(ctx context.Context, f storage.TxFilter) ([]core.Transaction, error)
	}
)

// Options tunes the derived-view caches.
type Options struct {
	CacheTTL  time.Duration
	CacheSize int
}

func (o Options) withDefaults() Options {
	if o.CacheTTL <= 0 {
		o.CacheTTL = 30 * time.Second
	}
	if o.CacheSize <= 0 {
		o.CacheSize = 128
	}
	return o
}

type Server struct {
	http.Server

	ledger  LedgerViews
	budgets BudgetViews
	txs     TransactionWriter
	loc     *time.Location

	limiter  *ratelimit.Limiter
	cacheMgr *cache.Manager

	// Derived views are cheap to rebuild but read-heavy; each view gets
	// its own cache so invalidation stays coarse and correct.
	overviewCache *cache.LRUCache[ledger.PeriodAggregate]
	balancesCache *cache.LRUCache[services.AccountBalances]
	cellsCache    *cache.LRUCache[[]ledger.Cell]
	summaryCache  *cache.LRUCache[services.YearReport]

	shutdownOnce sync.Once
}

// NewServer wires routes, caches and middleware and returns a server
// ready for ListenAndServe.
func NewServer(addr string, lv LedgerViews, bv BudgetViews, tw TransactionWriter, loc *time.Location, opts Options) *Server {
	opts = opts.withDefaults()
	if loc == nil {
		loc = time.UTC
	}

	s := &Server{
		ledger:  lv,
		budgets: bv,
		txs:     tw,
		loc:     loc,

		limiter:  ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		cacheMgr: cache.NewManager(),

		overviewCache: cache.NewLRUCache[ledger.PeriodAggregate](opts.CacheSize, opts.CacheTTL),
		balancesCache: cache.NewLRUCache[services.AccountBalances](opts.CacheSize, opts.CacheTTL),
		cellsCache:    cache.NewLRUCache[[]ledger.Cell](opts.CacheSize, opts.CacheTTL),
		summaryCache:  cache.NewLRUCache[services.YearReport](opts.CacheSize, opts.CacheTTL),
	}

	s.cacheMgr.Register(s.overviewCache)
	s.cacheMgr.Register(s.balancesCache)
	s.cacheMgr.Register(s.cellsCache)
	s.cacheMgr.Register(s.summaryCache)
	s.cacheMgr.StartCleanup(10 * time.Minute)

	s.Server = http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", handleReady).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.limitWrites)

	api.HandleFunc("/overview", s.handleOverview).Methods(http.MethodGet)
	api.HandleFunc("/accounts", s.handleListAccounts).Methods(http.MethodGet)
	api.HandleFunc("/accounts", s.handleCreateAccount).Methods(http.MethodPost)
	api.HandleFunc("/accounts/{id}/balances", s.handleAccountBalances).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{id}/balance", s.handleRecordBalance).Methods(http.MethodPut)

	api.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.handleCreateTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{id}", s.handleDeleteTransaction).Methods(http.MethodDelete)

	api.HandleFunc("/budgets", s.handleListBudgetCells).Methods(http.MethodGet)
	api.HandleFunc("/budgets/summary", s.handleBudgetSummary).Methods(http.MethodGet)
	api.HandleFunc("/budgets/{subcategoryId}", s.handleUpsertBudget).Methods(http.MethodPut)

	traced := trace.Middleware(clientIP)
	return traced(securityHeaders(r))
}

// limitWrites applies the rate limiter to mutating requests only;
// reads are already bounded by the caches.
func (s *Server) limitWrites(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && !s.limiter.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// invalidateDerived drops every cached view. Writes are rare compared
// to reads, so purging everything is simpler than tracking which keys a
// write could have touched.
func (s *Server) invalidateDerived() {
	s.overviewCache.Purge()
	s.balancesCache.Purge()
	s.cellsCache.Purge()
	s.summaryCache.Purge()
}

// Shutdown stops the HTTP server and the background cache and limiter
// goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
