package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"budget/internal/cache"
	"budget/internal/core"
	"budget/internal/middleware/ratelimit"
	"budget/internal/middleware/security"
	"budget/internal/middleware/trace"
)

// LedgerAPI is the slice of the ledger service the handlers need.
type LedgerAPI interface {
	CreateAccount(ctx context.Context) (uuid.UUID, error)
	RecordTransaction(ctx context.Context, tx core.Transaction) (int64, error)
	DeleteTransaction(ctx context.Context, id int64, accountID uuid.UUID) error
	ListTransactions(ctx context.Context, accountID uuid.UUID, periodToken string) ([]core.Transaction, error)
}

// CreditAPI is the slice of the credit service the handlers need.
type CreditAPI interface {
	GetCreditAccount(ctx context.Context, accountID uuid.UUID) (core.CreditAccount, error)
	SetLimit(ctx context.Context, accountID uuid.UUID, newLimit core.Money) (core.CreditAccount, error)
	ResetUsedCredit(ctx context.Context, accountID uuid.UUID) (core.CreditAccount, error)
	RecomputeUsedCredit(ctx context.Context, accountID uuid.UUID, periodToken string) (core.CreditAccount, error)
}

// SummaryAPI computes the derived period view.
type SummaryAPI interface {
	Summary(ctx context.Context, accountID uuid.UUID, periodToken string) (core.FinancialSummary, error)
}

// ReadyChecker reports whether the storage backend is reachable.
type ReadyChecker interface {
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server

	ledger  LedgerAPI
	credit  CreditAPI
	summary SummaryAPI
	ready   ReadyChecker

	rateLimiter *ratelimit.Limiter
	detector    *security.Detector

	// Summary responses are cached per account and period. Any write to an
	// account bumps its epoch, which changes every cache key for that
	// account; superseded entries age out through LRU eviction and TTL.
	summaryCache *cache.LRUCache[core.FinancialSummary]
	cacheManager *cache.Manager

	epochMu sync.Mutex
	epochs  map[uuid.UUID]uint64

	shutdownOnce sync.Once
}

// Options tunes the server's caching and rate limiting.
type Options struct {
	SummaryCacheSize int
	SummaryCacheTTL  time.Duration
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, ledger LedgerAPI, credit CreditAPI, summary SummaryAPI, ready ReadyChecker, opts Options) *Server {
	if opts.SummaryCacheSize <= 0 {
		opts.SummaryCacheSize = 200
	}
	if opts.SummaryCacheTTL <= 0 {
		opts.SummaryCacheTTL = 5 * time.Minute
	}

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		ledger:       ledger,
		credit:       credit,
		summary:      summary,
		ready:        ready,
		rateLimiter:  ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:     security.NewDetector(),
		summaryCache: cache.NewLRUCache[core.FinancialSummary](opts.SummaryCacheSize, opts.SummaryCacheTTL),
		cacheManager: cache.NewManager(),
		epochs:       make(map[uuid.UUID]uint64),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /accounts", s.handleCreateAccount)
	mux.HandleFunc("GET /accounts/{id}/summary", s.handleSummary)
	mux.HandleFunc("GET /accounts/{id}/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /accounts/{id}/transactions", s.handleRecordTransaction)
	mux.HandleFunc("DELETE /accounts/{id}/transactions/{txID}", s.handleDeleteTransaction)
	mux.HandleFunc("GET /accounts/{id}/credit", s.handleGetCredit)
	mux.HandleFunc("PUT /accounts/{id}/credit/limit", s.handleSetCreditLimit)
	mux.HandleFunc("POST /accounts/{id}/credit/reset", s.handleResetCredit)
	mux.HandleFunc("POST /accounts/{id}/credit/recompute", s.handleRecomputeCredit)

	traced := trace.NewMiddleware(s.detector.ExtractClientIP)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limited := s.rateLimiter.Middleware(s.detector.ExtractClientIP, nil)

	s.Handler = traced.Middleware(headers.Middleware(limitWrites(limited, mux)))

	return s
}

// limitWrites applies the rate limiter to mutating methods only; reads stay
// cheap and cacheable.
func limitWrites(limiter func(http.Handler) http.Handler, next http.Handler) http.Handler {
	limited := limiter(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			limited.ServeHTTP(w, r)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready.Ping(ctx); err != nil {
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) summaryCacheKey(accountID uuid.UUID, periodToken string) string {
	s.epochMu.Lock()
	epoch := s.epochs[accountID]
	s.epochMu.Unlock()
	return fmt.Sprintf("%s#%s|%s", accountID, strconv.FormatUint(epoch, 10), periodToken)
}

// invalidateAccount retires every cached summary for the account.
func (s *Server) invalidateAccount(accountID uuid.UUID) {
	s.epochMu.Lock()
	s.epochs[accountID]++
	s.epochMu.Unlock()
}
