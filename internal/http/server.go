// Package http exposes the budgeting API: expenses, budget periods, period
// archives, transaction import, and planning resources. All /api routes
// except the health check require an X-API-Key header.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"spendwise/internal/amqp"
	"spendwise/internal/cache"
	"spendwise/internal/core"
	"spendwise/internal/middleware/ratelimit"
	"spendwise/internal/middleware/security"
	"spendwise/internal/middleware/trace"
	"spendwise/internal/services"
	"spendwise/internal/storage"
)

// Store is the repository surface the handlers depend on. Satisfied by
// *storage.SQLiteRepository.
type Store interface {
	GetUserByAPIKey(ctx context.Context, apiKey string) (*storage.User, error)

	CreateExpense(ctx context.Context, userID string, e core.Expense) error
	GetExpense(ctx context.Context, userID, id string) (core.Expense, error)
	ListExpenses(ctx context.Context, userID string) ([]core.Expense, error)
	ListExpensesInRange(ctx context.Context, userID string, rng core.PeriodRange) ([]core.Expense, error)
	ListUncategorizedExpenses(ctx context.Context, userID string) ([]core.Expense, error)
	UpdateExpense(ctx context.Context, userID string, e core.Expense) error
	CategorizeExpense(ctx context.Context, userID, id, category, categoryID string) error
	DeleteExpense(ctx context.Context, userID, id string) error

	GetPeriodConfig(ctx context.Context, userID string) (core.PeriodConfig, error)
	SavePeriodConfig(ctx context.Context, userID string, cfg core.PeriodConfig) error

	ListArchivedPeriods(ctx context.Context, userID string) ([]core.ArchivedPeriod, error)
	GetArchivedPeriod(ctx context.Context, userID, id string) (core.ArchivedPeriod, error)

	ListBudgetCategories(ctx context.Context, userID string) ([]core.BudgetCategory, error)
	CreateBudgetCategory(ctx context.Context, userID string, c core.BudgetCategory) error
	UpdateBudgetCategory(ctx context.Context, userID string, c core.BudgetCategory) error
	DeleteBudgetCategory(ctx context.Context, userID, id string) error

	ListSavingsGoals(ctx context.Context, userID string) ([]core.SavingsGoal, error)
	GetSavingsGoal(ctx context.Context, userID, id string) (core.SavingsGoal, error)
	CreateSavingsGoal(ctx context.Context, userID string, g core.SavingsGoal) error
	UpdateSavingsGoal(ctx context.Context, userID string, g core.SavingsGoal) error
	DeleteSavingsGoal(ctx context.Context, userID, id string) error
	ListMonthlyBalances(ctx context.Context, userID, goalID string) ([]core.MonthlyBalance, error)
	CreateMonthlyBalance(ctx context.Context, userID string, b core.MonthlyBalance) error

	ListBorrowedMoney(ctx context.Context, userID string) ([]core.BorrowedMoney, error)
	CreateBorrowedMoney(ctx context.Context, userID string, b core.BorrowedMoney) error
	UpdateBorrowedMoney(ctx context.Context, userID string, b core.BorrowedMoney) error
	MarkBorrowedReturned(ctx context.Context, userID, id string, returnedDate core.Date) error
	DeleteBorrowedMoney(ctx context.Context, userID, id string) error
}

// BatchPublisher enqueues a transaction batch for asynchronous import by the
// worker. Nil when the broker is not configured.
type BatchPublisher interface {
	PublishTransactionBatch(ctx context.Context, msg *amqp.TransactionBatchMessage) error
}

// Options carries the tunables the server needs from configuration.
type Options struct {
	Addr               string
	RateLimitPerMinute int
	ImportMaxBatch     int
}

type Server struct {
	http.Server

	store     Store
	archiver  *services.Archiver
	importer  *services.ImportService
	monitor   *services.PeriodMonitor
	publisher BatchPublisher

	importMaxBatch int

	userCache    *cache.LRUCache[*storage.User]
	cacheManager *cache.Manager
	limiter      *ratelimit.Limiter
	resolver     *security.Resolver

	startedAt    time.Time
	now          func() time.Time
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(opts Options, store Store, archiver *services.Archiver, importer *services.ImportService, monitor *services.PeriodMonitor, publisher BatchPublisher) *Server {
	s := &Server{
		store:          store,
		archiver:       archiver,
		importer:       importer,
		monitor:        monitor,
		publisher:      publisher,
		importMaxBatch: opts.ImportMaxBatch,
		userCache:      cache.NewLRUCache[*storage.User](500, 5*time.Minute),
		cacheManager:   cache.NewManager(),
		resolver:       security.NewResolver(),
		startedAt:      time.Now(),
		now:            time.Now,
	}
	s.cacheManager.Register(s.userCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	s.limiter = ratelimit.NewLimiter(ratelimit.Config{
		RequestsPerMinute: opts.RateLimitPerMinute,
	})

	mux := http.NewServeMux()

	mux.HandleFunc("GET /", s.handleIndex)
	mux.HandleFunc("GET /api/health", s.handleHealth)

	mux.Handle("POST /api/expenses", s.authenticated(s.handleCreateExpense))
	mux.Handle("GET /api/expenses", s.authenticated(s.handleListExpenses))
	mux.Handle("GET /api/expenses/uncategorized", s.authenticated(s.handleListUncategorized))
	mux.Handle("GET /api/expenses/{id}", s.authenticated(s.handleGetExpense))
	mux.Handle("PUT /api/expenses/{id}", s.authenticated(s.handleUpdateExpense))
	mux.Handle("PUT /api/expenses/{id}/category", s.authenticated(s.handleCategorizeExpense))
	mux.Handle("DELETE /api/expenses/{id}", s.authenticated(s.handleDeleteExpense))

	mux.Handle("GET /api/period", s.authenticated(s.handleGetPeriodSettings))
	mux.Handle("PUT /api/period", s.authenticated(s.handlePutPeriodSettings))
	mux.Handle("GET /api/period/current", s.authenticated(s.handleCurrentPeriod))
	mux.Handle("GET /api/period/status", s.authenticated(s.handlePeriodStatus))
	mux.Handle("POST /api/period/acknowledge", s.authenticated(s.handleAcknowledgePeriod))
	mux.Handle("POST /api/period/archive", s.authenticated(s.handleArchivePeriod))

	mux.Handle("GET /api/archive", s.authenticated(s.handleListArchives))
	mux.Handle("GET /api/archive/{id}", s.authenticated(s.handleGetArchive))

	mux.Handle("POST /api/transactions", s.authenticated(s.handleImportTransactions))

	mux.Handle("GET /api/categories", s.authenticated(s.handleListCategories))
	mux.Handle("POST /api/categories", s.authenticated(s.handleCreateCategory))
	mux.Handle("PUT /api/categories/{id}", s.authenticated(s.handleUpdateCategory))
	mux.Handle("DELETE /api/categories/{id}", s.authenticated(s.handleDeleteCategory))

	mux.Handle("GET /api/savings-goals", s.authenticated(s.handleListGoals))
	mux.Handle("POST /api/savings-goals", s.authenticated(s.handleCreateGoal))
	mux.Handle("PUT /api/savings-goals/{id}", s.authenticated(s.handleUpdateGoal))
	mux.Handle("DELETE /api/savings-goals/{id}", s.authenticated(s.handleDeleteGoal))
	mux.Handle("GET /api/savings-goals/{id}/balances", s.authenticated(s.handleListBalances))
	mux.Handle("POST /api/savings-goals/{id}/balances", s.authenticated(s.handleCreateBalance))

	mux.Handle("GET /api/borrowed", s.authenticated(s.handleListBorrowed))
	mux.Handle("POST /api/borrowed", s.authenticated(s.handleCreateBorrowed))
	mux.Handle("PUT /api/borrowed/{id}", s.authenticated(s.handleUpdateBorrowed))
	mux.Handle("POST /api/borrowed/{id}/return", s.authenticated(s.handleReturnBorrowed))
	mux.Handle("DELETE /api/borrowed/{id}", s.authenticated(s.handleDeleteBorrowed))

	traced := trace.NewMiddleware(s.resolver.ExtractClientIP)
	limited := s.limiter.Middleware(s.resolver.ExtractClientIP, nil)
	handler := traced.Middleware(limited(security.HeadersMiddleware(mux)))

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops the HTTP server and the background cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
