package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spendwise/internal/storage"
)

// UserLister enumerates all users for the sweep.
type UserLister interface {
	ListUsers(ctx context.Context) ([]storage.User, error)
}

// PeriodChecker reports whether a user has rolled into a new budget period.
type PeriodChecker interface {
	CheckForNewPeriod(ctx context.Context, userID string, now time.Time) (bool, error)
}

// PeriodWorker sweeps all users once per schedule tick and logs which of
// them have rolled into a new budget period since their last check.
// Acknowledging the new period (and archiving the old one) stays with the
// user; the sweep never advances the stored period marker itself.
type PeriodWorker struct {
	users   UserLister
	monitor PeriodChecker
	now     func() time.Time
}

func NewPeriodWorker(users UserLister, monitor PeriodChecker) *PeriodWorker {
	return &PeriodWorker{
		users:   users,
		monitor: monitor,
		now:     time.Now,
	}
}

// Sweep checks every user for a period rollover.
func (w *PeriodWorker) Sweep(ctx context.Context) error {
	users, err := w.users.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	now := w.now()
	rolled := 0
	for _, u := range users {
		isNew, err := w.monitor.CheckForNewPeriod(ctx, u.ID, now)
		if err != nil {
			slog.ErrorContext(ctx, "Period check failed", "user_id", u.ID, "error", err)
			continue
		}
		if !isNew {
			continue
		}

		rolled++
		slog.InfoContext(ctx, "User entered a new budget period", "user_id", u.ID)
	}

	slog.InfoContext(ctx, "Period sweep completed",
		"users_checked", len(users),
		"new_periods", rolled)
	return nil
}
