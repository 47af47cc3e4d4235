package services

import (
	"context"
	"fmt"
	"time"

	"spendwise/internal/core"
)

// PeriodStore is the slice of the repository the monitor needs.
type PeriodStore interface {
	GetPeriodConfig(ctx context.Context, userID string) (core.PeriodConfig, error)
	GetLastPeriodKey(ctx context.Context, userID string) (string, error)
	SetLastPeriodKey(ctx context.Context, userID, key string) error
}

// PeriodMonitor detects when a user has rolled over into a new budget period
// since the last check. Detection only; archiving the closed period remains
// an explicit user action.
type PeriodMonitor struct {
	store PeriodStore
}

func NewPeriodMonitor(store PeriodStore) *PeriodMonitor {
	return &PeriodMonitor{store: store}
}

// CheckForNewPeriod reports whether the current period differs from the one
// recorded at the last check. A user who was never checked is always in a
// "new" period.
func (m *PeriodMonitor) CheckForNewPeriod(ctx context.Context, userID string, now time.Time) (bool, error) {
	cfg, err := m.store.GetPeriodConfig(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("load period config: %w", err)
	}
	lastKey, err := m.store.GetLastPeriodKey(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("load last period key: %w", err)
	}

	currentKey := core.CurrentRange(cfg, now).Key()
	return lastKey != currentKey, nil
}

// MarkPeriodChecked records the current period as seen.
func (m *PeriodMonitor) MarkPeriodChecked(ctx context.Context, userID string, now time.Time) error {
	cfg, err := m.store.GetPeriodConfig(ctx, userID)
	if err != nil {
		return fmt.Errorf("load period config: %w", err)
	}
	key := core.CurrentRange(cfg, now).Key()
	if err := m.store.SetLastPeriodKey(ctx, userID, key); err != nil {
		return fmt.Errorf("store period key: %w", err)
	}
	return nil
}
