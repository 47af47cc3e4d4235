package core

import (
	"errors"
	"strings"
	"time"
)

const (
	// SourceBankImport marks expenses created by the transaction import
	// endpoint rather than manual logging.
	SourceBankImport = "bank_import"

	maxNoteLength = 500
)

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Expense is a single entry in the active working set. Category is empty
	// for imported transactions until the user categorizes them.
	Expense struct {
		ID         string
		Date       Date
		Category   string
		CategoryID string
		Amount     Money
		Note       string

		// Populated only for bank imports.
		Currency   string
		EntryType  string
		Status     string
		ImportedAt time.Time
		Source     string
	}

	// ArchivedPeriod is the immutable record of a closed budget period.
	// Expenses and TotalSpent are frozen at archive time and never recomputed,
	// even if category names change afterwards.
	ArchivedPeriod struct {
		ID          string
		PeriodStart Date
		PeriodEnd   Date
		Expenses    []Expense
		TotalSpent  Money
		ArchivedAt  time.Time
	}

	BudgetCategory struct {
		ID            string
		Name          string
		PlannedAmount Money
		Color         string
	}

	SavingsGoal struct {
		ID            string
		Name          string
		TargetAmount  Money
		CurrentAmount Money
		FromDate      Date
		ToDate        Date
		TrackingDay   int
	}

	// MonthlyBalance is a point-in-time balance logged against a savings goal.
	MonthlyBalance struct {
		ID     string
		GoalID string
		Date   Date
		Amount Money
		Note   string
	}

	BorrowedMoney struct {
		ID           string
		Date         Date
		Amount       Money
		Description  string
		FriendName   string
		ReturnDate   Date
		IsReturned   bool
		ReturnedDate Date
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDay      = errors.New("day must be between 1 and 31")
	ErrEmptyName       = errors.New("empty name")
	ErrEmptyFriendName = errors.New("empty friend name")
	ErrNoteTooLong     = errors.New("note too long")
)

// NewDate creates a Date at midnight UTC from year, month, day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date in YYYY-MM-DD or RFC 3339 form.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// ISO returns the RFC 3339 rendering used on the wire and in storage.
func (d Date) ISO() string {
	return d.UTC().Format(time.RFC3339)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return errors.New("empty expense id")
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	// Imported bank entries may carry negative amounts (refunds, reversals);
	// only a zero amount is rejected.
	if e.Amount.Cents == 0 {
		return ErrInvalidAmount
	}
	if len(e.Note) > maxNoteLength {
		return ErrNoteTooLong
	}
	return nil
}

func (c BudgetCategory) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.PlannedAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if err := g.TargetAmount.Validate(); err != nil {
		return err
	}
	if g.CurrentAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	if g.TrackingDay < 1 || g.TrackingDay > 31 {
		return ErrInvalidDay
	}
	if err := g.FromDate.Validate(); err != nil {
		return err
	}
	if err := g.ToDate.Validate(); err != nil {
		return err
	}
	if g.ToDate.Before(g.FromDate.Time) {
		return errors.New("goal end date before start date")
	}
	return nil
}

func (b MonthlyBalance) Validate() error {
	if strings.TrimSpace(b.GoalID) == "" {
		return errors.New("empty goal id")
	}
	if err := b.Date.Validate(); err != nil {
		return err
	}
	if b.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (b BorrowedMoney) Validate() error {
	if strings.TrimSpace(b.FriendName) == "" {
		return ErrEmptyFriendName
	}
	if err := b.Date.Validate(); err != nil {
		return err
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	return nil
}

// TotalAmount sums expense amounts in cents.
func TotalAmount(expenses []Expense) Money {
	var cents int64
	for _, e := range expenses {
		cents += e.Amount.Cents
	}
	return Money{Cents: cents}
}
