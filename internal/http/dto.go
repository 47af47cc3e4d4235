package http

import (
	"strings"
	"time"

	"spendwise/internal/core"
)

// Wire shapes for the JSON API. Dates travel as RFC 3339 strings; amounts as
// integer cents, with an optional decimal string accepted on input.

type expenseJSON struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Category    string `json:"category"`
	CategoryID  string `json:"categoryId,omitempty"`
	AmountCents int64  `json:"amountCents"`
	Amount      string `json:"amount,omitempty"`
	Note        string `json:"note,omitempty"`
	Currency    string `json:"currency,omitempty"`
	EntryType   string `json:"entryType,omitempty"`
	Status      string `json:"status,omitempty"`
	ImportedAt  string `json:"importedAt,omitempty"`
	Source      string `json:"source,omitempty"`
}

func toExpenseJSON(e core.Expense) expenseJSON {
	out := expenseJSON{
		ID:          e.ID,
		Date:        e.Date.ISO(),
		Category:    e.Category,
		CategoryID:  e.CategoryID,
		AmountCents: e.Amount.Cents,
		Note:        e.Note,
		Currency:    e.Currency,
		EntryType:   e.EntryType,
		Status:      e.Status,
		Source:      e.Source,
	}
	if !e.ImportedAt.IsZero() {
		out.ImportedAt = e.ImportedAt.UTC().Format(time.RFC3339)
	}
	return out
}

func toExpenseListJSON(expenses []core.Expense) []expenseJSON {
	out := make([]expenseJSON, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseJSON(e))
	}
	return out
}

// amountFromInput resolves the two accepted amount forms. AmountCents wins
// when both are present.
func amountFromInput(cents int64, decimal string) (core.Money, error) {
	if cents != 0 {
		return core.Money{Cents: cents}, nil
	}
	if strings.TrimSpace(decimal) == "" {
		return core.Money{}, core.ErrInvalidAmount
	}
	parsed, err := core.ParseDecimalToCents(decimal)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: parsed}, nil
}

func (in expenseJSON) toExpense() (core.Expense, error) {
	date, err := core.ParseDate(in.Date)
	if err != nil {
		return core.Expense{}, err
	}
	amount, err := amountFromInput(in.AmountCents, in.Amount)
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		ID:         in.ID,
		Date:       date,
		Category:   in.Category,
		CategoryID: in.CategoryID,
		Amount:     amount,
		Note:       in.Note,
	}, nil
}

type archivedPeriodJSON struct {
	ID              string        `json:"id"`
	PeriodStart     string        `json:"periodStart"`
	PeriodEnd       string        `json:"periodEnd"`
	Expenses        []expenseJSON `json:"expenses,omitempty"`
	ExpenseCount    int           `json:"expenseCount"`
	TotalSpentCents int64         `json:"totalSpentCents"`
	ArchivedAt      string        `json:"archivedAt"`
}

func toArchivedPeriodJSON(p core.ArchivedPeriod, includeExpenses bool) archivedPeriodJSON {
	out := archivedPeriodJSON{
		ID:              p.ID,
		PeriodStart:     p.PeriodStart.ISO(),
		PeriodEnd:       p.PeriodEnd.ISO(),
		ExpenseCount:    len(p.Expenses),
		TotalSpentCents: p.TotalSpent.Cents,
		ArchivedAt:      p.ArchivedAt.UTC().Format(time.RFC3339),
	}
	if includeExpenses {
		out.Expenses = toExpenseListJSON(p.Expenses)
	}
	return out
}

type budgetCategoryJSON struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	PlannedAmountCents int64  `json:"plannedAmountCents"`
	PlannedAmount      string `json:"plannedAmount,omitempty"`
	Color              string `json:"color,omitempty"`
}

func toBudgetCategoryJSON(c core.BudgetCategory) budgetCategoryJSON {
	return budgetCategoryJSON{
		ID:                 c.ID,
		Name:               c.Name,
		PlannedAmountCents: c.PlannedAmount.Cents,
		Color:              c.Color,
	}
}

func (in budgetCategoryJSON) toBudgetCategory() (core.BudgetCategory, error) {
	amount, err := amountFromInput(in.PlannedAmountCents, in.PlannedAmount)
	if err != nil {
		return core.BudgetCategory{}, err
	}
	return core.BudgetCategory{
		ID:            in.ID,
		Name:          in.Name,
		PlannedAmount: amount,
		Color:         in.Color,
	}, nil
}

type savingsGoalJSON struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	TargetAmountCents  int64  `json:"targetAmountCents"`
	CurrentAmountCents int64  `json:"currentAmountCents"`
	FromDate           string `json:"fromDate"`
	ToDate             string `json:"toDate"`
	TrackingDay        int    `json:"trackingDay"`
}

func toSavingsGoalJSON(g core.SavingsGoal) savingsGoalJSON {
	return savingsGoalJSON{
		ID:                 g.ID,
		Name:               g.Name,
		TargetAmountCents:  g.TargetAmount.Cents,
		CurrentAmountCents: g.CurrentAmount.Cents,
		FromDate:           g.FromDate.ISO(),
		ToDate:             g.ToDate.ISO(),
		TrackingDay:        g.TrackingDay,
	}
}

func (in savingsGoalJSON) toSavingsGoal() (core.SavingsGoal, error) {
	from, err := core.ParseDate(in.FromDate)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	to, err := core.ParseDate(in.ToDate)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	return core.SavingsGoal{
		ID:            in.ID,
		Name:          in.Name,
		TargetAmount:  core.Money{Cents: in.TargetAmountCents},
		CurrentAmount: core.Money{Cents: in.CurrentAmountCents},
		FromDate:      from,
		ToDate:        to,
		TrackingDay:   in.TrackingDay,
	}, nil
}

type monthlyBalanceJSON struct {
	ID          string `json:"id"`
	GoalID      string `json:"goalId"`
	Date        string `json:"date"`
	AmountCents int64  `json:"amountCents"`
	Note        string `json:"note,omitempty"`
}

func toMonthlyBalanceJSON(b core.MonthlyBalance) monthlyBalanceJSON {
	return monthlyBalanceJSON{
		ID:          b.ID,
		GoalID:      b.GoalID,
		Date:        b.Date.ISO(),
		AmountCents: b.Amount.Cents,
		Note:        b.Note,
	}
}

type borrowedMoneyJSON struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	AmountCents  int64  `json:"amountCents"`
	Amount       string `json:"amount,omitempty"`
	Description  string `json:"description,omitempty"`
	FriendName   string `json:"friendName"`
	ReturnDate   string `json:"returnDate,omitempty"`
	IsReturned   bool   `json:"isReturned"`
	ReturnedDate string `json:"returnedDate,omitempty"`
}

func toBorrowedMoneyJSON(b core.BorrowedMoney) borrowedMoneyJSON {
	out := borrowedMoneyJSON{
		ID:          b.ID,
		Date:        b.Date.ISO(),
		AmountCents: b.Amount.Cents,
		Description: b.Description,
		FriendName:  b.FriendName,
		IsReturned:  b.IsReturned,
	}
	if !b.ReturnDate.IsZero() {
		out.ReturnDate = b.ReturnDate.ISO()
	}
	if !b.ReturnedDate.IsZero() {
		out.ReturnedDate = b.ReturnedDate.ISO()
	}
	return out
}

func (in borrowedMoneyJSON) toBorrowedMoney() (core.BorrowedMoney, error) {
	date, err := core.ParseDate(in.Date)
	if err != nil {
		return core.BorrowedMoney{}, err
	}
	amount, err := amountFromInput(in.AmountCents, in.Amount)
	if err != nil {
		return core.BorrowedMoney{}, err
	}
	out := core.BorrowedMoney{
		ID:          in.ID,
		Date:        date,
		Amount:      amount,
		Description: in.Description,
		FriendName:  in.FriendName,
		IsReturned:  in.IsReturned,
	}
	if strings.TrimSpace(in.ReturnDate) != "" {
		rd, err := core.ParseDate(in.ReturnDate)
		if err != nil {
			return core.BorrowedMoney{}, err
		}
		out.ReturnDate = rd
	}
	return out, nil
}
