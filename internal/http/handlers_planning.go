package http

import (
	"net/http"

	"spendwise/internal/core"

	"github.com/google/uuid"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	categories, err := s.store.ListBudgetCategories(r.Context(), user.ID)
	if err != nil {
		writeStoreError(w, r, err, "list budget categories")
		return
	}

	out := make([]budgetCategoryJSON, 0, len(categories))
	for _, c := range categories {
		out = append(out, toBudgetCategoryJSON(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	var in budgetCategoryJSON
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}

	category, err := in.toBudgetCategory()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := category.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.store.CreateBudgetCategory(r.Context(), user.ID, category); err != nil {
		writeStoreError(w, r, err, "create budget category")
		return
	}
	writeJSON(w, http.StatusCreated, toBudgetCategoryJSON(category))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	var in budgetCategoryJSON
	if !decodeJSON(w, r, &in) {
		return
	}
	in.ID = r.PathValue("id")

	category, err := in.toBudgetCategory()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := category.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.store.UpdateBudgetCategory(r.Context(), user.ID, category); err != nil {
		writeStoreError(w, r, err, "update budget category")
		return
	}
	writeJSON(w, http.StatusOK, toBudgetCategoryJSON(category))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	if err := s.store.DeleteBudgetCategory(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeStoreError(w, r, err, "delete budget category")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	goals, err := s.store.ListSavingsGoals(r.Context(), user.ID)
	if err != nil {
		writeStoreError(w, r, err, "list savings goals")
		return
	}

	out := make([]savingsGoalJSON, 0, len(goals))
	for _, g := range goals {
		out = append(out, toSavingsGoalJSON(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	var in savingsGoalJSON
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}

	goal, err := in.toSavingsGoal()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := goal.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.store.CreateSavingsGoal(r.Context(), user.ID, goal); err != nil {
		writeStoreError(w, r, err, "create savings goal")
		return
	}
	writeJSON(w, http.StatusCreated, toSavingsGoalJSON(goal))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	var in savingsGoalJSON
	if !decodeJSON(w, r, &in) {
		return
	}
	in.ID = r.PathValue("id")

	goal, err := in.toSavingsGoal()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := goal.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.store.UpdateSavingsGoal(r.Context(), user.ID, goal); err != nil {
		writeStoreError(w, r, err, "update savings goal")
		return
	}
	writeJSON(w, http.StatusOK, toSavingsGoalJSON(goal))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	if err := s.store.DeleteSavingsGoal(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeStoreError(w, r, err, "delete savings goal")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleListBalances(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)
	goalID := r.PathValue("id")

	// 404 for balances of a goal that does not exist.
	if _, err := s.store.GetSavingsGoal(r.Context(), user.ID, goalID); err != nil {
		writeStoreError(w, r, err, "get savings goal")
		return
	}

	balances, err := s.store.ListMonthlyBalances(r.Context(), user.ID, goalID)
	if err != nil {
		writeStoreError(w, r, err, "list monthly balances")
		return
	}

	out := make([]monthlyBalanceJSON, 0, len(balances))
	for _, b := range balances {
		out = append(out, toMonthlyBalanceJSON(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateBalance(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)
	goalID := r.PathValue("id")

	if _, err := s.store.GetSavingsGoal(r.Context(), user.ID, goalID); err != nil {
		writeStoreError(w, r, err, "get savings goal")
		return
	}

	var in monthlyBalanceJSON
	if !decodeJSON(w, r, &in) {
		return
	}

	date, err := core.ParseDate(in.Date)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date")
		return
	}
	balance := core.MonthlyBalance{
		ID:     uuid.NewString(),
		GoalID: goalID,
		Date:   date,
		Amount: core.Money{Cents: in.AmountCents},
		Note:   in.Note,
	}
	if err := balance.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.store.CreateMonthlyBalance(r.Context(), user.ID, balance); err != nil {
		writeStoreError(w, r, err, "create monthly balance")
		return
	}
	writeJSON(w, http.StatusCreated, toMonthlyBalanceJSON(balance))
}

func (s *Server) handleListBorrowed(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	entries, err := s.store.ListBorrowedMoney(r.Context(), user.ID)
	if err != nil {
		writeStoreError(w, r, err, "list borrowed money")
		return
	}

	out := make([]borrowedMoneyJSON, 0, len(entries))
	for _, b := range entries {
		out = append(out, toBorrowedMoneyJSON(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateBorrowed(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	var in borrowedMoneyJSON
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}

	entry, err := in.toBorrowedMoney()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := entry.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.store.CreateBorrowedMoney(r.Context(), user.ID, entry); err != nil {
		writeStoreError(w, r, err, "create borrowed money")
		return
	}
	writeJSON(w, http.StatusCreated, toBorrowedMoneyJSON(entry))
}

func (s *Server) handleUpdateBorrowed(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	var in borrowedMoneyJSON
	if !decodeJSON(w, r, &in) {
		return
	}
	in.ID = r.PathValue("id")

	entry, err := in.toBorrowedMoney()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := entry.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.store.UpdateBorrowedMoney(r.Context(), user.ID, entry); err != nil {
		writeStoreError(w, r, err, "update borrowed money")
		return
	}
	writeJSON(w, http.StatusOK, toBorrowedMoneyJSON(entry))
}

func (s *Server) handleReturnBorrowed(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	var in struct {
		ReturnedDate string `json:"returnedDate"`
	}
	if r.ContentLength > 0 && !decodeJSON(w, r, &in) {
		return
	}

	returnedDate := core.Date{Time: s.now()}
	if in.ReturnedDate != "" {
		parsed, err := core.ParseDate(in.ReturnedDate)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid returned date")
			return
		}
		returnedDate = parsed
	}

	id := r.PathValue("id")
	if err := s.store.MarkBorrowedReturned(r.Context(), user.ID, id, returnedDate); err != nil {
		writeStoreError(w, r, err, "mark borrowed returned")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"returned":     true,
		"returnedDate": returnedDate.ISO(),
	})
}

func (s *Server) handleDeleteBorrowed(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	if err := s.store.DeleteBorrowedMoney(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeStoreError(w, r, err, "delete borrowed money")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
