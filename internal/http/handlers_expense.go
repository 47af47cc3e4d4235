package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	var in expenseJSON
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}

	expense, err := in.toExpense()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := expense.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.store.CreateExpense(r.Context(), user.ID, expense); err != nil {
		writeStoreError(w, r, err, "create expense")
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseJSON(expense))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	// ?period=current restricts the listing to the active budget period.
	if r.URL.Query().Get("period") == "current" {
		cfg, err := s.store.GetPeriodConfig(r.Context(), user.ID)
		if err != nil {
			writeStoreError(w, r, err, "load period config")
			return
		}
		expenses, err := s.store.ListExpensesInRange(r.Context(), user.ID, s.currentRange(cfg))
		if err != nil {
			writeStoreError(w, r, err, "list expenses in range")
			return
		}
		writeJSON(w, http.StatusOK, toExpenseListJSON(expenses))
		return
	}

	expenses, err := s.store.ListExpenses(r.Context(), user.ID)
	if err != nil {
		writeStoreError(w, r, err, "list expenses")
		return
	}
	writeJSON(w, http.StatusOK, toExpenseListJSON(expenses))
}

func (s *Server) handleListUncategorized(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	expenses, err := s.store.ListUncategorizedExpenses(r.Context(), user.ID)
	if err != nil {
		writeStoreError(w, r, err, "list uncategorized expenses")
		return
	}
	writeJSON(w, http.StatusOK, toExpenseListJSON(expenses))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	expense, err := s.store.GetExpense(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeStoreError(w, r, err, "get expense")
		return
	}
	writeJSON(w, http.StatusOK, toExpenseJSON(expense))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	var in expenseJSON
	if !decodeJSON(w, r, &in) {
		return
	}
	in.ID = r.PathValue("id")

	expense, err := in.toExpense()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := expense.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.store.UpdateExpense(r.Context(), user.ID, expense); err != nil {
		writeStoreError(w, r, err, "update expense")
		return
	}
	writeJSON(w, http.StatusOK, toExpenseJSON(expense))
}

func (s *Server) handleCategorizeExpense(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	var in struct {
		Category   string `json:"category"`
		CategoryID string `json:"categoryId"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Category) == "" {
		writeError(w, http.StatusUnprocessableEntity, "category is required")
		return
	}

	id := r.PathValue("id")
	if err := s.store.CategorizeExpense(r.Context(), user.ID, id, in.Category, in.CategoryID); err != nil {
		writeStoreError(w, r, err, "categorize expense")
		return
	}

	expense, err := s.store.GetExpense(r.Context(), user.ID, id)
	if err != nil {
		writeStoreError(w, r, err, "get expense")
		return
	}
	writeJSON(w, http.StatusOK, toExpenseJSON(expense))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	if err := s.store.DeleteExpense(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeStoreError(w, r, err, "delete expense")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
