package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"spendwise/internal/core"
	"spendwise/internal/services"
)

func (s *Server) currentRange(cfg core.PeriodConfig) core.PeriodRange {
	return core.CurrentRange(cfg, s.now())
}

type periodSettingsJSON struct {
	StartDay int `json:"startDay"`
	EndDay   int `json:"endDay"`
}

func (s *Server) handleGetPeriodSettings(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	cfg, err := s.store.GetPeriodConfig(r.Context(), user.ID)
	if err != nil {
		writeStoreError(w, r, err, "load period config")
		return
	}
	writeJSON(w, http.StatusOK, periodSettingsJSON{StartDay: cfg.StartDay, EndDay: cfg.EndDay})
}

func (s *Server) handlePutPeriodSettings(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	var in periodSettingsJSON
	if !decodeJSON(w, r, &in) {
		return
	}

	cfg := core.PeriodConfig{StartDay: in.StartDay, EndDay: in.EndDay}
	if err := cfg.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.store.SavePeriodConfig(r.Context(), user.ID, cfg); err != nil {
		writeStoreError(w, r, err, "save period config")
		return
	}
	writeJSON(w, http.StatusOK, periodSettingsJSON{StartDay: cfg.StartDay, EndDay: cfg.EndDay})
}

type currentPeriodJSON struct {
	Start           string `json:"start"`
	End             string `json:"end"`
	Formatted       string `json:"formatted"`
	ExpenseCount    int    `json:"expenseCount"`
	TotalSpentCents int64  `json:"totalSpentCents"`
}

func (s *Server) handleCurrentPeriod(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	cfg, err := s.store.GetPeriodConfig(r.Context(), user.ID)
	if err != nil {
		writeStoreError(w, r, err, "load period config")
		return
	}
	rng := s.currentRange(cfg)

	expenses, err := s.store.ListExpensesInRange(r.Context(), user.ID, rng)
	if err != nil {
		writeStoreError(w, r, err, "list expenses in range")
		return
	}

	writeJSON(w, http.StatusOK, currentPeriodJSON{
		Start:           rng.Start.UTC().Format(time.RFC3339),
		End:             rng.End.UTC().Format(time.RFC3339),
		Formatted:       core.FormatRange(rng),
		ExpenseCount:    len(expenses),
		TotalSpentCents: core.TotalAmount(expenses).Cents,
	})
}

func (s *Server) handlePeriodStatus(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	isNew, err := s.monitor.CheckForNewPeriod(r.Context(), user.ID, s.now())
	if err != nil {
		writeStoreError(w, r, err, "check period status")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isNewPeriod": isNew})
}

func (s *Server) handleAcknowledgePeriod(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	if err := s.monitor.MarkPeriodChecked(r.Context(), user.ID, s.now()); err != nil {
		writeStoreError(w, r, err, "acknowledge period")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"acknowledged": true})
}

// handleArchivePeriod freezes the expenses of a period into an archive and
// clears them from the active set. With no body, the current period is
// archived; an explicit range may be supplied to archive a past window.
func (s *Server) handleArchivePeriod(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	var rng core.PeriodRange
	var in struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if r.ContentLength > 0 && !decodeJSON(w, r, &in) {
		return
	}

	if strings.TrimSpace(in.Start) != "" || strings.TrimSpace(in.End) != "" {
		start, err := core.ParseDate(in.Start)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid start date")
			return
		}
		end, err := core.ParseDate(in.End)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid end date")
			return
		}
		if end.Before(start.Time) {
			writeError(w, http.StatusUnprocessableEntity, "end date before start date")
			return
		}
		rng = core.PeriodRange{Start: start.Time, End: endOfDay(end.Time)}
	} else {
		cfg, err := s.store.GetPeriodConfig(r.Context(), user.ID)
		if err != nil {
			writeStoreError(w, r, err, "load period config")
			return
		}
		rng = s.currentRange(cfg)
	}

	expenses, err := s.store.ListExpensesInRange(r.Context(), user.ID, rng)
	if err != nil {
		writeStoreError(w, r, err, "list expenses in range")
		return
	}

	archived, err := s.archiver.Archive(r.Context(), user.ID, expenses,
		core.Date{Time: rng.Start}, core.Date{Time: rng.End})

	var partial *services.PartialArchiveError
	switch {
	case errors.As(err, &partial):
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":            "archive written but some expenses were not removed from the active set",
			"archiveId":        partial.ArchiveID,
			"failedExpenseIds": partial.FailedIDs,
		})
		return
	case err != nil:
		writeStoreError(w, r, err, "archive period")
		return
	case archived == nil:
		writeJSON(w, http.StatusOK, map[string]any{
			"archived": false,
			"message":  "nothing to archive",
		})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"archived": true,
		"archive":  toArchivedPeriodJSON(*archived, false),
	})
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999000000, t.Location())
}

func (s *Server) handleListArchives(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	archives, err := s.store.ListArchivedPeriods(r.Context(), user.ID)
	if err != nil {
		writeStoreError(w, r, err, "list archives")
		return
	}

	out := make([]archivedPeriodJSON, 0, len(archives))
	for _, p := range archives {
		out = append(out, toArchivedPeriodJSON(p, false))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetArchive(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	archive, err := s.store.GetArchivedPeriod(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeStoreError(w, r, err, "get archive")
		return
	}
	writeJSON(w, http.StatusOK, toArchivedPeriodJSON(archive, true))
}
