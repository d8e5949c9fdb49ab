package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/fintrack/internal/adapter/http/dto"
	"github.com/iho/fintrack/internal/domain"
)

// StatisticsService defines the behavior needed by StatisticsHandler.
type StatisticsService interface {
	StatisticsFor(ctx context.Context, accountID, userID string, now time.Time) (*domain.AccountStatistics, error)
	MonthlySummary(ctx context.Context, userID string, now time.Time) (*domain.MonthlySummary, error)
}

// StatisticsHandler serves the read-only reports.
type StatisticsHandler struct {
	statsUC StatisticsService
	now     func() time.Time
}

// NewStatisticsHandler creates a new StatisticsHandler.
func NewStatisticsHandler(statsUC StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statsUC: statsUC, now: time.Now}
}

// Account returns the statistics of one account.
func (h *StatisticsHandler) Account(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	stats, err := h.statsUC.StatisticsFor(r.Context(), chi.URLParam(r, "id"), uid, h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StatisticsFromDomain(stats))
}

// Summary returns the current month across all of the caller's accounts.
func (h *StatisticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	summary, err := h.statsUC.MonthlySummary(r.Context(), uid, h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SummaryFromDomain(summary))
}

// Categories lists the suggested transaction categories.
func (h *StatisticsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.CategoriesFromDomain(domain.DefaultCategories))
}
