package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"incomebook/internal/core"
	"incomebook/internal/log"
	"incomebook/internal/report"
)

// parseYear reads an optional year parameter; 0 means absent.
func parseYear(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("year"))
	if raw == "" {
		return 0, nil
	}
	y, err := strconv.Atoi(raw)
	if err != nil || y < 1 || y > 9999 {
		return 0, badRequest(report.ErrInvalidYear)
	}
	return y, nil
}

// handleMonthlySummary returns every month with entries, optionally only
// those of ?year=.
func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(r)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	months, err := s.store.MonthlyData(r.Context())
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	out := make([]core.MonthlyData, 0, len(months))
	for _, m := range months {
		if year == 0 || m.Year == year {
			out = append(out, m)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleYearlySummary(w http.ResponseWriter, r *http.Request) {
	year, err := parseYear(r)
	if err == nil && year == 0 {
		err = badRequest(errors.New("year is required"))
	}
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	totals, err := s.store.YearlyTotals(r.Context(), year)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	years, err := s.store.Years(r.Context())
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	if years == nil {
		years = []int{}
	}
	writeJSON(w, http.StatusOK, years)
}
