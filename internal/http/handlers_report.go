package http

import (
	"fmt"
	"net/http"
	"time"

	"fintrack/internal/core"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.reports.Dashboard(r.Context(), time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Ranges come either from a named preset or from explicit start/end
// dates. The two forms are mutually exclusive; presets are never
// inferred from the dates themselves.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	preset := q.Get("preset")
	start, end := q.Get("start"), q.Get("end")

	var rng core.DateRange
	switch {
	case preset != "" && (start != "" || end != ""):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "preset and start/end are mutually exclusive"})
		return

	case preset != "":
		var err error
		rng, err = presetRange(preset, time.Now())
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

	case start != "" && end != "":
		var err error
		rng.Start, err = core.ParseISODate(start)
		if err == nil {
			rng.End, err = core.ParseISODate(end)
		}
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "provide preset or start and end"})
		return
	}

	rep, err := s.reports.Report(r.Context(), rng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func presetRange(preset string, now time.Time) (core.DateRange, error) {
	switch preset {
	case "month":
		return core.MonthRangeAt(now), nil
	case "year":
		return core.YearRangeAt(now), nil
	case "30d":
		return core.LastNDaysRange(now, 30), nil
	case "90d":
		return core.LastNDaysRange(now, 90), nil
	default:
		return core.DateRange{}, fmt.Errorf("unknown preset %q", preset)
	}
}
