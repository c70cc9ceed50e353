package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sunwarden/sunwarden/pkg/log"
	"github.com/sunwarden/sunwarden/pkg/types"
)

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.reporter.Snapshot(), http.StatusOK)
}

// parseRange reads start/end RFC3339 query params, defaulting to the last 24
// hours.
func parseRange(r *http.Request) (time.Time, time.Time, error) {
	end := time.Now().UTC()
	start := end.Add(-24 * time.Hour)

	if v := r.URL.Query().Get("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start: %w", err)
		}
		start = t
	}
	if v := r.URL.Query().Get("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end: %w", err)
		}
		end = t
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end must be after start")
	}
	return start, end, nil
}

func (s *Server) handleSampleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start, end, err := parseRange(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	samples, err := s.storage.GetSampleHistory(ctx, start, end)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to fetch sample history", slog.Any("error", err))
		writeJSONError(w, "failed to fetch sample history", http.StatusInternalServerError)
		return
	}
	if samples == nil {
		samples = []types.PowerSample{}
	}
	writeJSON(w, samples, http.StatusOK)
}

func (s *Server) handleEventHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start, end, err := parseRange(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	events, err := s.storage.GetEventHistory(ctx, start, end)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to fetch event history", slog.Any("error", err))
		writeJSONError(w, "failed to fetch event history", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []types.TransitionEvent{}
	}
	writeJSON(w, events, http.StatusOK)
}
