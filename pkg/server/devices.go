package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sunwarden/sunwarden/pkg/device"
	"github.com/sunwarden/sunwarden/pkg/log"
	"github.com/sunwarden/sunwarden/pkg/types"
)

func (s *Server) handleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var config types.DeviceConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	d, err := s.registry.Register(config.Name, config.RatedPowerWatts, config.Priority)
	if err != nil {
		var dup *device.DuplicateDeviceError
		if errors.As(err, &dup) {
			writeJSONError(w, err.Error(), http.StatusConflict)
			return
		}
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.storage.SaveDevice(ctx, d.Config()); err != nil {
		// the device is live either way, persistence catches up on restart
		log.Ctx(ctx).WarnContext(ctx, "failed to persist device",
			slog.String("device", d.Name()),
			slog.Any("error", err),
		)
	}

	log.Ctx(ctx).InfoContext(ctx, "device registered",
		slog.String("device", d.Name()),
		slog.Float64("ratedPowerWatts", d.RatedPowerWatts()),
		slog.Int("priority", d.Priority()),
	)
	writeJSON(w, d.Status(), http.StatusCreated)
}

func (s *Server) handleRemoveDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := r.PathValue("name")

	if !s.registry.Remove(name) {
		writeJSONError(w, "device not found", http.StatusNotFound)
		return
	}

	if err := s.storage.DeleteDevice(ctx, name); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to delete persisted device",
			slog.String("device", name),
			slog.Any("error", err),
		)
	}

	log.Ctx(ctx).InfoContext(ctx, "device removed", slog.String("device", name))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleForceSource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Mode types.SourceMode `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	// an empty mode clears the override
	if req.Mode != "" && !req.Mode.Valid() {
		writeJSONError(w, "invalid mode", http.StatusBadRequest)
		return
	}

	s.selector.ForceMode(ctx, req.Mode)
	writeJSON(w, struct {
		Mode types.SourceMode `json:"mode"`
	}{Mode: s.selector.Mode()}, http.StatusOK)
}
