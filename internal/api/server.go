package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/checkin/internal/checkin"
	"github.com/MikeSquared-Agency/checkin/internal/slot"
)

// Triggerer runs one check-in.
type Triggerer interface {
	Trigger(ctx context.Context, req checkin.Request) (checkin.Result, error)
}

// Info is what the status endpoint reports about the running profile.
type Info struct {
	Timezone     string         `json:"timezone"`
	TriggerHours map[string]int `json:"trigger_hours"`
	DefaultSlot  string         `json:"default_slot"`
}

type Server struct {
	router  *chi.Mux
	http    *http.Server
	trigger Triggerer
	info    Info
	logger  *slog.Logger
}

func NewServer(port int, trigger Triggerer, info Info, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:  router,
		trigger: trigger,
		info:    info,
		logger:  logger,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/checkin/status", s.status)
	router.Get("/api/vapi-call", s.vapiCall)
	router.Handle("/metrics", promhttp.Handler())

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"agent":   "checkin",
		"status":  "ready",
		"profile": s.info,
	})
}

type triggerResponse struct {
	Success bool   `json:"success"`
	Slot    string `json:"slot"`
	CallID  string `json:"callId"`
	Message string `json:"message"`
}

func (s *Server) vapiCall(w http.ResponseWriter, r *http.Request) {
	var req checkin.Request
	if q := r.URL.Query(); q.Has("slot") {
		parsed, err := slot.Parse(q.Get("slot"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":      "Invalid or missing slot parameter",
				"validSlots": slot.All(),
			})
			return
		}
		req.Slot = parsed
	}

	// A scheduler hanging up must not abort a call mid-pipeline; the
	// platform and LLM client timeouts bound the run instead.
	res, err := s.trigger.Trigger(context.WithoutCancel(r.Context()), req)
	if err != nil {
		var cfgErr *checkin.ConfigError
		if errors.As(err, &cfgErr) {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": cfgErr.Error()})
			return
		}
		var initErr *checkin.InitiationError
		details := err.Error()
		if errors.As(err, &initErr) {
			details = initErr.Err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Failed to initiate call",
			"details": details,
		})
		return
	}

	writeJSON(w, http.StatusOK, triggerResponse{
		Success: true,
		Slot:    string(res.Call.Slot),
		CallID:  res.Call.CallID,
		Message: fmt.Sprintf("Call initiated for %s check-in", res.Call.Slot),
	})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
