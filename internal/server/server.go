// Package server exposes projections, region presets and lead capture over a
// JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/iwvelando/rate-impact/internal/config"
	"github.com/iwvelando/rate-impact/internal/engine"
	"github.com/iwvelando/rate-impact/internal/lead"
	"github.com/iwvelando/rate-impact/internal/presets"
	"github.com/iwvelando/rate-impact/pkg/coerce"
	"github.com/iwvelando/rate-impact/pkg/constants"
	"github.com/iwvelando/rate-impact/pkg/output"
	"go.uber.org/zap"
)

// Options are the collaborators and settings the handler serves with. Nil
// collaborators fall back to the embedded preset table and a submitter with
// no CRM or notifier configured. Empty CORSOrigins allows any origin.
type Options struct {
	Presets     presets.Store
	Leads       *lead.Submitter
	BookingURL  string
	CORSOrigins []string
}

type handler struct {
	logger      *zap.Logger
	maxBodySize int64
	version     string
	presets     presets.Store
	leads       *lead.Submitter
	bookingURL  string
}

// NewHandler constructs the HTTP handler that serves the projection API.
func NewHandler(logger *zap.Logger, maxBodySize int64, version string, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	if opts.Presets == nil {
		opts.Presets = presets.DefaultTable()
	}
	if opts.Leads == nil {
		opts.Leads = lead.NewSubmitter(nil, nil, logger)
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	h := &handler{
		logger:      logger,
		maxBodySize: maxBodySize,
		version:     trimmedVersion,
		presets:     opts.Presets,
		leads:       opts.Leads,
		bookingURL:  opts.BookingURL,
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/project", h.handleProject)
		r.Post("/compare", h.handleCompare)
		r.Get("/presets", h.handlePresets)
		r.Get("/presets/{region}", h.handlePreset)
		r.Post("/leads", h.handleLeads)
		r.Get("/version", h.handleVersion)
	})

	return r
}

type projectResponse struct {
	Result     engine.Result `json:"result"`
	Summary    string        `json:"summary"`
	BookingURL string        `json:"bookingUrl"`
	Warnings   []string      `json:"warnings,omitempty"`
	Duration   string        `json:"duration"`
}

type compareResponse struct {
	Results  []output.Report `json:"results"`
	Warnings []string        `json:"warnings,omitempty"`
	Duration string          `json:"duration"`
}

type leadResponse struct {
	OK           bool          `json:"ok"`
	Error        string        `json:"error,omitempty"`
	ID           string        `json:"id,omitempty"`
	CRM          *lead.Attempt `json:"crm,omitempty"`
	Notification *lead.Attempt `json:"notification,omitempty"`
}

func (h *handler) handleProject(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleProject"
	start := time.Now()
	holdings, scenario, warnings, ok := h.resolveRequest(w, r, op)
	if !ok {
		return
	}

	result := engine.Project(holdings, scenario)
	bookingURL, err := lead.BookingURL(h.bookingURL, result.Shock.Bps, result.Display().Totals.Delta, "", lead.Attribution{})
	if err != nil {
		h.logger.Warn("failed to build booking url",
			zap.String("op", op),
			zap.Error(err),
		)
	}

	elapsed := time.Since(start)
	h.logger.Info("projection computed",
		zap.String("op", op),
		zap.Int("bps", result.Shock.Bps),
		zap.Float64("delta", result.Display().Totals.Delta),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, projectResponse{
		Result:     result,
		Summary:    output.Narrative(result),
		BookingURL: bookingURL,
		Warnings:   warnings,
		Duration:   elapsed.String(),
	})
}

func (h *handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCompare"
	start := time.Now()
	holdings, scenario, warnings, ok := h.resolveRequest(w, r, op)
	if !ok {
		return
	}

	results := engine.Compare(holdings, scenario)
	elapsed := time.Since(start)
	h.logger.Info("comparison computed",
		zap.String("op", op),
		zap.Int("scenarios", len(results)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, compareResponse{
		Results:  output.NewReports(results),
		Warnings: warnings,
		Duration: elapsed.String(),
	})
}

// resolveRequest decodes a projection request and resolves its holdings and
// scenario. It writes the error response itself and reports false on failure.
func (h *handler) resolveRequest(w http.ResponseWriter, r *http.Request, op string) (engine.HoldingSet, engine.Scenario, []string, bool) {
	payload, status, err := h.decodeBody(w, r)
	if err != nil {
		h.respondErrorWithOp(w, status, err.Error(), op)
		return engine.HoldingSet{}, engine.Scenario{}, nil, false
	}

	cfg, err := config.DecodeMap(payload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return engine.HoldingSet{}, engine.Scenario{}, nil, false
	}

	warnings := cfg.ValidateConfiguration()
	holdings, scenario, presetWarnings, err := cfg.Resolve(r.Context(), h.presets)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, presets.ErrUnknownRegion) {
			status = http.StatusBadRequest
		}
		h.respondErrorWithOp(w, status, err.Error(), op)
		return engine.HoldingSet{}, engine.Scenario{}, nil, false
	}
	return holdings, scenario, append(warnings, presetWarnings...), true
}

func (h *handler) handlePresets(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePresets"
	list, err := h.presets.List(r.Context())
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to list presets: %v", err), op)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"presets": list})
}

func (h *handler) handlePreset(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePreset"
	region := chi.URLParam(r, "region")
	preset, err := h.presets.Get(r.Context(), region)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, presets.ErrUnknownRegion) {
			status = http.StatusNotFound
		}
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, preset)
}

func (h *handler) handleLeads(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleLeads"
	payload, status, err := h.decodeBody(w, r)
	if err != nil {
		if status == http.StatusBadRequest {
			status = http.StatusInternalServerError
		}
		h.logger.Error("lead request failed",
			zap.String("op", op),
			zap.Int("status", status),
			zap.Error(err),
		)
		h.writeJSON(w, status, leadResponse{OK: false, Error: err.Error()})
		return
	}

	// The hand-off outlives a client that disconnects mid-request.
	rec, outcome, err := h.leads.Handoff(context.WithoutCancel(r.Context()), leadInput(payload))
	if err != nil {
		if errors.Is(err, lead.ErrValidation) {
			h.writeJSON(w, http.StatusBadRequest, leadResponse{OK: false, Error: "name and email required"})
			return
		}
		h.logger.Error("lead request failed",
			zap.String("op", op),
			zap.Error(err),
		)
		h.writeJSON(w, http.StatusInternalServerError, leadResponse{OK: false, Error: err.Error()})
		return
	}

	h.logger.Info("lead received",
		zap.String("op", op),
		zap.String("requestId", middleware.GetReqID(r.Context())),
		zap.String("lead", rec.ID.String()),
		zap.String("crm", outcome.CRM.Status),
		zap.String("notification", outcome.Notification.Status),
	)
	h.writeJSON(w, http.StatusOK, leadResponse{
		OK:           true,
		ID:           rec.ID.String(),
		CRM:          &outcome.CRM,
		Notification: &outcome.Notification,
	})
}

func leadInput(payload map[string]interface{}) lead.Input {
	return lead.Input{
		Name:                 stringField(payload, "name"),
		Email:                stringField(payload, "email"),
		Phone:                stringField(payload, "phone"),
		Region:               stringField(payload, "state"),
		Product:              stringField(payload, "product"),
		ConsentGranted:       coerce.Bool(payload["leadConsent"]),
		DeltaBps:             coerce.Integer(payload["delta_bps"]),
		EstimatedDeltaIncome: coerce.Number(payload["est_delta_income"]),
		Attribution: lead.Attribution{
			Source:   stringField(payload, "utm_source"),
			Medium:   stringField(payload, "utm_medium"),
			Campaign: stringField(payload, "utm_campaign"),
		},
	}
}

func stringField(payload map[string]interface{}, key string) string {
	switch v := payload[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// decodeBody reads a JSON object body. An empty body decodes to an empty
// object so every field takes its default.
func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request) (map[string]interface{}, int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds limit of %d bytes", h.maxBodySize)
		}
		if errors.Is(err, io.EOF) {
			return map[string]interface{}{}, http.StatusOK, nil
		}
		return nil, http.StatusBadRequest, fmt.Errorf("failed to decode request: %w", err)
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}
	return payload, http.StatusOK, nil
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
