package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/nisa-forecast/internal/config"
	"github.com/iwvelando/nisa-forecast/internal/forecast"
	"github.com/iwvelando/nisa-forecast/internal/store"
	"github.com/iwvelando/nisa-forecast/pkg/constants"
	"github.com/iwvelando/nisa-forecast/pkg/output"
	"github.com/iwvelando/nisa-forecast/pkg/schedule"
	"github.com/iwvelando/nisa-forecast/pkg/validation"
	"go.uber.org/zap"
)

// Options configures the handler returned by NewHandler.
type Options struct {
	MaxUploadSize int64
	Version       string
	// Store backs the /api/scenarios routes. A nil store disables them.
	Store    *store.Store
	Forecast forecast.Options
}

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	store         *store.Store
	forecastOpts  forecast.Options
}

// NewHandler constructs the HTTP handler that serves the projection API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	maxUploadSize := opts.MaxUploadSize
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		store:         opts.Store,
		forecastOpts:  opts.Forecast,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/calculate", h.handleCalculate)
	mux.HandleFunc("POST /api/detail", h.handleDetail)
	mux.HandleFunc("POST /api/detail/csv", h.handleDetailCSV)
	mux.HandleFunc("POST /api/dsl/parse", h.handleDSLParse)

	// YAML configuration upload, raw body or multipart field "file"
	mux.HandleFunc("POST /api/config/calculate", h.handleConfigCalculate)

	mux.HandleFunc("GET /api/version", h.handleVersion)

	mux.HandleFunc("GET /api/scenarios", h.handleScenarioList)
	mux.HandleFunc("POST /api/scenarios", h.handleScenarioCreate)
	mux.HandleFunc("GET /api/scenarios/{id}", h.handleScenarioGet)
	mux.HandleFunc("PUT /api/scenarios/{id}", h.handleScenarioOverwrite)
	mux.HandleFunc("DELETE /api/scenarios/{id}", h.handleScenarioDelete)
	mux.HandleFunc("POST /api/scenarios/{id}/duplicate", h.handleScenarioDuplicate)

	return mux
}

type calculateResponse struct {
	Result   forecast.CalcResult `json:"result"`
	Warnings []string            `json:"warnings,omitempty"`
	Duration string              `json:"duration"`
}

type detailRequest struct {
	Scenario forecast.Scenario `json:"scenario"`
	Rate     float64           `json:"rate"`
}

type dslParseRequest struct {
	Text string `json:"text"`
}

type dslParseResponse struct {
	Blocks    []schedule.PeriodBlock `json:"blocks"`
	Errors    []string               `json:"errors"`
	Canonical string                 `json:"canonical"`
}

type configCalculateResponse struct {
	Results  []forecast.CalcResult `json:"results"`
	Warnings []string              `json:"warnings,omitempty"`
	CSV      string                `json:"csv"`
	Duration string                `json:"duration"`
}

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCalculate"
	start := time.Now()

	var scenario forecast.Scenario
	if !h.decodeJSON(w, r, &scenario, op) {
		return
	}
	if !h.validateScenario(w, scenario, op) {
		return
	}

	result, err := forecast.Calculate(r.Context(), h.logger, scenario, h.forecastOpts)
	if err != nil {
		h.respondForecastError(w, err, op)
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("forecast computed",
		zap.String("op", op),
		zap.String("scenario", scenario.Name),
		zap.Int("rates", len(result.Rows)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, calculateResponse{
		Result:   result,
		Warnings: scenarioWarnings(scenario),
		Duration: elapsed.String(),
	})
}

func (h *handler) handleDetail(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDetail"

	detail, ok := h.computeDetail(w, r, op)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, detail)
}

func (h *handler) handleDetailCSV(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDetailCSV"

	detail, ok := h.computeDetail(w, r, op)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := output.YearCsvFormat(&buf, detail); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode csv: %v", err), op)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", output.YearCsvFilename(detail)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write csv response", zap.String("op", op), zap.Error(err))
	}
}

func (h *handler) computeDetail(w http.ResponseWriter, r *http.Request, op string) (forecast.RateDetail, bool) {
	var req detailRequest
	if !h.decodeJSON(w, r, &req, op) {
		return forecast.RateDetail{}, false
	}

	req.Scenario.RatesPercent = []float64{req.Rate}
	if !h.validateScenario(w, req.Scenario, op) {
		return forecast.RateDetail{}, false
	}

	detail, err := forecast.CalculateDetail(r.Context(), h.logger, req.Scenario, req.Rate, h.forecastOpts)
	if err != nil {
		h.respondForecastError(w, err, op)
		return forecast.RateDetail{}, false
	}
	return detail, true
}

func (h *handler) handleDSLParse(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDSLParse"

	var req dslParseRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	blocks, errs := schedule.ParseDSL(req.Text)
	response := dslParseResponse{
		Blocks: blocks,
		Errors: errs,
	}
	if response.Blocks == nil {
		response.Blocks = []schedule.PeriodBlock{}
	}
	if response.Errors == nil {
		response.Errors = []string{}
	}
	if len(errs) == 0 {
		response.Canonical = schedule.FormatDSL(blocks)
	}

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleConfigCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleConfigCalculate"
	start := time.Now()

	configBytes, ok := h.readConfigUpload(w, r, op)
	if !ok {
		return
	}

	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	if err := cfg.Engine.Validate(); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	warnings := cfg.ValidateConfiguration()
	scenarios := cfg.ToScenarios()
	var details []string
	for _, scenario := range scenarios {
		for _, err := range scenario.Validate() {
			details = append(details, fmt.Sprintf("scenario %s: %v", scenario.Name, err))
		}
	}
	if len(details) > 0 {
		h.respondDetails(w, http.StatusBadRequest, "invalid scenarios", details, op)
		return
	}

	opts := cfg.ForecastOptions()
	if opts.Parallelism == 0 {
		opts.Parallelism = h.forecastOpts.Parallelism
	}
	results, err := forecast.CalculateAll(r.Context(), h.logger, scenarios, opts)
	if err != nil {
		h.respondForecastError(w, err, op)
		return
	}

	var csvBuf bytes.Buffer
	if err := output.CsvFormat(&csvBuf, results); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode csv: %v", err), op)
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("forecast computed",
		zap.String("op", op),
		zap.Int("scenarios", len(results)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, configCalculateResponse{
		Results:  results,
		Warnings: warnings,
		CSV:      csvBuf.String(),
		Duration: elapsed.String(),
	})
}

func (h *handler) readConfigUpload(w http.ResponseWriter, r *http.Request, op string) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var reader io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
			h.respondReadError(w, err, "failed to parse upload", op)
			return nil, false
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, "missing configuration file", op)
			return nil, false
		}
		defer func() {
			if closeErr := file.Close(); closeErr != nil {
				h.logger.Warn("failed to close uploaded file",
					zap.String("op", op),
					zap.Error(closeErr),
				)
			}
		}()
		reader = file
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		h.respondReadError(w, err, "failed to read configuration", op)
		return nil, false
	}
	if len(bytes.TrimSpace(buf.Bytes())) == 0 {
		h.respondErrorWithOp(w, http.StatusBadRequest, "empty configuration", op)
		return nil, false
	}
	return buf.Bytes(), true
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleScenarioList(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScenarioList"
	if !h.requireStore(w, op) {
		return
	}

	records, err := h.store.List()
	if err != nil {
		h.respondStoreError(w, err, op)
		return
	}
	if records == nil {
		records = []store.Record{}
	}
	h.writeJSON(w, http.StatusOK, records)
}

func (h *handler) handleScenarioCreate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScenarioCreate"
	if !h.requireStore(w, op) {
		return
	}

	var scenario forecast.Scenario
	if !h.decodeJSON(w, r, &scenario, op) {
		return
	}

	record, err := h.store.SaveNew(scenario)
	if err != nil {
		h.respondStoreError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusCreated, record)
}

func (h *handler) handleScenarioGet(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScenarioGet"
	if !h.requireStore(w, op) {
		return
	}

	record, err := h.store.Get(r.PathValue("id"))
	if err != nil {
		h.respondStoreError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, record)
}

func (h *handler) handleScenarioOverwrite(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScenarioOverwrite"
	if !h.requireStore(w, op) {
		return
	}

	var scenario forecast.Scenario
	if !h.decodeJSON(w, r, &scenario, op) {
		return
	}

	record, err := h.store.Overwrite(r.PathValue("id"), scenario)
	if err != nil {
		h.respondStoreError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, record)
}

func (h *handler) handleScenarioDelete(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScenarioDelete"
	if !h.requireStore(w, op) {
		return
	}

	if err := h.store.Delete(r.PathValue("id")); err != nil {
		h.respondStoreError(w, err, op)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleScenarioDuplicate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScenarioDuplicate"
	if !h.requireStore(w, op) {
		return
	}

	record, err := h.store.Duplicate(r.PathValue("id"))
	if err != nil {
		h.respondStoreError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusCreated, record)
}

func scenarioWarnings(scenario forecast.Scenario) []string {
	validator := validation.ConfigValidator{
		Scenarios: []validation.ScenarioConfig{scenario.ValidationConfig(true)},
	}
	return validator.ValidateAll()
}

func (h *handler) validateScenario(w http.ResponseWriter, scenario forecast.Scenario, op string) bool {
	errs := scenario.Validate()
	if len(errs) == 0 {
		return true
	}
	details := make([]string, 0, len(errs))
	for _, err := range errs {
		details = append(details, err.Error())
	}
	h.respondDetails(w, http.StatusBadRequest, "invalid scenario", details, op)
	return false
}

func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondReadError(w, err, "failed to decode request", op)
		return false
	}
	return true
}

func (h *handler) respondReadError(w http.ResponseWriter, err error, msg string, op string) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
		return
	}
	h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("%s: %v", msg, err), op)
}

func (h *handler) respondForecastError(w http.ResponseWriter, err error, op string) {
	var dslErr *schedule.DSLError
	switch {
	case errors.As(err, &dslErr):
		h.respondDetails(w, http.StatusBadRequest, "invalid dsl", dslErr.Messages, op)
	case errors.Is(err, schedule.ErrUnknownMode):
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, err.Error(), op)
	default:
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to compute forecast: %v", err), op)
	}
}

func (h *handler) requireStore(w http.ResponseWriter, op string) bool {
	if h.store != nil {
		return true
	}
	h.respondErrorWithOp(w, http.StatusServiceUnavailable, "scenario store is not configured", op)
	return false
}

func (h *handler) respondStoreError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, store.ErrNotFound) {
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
		return
	}
	h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.respondDetails(w, status, msg, nil, op)
}

func (h *handler) respondDetails(w http.ResponseWriter, status int, msg string, details []string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
		zap.Strings("details", details),
	)

	h.writeJSON(w, status, errorResponse{Error: msg, Details: details})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
