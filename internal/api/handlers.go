package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/salescast/salescast/internal/forecast"
	"github.com/salescast/salescast/internal/ingest"
	"github.com/salescast/salescast/internal/insight"
	"github.com/salescast/salescast/internal/metrics"
	"github.com/salescast/salescast/internal/models"
	"github.com/salescast/salescast/internal/store"
	"log/slog"
)

const (
	maxPeriods = 90

	storeUnconfiguredDetail = "SUPABASE_URL and SUPABASE_KEY not set. Add them to the server environment (or set DATABASE_URL for a direct connection)."
	chatUnconfiguredDetail  = "OPENAI_API_KEY not set. Add it to the server environment to enable /chat."
	emptyStoreDetail        = "No sales data in database. POST CSV/JSON to /forecast instead."
	emptyBodyDetail         = "Send a JSON array or CSV in the request body."
)

// Handler serves the forecasting endpoints. A nil source means no sales
// store is configured; the store-backed endpoints answer 503 in that case.
type Handler struct {
	source     store.SalesSource
	engine     *forecast.Engine
	annotator  insight.Annotator
	normalizer ingest.Normalizer
	periods    int
	collector  *metrics.HTTPCollector
	logger     *slog.Logger
}

// NewHandler wires the pipeline components together. collector may be nil.
func NewHandler(source store.SalesSource, engine *forecast.Engine, annotator insight.Annotator, normalizer ingest.Normalizer, periods int, collector *metrics.HTTPCollector, logger *slog.Logger) *Handler {
	return &Handler{
		source:     source,
		engine:     engine,
		annotator:  annotator,
		normalizer: normalizer,
		periods:    periods,
		collector:  collector,
		logger:     logger,
	}
}

// HandleRoot handles GET / with a static identification payload.
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "salescast",
		"status":  "ready",
		"message": "Backend is running",
	})
}

// HandleForecast dispatches GET and POST /forecast.
func (h *Handler) HandleForecast(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.forecastFromStore(w, r)
	case http.MethodPost:
		h.forecastFromPayload(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// forecastFromStore serves GET /forecast: the remote sales table is the
// source of truth.
func (h *Handler) forecastFromStore(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.fetchStoreRows(w, r)
	if !ok {
		return
	}
	h.respondForecast(w, r, rows)
}

// forecastFromPayload serves POST /forecast: a CSV/XLSX upload, a JSON
// array, or sniffed CSV text in the body.
func (h *Handler) forecastFromPayload(w http.ResponseWriter, r *http.Request) {
	rows, err := h.payloadRows(r)
	if err != nil {
		h.writeInputError(w, err)
		return
	}
	h.respondForecast(w, r, rows)
}

// HandleChat serves POST /chat. The forecast is always recomputed from the
// sales store; the caller only supplies a question.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	if !h.annotator.Configured() {
		writeError(w, http.StatusInternalServerError, chatUnconfiguredDetail)
		return
	}

	rows, ok := h.fetchStoreRows(w, r)
	if !ok {
		return
	}

	series, ok := h.buildSeries(w, rows)
	if !ok {
		return
	}

	outcome := h.engine.Forecast(series, h.periods)
	h.recordOutcome(outcome)

	answer := h.annotator.Annotate(r.Context(), outcome.Points, req.Question)
	writeJSON(w, http.StatusOK, models.ChatResponse{Answer: answer})
}

// fetchStoreRows loads raw rows from the remote store, writing the error
// response itself when the store is unconfigured, unreachable, or empty.
func (h *Handler) fetchStoreRows(w http.ResponseWriter, r *http.Request) ([]ingest.RawRecord, bool) {
	if h.source == nil {
		writeError(w, http.StatusServiceUnavailable, storeUnconfiguredDetail)
		return nil, false
	}

	rows, err := h.source.Fetch(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch sales rows", "error", err)
		writeError(w, http.StatusServiceUnavailable, "sales store unreachable: "+err.Error())
		return nil, false
	}
	if len(rows) == 0 {
		writeError(w, http.StatusBadRequest, emptyStoreDetail)
		return nil, false
	}
	return rows, true
}

// payloadRows extracts raw rows from a POST /forecast request.
func (h *Handler) payloadRows(r *http.Request) ([]ingest.RawRecord, error) {
	contentType := strings.ToLower(r.Header.Get("Content-Type"))

	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, ingest.ValidationError{Field: "file", Message: "multipart form must include a 'file' upload"}
		}
		defer file.Close()

		src, err := ingest.ForUpload(header.Filename, file)
		if err != nil {
			return nil, err
		}
		return src.Rows()
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, ingest.ValidationError{Field: "body", Message: "could not read request body"}
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, ingest.ValidationError{Field: "body", Message: emptyBodyDetail}
	}

	return ingest.Sniff(body, contentType).Rows()
}

// respondForecast runs the normalize → aggregate → forecast → annotate
// pipeline and writes the combined response.
func (h *Handler) respondForecast(w http.ResponseWriter, r *http.Request, rows []ingest.RawRecord) {
	series, ok := h.buildSeries(w, rows)
	if !ok {
		return
	}

	periods, err := h.requestedPeriods(r)
	if err != nil {
		h.writeInputError(w, err)
		return
	}

	outcome := h.engine.Forecast(series, periods)
	h.recordOutcome(outcome)

	insightText := h.annotator.Annotate(r.Context(), outcome.Points, "")
	writeJSON(w, http.StatusOK, models.ForecastResponse{
		Forecast: outcome.Points,
		Insight:  insightText,
	})
}

func (h *Handler) buildSeries(w http.ResponseWriter, rows []ingest.RawRecord) ([]forecast.SeriesPoint, bool) {
	records, err := h.normalizer.Normalize(rows)
	if err != nil {
		h.writeInputError(w, err)
		return nil, false
	}

	series, err := forecast.Aggregate(records)
	if err != nil {
		h.writeInputError(w, err)
		return nil, false
	}
	return series, true
}

// requestedPeriods reads the optional periods query parameter.
func (h *Handler) requestedPeriods(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("periods")
	if raw == "" {
		return h.periods, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxPeriods {
		return 0, ingest.ValidationError{Field: "periods", Message: "periods must be an integer between 1 and 90"}
	}
	return n, nil
}

func (h *Handler) recordOutcome(outcome forecast.Outcome) {
	if h.collector != nil {
		h.collector.RecordForecast(string(outcome.Method))
	}
}

// writeInputError maps validation failures to 400 and anything else to 500.
func (h *Handler) writeInputError(w http.ResponseWriter, err error) {
	var verr ingest.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, verr.Message)
		return
	}
	h.logger.Error("unexpected pipeline error", "error", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, models.ErrorResponse{Detail: detail})
}
