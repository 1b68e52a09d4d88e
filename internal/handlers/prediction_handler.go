package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/neuroflow/backend/internal/middleware"
	"github.com/neuroflow/backend/internal/models"
	"github.com/neuroflow/backend/internal/services"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
	maxBatchTasks      = 50
)

// PredictionService is the subset of *services.Predictor the handler needs.
type PredictionService interface {
	CheckConnection(ctx context.Context) models.ConnectionStatus
	RefreshConnection(ctx context.Context) models.ConnectionStatus
	ModelInfo(ctx context.Context) (*models.ModelInfo, bool)
	PredictWithFallback(ctx context.Context, task models.TaskDescription, state models.UserState) (*models.PredictionResult, services.PredictOutcome)
	PredictBatch(ctx context.Context, tasks []models.TaskDescription, state models.UserState) []services.BatchItem
	Compare(ctx context.Context, task models.TaskDescription, state models.UserState) services.Comparison
	SimulateDailyProgress(ctx context.Context) services.DailyProgress
}

// HistoryRecorder enqueues prediction records. Nil disables history.
type HistoryRecorder interface {
	Record(ctx context.Context, rec models.PredictionRecord) error
}

// HistoryLister reads back recorded predictions.
type HistoryLister interface {
	ListRecent(ctx context.Context, limit int) ([]*models.PredictionRecord, error)
}

// PredictionHandler serves the /v1 prediction endpoints.
type PredictionHandler struct {
	Service  PredictionService
	Recorder HistoryRecorder
	History  HistoryLister
	Logger   *slog.Logger
}

func (h *PredictionHandler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

// --- GET /v1/status ---

// Status handles GET /v1/status. ?refresh=true bypasses the cached probe.
func (h *PredictionHandler) Status(w http.ResponseWriter, r *http.Request) {
	var st models.ConnectionStatus
	if refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh")); refresh {
		st = h.Service.RefreshConnection(r.Context())
	} else {
		st = h.Service.CheckConnection(r.Context())
	}
	writeJSON(w, http.StatusOK, st)
}

// --- GET /v1/model-info ---

func (h *PredictionHandler) ModelInfo(w http.ResponseWriter, r *http.Request) {
	info, ok := h.Service.ModelInfo(r.Context())
	if !ok {
		demo := models.DemoModelInfo()
		info = &demo
	}
	writeJSON(w, http.StatusOK, info)
}

// --- POST /v1/predict ---

type predictRequest struct {
	Task      models.TaskDescription `json:"task"`
	UserState models.UserState       `json:"userState"`
}

type predictResponse struct {
	Prediction     *models.PredictionResult `json:"prediction"`
	Interpretation services.Interpretation  `json:"interpretation"`
	FallbackReason services.FailureReason   `json:"fallback_reason,omitempty"`
}

// Predict handles POST /v1/predict.
// Schema check (middleware) -> decode -> range check -> predict or fallback -> record -> 200.
func (h *PredictionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validatePair(req.Task, req.UserState); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, out := h.Service.PredictWithFallback(r.Context(), req.Task, req.UserState)
	h.record(r.Context(), req.Task, req.UserState, res, out.Reason)

	writeJSON(w, http.StatusOK, predictResponse{
		Prediction:     res,
		Interpretation: services.Interpret(res),
		FallbackReason: out.Reason,
	})
}

// --- POST /v1/predict/batch ---

type batchRequest struct {
	Tasks     []models.TaskDescription `json:"tasks"`
	UserState models.UserState         `json:"userState"`
}

type batchResponse struct {
	Items []services.BatchItem `json:"items"`
}

// PredictBatch handles POST /v1/predict/batch. Items come back highest priority first.
func (h *PredictionHandler) PredictBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Tasks) == 0 {
		writeError(w, http.StatusBadRequest, "tasks must not be empty")
		return
	}
	if len(req.Tasks) > maxBatchTasks {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d tasks per batch", maxBatchTasks))
		return
	}
	if err := req.UserState.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for i, t := range req.Tasks {
		if err := t.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("tasks[%d]: %v", i, err))
			return
		}
	}

	items := h.Service.PredictBatch(r.Context(), req.Tasks, req.UserState)
	for _, it := range items {
		h.record(r.Context(), it.Task, req.UserState, it.Prediction, it.FallbackReason)
	}
	writeJSON(w, http.StatusOK, batchResponse{Items: items})
}

// --- POST /v1/compare ---

func (h *PredictionHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validatePair(req.Task, req.UserState); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.Service.Compare(r.Context(), req.Task, req.UserState))
}

// --- POST /v1/readiness ---

type readinessRequest struct {
	UserState models.UserState `json:"userState"`
}

// Readiness handles POST /v1/readiness. It is local arithmetic and never
// calls the model server.
func (h *PredictionHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	var req readinessRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.UserState.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "userState: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, services.Readiness(req.UserState))
}

// --- GET /v1/simulate/daily ---

func (h *PredictionHandler) SimulateDaily(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.SimulateDailyProgress(r.Context()))
}

// --- GET /v1/predictions/recent ---

// ListRecent handles GET /v1/predictions/recent?limit=N.
func (h *PredictionHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	if h.History == nil {
		writeError(w, http.StatusNotFound, "prediction history is disabled")
		return
	}

	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxRecentLimit)
	}

	recs, err := h.History.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger().Error("list recent predictions", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if recs == nil {
		recs = []*models.PredictionRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// record enqueues a history row. Failures are logged and never fail the request.
func (h *PredictionHandler) record(ctx context.Context, task models.TaskDescription, state models.UserState, res *models.PredictionResult, reason services.FailureReason) {
	if h.Recorder == nil || res == nil {
		return
	}
	taskJSON, err := json.Marshal(task)
	if err != nil {
		h.logger().Warn("marshal task for history", "error", err)
		return
	}
	stateJSON, err := json.Marshal(state)
	if err != nil {
		h.logger().Warn("marshal user state for history", "error", err)
		return
	}

	rec := models.PredictionRecord{
		ID:                   uuid.New(),
		TaskTitle:            task.Title,
		PriorityScore:        res.PriorityScore,
		CompletionLikelihood: res.CompletionLikelihood,
		PredictionSource:     res.PredictionSource,
		Confidence:           res.Confidence,
		FallbackReason:       string(reason),
		Task:                 taskJSON,
		UserState:            stateJSON,
		CreatedAt:            time.Now().UTC(),
	}
	if err := h.Recorder.Record(ctx, rec); err != nil {
		h.logger().Warn("record prediction", "prediction_id", rec.ID,
			"request_id", middleware.RequestIDFromCtx(ctx), "error", err)
	}
}

func validatePair(task models.TaskDescription, state models.UserState) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("task: %w", err)
	}
	if err := state.Validate(); err != nil {
		return fmt.Errorf("userState: %w", err)
	}
	return nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
