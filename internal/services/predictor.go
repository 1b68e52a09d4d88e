package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/neuroflow/backend/internal/metrics"
	"github.com/neuroflow/backend/internal/models"
)

const (
	DefaultPredictTimeout   = 10 * time.Second
	DefaultHealthTimeout    = 3 * time.Second
	DefaultModelInfoTimeout = 5 * time.Second

	maxResponseBytes = 1 << 20
)

// Upstream endpoints on the model server.
const (
	endpointHealth    = "/health"
	endpointModelInfo = "/model-info"
	endpointPredict   = "/predict"
)

// FailureReason explains why an external prediction was unavailable.
type FailureReason string

const (
	ReasonNone       FailureReason = ""
	ReasonOffline    FailureReason = "offline"
	ReasonTimeout    FailureReason = "timeout"
	ReasonHTTPStatus FailureReason = "http_status"
	ReasonMalformed  FailureReason = "malformed_response"
)

// PredictOutcome is either an external result or an explicit absence with a
// reason. Err carries the underlying failure for logging only.
type PredictOutcome struct {
	Result     *models.PredictionResult
	Reason     FailureReason
	StatusCode int
	Err        error
}

// Available reports whether the model server produced a result.
func (o PredictOutcome) Available() bool { return o.Result != nil }

// PredictorConfig configures the model server client. Zero durations take the defaults.
type PredictorConfig struct {
	BaseURL          string
	PredictTimeout   time.Duration
	HealthTimeout    time.Duration
	ModelInfoTimeout time.Duration
	StatusTTL        time.Duration

	// HTTPClient defaults to a client with no overall timeout; each call is
	// bounded by its own context deadline.
	HTTPClient *http.Client
	// Now is the clock used by the status cache.
	Now func() time.Time
}

// Predictor talks to the external model server and hides whether it is
// reachable. No call on it returns a network error to the caller.
type Predictor struct {
	baseURL          string
	predictTimeout   time.Duration
	healthTimeout    time.Duration
	modelInfoTimeout time.Duration

	httpClient *http.Client
	status     *statusCache
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewPredictor returns a Predictor owning its own status cache.
func NewPredictor(cfg PredictorConfig, m *metrics.Metrics, logger *slog.Logger) *Predictor {
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Predictor{
		baseURL:          strings.TrimRight(cfg.BaseURL, "/"),
		predictTimeout:   orDefault(cfg.PredictTimeout, DefaultPredictTimeout),
		healthTimeout:    orDefault(cfg.HealthTimeout, DefaultHealthTimeout),
		modelInfoTimeout: orDefault(cfg.ModelInfoTimeout, DefaultModelInfoTimeout),
		httpClient:       httpClient,
		status:           newStatusCache(cfg.StatusTTL, cfg.Now),
		metrics:          m,
		logger:           logger,
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// BaseURL returns the model server address.
func (p *Predictor) BaseURL() string { return p.baseURL }

// CheckConnection returns the model server status, probing /health at most
// once per status TTL.
func (p *Predictor) CheckConnection(ctx context.Context) models.ConnectionStatus {
	// The probe outlives any single caller that happens to trigger it.
	return p.status.get(context.WithoutCancel(ctx), p.probeHealth)
}

// RefreshConnection drops the cached status and probes immediately.
func (p *Predictor) RefreshConnection(ctx context.Context) models.ConnectionStatus {
	p.status.invalidate()
	return p.CheckConnection(ctx)
}

func (p *Predictor) probeHealth(ctx context.Context) models.ConnectionStatus {
	p.metrics.ObserveProbe()

	body, status, err := p.get(ctx, endpointHealth, p.healthTimeout)
	if err != nil {
		p.logger.Warn("model server health check failed", "endpoint", endpointHealth, "error", err)
		return models.ConnectionStatus{Connected: false, Error: err.Error()}
	}
	if status != http.StatusOK {
		p.logger.Warn("model server health check returned non-200", "endpoint", endpointHealth, "status", status)
		return models.ConnectionStatus{Connected: false, Error: fmt.Sprintf("HTTP %d", status)}
	}

	var health struct {
		ModelsLoaded      bool   `json:"models_loaded"`
		Service           string `json:"service"`
		FeaturesAvailable int    `json:"features_available"`
		Timestamp         string `json:"timestamp"`
	}
	if err := json.Unmarshal(body, &health); err != nil {
		p.logger.Warn("model server health body undecodable", "endpoint", endpointHealth, "error", err)
		return models.ConnectionStatus{Connected: false, Error: fmt.Sprintf("decode health: %v", err)}
	}
	if health.Service == "" {
		health.Service = "Unknown"
	}
	if health.Timestamp == "" {
		health.Timestamp = "Unknown"
	}
	return models.ConnectionStatus{
		Connected:         true,
		ModelsLoaded:      health.ModelsLoaded,
		Service:           health.Service,
		FeaturesAvailable: health.FeaturesAvailable,
		Timestamp:         health.Timestamp,
	}
}

// ModelInfo fetches display metadata about the trained models. The bool is
// false whenever the server could not supply it.
func (p *Predictor) ModelInfo(ctx context.Context) (*models.ModelInfo, bool) {
	body, status, err := p.get(ctx, endpointModelInfo, p.modelInfoTimeout)
	if err != nil {
		p.logger.Warn("model info request failed", "endpoint", endpointModelInfo, "error", err)
		return nil, false
	}
	if status != http.StatusOK {
		p.logger.Warn("model info returned non-200", "endpoint", endpointModelInfo, "status", status)
		return nil, false
	}
	var info models.ModelInfo
	if err := json.Unmarshal(body, &info); err != nil {
		p.logger.Warn("model info body undecodable", "endpoint", endpointModelInfo, "error", err)
		return nil, false
	}
	info.Source = models.ModelInfoFromService
	info.Raw = json.RawMessage(body)
	return &info, true
}

type predictRequest struct {
	Task      models.TaskDescription `json:"task"`
	UserState models.UserState       `json:"userState"`
}

type predictResponse struct {
	PriorityScore        *float64          `json:"priorityScore"`
	CompletionLikelihood *float64          `json:"completionLikelihood"`
	PredictionSource     string            `json:"predictionSource"`
	Confidence           string            `json:"confidence"`
	Reasoning            *models.Reasoning `json:"reasoning"`
}

// Predict asks the model server to score one task. A single attempt is made;
// every failure comes back as an outcome with a reason and no result.
func (p *Predictor) Predict(ctx context.Context, task models.TaskDescription, state models.UserState) PredictOutcome {
	payload, err := json.Marshal(predictRequest{Task: task, UserState: state})
	if err != nil {
		return PredictOutcome{Reason: ReasonMalformed, Err: fmt.Errorf("marshal predict payload: %w", err)}
	}

	body, status, err := p.do(ctx, http.MethodPost, endpointPredict, payload, p.predictTimeout)
	if err != nil {
		reason := classifyTransportError(err)
		p.logger.Warn("ML prediction failed", "endpoint", endpointPredict, "reason", reason, "error", err)
		return PredictOutcome{Reason: reason, Err: err}
	}
	if status != http.StatusOK {
		p.logger.Warn("ML service error", "endpoint", endpointPredict, "status", status)
		return PredictOutcome{Reason: ReasonHTTPStatus, StatusCode: status, Err: fmt.Errorf("model server returned HTTP %d", status)}
	}

	var resp predictResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		p.logger.Warn("ML prediction body undecodable", "endpoint", endpointPredict, "error", err)
		return PredictOutcome{Reason: ReasonMalformed, StatusCode: status, Err: fmt.Errorf("decode prediction: %w", err)}
	}
	if resp.PriorityScore == nil || resp.CompletionLikelihood == nil {
		err := errors.New("prediction missing priorityScore or completionLikelihood")
		p.logger.Warn("ML prediction incomplete", "endpoint", endpointPredict, "error", err)
		return PredictOutcome{Reason: ReasonMalformed, StatusCode: status, Err: err}
	}

	return PredictOutcome{
		StatusCode: status,
		Result: &models.PredictionResult{
			PriorityScore:        models.Clamp01(*resp.PriorityScore),
			CompletionLikelihood: models.Clamp01(*resp.CompletionLikelihood),
			PredictionSource:     models.SourceTrainedModel,
			Confidence:           models.NormalizeConfidence(resp.Confidence),
			Reasoning:            resp.Reasoning,
		},
	}
}

// PredictWithFallback returns the external result when there is one and the
// fallback formula otherwise. It always yields a result.
func (p *Predictor) PredictWithFallback(ctx context.Context, task models.TaskDescription, state models.UserState) (*models.PredictionResult, PredictOutcome) {
	out := p.Predict(ctx, task, state)
	if out.Available() {
		p.metrics.ObservePrediction(out.Result.PredictionSource)
		return out.Result, out
	}
	p.metrics.ObserveFallback(string(out.Reason))
	p.metrics.ObservePrediction(models.SourceFallback)
	return FallbackPrediction(task, state), out
}

// BatchItem is one scored task of a batch.
type BatchItem struct {
	Task           models.TaskDescription   `json:"task"`
	Prediction     *models.PredictionResult `json:"prediction"`
	FallbackReason FailureReason            `json:"fallback_reason,omitempty"`
}

// PredictBatch scores tasks one after another in input order, substituting the
// fallback for any task the model server could not score, and returns them by
// descending priority. Equal priorities keep their input order.
func (p *Predictor) PredictBatch(ctx context.Context, tasks []models.TaskDescription, state models.UserState) []BatchItem {
	items := make([]BatchItem, 0, len(tasks))
	for _, task := range tasks {
		res, out := p.PredictWithFallback(ctx, task, state)
		items = append(items, BatchItem{Task: task, Prediction: res, FallbackReason: out.Reason})
	}
	SortByPriority(items)
	return items
}

// SortByPriority orders items by descending priority score, stable on ties.
func SortByPriority(items []BatchItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Prediction.PriorityScore > items[j].Prediction.PriorityScore
	})
}

func (p *Predictor) get(ctx context.Context, endpoint string, timeout time.Duration) ([]byte, int, error) {
	return p.do(ctx, http.MethodGet, endpoint, nil, timeout)
}

// do performs one bounded request and reads at most maxResponseBytes of the body.
func (p *Predictor) do(ctx context.Context, method, endpoint string, payload []byte, timeout time.Duration) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("create %s request: %w", endpoint, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.metrics.ObserveUpstream(endpoint, "error", time.Since(start))
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		p.metrics.ObserveUpstream(endpoint, "error", time.Since(start))
		return nil, resp.StatusCode, fmt.Errorf("read %s body: %w", endpoint, err)
	}
	p.metrics.ObserveUpstream(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))
	return body, resp.StatusCode, nil
}

func classifyTransportError(err error) FailureReason {
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}
	return ReasonOffline
}
