package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/neuroflow/backend/internal/models"
	"github.com/neuroflow/backend/internal/services"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeRecorder struct {
	mu   sync.Mutex
	recs []models.PredictionRecord
	err  error
}

func (f *fakeRecorder) Record(_ context.Context, rec models.PredictionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recs = append(f.recs, rec)
	return f.err
}

type fakeLister struct {
	gotLimit int
	recs     []*models.PredictionRecord
	err      error
}

func (f *fakeLister) ListRecent(_ context.Context, limit int) ([]*models.PredictionRecord, error) {
	f.gotLimit = limit
	return f.recs, f.err
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// modelServer answers /predict with fixed scores and /model-info with fixed figures.
func modelServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /predict", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"priorityScore":0.91,"completionLikelihood":0.55,"confidence":"high",
			"reasoning":{"method":"ensemble","adhd_recommendations":["Start with a 5 minute warmup"]}}`)
	})
	mux.HandleFunc("GET /model-info", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"feature_count":42,"model_metadata":{"priority_r2_score":0.9,"completion_r2_score":0.8,"training_date":"2026-09-01"}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func offlineURL() string {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func newHandler(baseURL string, rec HistoryRecorder, hist HistoryLister) *PredictionHandler {
	p := services.NewPredictor(services.PredictorConfig{BaseURL: baseURL}, nil, quietLogger())
	return &PredictionHandler{Service: p, Recorder: rec, History: hist, Logger: quietLogger()}
}

const predictBody = `{"task":{"title":"Prepare presentation","estimatedDurationMin":45,"importance":0.8,"urgency":0.7,"energyRequired":"high"},
	"userState":{"mood":0.6,"energy":0.7,"focus":0.5,"stressLevel":0.4,"sleepQuality":0.7,"medicationTaken":true}}`

func post(h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	return rec
}

// ---------------------------------------------------------------------------
// Predict
// ---------------------------------------------------------------------------

func TestPredict_ModelServer(t *testing.T) {
	srv := modelServer(t)
	recorder := &fakeRecorder{}
	h := newHandler(srv.URL, recorder, nil)

	rec := post(h.Predict, "/v1/predict", predictBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp predictResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Prediction.PredictionSource != models.SourceTrainedModel {
		t.Errorf("expected source %q, got %q", models.SourceTrainedModel, resp.Prediction.PredictionSource)
	}
	if resp.FallbackReason != "" {
		t.Errorf("expected no fallback reason, got %q", resp.FallbackReason)
	}
	if resp.Interpretation.PriorityTier != services.PriorityHigh {
		t.Errorf("expected high priority tier, got %q", resp.Interpretation.PriorityTier)
	}
	if resp.Interpretation.CompletionTier != services.CompletionModerate {
		t.Errorf("expected moderate completion tier, got %q", resp.Interpretation.CompletionTier)
	}

	if len(recorder.recs) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(recorder.recs))
	}
	got := recorder.recs[0]
	if got.TaskTitle != "Prepare presentation" || got.PriorityScore != 0.91 || got.FallbackReason != "" {
		t.Errorf("unexpected record: %+v", got)
	}
}

func TestPredict_OfflineFallsBack(t *testing.T) {
	recorder := &fakeRecorder{}
	h := newHandler(offlineURL(), recorder, nil)

	rec := post(h.Predict, "/v1/predict", predictBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp predictResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Prediction.PredictionSource != models.SourceFallback {
		t.Errorf("expected fallback source, got %q", resp.Prediction.PredictionSource)
	}
	if resp.FallbackReason != services.ReasonOffline {
		t.Errorf("expected reason offline, got %q", resp.FallbackReason)
	}
	if math.Abs(resp.Prediction.PriorityScore-0.68) > 1e-9 {
		t.Errorf("expected fallback priority 0.68, got %v", resp.Prediction.PriorityScore)
	}
	if len(recorder.recs) != 1 || recorder.recs[0].FallbackReason != string(services.ReasonOffline) {
		t.Errorf("expected one fallback record, got %+v", recorder.recs)
	}
}

func TestPredict_RecorderFailureDoesNotFailRequest(t *testing.T) {
	h := newHandler(offlineURL(), &fakeRecorder{err: errors.New("queue down")}, nil)

	rec := post(h.Predict, "/v1/predict", predictBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 despite recorder error, got %d", rec.Code)
	}
}

func TestPredict_RejectsBadInput(t *testing.T) {
	h := newHandler(offlineURL(), nil, nil)

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{"task":`},
		{"importance out of range", strings.Replace(predictBody, `"importance":0.8`, `"importance":1.8`, 1)},
		{"missing title", strings.Replace(predictBody, `"title":"Prepare presentation",`, ``, 1)},
		{"energy out of range", strings.Replace(predictBody, `"energy":0.7`, `"energy":-0.1`, 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := post(h.Predict, "/v1/predict", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Batch, compare, simulate
// ---------------------------------------------------------------------------

func TestPredictBatch_SortedByPriority(t *testing.T) {
	recorder := &fakeRecorder{}
	h := newHandler(offlineURL(), recorder, nil)

	body := `{"tasks":[
		{"title":"low","estimatedDurationMin":20,"importance":0.3,"urgency":0.3,"energyRequired":"low"},
		{"title":"high","estimatedDurationMin":20,"importance":0.9,"urgency":0.9,"energyRequired":"high"},
		{"title":"mid","estimatedDurationMin":20,"importance":0.6,"urgency":0.6,"energyRequired":"medium"}],
		"userState":{"mood":0.5,"energy":0.5,"focus":0.5,"stressLevel":0.5,"sleepQuality":0.5,"medicationTaken":false}}`
	rec := post(h.PredictBatch, "/v1/predict/batch", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp batchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var titles []string
	for _, it := range resp.Items {
		titles = append(titles, it.Task.Title)
	}
	if strings.Join(titles, ",") != "high,mid,low" {
		t.Errorf("expected high,mid,low, got %v", titles)
	}
	if len(recorder.recs) != 3 {
		t.Errorf("expected 3 history records, got %d", len(recorder.recs))
	}
}

func TestPredictBatch_Empty(t *testing.T) {
	h := newHandler(offlineURL(), nil, nil)
	rec := post(h.PredictBatch, "/v1/predict/batch",
		`{"tasks":[],"userState":{"mood":0.5,"energy":0.5,"focus":0.5,"stressLevel":0.5,"sleepQuality":0.5,"medicationTaken":false}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCompare(t *testing.T) {
	h := newHandler(offlineURL(), nil, nil)

	rec := post(h.Compare, "/v1/compare", predictBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp services.Comparison
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Methods) != 3 {
		t.Fatalf("expected 3 methods, got %d", len(resp.Methods))
	}
	if resp.Methods[2].Method != services.MethodBasic || resp.Methods[2].CompletionLikelihood != nil {
		t.Errorf("basic method should have no completion estimate: %+v", resp.Methods[2])
	}
	if resp.FallbackReason != services.ReasonOffline {
		t.Errorf("expected offline reason, got %q", resp.FallbackReason)
	}
}

func TestSimulateDaily(t *testing.T) {
	h := newHandler(offlineURL(), nil, nil)

	rec := httptest.NewRecorder()
	h.SimulateDaily(rec, httptest.NewRequest(http.MethodGet, "/v1/simulate/daily", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp services.DailyProgress
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Morning) != 2 || len(resp.Afternoon) != 2 || len(resp.Evening) != 1 {
		t.Errorf("unexpected split: %d/%d/%d", len(resp.Morning), len(resp.Afternoon), len(resp.Evening))
	}
}

// ---------------------------------------------------------------------------
// Model info and history
// ---------------------------------------------------------------------------

func TestModelInfo(t *testing.T) {
	srv := modelServer(t)

	t.Run("from model server", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newHandler(srv.URL, nil, nil).ModelInfo(rec, httptest.NewRequest(http.MethodGet, "/v1/model-info", nil))
		var info models.ModelInfo
		if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if info.FeatureCount != 42 || info.Source != models.ModelInfoFromService {
			t.Errorf("unexpected info: %+v", info)
		}
	})

	t.Run("demo when offline", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newHandler(offlineURL(), nil, nil).ModelInfo(rec, httptest.NewRequest(http.MethodGet, "/v1/model-info", nil))
		var info models.ModelInfo
		if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if info.FeatureCount != 31 || info.ModelMetadata.PriorityR2Score != 0.885 || info.Source != models.ModelInfoDemo {
			t.Errorf("unexpected demo info: %+v", info)
		}
	})
}

func TestListRecent(t *testing.T) {
	lister := &fakeLister{recs: []*models.PredictionRecord{{TaskTitle: "a"}}}
	h := newHandler(offlineURL(), nil, lister)

	cases := []struct {
		query     string
		wantCode  int
		wantLimit int
	}{
		{"", http.StatusOK, defaultRecentLimit},
		{"?limit=5", http.StatusOK, 5},
		{"?limit=1000", http.StatusOK, maxRecentLimit},
		{"?limit=zero", http.StatusBadRequest, 0},
		{"?limit=-1", http.StatusBadRequest, 0},
	}
	for _, tc := range cases {
		lister.gotLimit = 0
		rec := httptest.NewRecorder()
		h.ListRecent(rec, httptest.NewRequest(http.MethodGet, "/v1/predictions/recent"+tc.query, nil))
		if rec.Code != tc.wantCode {
			t.Errorf("%q: expected %d, got %d", tc.query, tc.wantCode, rec.Code)
		}
		if lister.gotLimit != tc.wantLimit {
			t.Errorf("%q: expected limit %d, got %d", tc.query, tc.wantLimit, lister.gotLimit)
		}
	}
}

func TestListRecent_Disabled(t *testing.T) {
	h := newHandler(offlineURL(), nil, nil)
	rec := httptest.NewRecorder()
	h.ListRecent(rec, httptest.NewRequest(http.MethodGet, "/v1/predictions/recent", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// Readiness
// ---------------------------------------------------------------------------

func TestReadiness(t *testing.T) {
	// The model server is offline; readiness must not depend on it.
	h := newHandler(offlineURL(), nil, nil)

	rec := post(h.Readiness, "/v1/readiness",
		`{"userState":{"mood":0.9,"energy":0.9,"focus":0.9,"stressLevel":0.1,"sleepQuality":0.9,"medicationTaken":true}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp services.StateReadiness
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Tier != services.ReadinessExcellent || math.Abs(resp.Score-0.9) > 1e-9 {
		t.Errorf("unexpected readiness: %+v", resp)
	}
	if len(resp.Cautions) != 0 {
		t.Errorf("expected no cautions, got %v", resp.Cautions)
	}
}

func TestReadiness_RejectsOutOfRange(t *testing.T) {
	h := newHandler(offlineURL(), nil, nil)
	rec := post(h.Readiness, "/v1/readiness",
		`{"userState":{"mood":1.5,"energy":0.5,"focus":0.5,"stressLevel":0.5,"sleepQuality":0.5,"medicationTaken":false}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
