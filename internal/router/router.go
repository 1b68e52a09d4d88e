package router

import (
	"net/http"

	"github.com/neuroflow/backend/internal/handlers"
	"github.com/neuroflow/backend/internal/middleware"
	"github.com/neuroflow/backend/internal/services"
)

// Deps carries what the router mounts. Validator, Metrics and APIKeys are optional.
type Deps struct {
	Predictions *handlers.PredictionHandler
	Validator   middleware.PayloadValidator
	Metrics     http.Handler
	APIKeys     []string
}

// New returns the API handler.
// Middleware chain for /v1: APIKeyAuth -> (PayloadCheck on POST) -> handler.
func New(d Deps) http.Handler {
	mux := http.NewServeMux()
	ph := d.Predictions

	auth := middleware.APIKeyAuth(d.APIKeys)
	withSchema := func(schema string, h http.HandlerFunc) http.Handler {
		if d.Validator == nil {
			return auth(h)
		}
		return auth(middleware.PayloadCheck(d.Validator, schema)(h))
	}

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("OK"))
	})
	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics)
	}

	mux.Handle("GET /v1/status", auth(http.HandlerFunc(ph.Status)))
	mux.Handle("GET /v1/model-info", auth(http.HandlerFunc(ph.ModelInfo)))
	mux.Handle("POST /v1/predict", withSchema(services.SchemaPredict, ph.Predict))
	mux.Handle("POST /v1/predict/batch", withSchema(services.SchemaBatch, ph.PredictBatch))
	mux.Handle("POST /v1/compare", withSchema(services.SchemaPredict, ph.Compare))
	mux.Handle("POST /v1/readiness", withSchema(services.SchemaReadiness, ph.Readiness))
	mux.Handle("GET /v1/simulate/daily", auth(http.HandlerFunc(ph.SimulateDaily)))
	mux.Handle("GET /v1/predictions/recent", auth(http.HandlerFunc(ph.ListRecent)))

	return mux
}
