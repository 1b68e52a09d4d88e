package execution

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/neuroflow/backend/internal/models"
)

// RecordPredictionArgs carries one served prediction to the history store.
type RecordPredictionArgs struct {
	Record models.PredictionRecord `json:"record"`
}

func (RecordPredictionArgs) Kind() string { return "record_prediction" }

func (RecordPredictionArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{MaxAttempts: 5}
}

// PredictionStore is the contract the worker needs to persist history.
type PredictionStore interface {
	Create(ctx context.Context, p *models.PredictionRecord) error
}

type RecordPredictionWorker struct {
	river.WorkerDefaults[RecordPredictionArgs]
	store  PredictionStore
	logger *slog.Logger
}

func NewRecordPredictionWorker(store PredictionStore, logger *slog.Logger) *RecordPredictionWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordPredictionWorker{store: store, logger: logger}
}

func (w *RecordPredictionWorker) Work(ctx context.Context, job *river.Job[RecordPredictionArgs]) error {
	rec := job.Args.Record
	if err := w.store.Create(ctx, &rec); err != nil {
		return fmt.Errorf("store prediction %s: %w", rec.ID, err)
	}
	w.logger.Debug("prediction recorded", "prediction_id", rec.ID, "source", rec.PredictionSource)
	return nil
}

// InsertFunc enqueues a RecordPrediction job. Provided by main as a closure
// over river.Client.Insert.
type InsertFunc func(ctx context.Context, args RecordPredictionArgs) error

// Recorder hands predictions to the queue so the request path never waits on
// the database.
type Recorder struct {
	insert InsertFunc
}

func NewRecorder(insert InsertFunc) *Recorder {
	return &Recorder{insert: insert}
}

func (r *Recorder) Record(ctx context.Context, rec models.PredictionRecord) error {
	if err := r.insert(ctx, RecordPredictionArgs{Record: rec}); err != nil {
		return fmt.Errorf("enqueue prediction record: %w", err)
	}
	return nil
}
