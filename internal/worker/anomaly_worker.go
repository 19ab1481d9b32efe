package worker

// anomaly_worker.go
// Processes shift-anomaly jobs from QueueAnomalies and persists them as
// ShiftAnomaly rows. Anomalies are raised by the shift state machine (index
// drift at start, long duration at close) and by the reconciliation engine
// (significant cash variance); persisting them off the request path keeps the
// originating transaction short.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anass1h/Station-sub000/internal/model"
	"github.com/anass1h/Station-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AnomalyJobPayload is the job envelope sent to QueueAnomalies.
type AnomalyJobPayload struct {
	ShiftID  string  `json:"shift_id"`
	Kind     string  `json:"kind"`
	Message  string  `json:"message"`
	Observed *string `json:"observed,omitempty"`
	Expected *string `json:"expected,omitempty"`
}

// AnomalyWorker persists anomaly jobs from QueueAnomalies.
type AnomalyWorker struct {
	repo repository.AnomalyRepository
}

func NewAnomalyWorker(repo repository.AnomalyRepository) *AnomalyWorker {
	return &AnomalyWorker{repo: repo}
}

// Process handles a single anomaly job. A returned error sends the job to the
// DLQ; malformed payloads are dropped with a log since retrying cannot fix them.
func (w *AnomalyWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload AnomalyJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("anomaly_worker: invalid payload")
		return nil
	}

	shiftID, err := uuid.Parse(payload.ShiftID)
	if err != nil {
		log.Error().Str("shift_id", payload.ShiftID).Msg("anomaly_worker: invalid shift_id")
		return nil
	}

	anomaly := &model.ShiftAnomaly{
		ShiftID:  shiftID,
		Kind:     payload.Kind,
		Message:  payload.Message,
		Observed: payload.Observed,
		Expected: payload.Expected,
	}
	if err := w.repo.Create(ctx, anomaly); err != nil {
		return fmt.Errorf("anomaly_worker: persist: %w", err)
	}

	log.Info().
		Str("shift_id", payload.ShiftID).
		Str("kind", payload.Kind).
		Msg("anomaly recorded")
	return nil
}
