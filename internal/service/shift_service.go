package service

import (
	"context"
	"errors"
	"time"

	"github.com/anass1h/Station-sub000/internal/apierror"
	"github.com/anass1h/Station-sub000/internal/config"
	"github.com/anass1h/Station-sub000/internal/dto"
	"github.com/anass1h/Station-sub000/internal/model"
	"github.com/anass1h/Station-sub000/internal/repository"
	"github.com/anass1h/Station-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type ShiftService interface {
	Start(ctx context.Context, pompisteID uuid.UUID, req dto.StartShiftRequest) (*dto.ShiftResponse, error)
	End(ctx context.Context, actor Actor, shiftID uuid.UUID, req dto.EndShiftRequest) (*dto.ShiftResponse, error)
	Validate(ctx context.Context, managerID uuid.UUID, shiftID uuid.UUID) (*dto.ShiftResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ShiftResponse, error)
	List(ctx context.Context, filter dto.ShiftFilter) (*dto.ShiftListResponse, error)
}

// AnomalyDispatcher enqueues shift-anomaly jobs for async persistence.
// *worker.Dispatcher satisfies it.
type AnomalyDispatcher interface {
	EnqueueAnomaly(ctx context.Context, payload interface{}) error
}

type shiftService struct {
	repo       repository.ShiftRepository
	nozzleRepo repository.NozzleRepository
	cfg        *config.Config
	dispatcher AnomalyDispatcher
}

func NewShiftService(
	repo repository.ShiftRepository,
	nozzleRepo repository.NozzleRepository,
	cfg *config.Config,
	dispatcher AnomalyDispatcher,
) ShiftService {
	return &shiftService{repo: repo, nozzleRepo: nozzleRepo, cfg: cfg, dispatcher: dispatcher}
}

// ── Start ─────────────────────────────────────────────────────────────────────
// Opens a session for one pompiste on one nozzle. The one-open-shift-per-nozzle
// and one-open-shift-per-pompiste invariants are checked inside the transaction
// under a FOR UPDATE lock on the nozzle row; partial unique indexes on
// shifts(nozzle_id / pompiste_id) WHERE status='OPEN' backstop the check
// against concurrent inserts.

func (s *shiftService) Start(ctx context.Context, pompisteID uuid.UUID, req dto.StartShiftRequest) (*dto.ShiftResponse, error) {
	nozzleID, err := uuid.Parse(req.NozzleID)
	if err != nil {
		return nil, apierror.Invalid("invalid nozzle_id: %s", req.NozzleID)
	}

	var shift model.Shift
	var continuity checkResult

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		nozzle, err := s.nozzleRepo.FindByIDForUpdateTx(tx, nozzleID)
		if err != nil {
			return apierror.NotFound("nozzle %s not found", nozzleID)
		}
		if !nozzle.Active {
			return apierror.Invalid("nozzle %s is inactive", nozzle.Label)
		}

		continuity = checkIndexContinuity(req.IndexStart, nozzle.CurrentIndex)
		if continuity.block() {
			return apierror.Invalid("%s", continuity.message)
		}

		if open, err := s.repo.FindOpenByNozzleTx(tx, nozzleID); err == nil && open != nil {
			return apierror.Conflict("nozzle %s already has an open shift", nozzle.Label)
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if open, err := s.repo.FindOpenByPompisteTx(tx, pompisteID); err == nil && open != nil {
			return apierror.Conflict("pompiste already has an open shift on another nozzle")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		shift = model.Shift{
			NozzleID:   nozzleID,
			PompisteID: pompisteID,
			IndexStart: req.IndexStart,
			Status:     model.ShiftOpen,
			StartedAt:  time.Now(),
		}
		// The partial unique indexes catch a concurrent open that slipped
		// past the checks above.
		if err := s.repo.CreateTx(tx, &shift); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apierror.Conflict("an open shift already exists for this nozzle or pompiste")
			}
			return err
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := shiftToResponse(&shift)
	if continuity.warn() {
		log.Warn().
			Str("shift_id", shift.ID.String()).
			Str("nozzle_id", nozzleID.String()).
			Msg(continuity.message)
		s.enqueueAnomaly(ctx, shift.ID, model.AnomalyIndexDrift, continuity.message,
			req.IndexStart.StringFixed(2), "")
		msg := continuity.message
		resp.Warning = &msg
	}
	return resp, nil
}

// ── End ───────────────────────────────────────────────────────────────────────
// Single atomic unit: the shift transitions OPEN → CLOSED and the nozzle's
// current_index moves to index_end in the same transaction. A crash between
// the two writes would corrupt the meter invariant, so they commit together
// or not at all.

func (s *shiftService) End(ctx context.Context, actor Actor, shiftID uuid.UUID, req dto.EndShiftRequest) (*dto.ShiftResponse, error) {
	var shift *model.Shift
	var duration checkResult
	now := time.Now()

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		shift, err = s.repo.FindByIDForUpdateTx(tx, shiftID)
		if err != nil {
			return apierror.NotFound("shift %s not found", shiftID)
		}

		switch shift.Status {
		case model.ShiftOpen:
			// proceed
		case model.ShiftValidated:
			return apierror.Conflict("shift %s is already validated and immutable", shiftID)
		default:
			return apierror.Conflict("shift %s is not open (status %s)", shiftID, shift.Status)
		}

		if !model.IsManager(actor.Role) && actor.ID != shift.PompisteID {
			return apierror.Forbidden("only the shift's pompiste or a manager may end it")
		}

		duration = checkShiftDuration(shift.StartedAt, now,
			time.Duration(s.cfg.ShiftSoftMaxHours)*time.Hour,
			time.Duration(s.cfg.ShiftHardMaxHours)*time.Hour)
		if duration.block() {
			return apierror.Invalid("%s", duration.message)
		}

		if req.IndexEnd.LessThan(shift.IndexStart) {
			return apierror.Invalid("index_end %s is below index_start %s",
				req.IndexEnd.StringFixed(2), shift.IndexStart.StringFixed(2))
		}

		indexEnd := req.IndexEnd
		shift.IndexEnd = &indexEnd
		shift.EndedAt = &now
		shift.Status = model.ShiftClosed
		shift.IncidentNote = req.IncidentNote
		if err := s.repo.UpdateTx(tx, shift); err != nil {
			return err
		}

		// Same transaction: meter and shift must never disagree.
		if _, err := s.nozzleRepo.FindByIDForUpdateTx(tx, shift.NozzleID); err != nil {
			return apierror.NotFound("nozzle %s not found", shift.NozzleID)
		}
		return s.nozzleRepo.UpdateIndexTx(tx, shift.NozzleID, req.IndexEnd)
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := shiftToResponse(shift)
	if duration.warn() {
		log.Warn().Str("shift_id", shiftID.String()).Msg(duration.message)
		s.enqueueAnomaly(ctx, shiftID, model.AnomalyLongDuration, duration.message,
			now.Sub(shift.StartedAt).String(), "")
		msg := duration.message
		resp.Warning = &msg
	}
	return resp, nil
}

// ── Validate ──────────────────────────────────────────────────────────────────
// Manager sign-off on the physical shift. VALIDATED is terminal: every
// mutating operation rejects the shift afterwards, regardless of actor role.
// Re-validating is reported distinctly as an idempotence guard against double
// manager action.

func (s *shiftService) Validate(ctx context.Context, managerID uuid.UUID, shiftID uuid.UUID) (*dto.ShiftResponse, error) {
	var shift *model.Shift
	now := time.Now()

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		shift, err = s.repo.FindByIDForUpdateTx(tx, shiftID)
		if err != nil {
			return apierror.NotFound("shift %s not found", shiftID)
		}

		switch shift.Status {
		case model.ShiftClosed:
			// proceed
		case model.ShiftValidated:
			return apierror.Conflict("shift %s is already validated", shiftID)
		default:
			return apierror.Invalid("shift %s is still open and cannot be validated", shiftID)
		}

		shift.Status = model.ShiftValidated
		shift.ValidatedBy = &managerID
		shift.ValidatedAt = &now
		return s.repo.UpdateTx(tx, shift)
	})
	if txErr != nil {
		return nil, txErr
	}
	return shiftToResponse(shift), nil
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *shiftService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ShiftResponse, error) {
	shift, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("shift %s not found", id)
	}
	return shiftToResponse(shift), nil
}

func (s *shiftService) List(ctx context.Context, filter dto.ShiftFilter) (*dto.ShiftListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 50
	}
	shifts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		items = append(items, *shiftToResponse(&shifts[i]))
	}
	return &dto.ShiftListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *shiftService) enqueueAnomaly(ctx context.Context, shiftID uuid.UUID, kind, message, observed, expected string) {
	if s.dispatcher == nil {
		return
	}
	payload := worker.AnomalyJobPayload{
		ShiftID: shiftID.String(),
		Kind:    kind,
		Message: message,
	}
	if observed != "" {
		payload.Observed = &observed
	}
	if expected != "" {
		payload.Expected = &expected
	}
	if err := s.dispatcher.EnqueueAnomaly(ctx, payload); err != nil {
		log.Error().Err(err).Str("shift_id", shiftID.String()).Msg("failed to enqueue anomaly")
	}
}

func shiftToResponse(sh *model.Shift) *dto.ShiftResponse {
	resp := &dto.ShiftResponse{
		ID:           sh.ID.String(),
		NozzleID:     sh.NozzleID.String(),
		PompisteID:   sh.PompisteID.String(),
		IndexStart:   sh.IndexStart,
		IndexEnd:     sh.IndexEnd,
		Status:       sh.Status,
		IncidentNote: sh.IncidentNote,
		StartedAt:    sh.StartedAt.Format(time.RFC3339),
	}
	if sh.Nozzle != nil {
		resp.NozzleLabel = sh.Nozzle.Label
	}
	if sh.Pompiste != nil {
		resp.PompisteName = sh.Pompiste.Name
	}
	if sh.EndedAt != nil {
		t := sh.EndedAt.Format(time.RFC3339)
		resp.EndedAt = &t
	}
	if sh.ValidatedBy != nil {
		v := sh.ValidatedBy.String()
		resp.ValidatedBy = &v
	}
	if sh.ValidatedAt != nil {
		t := sh.ValidatedAt.Format(time.RFC3339)
		resp.ValidatedAt = &t
	}
	return resp
}
