package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anass1h/Station-sub000/internal/apierror"
	"github.com/anass1h/Station-sub000/internal/config"
	"github.com/anass1h/Station-sub000/internal/dto"
	"github.com/anass1h/Station-sub000/internal/model"
	"github.com/anass1h/Station-sub000/internal/repository"
	"github.com/anass1h/Station-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CashRegisterService interface {
	Close(ctx context.Context, actor Actor, shiftID uuid.UUID, req dto.CloseCashRegisterRequest) (*dto.CashRegisterResponse, error)
	GetByShift(ctx context.Context, shiftID uuid.UUID) (*dto.CashRegisterResponse, error)
	List(ctx context.Context, page, limit int) (*dto.CashRegisterListResponse, error)
}

type cashRegisterService struct {
	repo       repository.CashRegisterRepository
	shiftRepo  repository.ShiftRepository
	debtRepo   repository.DebtRepository
	methodRepo repository.PaymentMethodRepository
	report     ShiftReportService
	cfg        *config.Config
	dispatcher AnomalyDispatcher
}

func NewCashRegisterService(
	repo repository.CashRegisterRepository,
	shiftRepo repository.ShiftRepository,
	debtRepo repository.DebtRepository,
	methodRepo repository.PaymentMethodRepository,
	report ShiftReportService,
	cfg *config.Config,
	dispatcher AnomalyDispatcher,
) CashRegisterService {
	return &cashRegisterService{
		repo:       repo,
		shiftRepo:  shiftRepo,
		debtRepo:   debtRepo,
		methodRepo: methodRepo,
		report:     report,
		cfg:        cfg,
		dispatcher: dispatcher,
	}
}

// ── Close ─────────────────────────────────────────────────────────────────────
// Reconciles a shift's till: expected per-method totals (recomputed from the
// sales) vs the amounts the pompiste declares. The reconciled method set is
// the UNION of both sides, so an undeclared method with sales shows up as a
// full shortfall and a declared method with no sales as a full surplus.
// Exactly one register per shift; a shortfall can create a PompisteDebt in
// the same transaction when the caller asks for it.

func (s *cashRegisterService) Close(ctx context.Context, actor Actor, shiftID uuid.UUID, req dto.CloseCashRegisterRequest) (*dto.CashRegisterResponse, error) {
	shift, err := s.shiftRepo.FindByID(ctx, shiftID)
	if err != nil {
		return nil, apierror.NotFound("shift %s not found", shiftID)
	}
	// The physical close (meter reading) must precede the financial close:
	// an OPEN shift's expected totals are still moving.
	if shift.Status == model.ShiftOpen {
		return nil, apierror.Invalid("shift %s is still open: close the shift before reconciling its cash register", shiftID)
	}
	if !model.IsManager(actor.Role) && actor.ID != shift.PompisteID {
		return nil, apierror.Forbidden("only the shift's pompiste or a manager may reconcile its cash register")
	}
	if shift.Nozzle == nil {
		return nil, apierror.NotFound("nozzle for shift %s not found", shiftID)
	}

	summary, err := s.report.Summary(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	// Expected side, keyed by payment method.
	expected := make(map[uuid.UUID]decimal.Decimal, len(summary.ByMethod))
	methodLabels := make(map[uuid.UUID]string, len(summary.ByMethod))
	order := make([]uuid.UUID, 0, len(summary.ByMethod)+len(req.Declared))
	for _, m := range summary.ByMethod {
		id, err := uuid.Parse(m.PaymentMethodID)
		if err != nil {
			return nil, fmt.Errorf("parse payment method id %q: %w", m.PaymentMethodID, err)
		}
		expected[id] = m.Amount
		methodLabels[id] = m.Method
		order = append(order, id)
	}

	// Declared side: validate methods, reject duplicates, extend the union.
	declared := make(map[uuid.UUID]decimal.Decimal, len(req.Declared))
	references := make(map[uuid.UUID]*string, len(req.Declared))
	for _, d := range req.Declared {
		id, err := uuid.Parse(d.PaymentMethodID)
		if err != nil {
			return nil, apierror.Invalid("invalid payment_method_id: %s", d.PaymentMethodID)
		}
		if _, dup := declared[id]; dup {
			return nil, apierror.Invalid("payment method %s declared more than once", id)
		}
		if _, known := expected[id]; !known {
			method, err := s.methodRepo.FindByID(ctx, id)
			if err != nil {
				return nil, apierror.NotFound("payment method %s not found", id)
			}
			methodLabels[id] = method.Label
			order = append(order, id)
		}
		if d.Amount.IsNegative() {
			return nil, apierror.Invalid("declared amount for %s must not be negative", methodLabels[id])
		}
		declared[id] = d.Amount
		references[id] = d.Reference
	}

	// Per-method and total variances over the union.
	details := make([]model.PaymentDetail, 0, len(order))
	expectedTotal := decimal.Zero
	declaredTotal := decimal.Zero
	for _, id := range order {
		exp := expected[id] // zero value for declared-only methods
		dec := declared[id] // zero value for undeclared methods
		expectedTotal = expectedTotal.Add(exp)
		declaredTotal = declaredTotal.Add(dec)
		details = append(details, model.PaymentDetail{
			PaymentMethodID: id,
			ExpectedAmount:  exp,
			DeclaredAmount:  dec,
			Variance:        dec.Sub(exp),
			Reference:       references[id],
		})
	}
	variance := declaredTotal.Sub(expectedTotal)

	threshold := decimal.NewFromFloat(s.cfg.VarianceNoteThreshold)
	if variance.Abs().GreaterThanOrEqual(threshold) && (req.VarianceNote == nil || *req.VarianceNote == "") {
		return nil, apierror.Invalid("variance %s meets the %s threshold: a variance_note is required",
			variance.StringFixed(2), threshold.StringFixed(2))
	}

	register := model.CashRegister{
		ShiftID:       shiftID,
		ExpectedTotal: expectedTotal,
		DeclaredTotal: declaredTotal,
		Variance:      variance,
		VarianceNote:  req.VarianceNote,
		ClosedBy:      actor.ID,
		Details:       details,
	}
	var debt *model.PompisteDebt

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		_, err := s.repo.FindByShiftTx(tx, shiftID)
		if err == nil {
			return apierror.Conflict("shift %s already has a cash register", shiftID)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := s.repo.CreateTx(tx, &register); err != nil {
			return err
		}
		if variance.IsNegative() && req.CreateDebtOnGap {
			shortfall := variance.Neg()
			desc := fmt.Sprintf("cash shortfall on shift %s", shiftID)
			debt = &model.PompisteDebt{
				PompisteID:      shift.PompisteID,
				StationID:       shift.Nozzle.StationID,
				Reason:          model.DebtReasonCashVariance,
				Description:     &desc,
				OriginalAmount:  shortfall,
				RemainingAmount: shortfall,
				Status:          model.DebtPending,
				CashRegisterID:  &register.ID,
				CreatedBy:       actor.ID,
			}
			return s.debtRepo.CreateTx(tx, debt)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if variance.Abs().GreaterThanOrEqual(threshold) {
		s.enqueueAnomaly(ctx, shiftID, model.AnomalyCashVariance,
			fmt.Sprintf("cash variance of %s at reconciliation", variance.StringFixed(2)),
			declaredTotal.StringFixed(2), expectedTotal.StringFixed(2))
	}

	log.Info().
		Str("shiftId", shiftID.String()).
		Str("variance", variance.StringFixed(2)).
		Bool("debtCreated", debt != nil).
		Msg("cash register closed")

	resp := s.registerToResponse(&register)
	for i := range resp.Details {
		resp.Details[i].Method = methodLabels[details[i].PaymentMethodID]
	}
	if debt != nil {
		id := debt.ID.String()
		resp.DebtID = &id
	}
	return resp, nil
}

func (s *cashRegisterService) GetByShift(ctx context.Context, shiftID uuid.UUID) (*dto.CashRegisterResponse, error) {
	register, err := s.repo.FindByShift(ctx, shiftID)
	if err != nil {
		return nil, apierror.NotFound("no cash register for shift %s", shiftID)
	}
	return s.registerToResponse(register), nil
}

func (s *cashRegisterService) List(ctx context.Context, page, limit int) (*dto.CashRegisterListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	registers, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	resp := &dto.CashRegisterListResponse{
		Data:  make([]dto.CashRegisterResponse, 0, len(registers)),
		Total: total,
		Page:  page,
		Limit: limit,
	}
	for i := range registers {
		resp.Data = append(resp.Data, *s.registerToResponse(&registers[i]))
	}
	return resp, nil
}

func (s *cashRegisterService) enqueueAnomaly(ctx context.Context, shiftID uuid.UUID, kind, message, observed, expected string) {
	if s.dispatcher == nil {
		return
	}
	payload := worker.AnomalyJobPayload{
		ShiftID:  shiftID.String(),
		Kind:     kind,
		Message:  message,
		Observed: &observed,
		Expected: &expected,
	}
	if err := s.dispatcher.EnqueueAnomaly(ctx, payload); err != nil {
		log.Error().Err(err).Str("shiftId", shiftID.String()).Msg("failed to enqueue anomaly job")
	}
}

func (s *cashRegisterService) registerToResponse(cr *model.CashRegister) *dto.CashRegisterResponse {
	resp := &dto.CashRegisterResponse{
		ID:            cr.ID.String(),
		ShiftID:       cr.ShiftID.String(),
		ExpectedTotal: cr.ExpectedTotal,
		DeclaredTotal: cr.DeclaredTotal,
		Variance:      cr.Variance,
		VarianceNote:  cr.VarianceNote,
		CreatedAt:     cr.CreatedAt.Format(time.RFC3339),
	}
	for _, d := range cr.Details {
		dr := dto.PaymentDetailResponse{
			PaymentMethodID: d.PaymentMethodID.String(),
			ExpectedAmount:  d.ExpectedAmount,
			DeclaredAmount:  d.DeclaredAmount,
			Variance:        d.Variance,
			Reference:       d.Reference,
		}
		if d.PaymentMethod != nil {
			dr.Method = d.PaymentMethod.Label
		}
		resp.Details = append(resp.Details, dr)
	}
	return resp
}
