package service

import (
	"context"
	"fmt"
	"time"

	"github.com/anass1h/Station-sub000/internal/apierror"
	"github.com/anass1h/Station-sub000/internal/dto"
	"github.com/anass1h/Station-sub000/internal/model"
	"github.com/anass1h/Station-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type DebtService interface {
	Create(ctx context.Context, actor Actor, req dto.CreateDebtRequest) (*dto.DebtResponse, error)
	AddPayment(ctx context.Context, actor Actor, debtID uuid.UUID, req dto.AddDebtPaymentRequest) (*dto.DebtResponse, error)
	Cancel(ctx context.Context, actor Actor, debtID uuid.UUID, req dto.CancelDebtRequest) (*dto.CancelDebtResponse, error)
	GetByID(ctx context.Context, debtID uuid.UUID) (*dto.DebtResponse, error)
	List(ctx context.Context, pompisteID, status string, page, limit int) (*dto.DebtListResponse, error)
}

type debtService struct {
	repo     repository.DebtRepository
	userRepo repository.UserRepository
}

func NewDebtService(repo repository.DebtRepository, userRepo repository.UserRepository) DebtService {
	return &debtService{repo: repo, userRepo: userRepo}
}

// Create registers a manual debt (salary advance, damage, fuel loss…).
// Shortfall debts from reconciliation go through CashRegisterService.Close
// instead, so they stay in the same transaction as the register.
func (s *debtService) Create(ctx context.Context, actor Actor, req dto.CreateDebtRequest) (*dto.DebtResponse, error) {
	pompisteID, err := uuid.Parse(req.PompisteID)
	if err != nil {
		return nil, apierror.Invalid("invalid pompiste_id: %s", req.PompisteID)
	}
	stationID, err := uuid.Parse(req.StationID)
	if err != nil {
		return nil, apierror.Invalid("invalid station_id: %s", req.StationID)
	}
	pompiste, err := s.userRepo.FindByID(ctx, pompisteID)
	if err != nil {
		return nil, apierror.NotFound("pompiste %s not found", pompisteID)
	}
	if pompiste.Role != model.RolePompiste {
		return nil, apierror.Invalid("user %s is not a pompiste", pompisteID)
	}

	debt := model.PompisteDebt{
		PompisteID:      pompisteID,
		StationID:       stationID,
		Reason:          req.Reason,
		Description:     req.Description,
		OriginalAmount:  req.Amount,
		RemainingAmount: req.Amount,
		Status:          model.DebtPending,
		CreatedBy:       actor.ID,
	}
	if err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.CreateTx(tx, &debt)
	}); err != nil {
		return nil, err
	}

	log.Info().
		Str("debtId", debt.ID.String()).
		Str("pompisteId", pompisteID.String()).
		Str("reason", req.Reason).
		Str("amount", req.Amount.StringFixed(2)).
		Msg("debt created")

	return debtToResponse(&debt), nil
}

// AddPayment records a repayment and rolls the debt's status forward.
// The debt row is locked so concurrent repayments serialize; overpayment is
// rejected rather than clamped.
func (s *debtService) AddPayment(ctx context.Context, actor Actor, debtID uuid.UUID, req dto.AddDebtPaymentRequest) (*dto.DebtResponse, error) {
	var debt *model.PompisteDebt

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		d, err := s.repo.FindByIDForUpdateTx(tx, debtID)
		if err != nil {
			return apierror.NotFound("debt %s not found", debtID)
		}
		switch d.Status {
		case model.DebtPaid:
			return apierror.Conflict("debt %s is already fully paid", debtID)
		case model.DebtCancelled:
			return apierror.Conflict("debt %s is cancelled", debtID)
		}
		if !req.Amount.IsPositive() {
			return apierror.Invalid("payment amount %s must be positive", req.Amount.StringFixed(2))
		}
		if req.Amount.GreaterThan(d.RemainingAmount) {
			return apierror.Invalid("payment %s exceeds remaining amount %s",
				req.Amount.StringFixed(2), d.RemainingAmount.StringFixed(2))
		}

		payment := model.DebtPayment{
			DebtID:     debtID,
			Amount:     req.Amount,
			Method:     req.Method,
			Note:       req.Note,
			ReceivedBy: actor.ID,
		}
		if err := s.repo.CreatePaymentTx(tx, &payment); err != nil {
			return err
		}

		d.RemainingAmount = d.RemainingAmount.Sub(req.Amount)
		if d.RemainingAmount.IsZero() {
			d.Status = model.DebtPaid
		} else {
			d.Status = model.DebtPartiallyPaid
		}
		if err := s.repo.UpdateTx(tx, d); err != nil {
			return err
		}
		debt = d
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("debtId", debtID.String()).
		Str("amount", req.Amount.StringFixed(2)).
		Str("status", debt.Status).
		Msg("debt payment recorded")

	return debtToResponse(debt), nil
}

// Cancel voids a debt. Settled debts cannot be cancelled (the money already
// moved); amounts are preserved and the cancellation reason is appended to the
// description so the history stays readable.
func (s *debtService) Cancel(ctx context.Context, actor Actor, debtID uuid.UUID, req dto.CancelDebtRequest) (*dto.CancelDebtResponse, error) {
	var debt *model.PompisteDebt
	var previous string

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		d, err := s.repo.FindByIDForUpdateTx(tx, debtID)
		if err != nil {
			return apierror.NotFound("debt %s not found", debtID)
		}
		switch d.Status {
		case model.DebtPaid:
			return apierror.Invalid("debt %s is settled and cannot be cancelled", debtID)
		case model.DebtCancelled:
			return apierror.Conflict("debt %s is already cancelled", debtID)
		}

		previous = d.Status
		note := fmt.Sprintf("cancelled by %s: %s", actor.ID, req.Reason)
		if d.Description != nil && *d.Description != "" {
			note = *d.Description + " | " + note
		}
		d.Description = &note
		d.Status = model.DebtCancelled
		if err := s.repo.UpdateTx(tx, d); err != nil {
			return err
		}
		debt = d
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("debtId", debtID.String()).
		Str("previousStatus", previous).
		Msg("debt cancelled")

	return &dto.CancelDebtResponse{
		Debt:           *debtToResponse(debt),
		PreviousStatus: previous,
		NewStatus:      model.DebtCancelled,
	}, nil
}

func (s *debtService) GetByID(ctx context.Context, debtID uuid.UUID) (*dto.DebtResponse, error) {
	debt, err := s.repo.FindByID(ctx, debtID)
	if err != nil {
		return nil, apierror.NotFound("debt %s not found", debtID)
	}
	return debtToResponse(debt), nil
}

func (s *debtService) List(ctx context.Context, pompisteID, status string, page, limit int) (*dto.DebtListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	var pid *uuid.UUID
	if pompisteID != "" {
		id, err := uuid.Parse(pompisteID)
		if err != nil {
			return nil, apierror.Invalid("invalid pompiste_id: %s", pompisteID)
		}
		pid = &id
	}
	debts, total, err := s.repo.List(ctx, pid, status, page, limit)
	if err != nil {
		return nil, err
	}
	resp := &dto.DebtListResponse{
		Data:  make([]dto.DebtResponse, 0, len(debts)),
		Total: total,
		Page:  page,
		Limit: limit,
	}
	for i := range debts {
		resp.Data = append(resp.Data, *debtToResponse(&debts[i]))
	}
	return resp, nil
}

func debtToResponse(d *model.PompisteDebt) *dto.DebtResponse {
	resp := &dto.DebtResponse{
		ID:              d.ID.String(),
		PompisteID:      d.PompisteID.String(),
		StationID:       d.StationID.String(),
		Reason:          d.Reason,
		Description:     d.Description,
		OriginalAmount:  d.OriginalAmount,
		RemainingAmount: d.RemainingAmount,
		Status:          d.Status,
		CreatedAt:       d.CreatedAt.Format(time.RFC3339),
	}
	if d.Pompiste != nil {
		resp.PompisteName = d.Pompiste.Name
	}
	if d.CashRegisterID != nil {
		id := d.CashRegisterID.String()
		resp.CashRegisterID = &id
	}
	for _, p := range d.Payments {
		resp.Payments = append(resp.Payments, dto.DebtPaymentResponse{
			ID:         p.ID.String(),
			Amount:     p.Amount,
			Method:     p.Method,
			Note:       p.Note,
			ReceivedBy: p.ReceivedBy.String(),
			CreatedAt:  p.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp
}
