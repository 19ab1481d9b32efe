package service

import (
	"context"

	"github.com/anass1h/Station-sub000/internal/apierror"
	"github.com/anass1h/Station-sub000/internal/dto"
	"github.com/anass1h/Station-sub000/internal/repository"

	"github.com/google/uuid"
)

// ShiftReportService is the read-side aggregator over a shift's sales:
// total volume, revenue, and the per-fuel-type / per-payment-method
// groupings. It never mutates anything. The per-method amounts are the
// "expected" side consumed by cash reconciliation; they are recomputed on
// demand because sales are immutable and append-only for an OPEN shift, so
// there is no staleness risk once the shift is closed.
type ShiftReportService interface {
	Summary(ctx context.Context, shiftID uuid.UUID) (*dto.ShiftSummary, error)
}

type shiftReportService struct {
	shiftRepo repository.ShiftRepository
	saleRepo  repository.SaleRepository
}

func NewShiftReportService(shiftRepo repository.ShiftRepository, saleRepo repository.SaleRepository) ShiftReportService {
	return &shiftReportService{shiftRepo: shiftRepo, saleRepo: saleRepo}
}

func (s *shiftReportService) Summary(ctx context.Context, shiftID uuid.UUID) (*dto.ShiftSummary, error) {
	if _, err := s.shiftRepo.FindByID(ctx, shiftID); err != nil {
		return nil, apierror.NotFound("shift %s not found", shiftID)
	}

	totals, err := s.saleRepo.TotalsByShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	byFuel, err := s.saleRepo.SumByFuelType(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	byMethod, err := s.saleRepo.SumPaymentsByMethod(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	summary := &dto.ShiftSummary{
		ShiftID:       shiftID.String(),
		SaleCount:     totals.SaleCount,
		TotalQuantity: totals.TotalQuantity,
		TotalRevenue:  totals.TotalAmount,
		ByFuelType:    make([]dto.FuelTypeTotal, 0, len(byFuel)),
		ByMethod:      make([]dto.MethodTotal, 0, len(byMethod)),
	}
	for _, row := range byFuel {
		summary.ByFuelType = append(summary.ByFuelType, dto.FuelTypeTotal{
			FuelTypeID: row.FuelTypeID.String(),
			FuelType:   row.FuelType,
			Quantity:   row.Quantity,
			Amount:     row.Amount,
		})
	}
	for _, row := range byMethod {
		summary.ByMethod = append(summary.ByMethod, dto.MethodTotal{
			PaymentMethodID: row.PaymentMethodID.String(),
			Method:          row.Method,
			Amount:          row.Amount,
			Count:           row.Count,
		})
	}
	return summary, nil
}
