package service

import (
	"context"
	"time"

	"github.com/anass1h/Station-sub000/internal/apierror"
	"github.com/anass1h/Station-sub000/internal/dto"
	"github.com/anass1h/Station-sub000/internal/model"
	"github.com/anass1h/Station-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// paymentTolerance is the cumulative rounding error allowed between the sum
// of a sale's payment split and quantity × unit price: one cent per sale.
var paymentTolerance = decimal.NewFromFloat(0.01)

type SaleService interface {
	Record(ctx context.Context, actor Actor, req dto.RecordSaleRequest) (*dto.SaleResponse, error)
	ListByShift(ctx context.Context, shiftID uuid.UUID) ([]dto.SaleResponse, error)
}

type saleService struct {
	repo        repository.SaleRepository
	shiftRepo   repository.ShiftRepository
	catalogRepo repository.CatalogRepository
	methodRepo  repository.PaymentMethodRepository
	prices      PriceService
}

func NewSaleService(
	repo repository.SaleRepository,
	shiftRepo repository.ShiftRepository,
	catalogRepo repository.CatalogRepository,
	methodRepo repository.PaymentMethodRepository,
	prices PriceService,
) SaleService {
	return &saleService{
		repo:        repo,
		shiftRepo:   shiftRepo,
		catalogRepo: catalogRepo,
		methodRepo:  methodRepo,
		prices:      prices,
	}
}

// ── Record ────────────────────────────────────────────────────────────────────
// Creates one Sale plus its SalePayments atomically. Reference lookups (fuel
// type, client, methods, active price) are pre-flight read-only queries; the
// shift's OPEN status is re-checked under lock inside the insert transaction
// since it could have been closed concurrently. A shift that is CLOSED or
// VALIDATED rejects new sales — this is the enforcement point preventing
// post-hoc revenue tampering.

func (s *saleService) Record(ctx context.Context, actor Actor, req dto.RecordSaleRequest) (*dto.SaleResponse, error) {
	shiftID, err := uuid.Parse(req.ShiftID)
	if err != nil {
		return nil, apierror.Invalid("invalid shift_id: %s", req.ShiftID)
	}
	fuelTypeID, err := uuid.Parse(req.FuelTypeID)
	if err != nil {
		return nil, apierror.Invalid("invalid fuel_type_id: %s", req.FuelTypeID)
	}

	// 1. Pre-flight: shift exists and is open (re-checked in the tx below).
	shift, err := s.shiftRepo.FindByID(ctx, shiftID)
	if err != nil {
		return nil, apierror.NotFound("shift %s not found", shiftID)
	}
	if shift.Status != model.ShiftOpen {
		return nil, apierror.Conflict("shift %s is not open (status %s): sales can only be recorded on an open shift", shiftID, shift.Status)
	}
	if !model.IsManager(actor.Role) && actor.ID != shift.PompisteID {
		return nil, apierror.Forbidden("only the shift's pompiste or a manager may record sales on it")
	}
	if shift.Nozzle == nil {
		// Preload failed to attach the nozzle; without it we cannot resolve
		// the station for the price lookup.
		return nil, apierror.NotFound("nozzle for shift %s not found", shiftID)
	}

	// 2. Reference data.
	fuelType, err := s.catalogRepo.FindFuelType(ctx, fuelTypeID)
	if err != nil {
		return nil, apierror.NotFound("fuel type %s not found", fuelTypeID)
	}

	var clientID *uuid.UUID
	if req.ClientID != nil && *req.ClientID != "" {
		cid, err := uuid.Parse(*req.ClientID)
		if err != nil {
			return nil, apierror.Invalid("invalid client_id: %s", *req.ClientID)
		}
		if _, err := s.catalogRepo.FindClient(ctx, cid); err != nil {
			return nil, apierror.NotFound("client %s not found", cid)
		}
		clientID = &cid
	}

	// 3. Price snapshot at sale time.
	unitPrice, err := s.prices.ActivePrice(ctx, shift.Nozzle.StationID, fuelTypeID, time.Now())
	if err != nil {
		return nil, err
	}
	total := req.Quantity.Mul(unitPrice).Round(2)

	// 4. Payment split validation.
	type resolvedPayment struct {
		methodID  uuid.UUID
		method    string
		amount    decimal.Decimal
		reference *string
	}
	resolved := make([]resolvedPayment, 0, len(req.Payments))
	paid := decimal.Zero
	for _, p := range req.Payments {
		methodID, err := uuid.Parse(p.PaymentMethodID)
		if err != nil {
			return nil, apierror.Invalid("invalid payment_method_id: %s", p.PaymentMethodID)
		}
		method, err := s.methodRepo.FindByID(ctx, methodID)
		if err != nil {
			return nil, apierror.NotFound("payment method %s not found", methodID)
		}
		if !method.Active {
			return nil, apierror.Invalid("payment method %s is inactive", method.Label)
		}
		if method.RequiresReference && (p.Reference == nil || *p.Reference == "") {
			return nil, apierror.Invalid("payment method %s requires a reference", method.Label)
		}
		paid = paid.Add(p.Amount)
		resolved = append(resolved, resolvedPayment{
			methodID:  methodID,
			method:    method.Label,
			amount:    p.Amount,
			reference: p.Reference,
		})
	}
	if diff := paid.Sub(total); diff.Abs().GreaterThan(paymentTolerance) {
		return nil, apierror.Invalid("payment sum %s does not match sale total %s (difference %s)",
			paid.StringFixed(2), total.StringFixed(2), diff.StringFixed(2))
	}

	// 5. ACID transaction: re-validate the shift under lock, then insert.
	sale := model.Sale{
		ShiftID:     shiftID,
		FuelTypeID:  fuelTypeID,
		ClientID:    clientID,
		Quantity:    req.Quantity,
		UnitPrice:   unitPrice,
		TotalAmount: total,
	}
	for _, r := range resolved {
		sale.Payments = append(sale.Payments, model.SalePayment{
			PaymentMethodID: r.methodID,
			Amount:          r.amount,
			Reference:       r.reference,
		})
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		locked, err := s.shiftRepo.FindByIDForUpdateTx(tx, shiftID)
		if err != nil {
			return apierror.NotFound("shift %s not found", shiftID)
		}
		if locked.Status != model.ShiftOpen {
			return apierror.Conflict("shift %s is not open (status %s): sales can only be recorded on an open shift", shiftID, locked.Status)
		}
		return s.repo.CreateTx(tx, &sale)
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := saleToResponse(&sale)
	resp.FuelType = fuelType.Name
	for i, r := range resolved {
		resp.Payments[i].Method = r.method
	}
	return resp, nil
}

func (s *saleService) ListByShift(ctx context.Context, shiftID uuid.UUID) ([]dto.SaleResponse, error) {
	if _, err := s.shiftRepo.FindByID(ctx, shiftID); err != nil {
		return nil, apierror.NotFound("shift %s not found", shiftID)
	}
	sales, err := s.repo.ListByShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		out = append(out, *saleToResponse(&sales[i]))
	}
	return out, nil
}

func saleToResponse(sale *model.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:          sale.ID.String(),
		ShiftID:     sale.ShiftID.String(),
		FuelTypeID:  sale.FuelTypeID.String(),
		Quantity:    sale.Quantity,
		UnitPrice:   sale.UnitPrice,
		TotalAmount: sale.TotalAmount,
		CreatedAt:   sale.CreatedAt.Format(time.RFC3339),
	}
	if sale.FuelType != nil {
		resp.FuelType = sale.FuelType.Name
	}
	if sale.ClientID != nil {
		c := sale.ClientID.String()
		resp.ClientID = &c
	}
	for _, p := range sale.Payments {
		pr := dto.SalePaymentResponse{
			PaymentMethodID: p.PaymentMethodID.String(),
			Amount:          p.Amount,
			Reference:       p.Reference,
		}
		if p.PaymentMethod != nil {
			pr.Method = p.PaymentMethod.Label
		}
		resp.Payments = append(resp.Payments, pr)
	}
	return resp
}
