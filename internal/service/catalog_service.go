package service

import (
	"context"
	"time"

	"github.com/anass1h/Station-sub000/internal/apierror"
	"github.com/anass1h/Station-sub000/internal/dto"
	"github.com/anass1h/Station-sub000/internal/model"
	"github.com/anass1h/Station-sub000/internal/repository"

	"github.com/google/uuid"
)

// CatalogService manages the operational reference data: nozzles, payment
// methods and the anomaly review list. All mutations are manager-level.
type CatalogService interface {
	CreateNozzle(ctx context.Context, req dto.CreateNozzleRequest) (*dto.NozzleResponse, error)
	GetNozzle(ctx context.Context, id uuid.UUID) (*dto.NozzleResponse, error)
	ListNozzles(ctx context.Context, stationID string) ([]dto.NozzleResponse, error)
	SetNozzleActive(ctx context.Context, id uuid.UUID, active bool) error

	CreatePaymentMethod(ctx context.Context, req dto.CreatePaymentMethodRequest) (*dto.PaymentMethodResponse, error)
	ListPaymentMethods(ctx context.Context, activeOnly bool) ([]dto.PaymentMethodResponse, error)
	SetPaymentMethodActive(ctx context.Context, id uuid.UUID, active bool) error

	ListAnomalies(ctx context.Context, kind string, page, limit int) ([]dto.AnomalyResponse, int64, error)
	ListAnomaliesByShift(ctx context.Context, shiftID uuid.UUID) ([]dto.AnomalyResponse, error)
}

type catalogService struct {
	nozzleRepo  repository.NozzleRepository
	methodRepo  repository.PaymentMethodRepository
	catalogRepo repository.CatalogRepository
	anomalyRepo repository.AnomalyRepository
}

func NewCatalogService(
	nozzleRepo repository.NozzleRepository,
	methodRepo repository.PaymentMethodRepository,
	catalogRepo repository.CatalogRepository,
	anomalyRepo repository.AnomalyRepository,
) CatalogService {
	return &catalogService{
		nozzleRepo:  nozzleRepo,
		methodRepo:  methodRepo,
		catalogRepo: catalogRepo,
		anomalyRepo: anomalyRepo,
	}
}

func (s *catalogService) CreateNozzle(ctx context.Context, req dto.CreateNozzleRequest) (*dto.NozzleResponse, error) {
	stationID, err := uuid.Parse(req.StationID)
	if err != nil {
		return nil, apierror.Invalid("invalid station_id: %s", req.StationID)
	}
	tankID, err := uuid.Parse(req.TankID)
	if err != nil {
		return nil, apierror.Invalid("invalid tank_id: %s", req.TankID)
	}
	fuelTypeID, err := uuid.Parse(req.FuelTypeID)
	if err != nil {
		return nil, apierror.Invalid("invalid fuel_type_id: %s", req.FuelTypeID)
	}
	if _, err := s.catalogRepo.FindStation(ctx, stationID); err != nil {
		return nil, apierror.NotFound("station %s not found", stationID)
	}
	if _, err := s.catalogRepo.FindFuelType(ctx, fuelTypeID); err != nil {
		return nil, apierror.NotFound("fuel type %s not found", fuelTypeID)
	}

	nozzle := model.Nozzle{
		StationID:    stationID,
		TankID:       tankID,
		FuelTypeID:   fuelTypeID,
		Label:        req.Label,
		CurrentIndex: req.CurrentIndex,
		Active:       true,
	}
	if err := s.nozzleRepo.Create(ctx, &nozzle); err != nil {
		return nil, err
	}
	return nozzleToResponse(&nozzle), nil
}

func (s *catalogService) GetNozzle(ctx context.Context, id uuid.UUID) (*dto.NozzleResponse, error) {
	nozzle, err := s.nozzleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("nozzle %s not found", id)
	}
	return nozzleToResponse(nozzle), nil
}

func (s *catalogService) ListNozzles(ctx context.Context, stationID string) ([]dto.NozzleResponse, error) {
	var nozzles []model.Nozzle
	var err error
	if stationID != "" {
		sid, perr := uuid.Parse(stationID)
		if perr != nil {
			return nil, apierror.Invalid("invalid station_id: %s", stationID)
		}
		nozzles, err = s.nozzleRepo.ListByStation(ctx, sid)
	} else {
		nozzles, err = s.nozzleRepo.List(ctx)
	}
	if err != nil {
		return nil, err
	}
	out := make([]dto.NozzleResponse, len(nozzles))
	for i := range nozzles {
		out[i] = *nozzleToResponse(&nozzles[i])
	}
	return out, nil
}

func (s *catalogService) SetNozzleActive(ctx context.Context, id uuid.UUID, active bool) error {
	if _, err := s.nozzleRepo.FindByID(ctx, id); err != nil {
		return apierror.NotFound("nozzle %s not found", id)
	}
	return s.nozzleRepo.SetActive(ctx, id, active)
}

func (s *catalogService) CreatePaymentMethod(ctx context.Context, req dto.CreatePaymentMethodRequest) (*dto.PaymentMethodResponse, error) {
	method := model.PaymentMethod{
		Code:              req.Code,
		Label:             req.Label,
		RequiresReference: req.RequiresReference,
		Active:            true,
	}
	if err := s.methodRepo.Create(ctx, &method); err != nil {
		return nil, err
	}
	return methodToResponse(&method), nil
}

func (s *catalogService) ListPaymentMethods(ctx context.Context, activeOnly bool) ([]dto.PaymentMethodResponse, error) {
	methods, err := s.methodRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PaymentMethodResponse, len(methods))
	for i := range methods {
		out[i] = *methodToResponse(&methods[i])
	}
	return out, nil
}

func (s *catalogService) SetPaymentMethodActive(ctx context.Context, id uuid.UUID, active bool) error {
	if _, err := s.methodRepo.FindByID(ctx, id); err != nil {
		return apierror.NotFound("payment method %s not found", id)
	}
	return s.methodRepo.SetActive(ctx, id, active)
}

func (s *catalogService) ListAnomalies(ctx context.Context, kind string, page, limit int) ([]dto.AnomalyResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	anomalies, total, err := s.anomalyRepo.List(ctx, kind, page, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.AnomalyResponse, len(anomalies))
	for i := range anomalies {
		out[i] = *anomalyToResponse(&anomalies[i])
	}
	return out, total, nil
}

func (s *catalogService) ListAnomaliesByShift(ctx context.Context, shiftID uuid.UUID) ([]dto.AnomalyResponse, error) {
	anomalies, err := s.anomalyRepo.ListByShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AnomalyResponse, len(anomalies))
	for i := range anomalies {
		out[i] = *anomalyToResponse(&anomalies[i])
	}
	return out, nil
}

func nozzleToResponse(n *model.Nozzle) *dto.NozzleResponse {
	resp := &dto.NozzleResponse{
		ID:           n.ID.String(),
		StationID:    n.StationID.String(),
		TankID:       n.TankID.String(),
		FuelTypeID:   n.FuelTypeID.String(),
		Label:        n.Label,
		CurrentIndex: n.CurrentIndex,
		Active:       n.Active,
	}
	if n.FuelType != nil {
		resp.FuelType = n.FuelType.Name
	}
	return resp
}

func methodToResponse(m *model.PaymentMethod) *dto.PaymentMethodResponse {
	return &dto.PaymentMethodResponse{
		ID:                m.ID.String(),
		Code:              m.Code,
		Label:             m.Label,
		RequiresReference: m.RequiresReference,
		Active:            m.Active,
	}
}

func anomalyToResponse(a *model.ShiftAnomaly) *dto.AnomalyResponse {
	return &dto.AnomalyResponse{
		ID:        a.ID.String(),
		ShiftID:   a.ShiftID.String(),
		Kind:      a.Kind,
		Message:   a.Message,
		Observed:  a.Observed,
		Expected:  a.Expected,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}
