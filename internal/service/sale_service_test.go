package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/anass1h/Station-sub000/internal/apierror"
	"github.com/anass1h/Station-sub000/internal/dto"
	"github.com/anass1h/Station-sub000/internal/model"
	"github.com/anass1h/Station-sub000/internal/repository"
	"github.com/anass1h/Station-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Full in-memory SaleRepository ────────────────────────────────────────────

type memSaleRepo struct {
	sales []model.Sale
}

func (r *memSaleRepo) DB() *gorm.DB { return nil }

func (r *memSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Now()
	for i := range s.Payments {
		if s.Payments[i].ID == uuid.Nil {
			s.Payments[i].ID = uuid.New()
		}
		s.Payments[i].SaleID = s.ID
	}
	r.sales = append(r.sales, *s)
	return nil
}

func (r *memSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	for i := range r.sales {
		if r.sales[i].ID == id {
			return &r.sales[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memSaleRepo) ListByShift(_ context.Context, shiftID uuid.UUID) ([]model.Sale, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if s.ShiftID == shiftID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memSaleRepo) TotalsByShift(_ context.Context, shiftID uuid.UUID) (*repository.ShiftTotals, error) {
	totals := &repository.ShiftTotals{
		TotalQuantity: decimal.Zero,
		TotalAmount:   decimal.Zero,
	}
	for _, s := range r.sales {
		if s.ShiftID != shiftID {
			continue
		}
		totals.SaleCount++
		totals.TotalQuantity = totals.TotalQuantity.Add(s.Quantity)
		totals.TotalAmount = totals.TotalAmount.Add(s.TotalAmount)
	}
	return totals, nil
}

func (r *memSaleRepo) SumByFuelType(_ context.Context, shiftID uuid.UUID) ([]repository.FuelTypeSum, error) {
	byID := make(map[uuid.UUID]*repository.FuelTypeSum)
	var order []uuid.UUID
	for _, s := range r.sales {
		if s.ShiftID != shiftID {
			continue
		}
		sum, ok := byID[s.FuelTypeID]
		if !ok {
			sum = &repository.FuelTypeSum{FuelTypeID: s.FuelTypeID, Quantity: decimal.Zero, Amount: decimal.Zero}
			byID[s.FuelTypeID] = sum
			order = append(order, s.FuelTypeID)
		}
		sum.Quantity = sum.Quantity.Add(s.Quantity)
		sum.Amount = sum.Amount.Add(s.TotalAmount)
	}
	out := make([]repository.FuelTypeSum, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, nil
}

func (r *memSaleRepo) SumPaymentsByMethod(_ context.Context, shiftID uuid.UUID) ([]repository.MethodSum, error) {
	byID := make(map[uuid.UUID]*repository.MethodSum)
	var order []uuid.UUID
	for _, s := range r.sales {
		if s.ShiftID != shiftID {
			continue
		}
		for _, p := range s.Payments {
			sum, ok := byID[p.PaymentMethodID]
			if !ok {
				sum = &repository.MethodSum{PaymentMethodID: p.PaymentMethodID, Amount: decimal.Zero}
				byID[p.PaymentMethodID] = sum
				order = append(order, p.PaymentMethodID)
			}
			sum.Amount = sum.Amount.Add(p.Amount)
			sum.Count++
		}
	}
	out := make([]repository.MethodSum, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, nil
}

var _ repository.SaleRepository = (*memSaleRepo)(nil)

// ── In-memory reference data ─────────────────────────────────────────────────

type memCatalogRepo struct {
	fuelTypes map[uuid.UUID]*model.FuelType
	clients   map[uuid.UUID]*model.Client
	stations  map[uuid.UUID]*model.Station
}

func newMemCatalogRepo() *memCatalogRepo {
	return &memCatalogRepo{
		fuelTypes: make(map[uuid.UUID]*model.FuelType),
		clients:   make(map[uuid.UUID]*model.Client),
		stations:  make(map[uuid.UUID]*model.Station),
	}
}

func (r *memCatalogRepo) FindFuelType(_ context.Context, id uuid.UUID) (*model.FuelType, error) {
	ft, ok := r.fuelTypes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return ft, nil
}

func (r *memCatalogRepo) ListFuelTypes(_ context.Context) ([]model.FuelType, error) {
	out := make([]model.FuelType, 0, len(r.fuelTypes))
	for _, ft := range r.fuelTypes {
		out = append(out, *ft)
	}
	return out, nil
}

func (r *memCatalogRepo) FindClient(_ context.Context, id uuid.UUID) (*model.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *memCatalogRepo) FindStation(_ context.Context, id uuid.UUID) (*model.Station, error) {
	s, ok := r.stations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

var _ repository.CatalogRepository = (*memCatalogRepo)(nil)

type memMethodRepo struct {
	methods map[uuid.UUID]*model.PaymentMethod
}

func newMemMethodRepo() *memMethodRepo {
	return &memMethodRepo{methods: make(map[uuid.UUID]*model.PaymentMethod)}
}

func (r *memMethodRepo) Create(_ context.Context, m *model.PaymentMethod) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.methods[m.ID] = m
	return nil
}

func (r *memMethodRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PaymentMethod, error) {
	m, ok := r.methods[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (r *memMethodRepo) List(_ context.Context, activeOnly bool) ([]model.PaymentMethod, error) {
	var out []model.PaymentMethod
	for _, m := range r.methods {
		if activeOnly && !m.Active {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

func (r *memMethodRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	m, ok := r.methods[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.Active = active
	return nil
}

var _ repository.PaymentMethodRepository = (*memMethodRepo)(nil)

// stubPriceService returns a fixed unit price for every lookup.
type stubPriceService struct {
	price decimal.Decimal
	err   error
}

func (s *stubPriceService) ActivePrice(_ context.Context, _, _ uuid.UUID, _ time.Time) (decimal.Decimal, error) {
	if s.err != nil {
		return decimal.Zero, s.err
	}
	return s.price, nil
}

func (s *stubPriceService) SetPrice(_ context.Context, _ uuid.UUID, _ dto.SetPriceRequest) (*dto.PriceResponse, error) {
	return nil, nil
}

func (s *stubPriceService) History(_ context.Context, _, _ uuid.UUID) ([]dto.PriceResponse, error) {
	return nil, nil
}

var _ service.PriceService = (*stubPriceService)(nil)

// ── Fixture ──────────────────────────────────────────────────────────────────

type saleFixture struct {
	shiftFix *shiftFixture
	sales    *memSaleRepo
	methods  *memMethodRepo
	catalog  *memCatalogRepo
	svc      service.SaleService

	shiftID    uuid.UUID
	fuelTypeID uuid.UUID
	cashID     uuid.UUID
	cardID     uuid.UUID
}

func newSaleFixture(t *testing.T) *saleFixture {
	t.Helper()
	shiftFix := newShiftFixture(t)
	shiftID := shiftFix.openShift(t)

	sales := &memSaleRepo{}
	catalog := newMemCatalogRepo()
	methods := newMemMethodRepo()

	fuelTypeID := shiftFix.nozzle.FuelTypeID
	catalog.fuelTypes[fuelTypeID] = &model.FuelType{ID: fuelTypeID, Code: "DIESEL", Name: "Diesel"}

	cash := &model.PaymentMethod{Code: "CASH", Label: "Cash", Active: true}
	card := &model.PaymentMethod{Code: "CARD", Label: "Card", RequiresReference: true, Active: true}
	require.NoError(t, methods.Create(context.Background(), cash))
	require.NoError(t, methods.Create(context.Background(), card))

	prices := &stubPriceService{price: dec(11.50)}

	return &saleFixture{
		shiftFix:   shiftFix,
		sales:      sales,
		methods:    methods,
		catalog:    catalog,
		svc:        service.NewSaleService(sales, shiftFix.shifts, catalog, methods, prices),
		shiftID:    shiftID,
		fuelTypeID: fuelTypeID,
		cashID:     cash.ID,
		cardID:     card.ID,
	}
}

func (f *saleFixture) actor() service.Actor {
	return service.Actor{ID: f.shiftFix.pompisteID, Role: model.RolePompiste}
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestRecordSale(t *testing.T) {
	f := newSaleFixture(t)

	// 10 L × 11.50 = 115.00
	resp, err := f.svc.Record(context.Background(), f.actor(), dto.RecordSaleRequest{
		ShiftID:    f.shiftID.String(),
		FuelTypeID: f.fuelTypeID.String(),
		Quantity:   dec(10),
		Payments: []dto.SalePaymentRequest{
			{PaymentMethodID: f.cashID.String(), Amount: dec(115.00)},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, dec(11.50).String(), resp.UnitPrice.String())
	assert.Equal(t, dec(115.00).String(), resp.TotalAmount.String())
	assert.Equal(t, "Diesel", resp.FuelType)
	require.Len(t, resp.Payments, 1)
	assert.Equal(t, "Cash", resp.Payments[0].Method)
	assert.Len(t, f.sales.sales, 1)
}

func TestRecordSaleSplitPayment(t *testing.T) {
	f := newSaleFixture(t)

	ref := "TXN-4412"
	resp, err := f.svc.Record(context.Background(), f.actor(), dto.RecordSaleRequest{
		ShiftID:    f.shiftID.String(),
		FuelTypeID: f.fuelTypeID.String(),
		Quantity:   dec(20),
		Payments: []dto.SalePaymentRequest{
			{PaymentMethodID: f.cashID.String(), Amount: dec(100.00)},
			{PaymentMethodID: f.cardID.String(), Amount: dec(130.00), Reference: &ref},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, dec(230.00).String(), resp.TotalAmount.String())
	require.Len(t, resp.Payments, 2)
}

func TestRecordSalePaymentMismatch(t *testing.T) {
	f := newSaleFixture(t)

	_, err := f.svc.Record(context.Background(), f.actor(), dto.RecordSaleRequest{
		ShiftID:    f.shiftID.String(),
		FuelTypeID: f.fuelTypeID.String(),
		Quantity:   dec(10),
		Payments: []dto.SalePaymentRequest{
			{PaymentMethodID: f.cashID.String(), Amount: dec(100.00)},
		},
	})

	assert.True(t, apierror.IsKind(err, apierror.KindInvalid))
	assert.ErrorContains(t, err, "payment sum 100.00 does not match sale total 115.00")
	assert.Empty(t, f.sales.sales)
}

func TestRecordSaleOneCentToleranceAccepted(t *testing.T) {
	f := newSaleFixture(t)

	_, err := f.svc.Record(context.Background(), f.actor(), dto.RecordSaleRequest{
		ShiftID:    f.shiftID.String(),
		FuelTypeID: f.fuelTypeID.String(),
		Quantity:   dec(10),
		Payments: []dto.SalePaymentRequest{
			{PaymentMethodID: f.cashID.String(), Amount: dec(115.01)},
		},
	})

	require.NoError(t, err)
}

func TestRecordSaleOnClosedShift(t *testing.T) {
	f := newSaleFixture(t)
	_, err := f.shiftFix.svc.End(context.Background(), f.actor(), f.shiftID, dto.EndShiftRequest{IndexEnd: dec(1100)})
	require.NoError(t, err)

	_, err = f.svc.Record(context.Background(), f.actor(), dto.RecordSaleRequest{
		ShiftID:    f.shiftID.String(),
		FuelTypeID: f.fuelTypeID.String(),
		Quantity:   dec(10),
		Payments: []dto.SalePaymentRequest{
			{PaymentMethodID: f.cashID.String(), Amount: dec(115.00)},
		},
	})

	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	assert.ErrorContains(t, err, "sales can only be recorded on an open shift")
}

func TestRecordSaleMissingReference(t *testing.T) {
	f := newSaleFixture(t)

	_, err := f.svc.Record(context.Background(), f.actor(), dto.RecordSaleRequest{
		ShiftID:    f.shiftID.String(),
		FuelTypeID: f.fuelTypeID.String(),
		Quantity:   dec(10),
		Payments: []dto.SalePaymentRequest{
			{PaymentMethodID: f.cardID.String(), Amount: dec(115.00)},
		},
	})

	assert.True(t, apierror.IsKind(err, apierror.KindInvalid))
	assert.ErrorContains(t, err, "requires a reference")
}

func TestRecordSaleInactiveMethod(t *testing.T) {
	f := newSaleFixture(t)
	require.NoError(t, f.methods.SetActive(context.Background(), f.cashID, false))

	_, err := f.svc.Record(context.Background(), f.actor(), dto.RecordSaleRequest{
		ShiftID:    f.shiftID.String(),
		FuelTypeID: f.fuelTypeID.String(),
		Quantity:   dec(10),
		Payments: []dto.SalePaymentRequest{
			{PaymentMethodID: f.cashID.String(), Amount: dec(115.00)},
		},
	})

	assert.True(t, apierror.IsKind(err, apierror.KindInvalid))
	assert.ErrorContains(t, err, "is inactive")
}

func TestRecordSaleOwnershipEnforced(t *testing.T) {
	f := newSaleFixture(t)
	intruder := service.Actor{ID: uuid.New(), Role: model.RolePompiste}

	_, err := f.svc.Record(context.Background(), intruder, dto.RecordSaleRequest{
		ShiftID:    f.shiftID.String(),
		FuelTypeID: f.fuelTypeID.String(),
		Quantity:   dec(10),
		Payments: []dto.SalePaymentRequest{
			{PaymentMethodID: f.cashID.String(), Amount: dec(115.00)},
		},
	})

	assert.True(t, apierror.IsKind(err, apierror.KindForbidden))
}

func TestRecordSaleSnapshotsUnitPrice(t *testing.T) {
	f := newSaleFixture(t)
	prices := &stubPriceService{price: dec(11.50)}
	svc := service.NewSaleService(f.sales, f.shiftFix.shifts, f.catalog, f.methods, prices)

	resp, err := svc.Record(context.Background(), f.actor(), dto.RecordSaleRequest{
		ShiftID:    f.shiftID.String(),
		FuelTypeID: f.fuelTypeID.String(),
		Quantity:   dec(10),
		Payments: []dto.SalePaymentRequest{
			{PaymentMethodID: f.cashID.String(), Amount: dec(115.00)},
		},
	})
	require.NoError(t, err)

	// A later price change must not alter the recorded sale.
	prices.price = dec(13.20)
	saleID := uuid.MustParse(resp.ID)
	stored, err := f.sales.FindByID(context.Background(), saleID)
	require.NoError(t, err)
	assert.Equal(t, dec(11.50).String(), stored.UnitPrice.String())
	assert.Equal(t, dec(115.00).String(), stored.TotalAmount.String())
}

func TestListSalesByShift(t *testing.T) {
	f := newSaleFixture(t)
	for i := 0; i < 3; i++ {
		_, err := f.svc.Record(context.Background(), f.actor(), dto.RecordSaleRequest{
			ShiftID:    f.shiftID.String(),
			FuelTypeID: f.fuelTypeID.String(),
			Quantity:   dec(5),
			Payments: []dto.SalePaymentRequest{
				{PaymentMethodID: f.cashID.String(), Amount: dec(57.50)},
			},
		})
		require.NoError(t, err)
	}

	sales, err := f.svc.ListByShift(context.Background(), f.shiftID)
	require.NoError(t, err)
	assert.Len(t, sales, 3)
}
