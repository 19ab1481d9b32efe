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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Full in-memory CashRegisterRepository ────────────────────────────────────

type memCashRegisterRepo struct {
	registers map[uuid.UUID]*model.CashRegister // keyed by shift ID
}

func newMemCashRegisterRepo() *memCashRegisterRepo {
	return &memCashRegisterRepo{registers: make(map[uuid.UUID]*model.CashRegister)}
}

func (r *memCashRegisterRepo) DB() *gorm.DB { return nil }

func (r *memCashRegisterRepo) CreateTx(_ *gorm.DB, cr *model.CashRegister) error {
	if cr.ID == uuid.Nil {
		cr.ID = uuid.New()
	}
	cr.CreatedAt = time.Now()
	for i := range cr.Details {
		if cr.Details[i].ID == uuid.Nil {
			cr.Details[i].ID = uuid.New()
		}
		cr.Details[i].CashRegisterID = cr.ID
	}
	r.registers[cr.ShiftID] = cr
	return nil
}

func (r *memCashRegisterRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CashRegister, error) {
	for _, cr := range r.registers {
		if cr.ID == id {
			return cr, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memCashRegisterRepo) FindByShift(_ context.Context, shiftID uuid.UUID) (*model.CashRegister, error) {
	cr, ok := r.registers[shiftID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cr, nil
}

func (r *memCashRegisterRepo) FindByShiftTx(_ *gorm.DB, shiftID uuid.UUID) (*model.CashRegister, error) {
	cr, ok := r.registers[shiftID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cr, nil
}

func (r *memCashRegisterRepo) List(_ context.Context, page, limit int) ([]model.CashRegister, int64, error) {
	all := make([]model.CashRegister, 0, len(r.registers))
	for _, cr := range r.registers {
		all = append(all, *cr)
	}
	return all, int64(len(all)), nil
}

var _ repository.CashRegisterRepository = (*memCashRegisterRepo)(nil)

// ── Full in-memory DebtRepository ────────────────────────────────────────────

type memDebtRepo struct {
	debts    map[uuid.UUID]*model.PompisteDebt
	payments []model.DebtPayment
}

func newMemDebtRepo() *memDebtRepo {
	return &memDebtRepo{debts: make(map[uuid.UUID]*model.PompisteDebt)}
}

func (r *memDebtRepo) DB() *gorm.DB { return nil }

func (r *memDebtRepo) CreateTx(_ *gorm.DB, d *model.PompisteDebt) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.CreatedAt = time.Now()
	r.debts[d.ID] = d
	return nil
}

func (r *memDebtRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PompisteDebt, error) {
	d, ok := r.debts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	d.Payments = nil
	for _, p := range r.payments {
		if p.DebtID == id {
			d.Payments = append(d.Payments, p)
		}
	}
	return d, nil
}

func (r *memDebtRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.PompisteDebt, error) {
	d, ok := r.debts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return d, nil
}

func (r *memDebtRepo) UpdateTx(_ *gorm.DB, d *model.PompisteDebt) error {
	r.debts[d.ID] = d
	return nil
}

func (r *memDebtRepo) CreatePaymentTx(_ *gorm.DB, p *model.DebtPayment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	r.payments = append(r.payments, *p)
	return nil
}

func (r *memDebtRepo) ListPayments(_ context.Context, debtID uuid.UUID) ([]model.DebtPayment, error) {
	var out []model.DebtPayment
	for _, p := range r.payments {
		if p.DebtID == debtID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memDebtRepo) List(_ context.Context, pompisteID *uuid.UUID, status string, page, limit int) ([]model.PompisteDebt, int64, error) {
	var all []model.PompisteDebt
	for _, d := range r.debts {
		if pompisteID != nil && d.PompisteID != *pompisteID {
			continue
		}
		if status != "" && d.Status != status {
			continue
		}
		all = append(all, *d)
	}
	return all, int64(len(all)), nil
}

var _ repository.DebtRepository = (*memDebtRepo)(nil)

// stubReport serves a canned summary as the expected side of reconciliation.
type stubReport struct {
	summary *dto.ShiftSummary
}

func (s *stubReport) Summary(_ context.Context, _ uuid.UUID) (*dto.ShiftSummary, error) {
	return s.summary, nil
}

var _ service.ShiftReportService = (*stubReport)(nil)

// memDispatcher records enqueued anomaly payloads instead of pushing to Redis.
type memDispatcher struct {
	payloads []interface{}
}

func (d *memDispatcher) EnqueueAnomaly(_ context.Context, payload interface{}) error {
	d.payloads = append(d.payloads, payload)
	return nil
}

var _ service.AnomalyDispatcher = (*memDispatcher)(nil)

// ── Fixture ──────────────────────────────────────────────────────────────────

type registerFixture struct {
	shiftFix  *shiftFixture
	registers *memCashRegisterRepo
	debts     *memDebtRepo
	methods   *memMethodRepo
	anomalies *memDispatcher
	svc       service.CashRegisterService

	shiftID uuid.UUID
	cashID  uuid.UUID
	cardID  uuid.UUID
}

// newRegisterFixture closes a shift whose sales summary expects 500.00 in cash.
func newRegisterFixture(t *testing.T) *registerFixture {
	t.Helper()
	shiftFix := newShiftFixture(t)
	shiftID := shiftFix.openShift(t)
	owner := service.Actor{ID: shiftFix.pompisteID, Role: model.RolePompiste}
	_, err := shiftFix.svc.End(context.Background(), owner, shiftID, dto.EndShiftRequest{IndexEnd: dec(1100)})
	require.NoError(t, err)

	methods := newMemMethodRepo()
	cash := &model.PaymentMethod{Code: "CASH", Label: "Cash", Active: true}
	card := &model.PaymentMethod{Code: "CARD", Label: "Card", RequiresReference: true, Active: true}
	require.NoError(t, methods.Create(context.Background(), cash))
	require.NoError(t, methods.Create(context.Background(), card))

	report := &stubReport{summary: &dto.ShiftSummary{
		ShiftID:       shiftID.String(),
		SaleCount:     4,
		TotalQuantity: dec(43.48),
		TotalRevenue:  dec(500.00),
		ByMethod: []dto.MethodTotal{
			{PaymentMethodID: cash.ID.String(), Method: "Cash", Amount: dec(500.00), Count: 4},
		},
	}}

	registers := newMemCashRegisterRepo()
	debts := newMemDebtRepo()
	anomalies := &memDispatcher{}

	return &registerFixture{
		shiftFix:  shiftFix,
		registers: registers,
		debts:     debts,
		methods:   methods,
		anomalies: anomalies,
		svc: service.NewCashRegisterService(
			registers, shiftFix.shifts, debts, methods, report, testConfig(), anomalies),
		shiftID: shiftID,
		cashID:  cash.ID,
		cardID:  card.ID,
	}
}

func (f *registerFixture) owner() service.Actor {
	return service.Actor{ID: f.shiftFix.pompisteID, Role: model.RolePompiste}
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestCloseCashRegisterBalanced(t *testing.T) {
	f := newRegisterFixture(t)

	resp, err := f.svc.Close(context.Background(), f.owner(), f.shiftID, dto.CloseCashRegisterRequest{
		Declared: []dto.DeclaredMethod{
			{PaymentMethodID: f.cashID.String(), Amount: dec(500.00)},
		},
	})

	require.NoError(t, err)
	assert.True(t, resp.Variance.IsZero())
	assert.Equal(t, dec(500.00).String(), resp.ExpectedTotal.String())
	assert.Equal(t, dec(500.00).String(), resp.DeclaredTotal.String())
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "Cash", resp.Details[0].Method)
	assert.Nil(t, resp.DebtID)
}

func TestCloseCashRegisterOpenShiftRejected(t *testing.T) {
	f := newRegisterFixture(t)
	openID := func() uuid.UUID {
		other := &model.Nozzle{
			ID: uuid.New(), StationID: f.shiftFix.nozzle.StationID, TankID: uuid.New(),
			FuelTypeID: uuid.New(), Label: "P3", CurrentIndex: dec(0), Active: true,
		}
		require.NoError(t, f.shiftFix.nozzles.Create(context.Background(), other))
		resp, err := f.shiftFix.svc.Start(context.Background(), f.shiftFix.pompisteID, dto.StartShiftRequest{
			NozzleID: other.ID.String(), IndexStart: dec(0),
		})
		require.NoError(t, err)
		return uuid.MustParse(resp.ID)
	}()

	_, err := f.svc.Close(context.Background(), f.owner(), openID, dto.CloseCashRegisterRequest{})
	assert.True(t, apierror.IsKind(err, apierror.KindInvalid))
	assert.ErrorContains(t, err, "close the shift before reconciling")
}

func TestCloseCashRegisterVarianceNoteRequired(t *testing.T) {
	f := newRegisterFixture(t)

	// Variance -60.00 meets the 50.00 threshold: a note is mandatory.
	req := dto.CloseCashRegisterRequest{
		Declared: []dto.DeclaredMethod{
			{PaymentMethodID: f.cashID.String(), Amount: dec(440.00)},
		},
	}
	_, err := f.svc.Close(context.Background(), f.owner(), f.shiftID, req)
	assert.True(t, apierror.IsKind(err, apierror.KindInvalid))
	assert.ErrorContains(t, err, "variance_note is required")

	note := "till drawer short after yesterday's power cut"
	req.VarianceNote = &note
	resp, err := f.svc.Close(context.Background(), f.owner(), f.shiftID, req)
	require.NoError(t, err)
	assert.Equal(t, dec(-60.00).String(), resp.Variance.String())
}

func TestCloseCashRegisterVarianceAnomalyGatedByThreshold(t *testing.T) {
	// Variance -20.00 is below the 50.00 threshold: no anomaly job.
	f := newRegisterFixture(t)
	_, err := f.svc.Close(context.Background(), f.owner(), f.shiftID, dto.CloseCashRegisterRequest{
		Declared: []dto.DeclaredMethod{
			{PaymentMethodID: f.cashID.String(), Amount: dec(480.00)},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, f.anomalies.payloads)

	// Variance -60.00 meets the threshold: exactly one anomaly job.
	f = newRegisterFixture(t)
	note := "drawer short on the evening count"
	_, err = f.svc.Close(context.Background(), f.owner(), f.shiftID, dto.CloseCashRegisterRequest{
		Declared: []dto.DeclaredMethod{
			{PaymentMethodID: f.cashID.String(), Amount: dec(440.00)},
		},
		VarianceNote: &note,
	})
	require.NoError(t, err)
	assert.Len(t, f.anomalies.payloads, 1)
}

func TestCloseCashRegisterNothingDeclared(t *testing.T) {
	f := newRegisterFixture(t)

	// Declaring nothing is legal: every expected method counts as a shortfall.
	note := "cash drawer reported stolen, declared nothing"
	resp, err := f.svc.Close(context.Background(), f.owner(), f.shiftID, dto.CloseCashRegisterRequest{
		Declared:     []dto.DeclaredMethod{},
		VarianceNote: &note,
	})
	require.NoError(t, err)
	assert.Equal(t, dec(-500.00).String(), resp.Variance.String())
	require.Len(t, resp.Details, 1)
	assert.Equal(t, dec(0).String(), resp.Details[0].DeclaredAmount.String())
	assert.Equal(t, dec(-500.00).String(), resp.Details[0].Variance.String())
}

func TestCloseCashRegisterShortfallCreatesDebt(t *testing.T) {
	f := newRegisterFixture(t)

	note := "unexplained shortfall"
	resp, err := f.svc.Close(context.Background(), f.owner(), f.shiftID, dto.CloseCashRegisterRequest{
		Declared: []dto.DeclaredMethod{
			{PaymentMethodID: f.cashID.String(), Amount: dec(440.00)},
		},
		VarianceNote:    &note,
		CreateDebtOnGap: true,
	})

	require.NoError(t, err)
	require.NotNil(t, resp.DebtID)
	debtID := uuid.MustParse(*resp.DebtID)
	debt := f.debts.debts[debtID]
	require.NotNil(t, debt)
	assert.Equal(t, model.DebtReasonCashVariance, debt.Reason)
	assert.Equal(t, model.DebtPending, debt.Status)
	assert.Equal(t, dec(60.00).String(), debt.RemainingAmount.String())
	assert.Equal(t, f.shiftFix.pompisteID, debt.PompisteID)
	require.NotNil(t, debt.CashRegisterID)
	assert.Equal(t, uuid.MustParse(resp.ID), *debt.CashRegisterID)
}

func TestCloseCashRegisterSurplusCreatesNoDebt(t *testing.T) {
	f := newRegisterFixture(t)

	// Overage: variance is positive, CreateDebtOnGap must be a no-op.
	resp, err := f.svc.Close(context.Background(), f.owner(), f.shiftID, dto.CloseCashRegisterRequest{
		Declared: []dto.DeclaredMethod{
			{PaymentMethodID: f.cashID.String(), Amount: dec(520.00)},
		},
		CreateDebtOnGap: true,
	})

	require.NoError(t, err)
	assert.Equal(t, dec(20.00).String(), resp.Variance.String())
	assert.Nil(t, resp.DebtID)
	assert.Empty(t, f.debts.debts)
}

func TestCloseCashRegisterTwiceRejected(t *testing.T) {
	f := newRegisterFixture(t)

	req := dto.CloseCashRegisterRequest{
		Declared: []dto.DeclaredMethod{
			{PaymentMethodID: f.cashID.String(), Amount: dec(500.00)},
		},
	}
	_, err := f.svc.Close(context.Background(), f.owner(), f.shiftID, req)
	require.NoError(t, err)

	_, err = f.svc.Close(context.Background(), f.owner(), f.shiftID, req)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	assert.ErrorContains(t, err, "already has a cash register")
}

func TestCloseCashRegisterUnionOfMethods(t *testing.T) {
	f := newRegisterFixture(t)

	// Cash has sales but is undeclared (full shortfall); card is declared with
	// no sales (full surplus). Net variance: -500 + 480 = -20.
	ref := "BATCH-0107"
	resp, err := f.svc.Close(context.Background(), f.owner(), f.shiftID, dto.CloseCashRegisterRequest{
		Declared: []dto.DeclaredMethod{
			{PaymentMethodID: f.cardID.String(), Amount: dec(480.00), Reference: &ref},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, dec(-20.00).String(), resp.Variance.String())
	require.Len(t, resp.Details, 2)

	byMethod := make(map[string]dto.PaymentDetailResponse, 2)
	for _, d := range resp.Details {
		byMethod[d.Method] = d
	}
	assert.Equal(t, dec(-500.00).String(), byMethod["Cash"].Variance.String())
	assert.Equal(t, dec(480.00).String(), byMethod["Card"].Variance.String())
	require.NotNil(t, byMethod["Card"].Reference)
	assert.Equal(t, ref, *byMethod["Card"].Reference)
}

func TestCloseCashRegisterDuplicateDeclaration(t *testing.T) {
	f := newRegisterFixture(t)

	_, err := f.svc.Close(context.Background(), f.owner(), f.shiftID, dto.CloseCashRegisterRequest{
		Declared: []dto.DeclaredMethod{
			{PaymentMethodID: f.cashID.String(), Amount: dec(300.00)},
			{PaymentMethodID: f.cashID.String(), Amount: dec(200.00)},
		},
	})

	assert.True(t, apierror.IsKind(err, apierror.KindInvalid))
	assert.ErrorContains(t, err, "declared more than once")
}

func TestCloseCashRegisterNegativeDeclaration(t *testing.T) {
	f := newRegisterFixture(t)

	_, err := f.svc.Close(context.Background(), f.owner(), f.shiftID, dto.CloseCashRegisterRequest{
		Declared: []dto.DeclaredMethod{
			{PaymentMethodID: f.cashID.String(), Amount: dec(-10.00)},
		},
	})

	assert.True(t, apierror.IsKind(err, apierror.KindInvalid))
	assert.ErrorContains(t, err, "must not be negative")
}

func TestCloseCashRegisterOwnershipEnforced(t *testing.T) {
	f := newRegisterFixture(t)
	intruder := service.Actor{ID: uuid.New(), Role: model.RolePompiste}

	_, err := f.svc.Close(context.Background(), intruder, f.shiftID, dto.CloseCashRegisterRequest{})
	assert.True(t, apierror.IsKind(err, apierror.KindForbidden))
}

func TestGetCashRegisterByShift(t *testing.T) {
	f := newRegisterFixture(t)
	_, err := f.svc.Close(context.Background(), f.owner(), f.shiftID, dto.CloseCashRegisterRequest{
		Declared: []dto.DeclaredMethod{
			{PaymentMethodID: f.cashID.String(), Amount: dec(500.00)},
		},
	})
	require.NoError(t, err)

	resp, err := f.svc.GetByShift(context.Background(), f.shiftID)
	require.NoError(t, err)
	assert.Equal(t, f.shiftID.String(), resp.ShiftID)

	_, err = f.svc.GetByShift(context.Background(), uuid.New())
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}
