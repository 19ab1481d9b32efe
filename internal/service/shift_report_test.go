package service_test

import (
	"context"
	"testing"

	"github.com/anass1h/Station-sub000/internal/apierror"
	"github.com/anass1h/Station-sub000/internal/dto"
	"github.com/anass1h/Station-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShiftSummaryAggregation(t *testing.T) {
	f := newSaleFixture(t)
	report := service.NewShiftReportService(f.shiftFix.shifts, f.sales)

	// 10 L cash + 20 L split across cash and card.
	_, err := f.svc.Record(context.Background(), f.actor(), dto.RecordSaleRequest{
		ShiftID:    f.shiftID.String(),
		FuelTypeID: f.fuelTypeID.String(),
		Quantity:   dec(10),
		Payments: []dto.SalePaymentRequest{
			{PaymentMethodID: f.cashID.String(), Amount: dec(115.00)},
		},
	})
	require.NoError(t, err)

	ref := "TXN-9001"
	_, err = f.svc.Record(context.Background(), f.actor(), dto.RecordSaleRequest{
		ShiftID:    f.shiftID.String(),
		FuelTypeID: f.fuelTypeID.String(),
		Quantity:   dec(20),
		Payments: []dto.SalePaymentRequest{
			{PaymentMethodID: f.cashID.String(), Amount: dec(100.00)},
			{PaymentMethodID: f.cardID.String(), Amount: dec(130.00), Reference: &ref},
		},
	})
	require.NoError(t, err)

	summary, err := report.Summary(context.Background(), f.shiftID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, summary.SaleCount)
	assert.Equal(t, dec(30).String(), summary.TotalQuantity.String())
	assert.Equal(t, dec(345.00).String(), summary.TotalRevenue.String())

	require.Len(t, summary.ByFuelType, 1)
	assert.Equal(t, dec(30).String(), summary.ByFuelType[0].Quantity.String())

	byMethod := make(map[string]dto.MethodTotal, len(summary.ByMethod))
	for _, m := range summary.ByMethod {
		byMethod[m.PaymentMethodID] = m
	}
	assert.Equal(t, dec(215.00).String(), byMethod[f.cashID.String()].Amount.String())
	assert.EqualValues(t, 2, byMethod[f.cashID.String()].Count)
	assert.Equal(t, dec(130.00).String(), byMethod[f.cardID.String()].Amount.String())
}

func TestShiftSummaryEmptyShift(t *testing.T) {
	f := newSaleFixture(t)
	report := service.NewShiftReportService(f.shiftFix.shifts, f.sales)

	summary, err := report.Summary(context.Background(), f.shiftID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, summary.SaleCount)
	assert.True(t, summary.TotalRevenue.IsZero())
	assert.Empty(t, summary.ByMethod)
}

func TestShiftSummaryUnknownShift(t *testing.T) {
	f := newSaleFixture(t)
	report := service.NewShiftReportService(f.shiftFix.shifts, f.sales)

	_, err := report.Summary(context.Background(), uuid.New())
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}
