package service

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/cache"
	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type paymentFixture struct {
	svc           *PaymentService
	payments      *fakePaymentRepo
	installments  *fakeInstallmentRepo
	cancellations *fakeCancellationRepo
	bookings      *fakeBookingRepo
	tx            *fakeTx
}

func newPaymentFixture() paymentFixture {
	f := paymentFixture{
		payments:      &fakePaymentRepo{},
		installments:  &fakeInstallmentRepo{},
		cancellations: newFakeCancellationRepo(),
		bookings:      newFakeBookingRepo(),
		tx:            &fakeTx{},
	}
	f.bookings.bookings["b1"] = &model.Booking{ID: "b1", BookingNumber: "24000001", TotalAmount: 1000, Status: model.BookingStatusConfirmed}
	f.svc = NewPaymentService(f.payments, f.installments, f.cancellations, f.bookings, cache.NewMemoryCache(), f.tx, zap.NewNop())
	f.svc.now = func() time.Time { return time.Date(2024, 2, 15, 9, 0, 0, 0, time.UTC) }
	return f
}

func TestPaymentService_RecordAndPaidAmount(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	ctx := context.Background()

	p, err := f.svc.Record(ctx, &model.Payment{BookingID: "b1", Amount: 500, Method: "Bank Transfer"})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusCompleted, p.Status)
	assert.Equal(t, "2024-02-15", p.Date)

	_, err = f.svc.Record(ctx, &model.Payment{BookingID: "b1", Amount: 300, Method: "Card", Status: model.PaymentStatusPending})
	require.NoError(t, err)

	paid, err := f.svc.PaidAmount(ctx, "b1")
	require.NoError(t, err)
	assert.InDelta(t, 500, paid, 1e-9)

	require.NoError(t, f.svc.SetStatus(ctx, "b1", f.payments.payments[1].ID, model.PaymentStatusCompleted))
	paid, err = f.svc.PaidAmount(ctx, "b1")
	require.NoError(t, err)
	assert.InDelta(t, 800, paid, 1e-9)

	_, err = f.svc.Record(ctx, &model.Payment{BookingID: "b1"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"method", "amount"}, verr.Fields)

	assert.True(t, IsValidation(f.svc.SetStatus(ctx, "b1", p.ID, "refunded")))
	assert.ErrorIs(t, f.svc.Delete(ctx, "b1", "missing"), ErrNotFound)
}

func requirePaidMatchesPayments(t *testing.T, plan *model.InstallmentPlan) {
	t.Helper()
	for _, payer := range plan.Payers {
		var sum float64
		for _, p := range payer.Payments {
			sum += p.Amount
		}
		assert.InDelta(t, sum, payer.PaidAmount, 1e-9, "payer %s", payer.Name)
	}
}

func TestPaymentService_InstallmentLedger(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	ctx := context.Background()

	_, err := f.svc.AddPayer(ctx, "b1", "Anna", 500)
	assert.ErrorIs(t, err, ErrNotFound)

	plan, err := f.svc.SavePlan(ctx, &model.InstallmentPlan{BookingID: "b1", TotalAmount: 1000})
	require.NoError(t, err)
	assert.Equal(t, "2024-02-15", plan.StartDate)

	plan, err = f.svc.AddPayer(ctx, "b1", " Anna ", 600)
	require.NoError(t, err)
	require.Len(t, plan.Payers, 1)
	payerID := plan.Payers[0].ID
	assert.Equal(t, "Anna", plan.Payers[0].Name)

	plan, err = f.svc.AddInstallmentPayment(ctx, "b1", payerID, model.InstallmentPayment{Amount: 200, Method: "Cash"})
	require.NoError(t, err)
	requirePaidMatchesPayments(t, plan)
	assert.InDelta(t, 200, plan.Payers[0].PaidAmount, 1e-9)
	paymentID := plan.Payers[0].Payments[0].ID
	assert.Equal(t, "2024-02-15", plan.Payers[0].Payments[0].Date)

	plan, err = f.svc.AddInstallmentPayment(ctx, "b1", payerID, model.InstallmentPayment{Amount: 150, Method: "Card"})
	require.NoError(t, err)
	requirePaidMatchesPayments(t, plan)
	assert.InDelta(t, 350, plan.Payers[0].PaidAmount, 1e-9)

	plan, err = f.svc.UpdateInstallmentPayment(ctx, "b1", payerID, paymentID, model.InstallmentPayment{Amount: 250, Method: "Cash"})
	require.NoError(t, err)
	requirePaidMatchesPayments(t, plan)
	assert.InDelta(t, 400, plan.Payers[0].PaidAmount, 1e-9)

	plan, err = f.svc.RemoveInstallmentPayment(ctx, "b1", payerID, paymentID)
	require.NoError(t, err)
	requirePaidMatchesPayments(t, plan)
	assert.InDelta(t, 150, plan.Payers[0].PaidAmount, 1e-9)

	// хранилище сходится с ledger
	stored, err := f.svc.GetPlan(ctx, "b1")
	require.NoError(t, err)
	assert.InDelta(t, 150, stored.Payers[0].PaidAmount, 1e-9)
	assert.Len(t, stored.Payers[0].Payments, 1)

	plan, err = f.svc.UpdatePayer(ctx, "b1", payerID, "Anna Schmidt", 700)
	require.NoError(t, err)
	assert.Equal(t, "Anna Schmidt", plan.Payers[0].Name)
	assert.InDelta(t, 150, plan.Payers[0].PaidAmount, 1e-9)

	plan, err = f.svc.RemovePayer(ctx, "b1", payerID)
	require.NoError(t, err)
	assert.Empty(t, plan.Payers)
}

func TestPaymentService_InstallmentWritesLockPlan(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	ctx := context.Background()

	_, err := f.svc.SavePlan(ctx, &model.InstallmentPlan{BookingID: "b1", TotalAmount: 1000})
	require.NoError(t, err)
	assert.Empty(t, f.installments.locks, "read paths do not lock")

	plan, err := f.svc.AddPayer(ctx, "b1", "Anna", 600)
	require.NoError(t, err)
	payerID := plan.Payers[0].ID

	plan, err = f.svc.AddInstallmentPayment(ctx, "b1", payerID, model.InstallmentPayment{Amount: 200, Method: "Cash"})
	require.NoError(t, err)
	paymentID := plan.Payers[0].Payments[0].ID

	_, err = f.svc.UpdateInstallmentPayment(ctx, "b1", payerID, paymentID, model.InstallmentPayment{Amount: 250, Method: "Cash"})
	require.NoError(t, err)
	_, err = f.svc.RemoveInstallmentPayment(ctx, "b1", payerID, paymentID)
	require.NoError(t, err)

	_, err = f.svc.GetPlan(ctx, "b1")
	require.NoError(t, err)

	// каждая запись в ledger берёт блокировку плана внутри своей транзакции
	assert.Equal(t, []bool{true, true, true, true}, f.installments.locks)
}

func TestPaymentService_InstallmentErrors(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	ctx := context.Background()

	_, err := f.svc.SavePlan(ctx, &model.InstallmentPlan{BookingID: "b1", TotalAmount: 1000})
	require.NoError(t, err)

	_, err = f.svc.AddPayer(ctx, "b1", "", 100)
	assert.True(t, IsValidation(err))

	_, err = f.svc.AddInstallmentPayment(ctx, "b1", "ghost", model.InstallmentPayment{Amount: 10})
	assert.ErrorIs(t, err, ErrNotFound)

	plan, err := f.svc.AddPayer(ctx, "b1", "Max", 400)
	require.NoError(t, err)

	_, err = f.svc.AddInstallmentPayment(ctx, "b1", plan.Payers[0].ID, model.InstallmentPayment{Amount: 0})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"amount"}, verr.Fields)

	_, err = f.svc.RemoveInstallmentPayment(ctx, "b1", plan.Payers[0].ID, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.SavePlan(ctx, &model.InstallmentPlan{BookingID: "b1"})
	assert.True(t, IsValidation(err))
}

func TestPaymentService_Cancellation(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	ctx := context.Background()

	_, err := f.svc.Record(ctx, &model.Payment{BookingID: "b1", Amount: 800, Method: "Bank Transfer"})
	require.NoError(t, err)

	draft, err := f.svc.CancellationDraft(ctx, "b1")
	require.NoError(t, err)
	assert.InDelta(t, 100, draft.CancellationFee, 1e-9)
	assert.InDelta(t, 700, draft.RefundAmount, 1e-9)

	_, err = f.svc.SubmitCancellation(ctx, &model.CancellationPolicy{BookingID: "b1"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"cancellation_fee", "deadline"}, verr.Fields)

	c, err := f.svc.SubmitCancellation(ctx, &model.CancellationPolicy{
		BookingID:       "b1",
		CancellationFee: 80,
		Deadline:        "2024-03-01",
	})
	require.NoError(t, err)
	assert.Equal(t, model.CancellationStatusPending, c.Status)
	assert.InDelta(t, 720, c.RefundAmount, 1e-9)

	updated, err := f.svc.UpdateCancellation(ctx, &model.CancellationPolicy{
		ID:              c.ID,
		CancellationFee: 120,
		Deadline:        "2024-03-01",
	})
	require.NoError(t, err)
	assert.InDelta(t, 680, updated.RefundAmount, 1e-9)
	assert.Equal(t, "b1", updated.BookingID)
	assert.Equal(t, model.CancellationStatusPending, updated.Status)

	got, err := f.svc.GetCancellation(ctx, "b1")
	require.NoError(t, err)
	assert.InDelta(t, 120, got.CancellationFee, 1e-9)

	require.NoError(t, f.svc.DeleteCancellation(ctx, c.ID))
	_, err = f.svc.GetCancellation(ctx, "b1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.CancellationDraft(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
