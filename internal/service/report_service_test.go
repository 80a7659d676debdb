package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func TestReportService_ExportBookings(t *testing.T) {
	t.Parallel()

	bookings := newFakeBookingRepo()
	bookings.bookings["b1"] = &model.Booking{
		ID:             "b1",
		BookingNumber:  "24000001",
		Status:         model.BookingStatusConfirmed,
		TotalAmount:    2000,
		PurchaseAmount: 1500,
		Customer:       &model.Customer{CustomerNumber: "C24030001", FirstName: "Anna", LastName: "Schmidt"},
	}
	bookings.bookings["b2"] = &model.Booking{
		ID:            "b2",
		BookingNumber: "24000002",
		Status:        model.BookingStatusDraft,
	}

	details := newFakeDetails()
	details.payments["b1"] = []*model.Payment{
		{Amount: 500, Status: model.PaymentStatusCompleted},
		{Amount: 100, Status: model.PaymentStatusFailed},
	}

	svc := NewReportService(bookings, details, zap.NewNop())

	var buf bytes.Buffer
	n, err := svc.ExportBookings(context.Background(), &buf, repositoryFilterAll())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(bookingsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Booking Number", rows[0][0])
	assert.Equal(t, "Outstanding", rows[0][10])

	assert.Equal(t, "24000001", rows[1][0])
	assert.Equal(t, "C24030001", rows[1][1])
	assert.Equal(t, "Anna Schmidt", rows[1][2])
	assert.Equal(t, "confirmed", rows[1][3])

	paid, err := book.GetCellValue(bookingsSheet, "J2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "500", paid)

	outstanding, err := book.GetCellValue(bookingsSheet, "K2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "1500", outstanding)

	assert.Equal(t, "24000002", rows[2][0])
	assert.Empty(t, rows[2][1])
}

func repositoryFilterAll() repository.BookingFilter {
	return repository.BookingFilter{}
}
