package service

import (
	"context"
	"fmt"
	"io"

	"github.com/Freeeeeet/agency_backoffice/internal/finance"
	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/repository"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const bookingsSheet = "Bookings"

var bookingsHeader = []interface{}{
	"Booking Number", "Customer Number", "Customer", "Status", "Created",
	"Total", "Purchase", "Profit", "Margin %", "Paid", "Outstanding",
}

// BookingLister источник строк отчёта
type BookingLister interface {
	List(ctx context.Context, f repository.BookingFilter) ([]*model.Booking, error)
}

// PaymentLister платежи бронирования для колонки "оплачено"
type PaymentLister interface {
	ListByBooking(ctx context.Context, bookingID string) ([]*model.Payment, error)
}

// ReportService выгрузка бронирований в XLSX
type ReportService struct {
	bookings BookingLister
	payments PaymentLister
	logger   *zap.Logger
}

func NewReportService(bookings BookingLister, payments PaymentLister, logger *zap.Logger) *ReportService {
	return &ReportService{
		bookings: bookings,
		payments: payments,
		logger:   logger,
	}
}

// ExportBookings пишет в w книгу с одним листом: бронирования по фильтру и их финансы
func (s *ReportService) ExportBookings(ctx context.Context, w io.Writer, f repository.BookingFilter) (int, error) {
	const action = "export bookings"

	bookings, err := s.bookings.List(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", action, err)
	}

	rows := make([][]interface{}, 0, len(bookings))
	for _, b := range bookings {
		payments, err := s.payments.ListByBooking(ctx, b.ID)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", action, err)
		}
		rows = append(rows, bookingRow(b, finance.Summarize(b.TotalAmount, b.PurchaseAmount, finance.PaidAmount(payments))))
	}

	book, err := buildWorkbook(rows)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", action, err)
	}
	defer func() {
		if err := book.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", zap.Error(err))
		}
	}()

	if err := book.Write(w); err != nil {
		return 0, fmt.Errorf("%s: write workbook: %w", action, err)
	}

	s.logger.Info("Bookings exported", zap.Int("rows", len(rows)))
	return len(rows), nil
}

func bookingRow(b *model.Booking, sum finance.Summary) []interface{} {
	customerNumber, customerName := "", ""
	if b.Customer != nil {
		customerNumber = b.Customer.CustomerNumber
		customerName = b.Customer.DisplayName()
	}
	return []interface{}{
		b.BookingNumber,
		customerNumber,
		customerName,
		string(b.Status),
		b.CreatedAt.Format(model.DateLayout),
		sum.TotalSales,
		sum.TotalPurchase,
		sum.Profit,
		sum.MarginPercent,
		sum.TotalPaid,
		sum.Outstanding,
	}
}

func buildWorkbook(rows [][]interface{}) (*excelize.File, error) {
	book := excelize.NewFile()

	if err := book.SetSheetName("Sheet1", bookingsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := bookingsHeader
	if err := book.SetSheetRow(bookingsSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	bold, err := book.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(bookingsHeader))
	if err != nil {
		return nil, err
	}
	if err := book.SetCellStyle(bookingsSheet, "A1", lastCol+"1", bold); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	money, err := book.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, fmt.Errorf("create money style: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := row
		if err := book.SetSheetRow(bookingsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if len(rows) > 0 {
		last := fmt.Sprintf("%s%d", lastCol, len(rows)+1)
		if err := book.SetCellStyle(bookingsSheet, "F2", last, money); err != nil {
			return nil, fmt.Errorf("style amounts: %w", err)
		}
	}

	if err := book.SetColWidth(bookingsSheet, "A", lastCol, 16); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	return book, nil
}
