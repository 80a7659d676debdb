package service

import (
	"context"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
)

// BookingParts собирает составные части бронирования из профильных сервисов
type BookingParts struct {
	flights      *FlightService
	hotels       *HotelService
	participants *ParticipantService
	payments     *PaymentService
}

func NewBookingParts(flights *FlightService, hotels *HotelService, participants *ParticipantService, payments *PaymentService) *BookingParts {
	return &BookingParts{
		flights:      flights,
		hotels:       hotels,
		participants: participants,
		payments:     payments,
	}
}

func (p *BookingParts) Flights(ctx context.Context, bookingID string) ([]*model.Flight, error) {
	return p.flights.ListByBooking(ctx, bookingID)
}

func (p *BookingParts) Hotels(ctx context.Context, bookingID string) ([]*model.Hotel, error) {
	return p.hotels.ListByBooking(ctx, bookingID)
}

func (p *BookingParts) Participants(ctx context.Context, bookingID string) ([]*model.Participant, error) {
	return p.participants.ListByBooking(ctx, bookingID)
}

func (p *BookingParts) Payments(ctx context.Context, bookingID string) ([]*model.Payment, error) {
	return p.payments.List(ctx, bookingID)
}
