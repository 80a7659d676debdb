package render

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/travel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBooking() *model.Booking {
	return &model.Booking{
		BookingNumber: "26000042",
		Status:        model.BookingStatusConfirmed,
		Customer:      &model.Customer{FirstName: "Anna", LastName: "Huber"},
		Flights: []*model.Flight{
			{
				Date:     "2026-11-02",
				From:     model.FlightLocation{Code: "VIE", City: "Vienna", Time: "07:10"},
				To:       model.FlightLocation{Code: "FCO", City: "Rome", Time: "08:45"},
				Carrier:  "OS",
				Duration: "1h 35m",
				Option:   &model.FlightOption{Date: "2026-10-15", Price: 420, ExpiryDate: "2026-10-25"},
			},
			{
				Date: "2026-11-06",
				From: model.FlightLocation{Code: "FCO"},
				To:   model.FlightLocation{Code: "VIE"},
			},
		},
		Hotels: []*model.Hotel{{Name: "Hotel Roma", Location: "Rome", CheckIn: "2026-11-02", CheckOut: "2026-11-06"}},
		Participants: []*model.Participant{
			{FirstName: "Anna", LastName: "Huber"},
			{FirstName: "Max", LastName: "Huber"},
			{Salutation: "Frau", FirstName: "Eva", LastName: "Huber"},
		},
	}
}

func TestImageHeight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		booking *model.Booking
		want    int
	}{
		{
			name:    "empty",
			booking: &model.Booking{},
			want:    headerHeight + footerHeight + emptyBodyHeight,
		},
		{
			name:    "full",
			booking: sampleBooking(),
			want: headerHeight + footerHeight +
				sectionTitleHeight + 2*flightRowHeight +
				sectionTitleHeight + hotelRowHeight +
				sectionTitleHeight + 2*participantRowHeight,
		},
		{
			name:    "participants only",
			booking: &model.Booking{Participants: []*model.Participant{{FirstName: "A"}, {FirstName: "B"}}},
			want:    headerHeight + footerHeight + sectionTitleHeight + participantRowHeight,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Itinerary{Booking: tt.booking}.ImageHeight())
		})
	}
}

func TestGenerateItineraryImage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		booking *model.Booking
	}{
		{name: "full", booking: sampleBooking()},
		{name: "empty", booking: &model.Booking{BookingNumber: "26000001", Status: model.BookingStatusDraft}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			it := Itinerary{
				Booking:     tt.booking,
				TravelType:  travel.TravelTypePackageTour,
				GeneratedAt: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
			}

			data, err := GenerateItineraryImage(it)
			require.NoError(t, err)

			img, err := png.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, imageWidth, img.Bounds().Dx())
			assert.Equal(t, it.ImageHeight(), img.Bounds().Dy())
		})
	}
}

func TestGenerateItineraryImageRequiresBooking(t *testing.T) {
	t.Parallel()

	_, err := GenerateItineraryImage(Itinerary{})
	assert.Error(t, err)
}
