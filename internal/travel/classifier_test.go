package travel

import (
	"testing"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/stretchr/testify/assert"
)

func testAirports() AirportTable {
	return NewAirportTable([]model.AgencyAirport{
		{Code: "MUC", Country: "DE", IsEU: true},
		{Code: "FRA", Country: "DE", IsEU: true},
		{Code: "BER", Country: "DE", IsEU: true},
		{Code: "BCN", Country: "ES", IsEU: true},
		{Code: "PMI", Country: "ES", IsEU: true},
		{Code: "LHR", Country: "GB", IsEU: false},
		{Code: "JFK", Country: "US", IsEU: false},
		{Code: "DXB", Country: "AE", IsEU: false},
	})
}

func TestClassify(t *testing.T) {
	t.Parallel()

	airports := testAirports()

	testCases := []struct {
		name     string
		shape    Shape
		home     string
		expected TravelType
	}{
		{
			name:     "eu flight",
			shape:    Shape{Legs: []Leg{{From: "MUC", To: "BCN"}}},
			home:     "AT",
			expected: TravelTypeEU,
		},
		{
			name:     "hotel dominates flight",
			shape:    Shape{Legs: []Leg{{From: "MUC", To: "BCN"}}, HotelCount: 1},
			home:     "AT",
			expected: TravelTypePackageTour,
		},
		{
			name:     "domestic",
			shape:    Shape{Legs: []Leg{{From: "MUC", To: "BER"}}},
			home:     "DE",
			expected: TravelTypeDomestic,
		},
		{
			name:     "domestic check is case insensitive",
			shape:    Shape{Legs: []Leg{{From: "muc", To: "fra"}}},
			home:     "de",
			expected: TravelTypeDomestic,
		},
		{
			name:     "eu to non eu",
			shape:    Shape{Legs: []Leg{{From: "FRA", To: "JFK"}}},
			home:     "DE",
			expected: TravelTypeThirdCountry,
		},
		{
			name:     "non eu to eu",
			shape:    Shape{Legs: []Leg{{From: "LHR", To: "PMI"}}},
			home:     "DE",
			expected: TravelTypeThirdCountry,
		},
		{
			name:     "both outside eu",
			shape:    Shape{Legs: []Leg{{From: "LHR", To: "DXB"}}},
			home:     "DE",
			expected: TravelTypeUnknown,
		},
		{
			name:     "unknown airports are not eu",
			shape:    Shape{Legs: []Leg{{From: "XXX", To: "BCN"}}},
			home:     "DE",
			expected: TravelTypeThirdCountry,
		},
		{
			name:  "only first leg counts",
			shape: Shape{Legs: []Leg{
				{From: "MUC", To: "BCN"},
				{From: "BCN", To: "JFK"},
			}},
			home:     "DE",
			expected: TravelTypeEU,
		},
		{
			name:     "hotel only",
			shape:    Shape{HotelCount: 2},
			home:     "DE",
			expected: TravelTypeHotelOnly,
		},
		{
			name:     "rent a car",
			shape:    Shape{HasCarRental: true, HasTransfer: true},
			home:     "DE",
			expected: TravelTypeRentACar,
		},
		{
			name:     "transfer",
			shape:    Shape{HasTransfer: true},
			home:     "DE",
			expected: TravelTypeTransfer,
		},
		{
			name:     "hotel beats car",
			shape:    Shape{HotelCount: 1, HasCarRental: true},
			home:     "DE",
			expected: TravelTypeHotelOnly,
		},
		{
			name:     "empty booking",
			shape:    Shape{},
			home:     "DE",
			expected: TravelTypeUnknown,
		},
		{
			name:     "empty home country is never domestic",
			shape:    Shape{Legs: []Leg{{From: "MUC", To: "BER"}}},
			home:     "",
			expected: TravelTypeEU,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, Classify(tc.shape, airports, tc.home))
		})
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	t.Parallel()

	booking := &model.Booking{
		Flights: []*model.Flight{
			{From: model.FlightLocation{Code: "MUC"}, To: model.FlightLocation{Code: "BCN"}},
		},
	}
	settings := model.AgencySettings{
		Country: "AT",
		Airports: []model.AgencyAirport{
			{Code: "MUC", Country: "DE", IsEU: true},
			{Code: "BCN", Country: "ES", IsEU: true},
		},
	}

	first := ClassifyBooking(booking, settings)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ClassifyBooking(booking, settings))
	}
	assert.Equal(t, TravelTypeEU, first)

	booking.Hotels = []*model.Hotel{{Name: "Hotel Arts"}}
	assert.Equal(t, TravelTypePackageTour, ClassifyBooking(booking, settings))
}

func TestShapeOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Shape{}, ShapeOf(nil))

	shape := ShapeOf(&model.Booking{
		Flights:   []*model.Flight{{From: model.FlightLocation{Code: "FRA"}, To: model.FlightLocation{Code: "JFK"}}},
		Transfer:  &model.Transfer{From: "JFK", To: "Hotel"},
		CarRental: nil,
	})
	assert.Equal(t, []Leg{{From: "FRA", To: "JFK"}}, shape.Legs)
	assert.True(t, shape.HasTransfer)
	assert.False(t, shape.HasCarRental)
	assert.Zero(t, shape.HotelCount)
}
