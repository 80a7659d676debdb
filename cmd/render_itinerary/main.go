package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/controller/render"
	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/travel"
)

func main() {
	out := flag.String("out", "itinerary.png", "output PNG file")
	flag.Parse()

	now := time.Now()
	day := func(offset int) string { return now.AddDate(0, 0, offset).Format(model.DateLayout) }

	// Тестовое бронирование: перелёт туда-обратно, отель, трое путешественников
	booking := &model.Booking{
		BookingNumber: fmt.Sprintf("%02d000042", now.Year()%100),
		Status:        model.BookingStatusConfirmed,
		Customer:      &model.Customer{Salutation: "Frau", FirstName: "Anna", LastName: "Huber"},
		Flights: []*model.Flight{
			{
				Date:         day(14),
				From:         model.FlightLocation{Code: "VIE", City: "Vienna", Time: "07:10"},
				To:           model.FlightLocation{Code: "FCO", City: "Rome", Time: "08:45"},
				Carrier:      "OS",
				FlightNumber: "501",
				Duration:     "1h 35m",
				Baggage:      "23 kg",
				Option:       &model.FlightOption{Date: day(-2), Price: 420, ExpiryDate: day(1)},
			},
			{
				Date:         day(18),
				From:         model.FlightLocation{Code: "FCO", City: "Rome", Time: "19:30"},
				To:           model.FlightLocation{Code: "VIE", City: "Vienna", Time: "21:05"},
				Carrier:      "OS",
				FlightNumber: "502",
				Duration:     "1h 35m",
			},
		},
		Hotels: []*model.Hotel{{
			Name:          "Hotel Artemide",
			Location:      "Rome",
			Accommodation: "Double Room",
			MealPlan:      "Breakfast",
			CheckIn:       day(14),
			CheckOut:      day(18),
		}},
		Participants: []*model.Participant{
			{Salutation: "Frau", FirstName: "Anna", LastName: "Huber"},
			{Salutation: "Herr", FirstName: "Max", LastName: "Huber"},
			{FirstName: "Lena", LastName: "Huber"},
		},
	}

	// Генерируем изображение
	imageData, err := render.GenerateItineraryImage(render.Itinerary{
		Booking:     booking,
		TravelType:  travel.TravelTypePackageTour,
		GeneratedAt: now,
	})
	if err != nil {
		fmt.Printf("Ошибка генерации изображения: %v\n", err)
		os.Exit(1)
	}

	// Сохраняем в файл
	if err := os.WriteFile(*out, imageData, 0644); err != nil {
		fmt.Printf("Ошибка сохранения файла: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Изображение успешно сохранено в %s\n", *out)
	fmt.Printf("📋 Бронирование №%s, перелётов: %d, отелей: %d\n", booking.BookingNumber, len(booking.Flights), len(booking.Hotels))
}
