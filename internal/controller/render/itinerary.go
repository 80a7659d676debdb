package render

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/controller/formatting"
	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/travel"
	"github.com/fogleman/gg"
)

// Константы размеров и отступов
const (
	imageWidth           = 1000
	headerHeight         = 150
	footerHeight         = 50
	sectionTitleHeight   = 56
	flightRowHeight      = 76
	hotelRowHeight       = 76
	participantRowHeight = 34
	emptyBodyHeight      = 90
	paddingX             = 40.0
	rowGap               = 10.0
	rowRadius            = 8.0
	participantColumns   = 2
)

// Константы шрифтов
const (
	titleFontSize    = 34.0
	subtitleFontSize = 20.0
	sectionFontSize  = 22.0
	rowMainFontSize  = 22.0
	rowSubFontSize   = 16.0
	footerFontSize   = 14.0
)

// Цветовая схема
var (
	bgColor         = color.RGBA{245, 246, 248, 255}
	headerColor     = color.RGBA{28, 63, 99, 255}
	headerTextColor = color.RGBA{255, 255, 255, 255}
	headerSubColor  = color.RGBA{190, 210, 230, 255}
	sectionColor    = color.RGBA{60, 65, 70, 255}
	rowColor        = color.RGBA{255, 255, 255, 255}
	rowBorderColor  = color.RGBA{220, 224, 228, 255}
	textColor       = color.RGBA{30, 34, 38, 255}
	mutedTextColor  = color.RGBA{110, 115, 120, 255}
	optionColor     = color.RGBA{230, 126, 34, 255}

	statusColors = map[model.BookingStatus]color.RGBA{
		model.BookingStatusDraft:     {160, 160, 160, 255},
		model.BookingStatusConfirmed: {76, 175, 80, 255},
		model.BookingStatusCancelled: {229, 57, 53, 255},
	}
)

// Itinerary данные для маршрутной карты
type Itinerary struct {
	Booking     *model.Booking
	TravelType  travel.TravelType
	GeneratedAt time.Time
}

// ImageHeight высота карты зависит от количества перелётов, отелей и путешественников
func (it Itinerary) ImageHeight() int {
	b := it.Booking
	h := headerHeight + footerHeight

	if len(b.Flights) == 0 && len(b.Hotels) == 0 && len(b.Participants) == 0 {
		return h + emptyBodyHeight
	}
	if n := len(b.Flights); n > 0 {
		h += sectionTitleHeight + n*flightRowHeight
	}
	if n := len(b.Hotels); n > 0 {
		h += sectionTitleHeight + n*hotelRowHeight
	}
	if n := len(b.Participants); n > 0 {
		rows := (n + participantColumns - 1) / participantColumns
		h += sectionTitleHeight + rows*participantRowHeight
	}
	return h
}

// GenerateItineraryImage рисует маршрутную карту бронирования в PNG
func GenerateItineraryImage(it Itinerary) ([]byte, error) {
	if it.Booking == nil {
		return nil, fmt.Errorf("itinerary without booking")
	}

	height := it.ImageHeight()
	dc := gg.NewContext(imageWidth, height)
	dc.SetColor(bgColor)
	dc.Clear()

	drawHeader(dc, it)

	y := float64(headerHeight)
	b := it.Booking
	if len(b.Flights) == 0 && len(b.Hotels) == 0 && len(b.Participants) == 0 {
		loadFont(dc, rowMainFontSize, FontStyleRegular)
		dc.SetColor(mutedTextColor)
		dc.DrawStringAnchored("В бронировании пока нет перелётов и отелей", imageWidth/2, y+emptyBodyHeight/2, 0.5, 0.5)
	}

	if len(b.Flights) > 0 {
		y = drawSectionTitle(dc, "Перелёты", y)
		for _, f := range b.Flights {
			drawFlightRow(dc, f, y, it.GeneratedAt)
			y += flightRowHeight
		}
	}

	if len(b.Hotels) > 0 {
		y = drawSectionTitle(dc, "Отели", y)
		for _, h := range b.Hotels {
			drawHotelRow(dc, h, y)
			y += hotelRowHeight
		}
	}

	if len(b.Participants) > 0 {
		y = drawSectionTitle(dc, "Путешественники", y)
		drawParticipants(dc, b.Participants, y)
	}

	drawFooter(dc, it.GeneratedAt, height)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode itinerary png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawHeader(dc *gg.Context, it Itinerary) {
	b := it.Booking

	dc.SetColor(headerColor)
	dc.DrawRectangle(0, 0, imageWidth, headerHeight)
	dc.Fill()

	loadFont(dc, titleFontSize, FontStyleBold)
	dc.SetColor(headerTextColor)
	dc.DrawString("Бронирование №"+b.BookingNumber, paddingX, 55)

	loadFont(dc, subtitleFontSize, FontStyleRegular)
	dc.SetColor(headerSubColor)
	subtitle := string(it.TravelType)
	if b.Customer != nil {
		subtitle = b.Customer.DisplayName() + "  ·  " + subtitle
	}
	dc.DrawString(subtitle, paddingX, 95)

	// Статус в правом верхнем углу
	status := formatting.GetBookingStatusDisplay(b.Status)
	statusColor, ok := statusColors[b.Status]
	if !ok {
		statusColor = statusColors[model.BookingStatusDraft]
	}
	loadFont(dc, rowSubFontSize, FontStyleBold)
	w, _ := dc.MeasureString(status.Text)
	pillX := imageWidth - paddingX - w - 24
	dc.SetColor(statusColor)
	dc.DrawRoundedRectangle(pillX, 32, w+24, 32, 16)
	dc.Fill()
	dc.SetColor(headerTextColor)
	dc.DrawStringAnchored(status.Text, pillX+(w+24)/2, 48, 0.5, 0.35)
}

func drawSectionTitle(dc *gg.Context, title string, y float64) float64 {
	loadFont(dc, sectionFontSize, FontStyleBold)
	dc.SetColor(sectionColor)
	dc.DrawString(title, paddingX, y+38)
	return y + sectionTitleHeight
}

// drawRowBox рисует подложку строки с рамкой
func drawRowBox(dc *gg.Context, y, height float64) {
	dc.SetColor(rowBorderColor)
	dc.DrawRoundedRectangle(paddingX-1, y-1, imageWidth-2*paddingX+2, height-rowGap+2, rowRadius)
	dc.Fill()
	dc.SetColor(rowColor)
	dc.DrawRoundedRectangle(paddingX, y, imageWidth-2*paddingX, height-rowGap, rowRadius)
	dc.Fill()
}

func drawFlightRow(dc *gg.Context, f *model.Flight, y float64, now time.Time) {
	drawRowBox(dc, y, flightRowHeight)

	loadFont(dc, rowSubFontSize, FontStyleRegular)
	dc.SetColor(mutedTextColor)
	dc.DrawString(formatting.FormatISODate(f.Date), paddingX+16, y+28)
	if number := strings.TrimSpace(f.Carrier + " " + f.FlightNumber); number != "" {
		dc.DrawString(number, paddingX+16, y+52)
	}

	loadFont(dc, rowMainFontSize, FontStyleBold)
	dc.SetColor(textColor)
	dc.DrawString(locationLabel(f.From)+"  →  "+locationLabel(f.To), paddingX+170, y+30)

	loadFont(dc, rowSubFontSize, FontStyleRegular)
	dc.SetColor(mutedTextColor)
	var details []string
	if f.From.Time != "" || f.To.Time != "" {
		details = append(details, f.From.Time+" - "+f.To.Time)
	}
	if f.Duration != "" {
		details = append(details, f.Duration)
	}
	if f.Baggage != "" {
		details = append(details, f.Baggage)
	}
	dc.DrawString(strings.Join(details, "  ·  "), paddingX+170, y+54)

	if f.Option.IsActive(now) {
		loadFont(dc, rowSubFontSize, FontStyleBold)
		dc.SetColor(optionColor)
		dc.DrawStringAnchored("Опция до "+formatting.FormatISODate(f.Option.ExpiryDate), imageWidth-paddingX-16, y+30, 1, 0)
	}
}

func locationLabel(loc model.FlightLocation) string {
	if loc.City != "" {
		return loc.Code + " " + loc.City
	}
	return loc.Code
}

func drawHotelRow(dc *gg.Context, h *model.Hotel, y float64) {
	drawRowBox(dc, y, hotelRowHeight)

	loadFont(dc, rowSubFontSize, FontStyleRegular)
	dc.SetColor(mutedTextColor)
	dc.DrawString(formatting.FormatISODate(h.CheckIn), paddingX+16, y+28)
	dc.DrawString(formatting.FormatISODate(h.CheckOut), paddingX+16, y+52)

	loadFont(dc, rowMainFontSize, FontStyleBold)
	dc.SetColor(textColor)
	dc.DrawString(h.Name, paddingX+170, y+30)

	loadFont(dc, rowSubFontSize, FontStyleRegular)
	dc.SetColor(mutedTextColor)
	var details []string
	for _, s := range []string{h.Location, h.Accommodation, h.MealPlan} {
		if s != "" {
			details = append(details, s)
		}
	}
	dc.DrawString(strings.Join(details, "  ·  "), paddingX+170, y+54)
}

func drawParticipants(dc *gg.Context, participants []*model.Participant, y float64) {
	loadFont(dc, rowSubFontSize+2, FontStyleRegular)
	dc.SetColor(textColor)

	columnWidth := (imageWidth - 2*paddingX) / participantColumns
	for i, p := range participants {
		col := i % participantColumns
		row := i / participantColumns
		x := paddingX + float64(col)*columnWidth
		dc.DrawString("• "+p.FullName(), x, y+float64(row*participantRowHeight)+22)
	}
}

func drawFooter(dc *gg.Context, generatedAt time.Time, height int) {
	loadFont(dc, footerFontSize, FontStyleRegular)
	dc.SetColor(mutedTextColor)
	dc.DrawStringAnchored("Сформировано "+formatting.FormatDateTime(generatedAt), imageWidth-paddingX, float64(height)-footerHeight/2, 1, 0.5)
}
