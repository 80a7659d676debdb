package airport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
)

var requiredColumns = []string{"id", "ident", "type", "name", "iso_country", "municipality", "iata_code"}

// ParseCSV читает справочник в формате OurAirports.
// Остаются только крупные и средние аэропорты с IATA кодом
func ParseCSV(r io.Reader) ([]model.Airport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var airports []model.Airport
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		get := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		typ := model.AirportType(get("type"))
		iata := strings.ToUpper(get("iata_code"))
		if iata == "" || (typ != model.AirportTypeLarge && typ != model.AirportTypeMedium) {
			continue
		}

		airports = append(airports, model.Airport{
			ID:               get("id"),
			Ident:            get("ident"),
			Type:             typ,
			Name:             get("name"),
			Continent:        get("continent"),
			Country:          get("iso_country"),
			Region:           get("iso_region"),
			Municipality:     get("municipality"),
			ScheduledService: get("scheduled_service") == "yes",
			GPSCode:          get("gps_code"),
			IATACode:         iata,
			LocalCode:        get("local_code"),
			Keywords:         splitKeywords(get("keywords")),
		})
	}

	return airports, nil
}

func splitKeywords(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
