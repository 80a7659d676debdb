package model

// AgencyAirport строка таблицы аэропорт -> страна/членство в ЕС
type AgencyAirport struct {
	Code    string `json:"code" yaml:"code"`
	Name    string `json:"name" yaml:"name"`
	Country string `json:"country" yaml:"country"`
	IsEU    bool   `json:"is_eu" yaml:"is_eu"`
}

// AgencySettings настройки агентства. Country - домашняя страна для классификации поездок
type AgencySettings struct {
	AgencyName string          `json:"agency_name" yaml:"agency_name"`
	Country    string          `json:"country" yaml:"country"`
	Address    string          `json:"address" yaml:"address"`
	Email      string          `json:"email" yaml:"email"`
	Phone      string          `json:"phone" yaml:"phone"`
	Airports   []AgencyAirport `json:"airports" yaml:"airports"`
}

// Clone возвращает копию, не разделяющую слайс аэропортов
func (s AgencySettings) Clone() AgencySettings {
	out := s
	if s.Airports != nil {
		out.Airports = make([]AgencyAirport, len(s.Airports))
		copy(out.Airports, s.Airports)
	}
	return out
}

// AgencySettingsPatch частичное обновление настроек
type AgencySettingsPatch struct {
	AgencyName *string          `json:"agency_name"`
	Country    *string          `json:"country"`
	Address    *string          `json:"address"`
	Email      *string          `json:"email"`
	Phone      *string          `json:"phone"`
	Airports   *[]AgencyAirport `json:"airports"`
}
