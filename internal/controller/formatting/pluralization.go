package formatting

func pluralize(count int, one, few, many string) string {
	if count%10 == 1 && count%100 != 11 {
		return one
	}
	if count%10 >= 2 && count%10 <= 4 && (count%100 < 10 || count%100 >= 20) {
		return few
	}
	return many
}

// PluralizeDays возвращает правильное склонение слова "день"
func PluralizeDays(count int) string {
	return pluralize(count, "день", "дня", "дней")
}

// PluralizeBookings возвращает правильное склонение слова "бронирование"
func PluralizeBookings(count int) string {
	return pluralize(count, "бронирование", "бронирования", "бронирований")
}

// PluralizeOptions возвращает правильное склонение слова "опция"
func PluralizeOptions(count int) string {
	return pluralize(count, "опция", "опции", "опций")
}

// PluralizeTravelers возвращает правильное склонение слова "путешественник"
func PluralizeTravelers(count int) string {
	return pluralize(count, "путешественник", "путешественника", "путешественников")
}
