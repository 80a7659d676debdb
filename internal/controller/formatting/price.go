package formatting

import (
	"fmt"
	"math"
	"strings"
)

// FormatPrice форматирует сумму в евро: "1 234,50 €"
func FormatPrice(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	cents := int64(math.Round(amount * 100))
	whole := groupThousands(cents / 100)
	return fmt.Sprintf("%s%s,%02d €", sign, whole, cents%100)
}

// FormatPriceShort форматирует сумму без центов если они равны 0
func FormatPriceShort(amount float64) string {
	if math.Round(amount*100) == math.Round(amount)*100 {
		sign := ""
		if amount < 0 {
			sign = "-"
			amount = -amount
		}
		return fmt.Sprintf("%s%s €", sign, groupThousands(int64(math.Round(amount))))
	}
	return FormatPrice(amount)
}

// FormatPercent форматирует процент с одним знаком после запятой
func FormatPercent(p float64) string {
	return strings.Replace(fmt.Sprintf("%.1f%%", p), ".", ",", 1)
}

func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
