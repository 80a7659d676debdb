package finance

import "github.com/Freeeeeet/agency_backoffice/internal/model"

// Summary финансовые показатели бронирования
type Summary struct {
	TotalSales             float64 `json:"total_sales"`
	TotalPurchase          float64 `json:"total_purchase"`
	TotalPaid              float64 `json:"total_paid"`
	Profit                 float64 `json:"profit"`
	MarginPercent          float64 `json:"margin_percent"`
	PaymentProgressPercent float64 `json:"payment_progress_percent"`
	Outstanding            float64 `json:"outstanding"`
}

// Summarize считает прибыль, маржу, прогресс оплаты и остаток к оплате
func Summarize(totalSales, totalPurchase, totalPaid float64) Summary {
	return Summary{
		TotalSales:             totalSales,
		TotalPurchase:          totalPurchase,
		TotalPaid:              totalPaid,
		Profit:                 Profit(totalSales, totalPurchase),
		MarginPercent:          MarginPercent(totalSales, totalPurchase),
		PaymentProgressPercent: PaymentProgressPercent(totalSales, totalPaid),
		Outstanding:            Outstanding(totalSales, totalPaid),
	}
}

func Profit(totalSales, totalPurchase float64) float64 {
	return totalSales - totalPurchase
}

// MarginPercent маржа в процентах. При нулевых продажах маржа равна 0
func MarginPercent(totalSales, totalPurchase float64) float64 {
	if totalSales <= 0 {
		return 0
	}
	return Profit(totalSales, totalPurchase) / totalSales * 100
}

// PaymentProgressPercent доля оплаченного от продажи. При нулевых продажах 0
func PaymentProgressPercent(totalSales, totalPaid float64) float64 {
	if totalSales <= 0 {
		return 0
	}
	return totalPaid / totalSales * 100
}

// Outstanding остаток к оплате. Может быть отрицательным при переплате
func Outstanding(totalAmount, paidAmount float64) float64 {
	return totalAmount - paidAmount
}

// PaidAmount сумма завершённых платежей по бронированию
func PaidAmount(payments []*model.Payment) float64 {
	var paid float64
	for _, p := range payments {
		if p != nil && p.Status == model.PaymentStatusCompleted {
			paid += p.Amount
		}
	}
	return paid
}
