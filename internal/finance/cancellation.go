package finance

// DefaultCancellationFeeRate комиссия за отмену по умолчанию - 10% от суммы бронирования
const DefaultCancellationFeeRate = 0.10

// CancellationDraft черновик отмены. PaidAmount фиксирован,
// возврат пересчитывается при каждом изменении комиссии
type CancellationDraft struct {
	TotalAmount     float64 `json:"total_amount"`
	PaidAmount      float64 `json:"paid_amount"`
	CancellationFee float64 `json:"cancellation_fee"`
	RefundAmount    float64 `json:"refund_amount"`
}

// NewCancellationDraft создаёт черновик с комиссией по умолчанию
func NewCancellationDraft(totalAmount, paidAmount float64) *CancellationDraft {
	d := &CancellationDraft{
		TotalAmount: totalAmount,
		PaidAmount:  paidAmount,
	}
	d.SetFee(totalAmount * DefaultCancellationFeeRate)
	return d
}

// SetFee меняет комиссию и пересчитывает возврат
func (d *CancellationDraft) SetFee(fee float64) {
	d.CancellationFee = fee
	d.RefundAmount = Refund(d.PaidAmount, fee)
}

// Refund сумма к возврату клиенту
func Refund(paidAmount, cancellationFee float64) float64 {
	return paidAmount - cancellationFee
}
