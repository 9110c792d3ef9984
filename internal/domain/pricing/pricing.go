// Package pricing computes order totals. Every function is pure and works in
// paise; GST is applied once to the subtotal and rounded to the nearest paisa.
package pricing

import (
	"github.com/shopspring/decimal"
	"github.com/zatekoja/healthmarket/pkg/money"
)

// Line is one cart line
type Line struct {
	Price    money.Paise
	MRP      money.Paise
	Quantity int
}

// CartTotals is the breakdown shown at checkout and stored on the order
type CartTotals struct {
	Subtotal    money.Paise `json:"subtotal"`
	TotalMRP    money.Paise `json:"total_mrp"`
	Savings     money.Paise `json:"savings"`
	GST         money.Paise `json:"gst"`
	DeliveryFee money.Paise `json:"delivery_fee"`
	PromiseFee  money.Paise `json:"promise_fee"`
	Total       money.Paise `json:"total"`
}

// LabTotals is the breakdown for a single lab test booking
type LabTotals struct {
	Subtotal money.Paise `json:"subtotal"`
	GST      money.Paise `json:"gst"`
	Total    money.Paise `json:"total"`
}

// AppointmentTotals is the breakdown for a consultation
type AppointmentTotals struct {
	ConsultationFee money.Paise `json:"consultation_fee"`
	GST             money.Paise `json:"gst"`
	Total           money.Paise `json:"total"`
}

// DeliveryRules decides the delivery fee when the client does not send one
type DeliveryRules struct {
	Fee           money.Paise
	FreeThreshold money.Paise
}

// Cart prices a medicine cart
func Cart(lines []Line, deliveryFee, promiseFee money.Paise, gstRate decimal.Decimal) CartTotals {
	var t CartTotals
	for _, l := range lines {
		t.Subtotal += l.Price.Times(l.Quantity)
		t.TotalMRP += l.MRP.Times(l.Quantity)
	}
	t.Savings = t.TotalMRP - t.Subtotal
	t.GST = t.Subtotal.ApplyRate(gstRate)
	t.DeliveryFee = deliveryFee
	t.PromiseFee = promiseFee
	t.Total = t.Subtotal + t.GST + t.DeliveryFee + t.PromiseFee
	return t
}

// LabTest prices a lab test booking
func LabTest(price money.Paise, gstRate decimal.Decimal) LabTotals {
	gst := price.ApplyRate(gstRate)
	return LabTotals{Subtotal: price, GST: gst, Total: price + gst}
}

// Appointment prices a consultation
func Appointment(consultationFee money.Paise, gstRate decimal.Decimal) AppointmentTotals {
	gst := consultationFee.ApplyRate(gstRate)
	return AppointmentTotals{ConsultationFee: consultationFee, GST: gst, Total: consultationFee + gst}
}

// DeliveryFeeFor returns zero at or above the free-delivery threshold.
// A zero threshold disables free delivery.
func DeliveryFeeFor(subtotal money.Paise, rules DeliveryRules) money.Paise {
	if rules.FreeThreshold > 0 && subtotal >= rules.FreeThreshold {
		return 0
	}
	return rules.Fee
}
