package enums

import "fmt"

// PaymentType identifies how the customer pays for an order.
type PaymentType int

const (
	PaymentTypeCOD   PaymentType = 1
	PaymentTypeVNPay PaymentType = 2
	PaymentTypeMomo  PaymentType = 3
)

var paymentTypeTitles = map[PaymentType]string{
	PaymentTypeCOD:   "Cash on delivery",
	PaymentTypeVNPay: "VNPay / Credit card",
	PaymentTypeMomo:  "Momo / ATM",
}

// Title returns the human readable label, or "Unknown".
func (p PaymentType) Title() string {
	if title, ok := paymentTypeTitles[p]; ok {
		return title
	}
	return "Unknown"
}

// IsValid reports whether the value is a known PaymentType.
func (p PaymentType) IsValid() bool {
	_, ok := paymentTypeTitles[p]
	return ok
}

// ParsePaymentType converts raw input into a PaymentType.
func ParsePaymentType(value int) (PaymentType, error) {
	payment := PaymentType(value)
	if !payment.IsValid() {
		return 0, fmt.Errorf("invalid payment type %d", value)
	}
	return payment, nil
}
