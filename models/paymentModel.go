package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PaymentMobileMoney    = "MOBILE_MONEY"
	PaymentCashOnDelivery = "CASH_ON_DELIVERY"
	PaymentDirectContact  = "DIRECT_CONTACT"
)

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "PENDING"
	PaymentProcessing PaymentStatus = "PROCESSING"
	PaymentCompleted  PaymentStatus = "COMPLETED"
	PaymentFailed     PaymentStatus = "FAILED"
	PaymentCancelled  PaymentStatus = "CANCELLED"
	PaymentRefunded   PaymentStatus = "REFUNDED"
)

// Open reports whether the payment still counts against the
// one-active-payment-per-order rule.
func (s PaymentStatus) Open() bool {
	return s == PaymentPending || s == PaymentProcessing || s == PaymentCompleted
}

type Payment struct {
	gorm.Model
	OrderID   uint          `json:"orderId" gorm:"index"`
	Reference string        `json:"reference" gorm:"uniqueIndex"`
	Method    string        `json:"method"`
	Status    PaymentStatus `json:"status"`
	Amount    int64         `json:"amount"`
	Currency  string        `json:"currency"`

	// Mobile money only.
	GatewayToken string `json:"gatewayToken" gorm:"index"`
	ReceiptURL   string `json:"receiptUrl"`
	TxnCode      string `json:"txnCode"`

	// Cash-on-delivery / direct-contact free-form details.
	Metadata datatypes.JSON `json:"metadata"`

	FailureReason string     `json:"failureReason"`
	PaidAt        *time.Time `json:"paidAt"`
}
