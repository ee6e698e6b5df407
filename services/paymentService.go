package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sokohub/sokohub-api/models"
	"github.com/sokohub/sokohub-api/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentService implements the three payment paths and the webhook
// reconciliation flow. The one-open-payment-per-order rule is an
// application-level existence check before create, with no row lock.
type PaymentService struct {
	DB          *gorm.DB
	Orders      *OrderService
	Gateway     Gateway
	Currency    string
	CallbackURL string
}

func NewPaymentService(db *gorm.DB, orders *OrderService, gateway Gateway, currency, callbackURL string) *PaymentService {
	return &PaymentService{DB: db, Orders: orders, Gateway: gateway, Currency: currency, CallbackURL: callbackURL}
}

// precheck enforces the precondition shared by all three payment paths.
func (s *PaymentService) precheck(userID, orderID uint) (*models.Order, error) {
	order, err := s.Orders.GetOwned(userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == models.OrderCancelled || order.Status == models.OrderRefunded {
		return nil, utils.Ef(utils.KindUnprocessable, "Order %s is %s and cannot be paid", order.OrderNumber, order.Status)
	}

	var existing models.Payment
	err = s.DB.Where("order_id = ? AND status IN ?", order.ID,
		[]models.PaymentStatus{models.PaymentPending, models.PaymentProcessing, models.PaymentCompleted}).
		First(&existing).Error
	if err == nil {
		return nil, utils.E(utils.KindConflict, "Order already has an active payment")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.Wrap(utils.KindInternal, "Failed to check existing payments", err)
	}
	return order, nil
}

// StartMobileMoney builds a gateway invoice from the order's lines,
// submits it, and records a PENDING payment holding the invoice token.
// The caller redirects the customer to the returned URL.
func (s *PaymentService) StartMobileMoney(userID, orderID uint, phone string) (*models.Payment, string, error) {
	order, err := s.precheck(userID, orderID)
	if err != nil {
		return nil, "", err
	}

	reference := utils.NewPaymentReference()
	req := InvoiceRequest{
		Reference:   reference,
		Amount:      order.Total,
		Currency:    s.Currency,
		Description: fmt.Sprintf("Payment for order %s", order.OrderNumber),
		Phone:       phone,
		CallbackURL: s.CallbackURL,
	}
	for _, item := range order.OrderItems {
		req.Lines = append(req.Lines, InvoiceLine{
			Name:     item.ProductName,
			Quantity: item.Quantity,
			Amount:   item.LineTotal,
		})
	}

	session, err := s.Gateway.CreateInvoice(req)
	if err != nil {
		return nil, "", utils.Wrap(utils.KindGateway, "Failed to initiate mobile money payment", err)
	}

	payment := models.Payment{
		OrderID:      order.ID,
		Reference:    reference,
		Method:       models.PaymentMobileMoney,
		Status:       models.PaymentPending,
		Amount:       order.Total,
		Currency:     s.Currency,
		GatewayToken: session.Token,
	}
	if err := s.DB.Create(&payment).Error; err != nil {
		return nil, "", utils.Wrap(utils.KindInternal, "Failed to record payment", err)
	}
	return &payment, session.PaymentURL, nil
}

// RecordOffline covers cash-on-delivery and direct-contact: a PENDING
// payment row is created and the order advances straight to CONFIRMED.
// Reconciliation beyond that is manual.
func (s *PaymentService) RecordOffline(userID, orderID uint, method string, metadata map[string]any) (*models.Payment, error) {
	if method != models.PaymentCashOnDelivery && method != models.PaymentDirectContact {
		return nil, utils.E(utils.KindValidation, "Unsupported payment method")
	}

	order, err := s.precheck(userID, orderID)
	if err != nil {
		return nil, err
	}

	payment := models.Payment{
		OrderID:   order.ID,
		Reference: utils.NewPaymentReference(),
		Method:    method,
		Status:    models.PaymentPending,
		Amount:    order.Total,
		Currency:  s.Currency,
	}
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return nil, utils.Wrap(utils.KindValidation, "Invalid payment metadata", err)
		}
		payment.Metadata = datatypes.JSON(raw)
	}
	if err := s.DB.Create(&payment).Error; err != nil {
		return nil, utils.Wrap(utils.KindInternal, "Failed to record payment", err)
	}

	if err := s.Orders.Transition(order, models.OrderConfirmed, ""); err != nil {
		log.Printf("Payment %s recorded but order %s not confirmed: %v", payment.Reference, order.OrderNumber, err)
	}
	return &payment, nil
}

// mapGatewayStatus translates the gateway's vocabulary onto ours.
func mapGatewayStatus(status string) (models.PaymentStatus, bool) {
	switch status {
	case "completed", "paid":
		return models.PaymentCompleted, true
	case "cancelled":
		return models.PaymentCancelled, true
	case "failed":
		return models.PaymentFailed, true
	}
	return "", false
}

// HandleWebhook reconciles a gateway callback. The webhook body is
// never trusted directly: the invoice status is re-verified with the
// gateway before any local write. An unknown token is acknowledged as a
// no-op so the gateway stops retrying.
func (s *PaymentService) HandleWebhook(token string) error {
	var payment models.Payment
	err := s.DB.Where("gateway_token = ?", token).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Webhook for unknown invoice token %q ignored", token)
		return nil
	}
	if err != nil {
		return utils.Wrap(utils.KindInternal, "Failed to look up payment", err)
	}

	status, err := s.Gateway.VerifyInvoice(token)
	if err != nil {
		return utils.Wrap(utils.KindGateway, "Failed to verify invoice with gateway", err)
	}

	mapped, ok := mapGatewayStatus(status.Status)
	if !ok {
		log.Printf("Gateway reported unhandled status %q for invoice %s", status.Status, token)
		return nil
	}

	payment.Status = mapped
	payment.ReceiptURL = status.ReceiptURL
	payment.TxnCode = status.TxnCode
	switch mapped {
	case models.PaymentCompleted:
		now := time.Now()
		payment.PaidAt = &now
	case models.PaymentFailed:
		payment.FailureReason = "Gateway reported the payment as failed"
	case models.PaymentCancelled:
		payment.FailureReason = "Payment was cancelled at the gateway"
	}
	if err := s.DB.Save(&payment).Error; err != nil {
		return utils.Wrap(utils.KindInternal, "Failed to update payment", err)
	}

	if mapped == models.PaymentCompleted {
		var order models.Order
		if err := s.DB.Preload("OrderItems").First(&order, payment.OrderID).Error; err != nil {
			return utils.Wrap(utils.KindInternal, "Failed to load order for confirmation", err)
		}
		if err := s.Orders.Transition(&order, models.OrderConfirmed, ""); err != nil {
			log.Printf("Payment %s completed but order %d not confirmed: %v", payment.Reference, payment.OrderID, err)
		}
	}
	return nil
}
