package services

import (
	"errors"
	"testing"

	"github.com/sokohub/sokohub-api/models"
	"github.com/sokohub/sokohub-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubGateway records the last invoice request and replays canned
// responses, so no HTTP round trip happens in tests.
type stubGateway struct {
	lastRequest  InvoiceRequest
	session      InvoiceSession
	createErr    error
	verifyStatus InvoiceStatus
	verifyErr    error
	verifyCalls  int
}

func (g *stubGateway) CreateInvoice(req InvoiceRequest) (*InvoiceSession, error) {
	g.lastRequest = req
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &g.session, nil
}

func (g *stubGateway) VerifyInvoice(token string) (*InvoiceStatus, error) {
	g.verifyCalls++
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return &g.verifyStatus, nil
}

func newTestPaymentService(t *testing.T) (*PaymentService, *stubGateway, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	orders := NewOrderService(db, NewNotificationService(db))
	gateway := &stubGateway{}
	return NewPaymentService(db, orders, gateway, "KES", "https://api.example.test/payments/webhook"), gateway, db
}

func placeOrder(t *testing.T, svc *PaymentService, db *gorm.DB, userID uint, quantity int) *models.Order {
	t.Helper()
	product := seedProduct(t, db, 5000, 10, 0)
	seedCart(t, db, userID, product, quantity)
	order, err := svc.Orders.CreateFromCart(userID, testSnapshot(), nil)
	require.NoError(t, err)
	return order
}

func TestStartMobileMoneyCreatesPendingPayment(t *testing.T) {
	svc, gateway, db := newTestPaymentService(t)
	gateway.session = InvoiceSession{Token: "tok-123", PaymentURL: "https://pay.example.test/tok-123"}

	order := placeOrder(t, svc, db, 1, 2)

	payment, redirect, err := svc.StartMobileMoney(1, order.ID, "+254700000001")
	require.NoError(t, err)

	assert.Equal(t, "https://pay.example.test/tok-123", redirect)
	assert.Equal(t, models.PaymentPending, payment.Status)
	assert.Equal(t, models.PaymentMobileMoney, payment.Method)
	assert.Equal(t, order.Total, payment.Amount)
	assert.Equal(t, "KES", payment.Currency)
	assert.Equal(t, "tok-123", payment.GatewayToken)

	assert.Equal(t, order.Total, gateway.lastRequest.Amount)
	assert.Equal(t, "+254700000001", gateway.lastRequest.Phone)
	assert.Equal(t, "https://api.example.test/payments/webhook", gateway.lastRequest.CallbackURL)
	require.Len(t, gateway.lastRequest.Lines, 1)
	assert.Equal(t, 2, gateway.lastRequest.Lines[0].Quantity)

	var saved models.Payment
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&saved).Error)
	assert.Equal(t, models.PaymentPending, saved.Status)
}

func TestStartMobileMoneyGatewayFailure(t *testing.T) {
	svc, gateway, db := newTestPaymentService(t)
	gateway.createErr = errors.New("gateway timeout")

	order := placeOrder(t, svc, db, 1, 1)

	_, _, err := svc.StartMobileMoney(1, order.ID, "+254700000001")
	require.Error(t, err)
	assert.Equal(t, utils.KindGateway, utils.KindOf(err))

	var payments int64
	require.NoError(t, db.Model(&models.Payment{}).Count(&payments).Error)
	assert.Zero(t, payments)
}

func TestSecondPaymentOnOpenPaymentConflicts(t *testing.T) {
	svc, gateway, db := newTestPaymentService(t)
	gateway.session = InvoiceSession{Token: "tok-1", PaymentURL: "https://pay.example.test/tok-1"}

	order := placeOrder(t, svc, db, 1, 1)

	_, _, err := svc.StartMobileMoney(1, order.ID, "+254700000001")
	require.NoError(t, err)

	_, _, err = svc.StartMobileMoney(1, order.ID, "+254700000001")
	require.Error(t, err)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))

	_, err = svc.RecordOffline(1, order.ID, models.PaymentCashOnDelivery, nil)
	require.Error(t, err)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))
}

func TestPaymentRejectedOnCancelledOrder(t *testing.T) {
	svc, _, db := newTestPaymentService(t)

	order := placeOrder(t, svc, db, 1, 1)
	require.NoError(t, svc.Orders.Transition(order, models.OrderCancelled, ""))

	_, err := svc.RecordOffline(1, order.ID, models.PaymentCashOnDelivery, nil)
	require.Error(t, err)
	assert.Equal(t, utils.KindUnprocessable, utils.KindOf(err))
}

func TestPaymentRejectedForOtherUsersOrder(t *testing.T) {
	svc, _, db := newTestPaymentService(t)

	order := placeOrder(t, svc, db, 1, 1)

	_, err := svc.RecordOffline(2, order.ID, models.PaymentCashOnDelivery, nil)
	require.Error(t, err)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

func TestRecordOfflineConfirmsOrder(t *testing.T) {
	svc, _, db := newTestPaymentService(t)

	order := placeOrder(t, svc, db, 1, 1)

	payment, err := svc.RecordOffline(1, order.ID, models.PaymentCashOnDelivery, map[string]any{"note": "call before delivery"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, payment.Status)
	assert.Equal(t, models.PaymentCashOnDelivery, payment.Method)
	assert.NotEmpty(t, payment.Metadata)

	var saved models.Order
	require.NoError(t, db.First(&saved, order.ID).Error)
	assert.Equal(t, models.OrderConfirmed, saved.Status)
	assert.NotNil(t, saved.ConfirmedAt)
}

func TestRecordOfflineRejectsUnknownMethod(t *testing.T) {
	svc, _, db := newTestPaymentService(t)

	order := placeOrder(t, svc, db, 1, 1)

	_, err := svc.RecordOffline(1, order.ID, "BANK_TRANSFER", nil)
	require.Error(t, err)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}

func TestWebhookUnknownTokenIsNoOp(t *testing.T) {
	svc, gateway, db := newTestPaymentService(t)

	require.NoError(t, svc.HandleWebhook("no-such-token"))
	assert.Zero(t, gateway.verifyCalls, "unknown token must not hit the gateway")

	var payments int64
	require.NoError(t, db.Model(&models.Payment{}).Count(&payments).Error)
	assert.Zero(t, payments)
}

func TestWebhookCompletedConfirmsOrder(t *testing.T) {
	svc, gateway, db := newTestPaymentService(t)
	gateway.session = InvoiceSession{Token: "tok-99", PaymentURL: "https://pay.example.test/tok-99"}

	order := placeOrder(t, svc, db, 1, 1)
	_, _, err := svc.StartMobileMoney(1, order.ID, "+254700000001")
	require.NoError(t, err)

	gateway.verifyStatus = InvoiceStatus{
		Token:      "tok-99",
		Status:     "completed",
		ReceiptURL: "https://pay.example.test/receipts/99",
		TxnCode:    "MM99XYZ",
	}
	require.NoError(t, svc.HandleWebhook("tok-99"))
	assert.Equal(t, 1, gateway.verifyCalls)

	var payment models.Payment
	require.NoError(t, db.Where("gateway_token = ?", "tok-99").First(&payment).Error)
	assert.Equal(t, models.PaymentCompleted, payment.Status)
	assert.Equal(t, "https://pay.example.test/receipts/99", payment.ReceiptURL)
	assert.Equal(t, "MM99XYZ", payment.TxnCode)
	assert.NotNil(t, payment.PaidAt)

	var saved models.Order
	require.NoError(t, db.First(&saved, order.ID).Error)
	assert.Equal(t, models.OrderConfirmed, saved.Status)
}

func TestWebhookFailedMarksPaymentWithoutConfirming(t *testing.T) {
	svc, gateway, db := newTestPaymentService(t)
	gateway.session = InvoiceSession{Token: "tok-7", PaymentURL: "https://pay.example.test/tok-7"}

	order := placeOrder(t, svc, db, 1, 1)
	_, _, err := svc.StartMobileMoney(1, order.ID, "+254700000001")
	require.NoError(t, err)

	gateway.verifyStatus = InvoiceStatus{Token: "tok-7", Status: "failed"}
	require.NoError(t, svc.HandleWebhook("tok-7"))

	var payment models.Payment
	require.NoError(t, db.Where("gateway_token = ?", "tok-7").First(&payment).Error)
	assert.Equal(t, models.PaymentFailed, payment.Status)
	assert.NotEmpty(t, payment.FailureReason)
	assert.Nil(t, payment.PaidAt)

	var saved models.Order
	require.NoError(t, db.First(&saved, order.ID).Error)
	assert.Equal(t, models.OrderPending, saved.Status)
}

func TestWebhookUnhandledGatewayStatusLeavesPaymentAlone(t *testing.T) {
	svc, gateway, db := newTestPaymentService(t)
	gateway.session = InvoiceSession{Token: "tok-5", PaymentURL: "https://pay.example.test/tok-5"}

	order := placeOrder(t, svc, db, 1, 1)
	_, _, err := svc.StartMobileMoney(1, order.ID, "+254700000001")
	require.NoError(t, err)

	gateway.verifyStatus = InvoiceStatus{Token: "tok-5", Status: "processing"}
	require.NoError(t, svc.HandleWebhook("tok-5"))

	var payment models.Payment
	require.NoError(t, db.Where("gateway_token = ?", "tok-5").First(&payment).Error)
	assert.Equal(t, models.PaymentPending, payment.Status)

	var saved models.Order
	require.NoError(t, db.First(&saved, order.ID).Error)
	assert.Equal(t, models.OrderPending, saved.Status)
}
