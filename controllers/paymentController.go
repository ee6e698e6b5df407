package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sokohub/sokohub-api/middlewares"
	"github.com/sokohub/sokohub-api/models"
	"github.com/sokohub/sokohub-api/services"
	"github.com/sokohub/sokohub-api/utils"
)

type PaymentController struct {
	Payments *services.PaymentService
}

func NewPaymentController(payments *services.PaymentService) *PaymentController {
	return &PaymentController{Payments: payments}
}

func orderIDParam(ctx *gin.Context) (uint, error) {
	orderID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, utils.E(utils.KindValidation, "Invalid order id")
	}
	return uint(orderID), nil
}

// MobileMoney starts a gateway payment and hands the caller the
// redirect URL.
func (c *PaymentController) MobileMoney(ctx *gin.Context) {
	orderID, err := orderIDParam(ctx)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	var body struct {
		Phone string `json:"phone" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, msgInvalidInput))
		return
	}

	payment, redirectURL, err := c.Payments.StartMobileMoney(middlewares.UserID(ctx), orderID, body.Phone)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.Respond(ctx, http.StatusOK, "Payment initiated. Redirect the customer to complete it.", gin.H{
		"payment":     payment,
		"redirectUrl": redirectURL,
	})
}

func (c *PaymentController) recordOffline(ctx *gin.Context, method string) {
	orderID, err := orderIDParam(ctx)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	var body struct {
		Metadata map[string]any `json:"metadata"`
	}
	_ = ctx.ShouldBindJSON(&body)

	payment, err := c.Payments.RecordOffline(middlewares.UserID(ctx), orderID, method, body.Metadata)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.Respond(ctx, http.StatusCreated, "Payment recorded", gin.H{"payment": payment})
}

func (c *PaymentController) CashOnDelivery(ctx *gin.Context) {
	c.recordOffline(ctx, models.PaymentCashOnDelivery)
}

func (c *PaymentController) DirectContact(ctx *gin.Context) {
	c.recordOffline(ctx, models.PaymentDirectContact)
}

// Webhook is the public gateway callback. The payload identifies the
// invoice; the service re-verifies the status with the gateway before
// trusting it, so the endpoint itself carries no authentication.
func (c *PaymentController) Webhook(ctx *gin.Context) {
	var payload struct {
		Token   string `json:"token"`
		Invoice struct {
			Token      string `json:"token"`
			Status     string `json:"status"`
			ReceiptURL string `json:"receipt_url"`
			TxnCode    string `json:"txn_code"`
		} `json:"invoice"`
	}
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, "Invalid webhook payload"))
		return
	}

	token := payload.Token
	if token == "" {
		token = payload.Invoice.Token
	}
	if token == "" {
		utils.RespondError(ctx, utils.E(utils.KindValidation, "Missing invoice token"))
		return
	}

	if err := c.Payments.HandleWebhook(token); err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.Respond(ctx, http.StatusOK, "Webhook processed", gin.H{"token": token})
}
