package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sokohub/sokohub-api/middlewares"
	"github.com/sokohub/sokohub-api/models"
	"github.com/sokohub/sokohub-api/services"
	"github.com/sokohub/sokohub-api/utils"
	"gorm.io/gorm"
)

type OrderController struct {
	AuthDB   *gorm.DB
	ShopDB   *gorm.DB
	Orders   *services.OrderService
	Currency string
}

func NewOrderController(authDB, shopDB *gorm.DB, orders *services.OrderService, currency string) *OrderController {
	return &OrderController{AuthDB: authDB, ShopDB: shopDB, Orders: orders, Currency: currency}
}

// Create places an order from the caller's cart. The shipping address
// must belong to the caller; items may narrow the cart to a subset with
// quantity overrides.
func (c *OrderController) Create(ctx *gin.Context) {
	var body struct {
		AddressID uint                        `json:"addressId" binding:"required"`
		Items     []services.OrderLineRequest `json:"items"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, msgInvalidInput))
		return
	}

	userID := middlewares.UserID(ctx)

	var address models.Address
	err := c.AuthDB.Where("id = ? AND user_id = ?", body.AddressID, userID).First(&address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(ctx, utils.E(utils.KindNotFound, "Address not found"))
		return
	}
	if err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to fetch address", err))
		return
	}

	order, err := c.Orders.CreateFromCart(userID, services.SnapshotFromAddress(&address), body.Items)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.Respond(ctx, http.StatusCreated, "Order placed successfully", gin.H{"order": order})
}

func (c *OrderController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "15"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	sortOrder := ctx.DefaultQuery("sort", "desc")
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	userID := middlewares.UserID(ctx)
	query := c.ShopDB.Preload("OrderItems").Where("user_id = ?", userID)
	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if result := query.Order("created_at " + sortOrder).Limit(limit).Offset(offset).Find(&orders); result.Error != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to fetch orders", result.Error))
		return
	}

	var count int64
	c.ShopDB.Model(&models.Order{}).Where("user_id = ?", userID).Count(&count)

	utils.Respond(ctx, http.StatusOK, "Orders fetched", gin.H{
		"orders":   orders,
		"metadata": gin.H{"total": count, "page": page, "limit": limit},
	})
}

func (c *OrderController) ownedOrder(ctx *gin.Context) (*models.Order, error) {
	orderID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, utils.E(utils.KindValidation, "Invalid order id")
	}
	return c.Orders.GetOwned(middlewares.UserID(ctx), uint(orderID))
}

func (c *OrderController) Get(ctx *gin.Context) {
	order, err := c.ownedOrder(ctx)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}
	utils.Respond(ctx, http.StatusOK, "Order fetched", gin.H{"order": order})
}

func (c *OrderController) Cancel(ctx *gin.Context) {
	order, err := c.ownedOrder(ctx)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	_ = ctx.ShouldBindJSON(&body)

	if err := c.Orders.Transition(order, models.OrderCancelled, body.Reason); err != nil {
		utils.RespondError(ctx, err)
		return
	}

	utils.Respond(ctx, http.StatusOK, "Order cancelled", gin.H{"order": order})
}

// Invoice streams the order invoice as a PDF download.
func (c *OrderController) Invoice(ctx *gin.Context) {
	order, err := c.ownedOrder(ctx)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	seller := sellerInfoForOrder(c.ShopDB, c.AuthDB, order)
	pdf, err := utils.BuildInvoicePDF(order, seller, c.Currency)
	if err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to generate invoice", err))
		return
	}

	filename := fmt.Sprintf("invoice-%s.pdf", order.OrderNumber)
	ctx.Header("Content-Disposition", "attachment; filename="+filename)
	ctx.Data(http.StatusOK, "application/pdf", pdf)
}

// sellerInfoForOrder resolves the seller block for an invoice from the
// order's first line item.
func sellerInfoForOrder(shopDB, authDB *gorm.DB, order *models.Order) utils.SellerInfo {
	info := utils.SellerInfo{Name: "Sokohub Marketplace"}
	if len(order.OrderItems) == 0 {
		return info
	}

	var product models.Product
	if err := shopDB.First(&product, order.OrderItems[0].ProductID).Error; err != nil {
		return info
	}
	var seller models.User
	if err := authDB.First(&seller, product.SellerID).Error; err != nil {
		return info
	}

	info.Name = seller.Fullname
	info.Email = seller.Email
	info.Phone = seller.Phone
	return info
}

func (c *OrderController) GetMessages(ctx *gin.Context) {
	order, err := c.ownedOrder(ctx)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	var messages []models.OrderMessage
	if err := c.ShopDB.Where("order_id = ?", order.ID).Order("created_at ASC").Find(&messages).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to fetch messages", err))
		return
	}

	// Seller messages are marked read once the customer views the thread.
	c.ShopDB.Model(&models.OrderMessage{}).
		Where("order_id = ? AND sender_role = ?", order.ID, models.SenderSeller).
		Update("read", true)

	utils.Respond(ctx, http.StatusOK, "Messages fetched", gin.H{"messages": messages})
}

func (c *OrderController) PostMessage(ctx *gin.Context) {
	order, err := c.ownedOrder(ctx)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	var body struct {
		Body string `json:"body" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, msgInvalidInput))
		return
	}

	message := models.OrderMessage{
		OrderID:    order.ID,
		SenderID:   middlewares.UserID(ctx),
		SenderRole: models.SenderCustomer,
		Body:       body.Body,
	}
	if err := c.ShopDB.Create(&message).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to send message", err))
		return
	}

	utils.Respond(ctx, http.StatusCreated, "Message sent", gin.H{"message": message})
}
