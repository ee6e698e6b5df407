package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sokohub/sokohub-api/middlewares"
	"github.com/sokohub/sokohub-api/models"
	"github.com/sokohub/sokohub-api/services"
	"github.com/sokohub/sokohub-api/utils"
	"gorm.io/gorm"
)

type SellerController struct {
	AuthDB   *gorm.DB
	ShopDB   *gorm.DB
	Orders   *services.OrderService
	Uploader *utils.ImageUploader
	Mailer   *utils.Mailer
	Currency string
}

func NewSellerController(authDB, shopDB *gorm.DB, orders *services.OrderService, uploader *utils.ImageUploader, mailer *utils.Mailer, currency string) *SellerController {
	return &SellerController{AuthDB: authDB, ShopDB: shopDB, Orders: orders, Uploader: uploader, Mailer: mailer, Currency: currency}
}

// ownedProduct loads a product and enforces that the caller sells it.
func (c *SellerController) ownedProduct(ctx *gin.Context, param string) (*models.Product, error) {
	productID, err := strconv.Atoi(ctx.Param(param))
	if err != nil {
		return nil, utils.E(utils.KindValidation, "Invalid product ID")
	}

	var product models.Product
	dbErr := c.ShopDB.Preload("Images").Preload("Promotions").Preload("Stock").
		Where("id = ? AND seller_id = ?", productID, middlewares.UserID(ctx)).
		First(&product).Error
	if errors.Is(dbErr, gorm.ErrRecordNotFound) {
		return nil, utils.E(utils.KindNotFound, "Product not found")
	}
	if dbErr != nil {
		return nil, utils.Wrap(utils.KindInternal, "Failed to fetch product", dbErr)
	}
	return &product, nil
}

func (c *SellerController) ListProducts(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "15"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	sellerID := middlewares.UserID(ctx)
	query := c.ShopDB.Preload("Images").Preload("Promotions").Preload("Stock").
		Where("seller_id = ?", sellerID)
	if search := ctx.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var products []models.Product
	if result := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&products); result.Error != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Unable to fetch products", result.Error))
		return
	}

	var count int64
	c.ShopDB.Model(&models.Product{}).Where("seller_id = ?", sellerID).Count(&count)

	now := time.Now()
	views := make([]gin.H, 0, len(products))
	for i := range products {
		views = append(views, productView(&products[i], now))
	}

	utils.Respond(ctx, http.StatusOK, "Products fetched", gin.H{
		"products": views,
		"metadata": gin.H{"total": count, "page": page, "limit": limit},
	})
}

func (c *SellerController) CreateProduct(ctx *gin.Context) {
	var product models.Product
	if err := ctx.ShouldBindJSON(&product); err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, msgInvalidInput))
		return
	}

	product.ID = 0
	product.SellerID = middlewares.UserID(ctx)
	if product.Status == "" {
		product.Status = models.ProductDraft
	}
	if product.Stock == nil {
		product.Stock = &models.ProductStock{}
	}

	if err := c.ShopDB.Create(&product).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to create product", err))
		return
	}

	utils.Respond(ctx, http.StatusCreated, "Product created", gin.H{"product": product})
}

func (c *SellerController) GetProduct(ctx *gin.Context) {
	product, err := c.ownedProduct(ctx, "id")
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}
	utils.Respond(ctx, http.StatusOK, "Product fetched", gin.H{"product": productView(product, time.Now())})
}

func (c *SellerController) UpdateProduct(ctx *gin.Context) {
	product, err := c.ownedProduct(ctx, "id")
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	var body struct {
		Brand       string `json:"brand"`
		Name        string `json:"name"`
		Description string `json:"description"`
		Price       int64  `json:"price"`
		Status      string `json:"status"`
		CategoryID  uint   `json:"categoryId"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, msgInvalidInput))
		return
	}

	updates := map[string]any{}
	if body.Brand != "" {
		updates["brand"] = body.Brand
	}
	if body.Name != "" {
		updates["name"] = body.Name
	}
	if body.Description != "" {
		updates["description"] = body.Description
	}
	if body.Price > 0 {
		updates["price"] = body.Price
	}
	if body.CategoryID > 0 {
		updates["category_id"] = body.CategoryID
	}
	if body.Status != "" {
		switch body.Status {
		case models.ProductActive, models.ProductDraft, models.ProductArchived:
			updates["status"] = body.Status
		default:
			utils.RespondError(ctx, utils.E(utils.KindValidation, "Invalid product status"))
			return
		}
	}
	if len(updates) == 0 {
		utils.RespondError(ctx, utils.E(utils.KindValidation, "Nothing to update"))
		return
	}

	if err := c.ShopDB.Model(product).Updates(updates).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to update product", err))
		return
	}
	utils.Respond(ctx, http.StatusOK, "Product updated", gin.H{"product": product})
}

func (c *SellerController) DeleteProduct(ctx *gin.Context) {
	product, err := c.ownedProduct(ctx, "id")
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	if err := c.ShopDB.Delete(product).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to delete product", err))
		return
	}
	utils.Respond(ctx, http.StatusOK, "Product deleted", nil)
}

// UploadImages pushes product photos to S3 and records their URLs.
func (c *SellerController) UploadImages(ctx *gin.Context) {
	product, err := c.ownedProduct(ctx, "id")
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, "Invalid form data"))
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		utils.RespondError(ctx, utils.E(utils.KindValidation, "No files uploaded"))
		return
	}

	var uploadedUrls []string
	var failedUploads []string
	for _, file := range files {
		url, uploadErr := c.Uploader.Upload(ctx.Request.Context(), product.ID, file)
		if uploadErr != nil {
			log.Printf("Error uploading file %s: %v", file.Filename, uploadErr)
			failedUploads = append(failedUploads, file.Filename)
			continue
		}
		uploadedUrls = append(uploadedUrls, url)

		productImage := models.ProductImage{Url: url, ProductID: product.ID}
		if err := c.ShopDB.Create(&productImage).Error; err != nil {
			// The file is already uploaded; record the failure and move on.
			log.Printf("Error saving image to database: %v", err)
		}
	}

	data := gin.H{"urls": uploadedUrls}
	if len(failedUploads) > 0 {
		data["failed"] = failedUploads
	}
	utils.Respond(ctx, http.StatusOK, "Files processed", data)
}

func (c *SellerController) UpdateStock(ctx *gin.Context) {
	product, err := c.ownedProduct(ctx, "id")
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	var body struct {
		Quantity          *int  `json:"quantity"`
		LowStockThreshold *int  `json:"lowStockThreshold"`
		Backorderable     *bool `json:"backorderable"`
		TrackInventory    *bool `json:"trackInventory"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, msgInvalidInput))
		return
	}

	stock := product.Stock
	if stock == nil {
		stock = &models.ProductStock{ProductID: product.ID}
	}
	if body.Quantity != nil {
		if *body.Quantity < 0 {
			utils.RespondError(ctx, utils.E(utils.KindValidation, "Quantity cannot be negative"))
			return
		}
		stock.Quantity = *body.Quantity
	}
	if body.LowStockThreshold != nil {
		stock.LowStockThreshold = *body.LowStockThreshold
	}
	if body.Backorderable != nil {
		stock.Backorderable = *body.Backorderable
	}

	err = c.ShopDB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(stock).Error; err != nil {
			return err
		}
		if body.TrackInventory != nil {
			return tx.Model(product).Update("track_inventory", *body.TrackInventory).Error
		}
		return nil
	})
	if err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to update stock", err))
		return
	}

	utils.Respond(ctx, http.StatusOK, "Stock updated", gin.H{"stock": stock})
}

func (c *SellerController) ListPromotions(ctx *gin.Context) {
	sellerID := middlewares.UserID(ctx)

	var promotions []models.Promotion
	err := c.ShopDB.
		Joins("JOIN products ON products.id = promotions.product_id").
		Where("products.seller_id = ?", sellerID).
		Find(&promotions).Error
	if err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Unable to fetch promotions", err))
		return
	}
	utils.Respond(ctx, http.StatusOK, "Promotions fetched", gin.H{"promotions": promotions})
}

func (c *SellerController) CreatePromotion(ctx *gin.Context) {
	var promotion models.Promotion
	if err := ctx.ShouldBindJSON(&promotion); err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, msgInvalidInput))
		return
	}
	if !promotion.EndDate.After(promotion.StartDate) {
		utils.RespondError(ctx, utils.E(utils.KindValidation, "Promotion end date must be after start date"))
		return
	}
	if promotion.Type == models.PromotionPercentage && promotion.Value > 100 {
		utils.RespondError(ctx, utils.E(utils.KindValidation, "Percentage discount cannot exceed 100"))
		return
	}

	var product models.Product
	err := c.ShopDB.Where("id = ? AND seller_id = ?", promotion.ProductID, middlewares.UserID(ctx)).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(ctx, utils.E(utils.KindNotFound, "Product not found"))
		return
	}
	if err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to fetch product", err))
		return
	}

	promotion.ID = 0
	if err := c.ShopDB.Create(&promotion).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to create promotion", err))
		return
	}
	utils.Respond(ctx, http.StatusCreated, "Promotion created", gin.H{"promotion": promotion})
}

func (c *SellerController) ownedPromotion(ctx *gin.Context) (*models.Promotion, error) {
	promotionID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, utils.E(utils.KindValidation, "Invalid promotion ID")
	}

	var promotion models.Promotion
	dbErr := c.ShopDB.
		Joins("JOIN products ON products.id = promotions.product_id").
		Where("promotions.id = ? AND products.seller_id = ?", promotionID, middlewares.UserID(ctx)).
		First(&promotion).Error
	if errors.Is(dbErr, gorm.ErrRecordNotFound) {
		return nil, utils.E(utils.KindNotFound, "Promotion not found")
	}
	if dbErr != nil {
		return nil, utils.Wrap(utils.KindInternal, "Failed to fetch promotion", dbErr)
	}
	return &promotion, nil
}

func (c *SellerController) UpdatePromotion(ctx *gin.Context) {
	promotion, err := c.ownedPromotion(ctx)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	var body struct {
		Name      string     `json:"name"`
		Value     *int64     `json:"value"`
		StartDate *time.Time `json:"startDate"`
		EndDate   *time.Time `json:"endDate"`
		IsActive  *bool      `json:"isActive"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, msgInvalidInput))
		return
	}

	if body.Name != "" {
		promotion.Name = body.Name
	}
	if body.Value != nil {
		if *body.Value <= 0 || (promotion.Type == models.PromotionPercentage && *body.Value > 100) {
			utils.RespondError(ctx, utils.E(utils.KindValidation, "Invalid promotion value"))
			return
		}
		promotion.Value = *body.Value
	}
	if body.StartDate != nil {
		promotion.StartDate = *body.StartDate
	}
	if body.EndDate != nil {
		promotion.EndDate = *body.EndDate
	}
	if !promotion.EndDate.After(promotion.StartDate) {
		utils.RespondError(ctx, utils.E(utils.KindValidation, "Promotion end date must be after start date"))
		return
	}
	if body.IsActive != nil {
		promotion.IsActive = *body.IsActive
	}

	if err := c.ShopDB.Save(promotion).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to update promotion", err))
		return
	}
	utils.Respond(ctx, http.StatusOK, "Promotion updated", gin.H{"promotion": promotion})
}

func (c *SellerController) DeletePromotion(ctx *gin.Context) {
	promotion, err := c.ownedPromotion(ctx)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	if err := c.ShopDB.Delete(promotion).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to delete promotion", err))
		return
	}
	utils.Respond(ctx, http.StatusOK, "Promotion deleted", nil)
}

// sellerOrderIDs narrows orders to those containing the seller's
// products.
func (c *SellerController) sellerOrderIDs(sellerID uint) *gorm.DB {
	return c.ShopDB.Model(&models.OrderItem{}).
		Select("order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("products.seller_id = ?", sellerID)
}

func (c *SellerController) ListOrders(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "15"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	sellerID := middlewares.UserID(ctx)
	query := c.ShopDB.Preload("OrderItems").Where("id IN (?)", c.sellerOrderIDs(sellerID))
	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if result := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&orders); result.Error != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Unable to fetch orders", result.Error))
		return
	}

	var count int64
	c.ShopDB.Model(&models.Order{}).Where("id IN (?)", c.sellerOrderIDs(sellerID)).Count(&count)

	utils.Respond(ctx, http.StatusOK, "Orders fetched", gin.H{
		"orders":   orders,
		"metadata": gin.H{"total": count, "page": page, "limit": limit},
	})
}

func (c *SellerController) sellerOrder(ctx *gin.Context) (*models.Order, error) {
	orderID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, utils.E(utils.KindValidation, "Invalid order id")
	}

	var order models.Order
	dbErr := c.ShopDB.Preload("OrderItems").
		Where("id = ? AND id IN (?)", orderID, c.sellerOrderIDs(middlewares.UserID(ctx))).
		First(&order).Error
	if errors.Is(dbErr, gorm.ErrRecordNotFound) {
		return nil, utils.E(utils.KindNotFound, "Order not found")
	}
	if dbErr != nil {
		return nil, utils.Wrap(utils.KindInternal, "Failed to fetch order", dbErr)
	}
	return &order, nil
}

func (c *SellerController) GetOrder(ctx *gin.Context) {
	order, err := c.sellerOrder(ctx)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}
	utils.Respond(ctx, http.StatusOK, "Order fetched", gin.H{"order": order})
}

func (c *SellerController) UpdateOrderStatus(ctx *gin.Context) {
	order, err := c.sellerOrder(ctx)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, msgInvalidInput))
		return
	}

	if err := c.Orders.Transition(order, models.OrderStatus(body.Status), body.Reason); err != nil {
		utils.RespondError(ctx, err)
		return
	}
	utils.Respond(ctx, http.StatusOK, "Order status updated", gin.H{"order": order})
}

// UpdateTracking sets carrier details independently of status.
func (c *SellerController) UpdateTracking(ctx *gin.Context) {
	order, err := c.sellerOrder(ctx)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	var body struct {
		TrackingNumber string `json:"trackingNumber" binding:"required"`
		TrackingURL    string `json:"trackingUrl"`
		Carrier        string `json:"carrier"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, msgInvalidInput))
		return
	}

	updates := map[string]any{
		"tracking_number": body.TrackingNumber,
		"tracking_url":    body.TrackingURL,
		"carrier":         body.Carrier,
	}
	if err := c.ShopDB.Model(order).Updates(updates).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to update tracking", err))
		return
	}
	utils.Respond(ctx, http.StatusOK, "Tracking updated", gin.H{"order": order})
}

// EmailInvoice renders the order invoice PDF and mails it to the
// customer.
func (c *SellerController) EmailInvoice(ctx *gin.Context) {
	order, err := c.sellerOrder(ctx)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	var customer models.User
	if err := c.AuthDB.First(&customer, order.UserID).Error; err != nil {
		utils.RespondError(ctx, utils.E(utils.KindNotFound, "Customer not found"))
		return
	}

	seller := sellerInfoForOrder(c.ShopDB, c.AuthDB, order)
	pdf, err := utils.BuildInvoicePDF(order, seller, c.Currency)
	if err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to generate invoice", err))
		return
	}

	emailData := utils.EmailData{
		Name:        customer.Username,
		Message:     "Please find attached the invoice for your order.",
		OrderNumber: order.OrderNumber,
	}
	templatePath := filepath.Join("templates", "order_invoice.html")
	filename := fmt.Sprintf("invoice-%s.pdf", order.OrderNumber)
	if err := c.Mailer.SendWithAttachment(customer.Email, "Your Order Invoice", emailData, templatePath, filename, pdf); err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to send invoice email", err))
		return
	}

	utils.Respond(ctx, http.StatusOK, "Invoice emailed to customer", nil)
}

func (c *SellerController) GetMessages(ctx *gin.Context) {
	order, err := c.sellerOrder(ctx)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	var messages []models.OrderMessage
	if err := c.ShopDB.Where("order_id = ?", order.ID).Order("created_at ASC").Find(&messages).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to fetch messages", err))
		return
	}

	c.ShopDB.Model(&models.OrderMessage{}).
		Where("order_id = ? AND sender_role = ?", order.ID, models.SenderCustomer).
		Update("read", true)

	utils.Respond(ctx, http.StatusOK, "Messages fetched", gin.H{"messages": messages})
}

func (c *SellerController) PostMessage(ctx *gin.Context) {
	order, err := c.sellerOrder(ctx)
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
		SenderRole: models.SenderSeller,
		Body:       body.Body,
	}
	if err := c.ShopDB.Create(&message).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to send message", err))
		return
	}

	utils.Respond(ctx, http.StatusCreated, "Message sent", gin.H{"message": message})
}
