package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sokohub/sokohub-api/middlewares"
	"github.com/sokohub/sokohub-api/models"
	"github.com/sokohub/sokohub-api/utils"
	"gorm.io/gorm"
)

type CartController struct {
	DB *gorm.DB
}

func NewCartController(db *gorm.DB) *CartController {
	return &CartController{DB: db}
}

// cartFor loads or lazily creates the caller's cart.
func (c *CartController) cartFor(userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := c.DB.Where("user_id = ?", userID).Preload("Items").First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{UserID: userID}
		if err := c.DB.Create(&cart).Error; err != nil {
			return nil, utils.Wrap(utils.KindInternal, "Failed to create cart", err)
		}
		return &cart, nil
	}
	if err != nil {
		return nil, utils.Wrap(utils.KindInternal, "Failed to fetch cart", err)
	}
	return &cart, nil
}

// GetCart returns the cart with each line priced fresh against the
// product's current best promotion, not the price cached at add time.
func (c *CartController) GetCart(ctx *gin.Context) {
	cart, err := c.cartFor(middlewares.UserID(ctx))
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	now := time.Now()
	var cartSubtotal, cartDiscount int64
	items := make([]gin.H, 0, len(cart.Items))
	for _, item := range cart.Items {
		var product models.Product
		if err := c.DB.Preload("Promotions").First(&product, item.ProductID).Error; err != nil {
			// Stale line: the product is gone, so the row goes too.
			log.Printf("Dropping cart item %d for missing product %d: %v", item.ID, item.ProductID, err)
			if err := c.DB.Delete(&models.CartItem{}, item.ID).Error; err != nil {
				log.Printf("Failed to drop stale cart item %d: %v", item.ID, err)
			}
			continue
		}
		finalPrice, discount := models.ApplyBestPromotion(product.Price, product.Promotions, now)
		subtotal := finalPrice * int64(item.Quantity)
		cartSubtotal += subtotal
		cartDiscount += discount * int64(item.Quantity)
		items = append(items, gin.H{
			"id":              item.ID,
			"productId":       item.ProductID,
			"productName":     item.ProductName,
			"productImageUrl": item.ProductImageUrl,
			"quantity":        item.Quantity,
			"price":           product.Price,
			"finalPrice":      finalPrice,
			"discount":        discount,
			"subtotal":        subtotal,
		})
	}

	utils.Respond(ctx, http.StatusOK, "Cart fetched", gin.H{
		"cart": gin.H{
			"id":       cart.ID,
			"items":    items,
			"subtotal": cartSubtotal,
			"discount": cartDiscount,
			"total":    cartSubtotal,
		},
	})
}

func (c *CartController) AddItem(ctx *gin.Context) {
	var body struct {
		ProductID uint `json:"productId" binding:"required"`
		Quantity  int  `json:"quantity" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, msgInvalidInput))
		return
	}

	var product models.Product
	err := c.DB.Preload("Stock").Preload("Images").First(&product, body.ProductID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(ctx, utils.E(utils.KindNotFound, "Product not found"))
		return
	}
	if err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to fetch product", err))
		return
	}
	if product.Status != models.ProductActive {
		utils.RespondError(ctx, utils.Ef(utils.KindValidation, "%s is no longer available", product.Name))
		return
	}

	cart, cartErr := c.cartFor(middlewares.UserID(ctx))
	if cartErr != nil {
		utils.RespondError(ctx, cartErr)
		return
	}

	requested := body.Quantity
	var existing models.CartItem
	err = c.DB.Where("cart_id = ? AND product_id = ?", cart.ID, body.ProductID).First(&existing).Error
	if err == nil {
		requested += existing.Quantity
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Unable to fetch cart item", err))
		return
	}

	// Missing stock row counts as zero available, matching order creation.
	if product.TrackInventory {
		available := 0
		backorderable := false
		if product.Stock != nil {
			available = product.Stock.Available()
			backorderable = product.Stock.Backorderable
		}
		if !backorderable && available < requested {
			utils.RespondError(ctx, utils.Ef(utils.KindValidation,
				"Insufficient stock for %s: %d available", product.Name, available))
			return
		}
	}

	if existing.ID != 0 {
		existing.Quantity = requested
		if err := c.DB.Save(&existing).Error; err != nil {
			utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Unable to update cart item quantity", err))
			return
		}
		utils.Respond(ctx, http.StatusOK, "Cart item quantity updated", gin.H{"id": existing.ID})
		return
	}

	imageURL := ""
	if len(product.Images) > 0 {
		imageURL = product.Images[0].Url
	}
	cartItem := models.CartItem{
		CartID:          cart.ID,
		ProductID:       product.ID,
		ProductName:     product.Name,
		UnitPrice:       product.Price,
		Quantity:        body.Quantity,
		ProductImageUrl: imageURL,
	}
	if err := c.DB.Create(&cartItem).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to create cart item", err))
		return
	}

	utils.Respond(ctx, http.StatusCreated, product.Name+" added to cart", gin.H{"id": cartItem.ID})
}

// ownedItem loads a cart item from the caller's cart.
func (c *CartController) ownedItem(ctx *gin.Context) (*models.CartItem, error) {
	itemID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, utils.E(utils.KindValidation, "Invalid cart item id")
	}

	cart, cartErr := c.cartFor(middlewares.UserID(ctx))
	if cartErr != nil {
		return nil, cartErr
	}

	var item models.CartItem
	dbErr := c.DB.Where("id = ? AND cart_id = ?", itemID, cart.ID).First(&item).Error
	if errors.Is(dbErr, gorm.ErrRecordNotFound) {
		return nil, utils.E(utils.KindNotFound, "Cart item not found")
	}
	if dbErr != nil {
		return nil, utils.Wrap(utils.KindInternal, "Failed to fetch cart item", dbErr)
	}
	return &item, nil
}

func (c *CartController) UpdateItem(ctx *gin.Context) {
	item, err := c.ownedItem(ctx)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	var body struct {
		Quantity int `json:"quantity" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, msgInvalidInput))
		return
	}

	item.Quantity = body.Quantity
	if err := c.DB.Save(item).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Unable to update cart item quantity", err))
		return
	}
	utils.Respond(ctx, http.StatusOK, "Cart item updated", gin.H{"id": item.ID})
}

func (c *CartController) RemoveItem(ctx *gin.Context) {
	item, err := c.ownedItem(ctx)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	if err := c.DB.Delete(item).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Unable to remove cart item", err))
		return
	}
	utils.Respond(ctx, http.StatusOK, "Cart item removed", nil)
}

func (c *CartController) Clear(ctx *gin.Context) {
	cart, err := c.cartFor(middlewares.UserID(ctx))
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	if err := c.DB.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Unable to clear cart", err))
		return
	}
	utils.Respond(ctx, http.StatusOK, "Cart cleared", nil)
}
