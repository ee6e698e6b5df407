package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sokohub/sokohub-api/middlewares"
	"github.com/sokohub/sokohub-api/models"
	"github.com/sokohub/sokohub-api/utils"
	"gorm.io/gorm"
)

type ReviewController struct {
	DB *gorm.DB
}

func NewReviewController(db *gorm.DB) *ReviewController {
	return &ReviewController{DB: db}
}

// hasDeliveredOrder reports whether the user received the product in a
// delivered order, which is the precondition for reviewing it.
func (c *ReviewController) hasDeliveredOrder(userID, productID uint) (bool, error) {
	var count int64
	err := c.DB.Model(&models.Order{}).
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("orders.user_id = ? AND orders.status = ? AND order_items.product_id = ?",
			userID, models.OrderDelivered, productID).
		Count(&count).Error
	return count > 0, err
}

func (c *ReviewController) Create(ctx *gin.Context) {
	productID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, "Invalid product ID"))
		return
	}

	var body struct {
		Rating  int    `json:"rating" binding:"required,min=1,max=5"`
		Comment string `json:"comment"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, msgInvalidInput))
		return
	}

	userID := middlewares.UserID(ctx)

	var product models.Product
	dbErr := c.DB.First(&product, productID).Error
	if errors.Is(dbErr, gorm.ErrRecordNotFound) {
		utils.RespondError(ctx, utils.E(utils.KindNotFound, "Product not found"))
		return
	}
	if dbErr != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Unable to fetch product", dbErr))
		return
	}

	delivered, err2 := c.hasDeliveredOrder(userID, uint(productID))
	if err2 != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Unable to verify purchase", err2))
		return
	}
	if !delivered {
		utils.RespondError(ctx, utils.E(utils.KindForbidden, "You can only review products from delivered orders"))
		return
	}

	var existing models.Review
	if err := c.DB.Where("user_id = ? AND product_id = ?", userID, productID).First(&existing).Error; err == nil {
		utils.RespondError(ctx, utils.E(utils.KindConflict, "You have already reviewed this product"))
		return
	}

	review := models.Review{
		UserID:    userID,
		ProductID: uint(productID),
		Rating:    body.Rating,
		Comment:   body.Comment,
	}
	if err := c.DB.Create(&review).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to create review", err))
		return
	}

	utils.Respond(ctx, http.StatusCreated, "Review submitted", gin.H{"review": review})
}

func (c *ReviewController) ownedReview(ctx *gin.Context) (*models.Review, error) {
	reviewID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, utils.E(utils.KindValidation, "Invalid review id")
	}

	var review models.Review
	dbErr := c.DB.Where("id = ? AND user_id = ?", reviewID, middlewares.UserID(ctx)).First(&review).Error
	if errors.Is(dbErr, gorm.ErrRecordNotFound) {
		return nil, utils.E(utils.KindNotFound, "Review not found")
	}
	if dbErr != nil {
		return nil, utils.Wrap(utils.KindInternal, "Failed to fetch review", dbErr)
	}
	return &review, nil
}

func (c *ReviewController) Update(ctx *gin.Context) {
	review, err := c.ownedReview(ctx)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	var body struct {
		Rating  *int    `json:"rating"`
		Comment *string `json:"comment"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, msgInvalidInput))
		return
	}

	if body.Rating != nil {
		if *body.Rating < 1 || *body.Rating > 5 {
			utils.RespondError(ctx, utils.E(utils.KindValidation, "Rating must be between 1 and 5"))
			return
		}
		review.Rating = *body.Rating
	}
	if body.Comment != nil {
		review.Comment = *body.Comment
	}

	if err := c.DB.Save(review).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to update review", err))
		return
	}
	utils.Respond(ctx, http.StatusOK, "Review updated", gin.H{"review": review})
}

func (c *ReviewController) Delete(ctx *gin.Context) {
	review, err := c.ownedReview(ctx)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	if err := c.DB.Delete(review).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to delete review", err))
		return
	}
	utils.Respond(ctx, http.StatusOK, "Review deleted", nil)
}
