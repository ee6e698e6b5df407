package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sokohub/sokohub-api/middlewares"
	"github.com/sokohub/sokohub-api/models"
	"github.com/sokohub/sokohub-api/utils"
	"gorm.io/gorm"
)

type FavoriteController struct {
	DB *gorm.DB
}

func NewFavoriteController(db *gorm.DB) *FavoriteController {
	return &FavoriteController{DB: db}
}

func (c *FavoriteController) List(ctx *gin.Context) {
	userID := middlewares.UserID(ctx)

	var favorites []models.Favorite
	if err := c.DB.Where("user_id = ?", userID).Find(&favorites).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Unable to fetch favorites", err))
		return
	}

	productIDs := make([]uint, 0, len(favorites))
	for _, fav := range favorites {
		productIDs = append(productIDs, fav.ProductID)
	}

	views := []gin.H{}
	if len(productIDs) > 0 {
		var products []models.Product
		if err := c.DB.Preload("Images").Preload("Promotions").Preload("Stock").
			Where("id IN ?", productIDs).Find(&products).Error; err != nil {
			utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Unable to fetch favorite products", err))
			return
		}
		now := time.Now()
		for i := range products {
			views = append(views, productView(&products[i], now))
		}
	}

	utils.Respond(ctx, http.StatusOK, "Favorites fetched", gin.H{"favorites": views})
}

func (c *FavoriteController) Add(ctx *gin.Context) {
	productID, err := strconv.Atoi(ctx.Param("productId"))
	if err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, "Invalid product ID"))
		return
	}

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

	favorite := models.Favorite{UserID: middlewares.UserID(ctx), ProductID: uint(productID)}
	if err := c.DB.Create(&favorite).Error; err != nil {
		utils.RespondError(ctx, utils.E(utils.KindConflict, "Product is already in favorites"))
		return
	}

	utils.Respond(ctx, http.StatusCreated, product.Name+" added to favorites", gin.H{"id": favorite.ID})
}

func (c *FavoriteController) Remove(ctx *gin.Context) {
	productID, err := strconv.Atoi(ctx.Param("productId"))
	if err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, "Invalid product ID"))
		return
	}

	result := c.DB.Where("user_id = ? AND product_id = ?", middlewares.UserID(ctx), productID).
		Delete(&models.Favorite{})
	if result.Error != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Unable to remove favorite", result.Error))
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(ctx, utils.E(utils.KindNotFound, "Favorite not found"))
		return
	}

	utils.Respond(ctx, http.StatusOK, "Removed from favorites", nil)
}
