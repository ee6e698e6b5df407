package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sokohub/sokohub-api/models"
	"github.com/sokohub/sokohub-api/utils"
	"gorm.io/gorm"
)

type CatalogController struct {
	DB *gorm.DB
}

func NewCatalogController(db *gorm.DB) *CatalogController {
	return &CatalogController{DB: db}
}

// productView shapes a product for API responses with its
// promotion-adjusted price and availability resolved at read time.
func productView(product *models.Product, now time.Time) gin.H {
	finalPrice, discount := models.ApplyBestPromotion(product.Price, product.Promotions, now)

	available := 0
	if product.Stock != nil {
		available = product.Stock.Available()
	}

	view := gin.H{
		"id":             product.ID,
		"sellerId":       product.SellerID,
		"categoryId":     product.CategoryID,
		"brand":          product.Brand,
		"name":           product.Name,
		"slug":           product.Slug,
		"sku":            product.SKU,
		"description":    product.Description,
		"price":          product.Price,
		"finalPrice":     finalPrice,
		"discount":       discount,
		"status":         product.Status,
		"trackInventory": product.TrackInventory,
		"available":      available,
		"attributes":     product.Attributes,
		"images":         product.Images,
		"specifications": product.Specifications,
	}
	if promo := models.BestPromotion(product.Price, product.Promotions, now); promo != nil {
		view["activePromotion"] = promo
	}
	return view
}

func (c *CatalogController) GetCategories(ctx *gin.Context) {
	var categories []models.Category
	if err := c.DB.Order("name ASC").Find(&categories).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Unable to fetch categories", err))
		return
	}
	utils.Respond(ctx, http.StatusOK, "Categories fetched", gin.H{"categories": categories})
}

func (c *CatalogController) GetCategoryProducts(ctx *gin.Context) {
	var category models.Category
	err := c.DB.Where("slug = ?", ctx.Param("slug")).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(ctx, utils.E(utils.KindNotFound, "Category not found"))
		return
	}
	if err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Unable to fetch category", err))
		return
	}

	c.listProducts(ctx, c.DB.Where("category_id = ?", category.ID))
}

func (c *CatalogController) GetProducts(ctx *gin.Context) {
	c.listProducts(ctx, c.DB)
}

func (c *CatalogController) listProducts(ctx *gin.Context, base *gorm.DB) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "15"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	query := base.Model(&models.Product{}).
		Where("status = ?", models.ProductActive).
		Preload("Images").Preload("Promotions").Preload("Stock")

	if search := ctx.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}
	if minPrice, err := strconv.ParseInt(ctx.Query("minPrice"), 10, 64); err == nil {
		query = query.Where("price >= ?", minPrice)
	}
	if maxPrice, err := strconv.ParseInt(ctx.Query("maxPrice"), 10, 64); err == nil {
		query = query.Where("price <= ?", maxPrice)
	}

	switch ctx.DefaultQuery("sort", "newest") {
	case "price_asc":
		query = query.Order("price ASC")
	case "price_desc":
		query = query.Order("price DESC")
	default:
		query = query.Order("created_at DESC")
	}

	var products []models.Product
	if result := query.Limit(limit).Offset(offset).Find(&products); result.Error != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Unable to fetch products", result.Error))
		return
	}

	var count int64
	query.Limit(-1).Offset(-1).Count(&count)

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

func (c *CatalogController) GetProduct(ctx *gin.Context) {
	productID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, "Invalid product ID"))
		return
	}

	var product models.Product
	result := c.DB.
		Preload("Specifications").Preload("Images").Preload("Promotions").Preload("Stock").
		First(&product, productID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			utils.RespondError(ctx, utils.E(utils.KindNotFound, "Product not found"))
		} else {
			utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Unable to retrieve product", result.Error))
		}
		return
	}

	view := productView(&product, time.Now())

	var ratingCount int64
	var ratingAvg float64
	c.DB.Model(&models.Review{}).Where("product_id = ?", product.ID).Count(&ratingCount)
	if ratingCount > 0 {
		c.DB.Model(&models.Review{}).Where("product_id = ?", product.ID).Select("AVG(rating)").Scan(&ratingAvg)
	}
	view["reviewCount"] = ratingCount
	view["averageRating"] = ratingAvg

	utils.Respond(ctx, http.StatusOK, "Product fetched", gin.H{"product": view})
}

func (c *CatalogController) GetProductReviews(ctx *gin.Context) {
	productID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, "Invalid product ID"))
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "15"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	var reviews []models.Review
	if err := c.DB.Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&reviews).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Unable to fetch reviews", err))
		return
	}

	var count int64
	c.DB.Model(&models.Review{}).Where("product_id = ?", productID).Count(&count)

	utils.Respond(ctx, http.StatusOK, "Reviews fetched", gin.H{
		"reviews":  reviews,
		"metadata": gin.H{"total": count, "page": page, "limit": limit},
	})
}
