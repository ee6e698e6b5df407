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

type ProfileController struct {
	DB *gorm.DB
}

func NewProfileController(db *gorm.DB) *ProfileController {
	return &ProfileController{DB: db}
}

func (c *ProfileController) Me(ctx *gin.Context) {
	var user models.User
	if err := c.DB.First(&user, middlewares.UserID(ctx)).Error; err != nil {
		utils.RespondError(ctx, utils.E(utils.KindNotFound, "User not found"))
		return
	}
	user.Password = ""
	utils.Respond(ctx, http.StatusOK, "Profile fetched", gin.H{"user": user})
}

func (c *ProfileController) UpdateMe(ctx *gin.Context) {
	var body struct {
		Fullname        string `json:"fullname"`
		Phone           string `json:"phone"`
		SubscribeToNews *bool  `json:"subscribeToNews"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, msgInvalidInput))
		return
	}

	updates := map[string]any{}
	if body.Fullname != "" {
		updates["fullname"] = body.Fullname
	}
	if body.Phone != "" {
		updates["phone"] = body.Phone
	}
	if body.SubscribeToNews != nil {
		updates["subscribe_to_news"] = *body.SubscribeToNews
	}
	if len(updates) == 0 {
		utils.RespondError(ctx, utils.E(utils.KindValidation, "Nothing to update"))
		return
	}

	if err := c.DB.Model(&models.User{}).Where("id = ?", middlewares.UserID(ctx)).Updates(updates).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to update profile", err))
		return
	}
	utils.Respond(ctx, http.StatusOK, "Profile updated", nil)
}

func (c *ProfileController) ListAddresses(ctx *gin.Context) {
	var addresses []models.Address
	if err := c.DB.Where("user_id = ?", middlewares.UserID(ctx)).Order("is_default DESC, created_at DESC").Find(&addresses).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to fetch addresses", err))
		return
	}
	utils.Respond(ctx, http.StatusOK, "Addresses fetched", gin.H{"addresses": addresses})
}

func (c *ProfileController) CreateAddress(ctx *gin.Context) {
	var address models.Address
	if err := ctx.ShouldBindJSON(&address); err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, msgInvalidInput))
		return
	}
	address.ID = 0
	address.UserID = middlewares.UserID(ctx)

	if err := c.DB.Create(&address).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to create address", err))
		return
	}
	utils.Respond(ctx, http.StatusCreated, "Address created", gin.H{"address": address})
}

// ownedAddress loads an address and enforces ownership.
func (c *ProfileController) ownedAddress(ctx *gin.Context) (*models.Address, error) {
	addressID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, utils.E(utils.KindValidation, "Invalid address id")
	}

	var address models.Address
	dbErr := c.DB.Where("id = ? AND user_id = ?", addressID, middlewares.UserID(ctx)).First(&address).Error
	if errors.Is(dbErr, gorm.ErrRecordNotFound) {
		return nil, utils.E(utils.KindNotFound, "Address not found")
	}
	if dbErr != nil {
		return nil, utils.Wrap(utils.KindInternal, "Failed to fetch address", dbErr)
	}
	return &address, nil
}

func (c *ProfileController) UpdateAddress(ctx *gin.Context) {
	address, err := c.ownedAddress(ctx)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	var body models.Address
	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, msgInvalidInput))
		return
	}

	address.Label = body.Label
	address.RecipientName = body.RecipientName
	address.RecipientPhone = body.RecipientPhone
	address.Line1 = body.Line1
	address.City = body.City
	address.Region = body.Region
	address.Country = body.Country
	address.PostalCode = body.PostalCode

	if err := c.DB.Save(address).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to update address", err))
		return
	}
	utils.Respond(ctx, http.StatusOK, "Address updated", gin.H{"address": address})
}

func (c *ProfileController) DeleteAddress(ctx *gin.Context) {
	address, err := c.ownedAddress(ctx)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	if err := c.DB.Delete(address).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to delete address", err))
		return
	}
	utils.Respond(ctx, http.StatusOK, "Address deleted", nil)
}

func (c *ProfileController) SetDefaultAddress(ctx *gin.Context) {
	address, err := c.ownedAddress(ctx)
	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	userID := middlewares.UserID(ctx)
	err = c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Address{}).Where("user_id = ?", userID).Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(address).Update("is_default", true).Error
	})
	if err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, "Failed to set default address", err))
		return
	}
	utils.Respond(ctx, http.StatusOK, "Default address updated", nil)
}
