package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sokohub/sokohub-api/utils"
)

func GetHome(ctx *gin.Context) {
	message := `Welcome to the Sokohub Marketplace API.

Main endpoint groups:

AUTH        POST /auth/signup, /auth/login, /auth/refresh, /auth/logout,
            /auth/verify-email/:token, /auth/forgot-password, /auth/reset-password/:token
PROFILE     GET/PATCH /profile/me, CRUD /profile/addresses
SECURITY    GET/PATCH /security/settings, POST /security/password, GET /security/activity
CATALOG     GET /catalog/categories, /catalog/products, /catalog/products/:id,
            /catalog/products/:id/reviews
FAVORITES   GET/POST/DELETE /favorites
CART        GET /cart, POST /cart/items, PATCH/DELETE /cart/items/:id
ORDERS      POST /orders, GET /orders, GET /orders/:id, POST /orders/:id/cancel,
            GET /orders/:id/invoice, GET/POST /orders/:id/messages
PAYMENTS    POST /payments/orders/:id/mobile-money | cash-on-delivery | direct-contact,
            POST /payments/webhook
SELLER      CRUD /seller/products, /seller/promotions; GET /seller/orders,
            PATCH /seller/orders/:id/status, PUT /seller/orders/:id/tracking
REVIEWS     POST /reviews/products/:id, PATCH/DELETE /reviews/:id
NOTIFY      GET /notifications, POST /notifications/:id/read`

	utils.Respond(ctx, http.StatusOK, message, nil)
}
