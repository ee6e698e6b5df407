package controllers

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sokohub/sokohub-api/models"
	"github.com/sokohub/sokohub-api/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// Default cost for bcrypt password hashing
	bcryptCost = 10

	// Standard response messages
	msgInvalidInput          = "Invalid input"
	msgUserAlreadyExists     = "User already exists"
	msgInvalidCredentials    = "Invalid username or password"
	msgAccountNotActivated   = "Account not activated, check your email to activate your account."
	msgInternalServerError   = "Internal server error"
	msgInvalidActivationLink = "Invalid or expired activation link"
	msgActivationSuccess     = "Account has been activated successfully."
	msgResetLinkSent         = "Check your email for a password reset link."
	msgUserCreated           = "User created successfully. Check your email to activate your account."
	msgUserNotFound          = "User with this email does not exist"
	msgInvalidRefreshToken   = "Invalid or expired refresh token"
)

type AuthController struct {
	DB     *gorm.DB
	Mailer *utils.Mailer
}

func NewAuthController(db *gorm.DB, mailer *utils.Mailer) *AuthController {
	return &AuthController{DB: db, Mailer: mailer}
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func comparePasswords(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func accessTokenTTL() time.Duration {
	minutes, err := strconv.Atoi(os.Getenv("ACCESS_TOKEN_TTL_MIN"))
	if err != nil || minutes <= 0 {
		minutes = 15
	}
	return time.Duration(minutes) * time.Minute
}

func refreshTokenTTL() time.Duration {
	hours, err := strconv.Atoi(os.Getenv("REFRESH_TOKEN_TTL_HOURS"))
	if err != nil || hours <= 0 {
		hours = 24 * 30
	}
	return time.Duration(hours) * time.Hour
}

func generateAccessToken(user models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"email":    user.Email,
		"username": user.Username,
		"role":     user.Role,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(accessTokenTTL()).Unix(),
	})
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func (c *AuthController) issueRefreshToken(user models.User) (string, error) {
	refresh := models.RefreshToken{
		UserID:    user.ID,
		Token:     uuid.New().String(),
		ExpiresAt: time.Now().Add(refreshTokenTTL()),
	}
	if err := c.DB.Create(&refresh).Error; err != nil {
		return "", err
	}
	return refresh.Token, nil
}

func (c *AuthController) recordLoginActivity(ctx *gin.Context, userID uint) {
	activity := models.LoginActivity{
		UserID:    userID,
		IPAddress: ctx.ClientIP(),
		UserAgent: ctx.Request.UserAgent(),
	}
	if err := c.DB.Create(&activity).Error; err != nil {
		log.Println("Failed to record login activity:", err)
	}
}

func (c *AuthController) checkUserExists(email, username string) (bool, error) {
	var existingUser models.User
	result := c.DB.Where("email = ? OR username = ?", email, username).Find(&existingUser)
	return result.RowsAffected > 0, result.Error
}

func (c *AuthController) findUserByIdentifier(identifier string) (models.User, error) {
	var user models.User
	result := c.DB.Where("email = ? OR username = ?", identifier, identifier).First(&user)
	return user, result.Error
}

// Send an account verification email
func (c *AuthController) sendAccountVerificationEmail(user models.User, activationToken string) error {
	emailData := utils.EmailData{
		Name:            user.Username,
		Message:         "Thank you for signing up! Click the button below to verify your account.",
		VerificationURL: os.Getenv("FRONTEND_URL") + "/auth/verify-email?token=" + url.QueryEscape(activationToken),
	}
	templatePath := filepath.Join("templates", "verify_email.html")
	return c.Mailer.Send(user.Email, "Account Verification", emailData, templatePath)
}

// Send a password reset email
func (c *AuthController) sendPasswordResetEmail(user models.User, resetToken string) error {
	emailData := utils.EmailData{
		Name:            user.Username,
		Message:         "You requested a password reset. Click the button below to reset your password.",
		VerificationURL: os.Getenv("FRONTEND_URL") + "/auth/reset-password?token=" + url.QueryEscape(resetToken),
	}
	templatePath := filepath.Join("templates", "reset_password.html")
	return c.Mailer.Send(user.Email, "Account Password Reset", emailData, templatePath)
}

// Signup handles user registration
func (c *AuthController) Signup(ctx *gin.Context) {
	var signUpData models.User
	if err := ctx.ShouldBindJSON(&signUpData); err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, msgInvalidInput))
		return
	}

	exists, err := c.checkUserExists(signUpData.Email, signUpData.Username)
	if err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, msgInternalServerError, err))
		return
	}
	if exists {
		utils.RespondError(ctx, utils.E(utils.KindConflict, msgUserAlreadyExists))
		return
	}

	hashedPassword, err := hashPassword(signUpData.Password)
	if err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, msgInternalServerError, err))
		return
	}
	signUpData.Password = hashedPassword

	// Only customer and seller accounts are self-service; anything else
	// falls back to customer.
	if signUpData.Role != models.RoleSeller {
		signUpData.Role = models.RoleCustomer
	}

	activationToken, err := utils.GenerateCode(16)
	if err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, msgInternalServerError, err))
		return
	}
	signUpData.AccountActivationToken = activationToken
	signUpData.AccountActivated = false

	if result := c.DB.Create(&signUpData); result.Error != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, msgInternalServerError, result.Error))
		return
	}

	if err := c.sendAccountVerificationEmail(signUpData, activationToken); err != nil {
		log.Println("Error sending verification email:", err)
		// Continue despite email error, but log it
	}

	utils.Respond(ctx, http.StatusCreated, msgUserCreated, gin.H{"id": signUpData.ID})
}

// Login handles user authentication
func (c *AuthController) Login(ctx *gin.Context) {
	var loginData models.LoginData
	if err := ctx.ShouldBindJSON(&loginData); err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, msgInvalidInput))
		return
	}

	user, err := c.findUserByIdentifier(loginData.Identifier)
	if err != nil {
		utils.RespondError(ctx, utils.E(utils.KindUnauthorized, msgInvalidCredentials))
		return
	}

	if err := comparePasswords(user.Password, loginData.Password); err != nil {
		utils.RespondError(ctx, utils.E(utils.KindUnauthorized, msgInvalidCredentials))
		return
	}

	if !user.AccountActivated {
		utils.RespondError(ctx, utils.E(utils.KindUnauthorized, msgAccountNotActivated))
		return
	}

	accessToken, err := generateAccessToken(user)
	if err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, msgInternalServerError, err))
		return
	}

	refreshToken, err := c.issueRefreshToken(user)
	if err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, msgInternalServerError, err))
		return
	}

	c.recordLoginActivity(ctx, user.ID)

	utils.Respond(ctx, http.StatusOK, "Login successful", gin.H{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"role":     user.Role,
		},
	})
}

// Refresh rotates a refresh token and mints a new access token.
func (c *AuthController) Refresh(ctx *gin.Context) {
	var body struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, msgInvalidInput))
		return
	}

	var stored models.RefreshToken
	err := c.DB.Where("token = ?", body.RefreshToken).First(&stored).Error
	if err != nil || !stored.Usable(time.Now()) {
		utils.RespondError(ctx, utils.E(utils.KindUnauthorized, msgInvalidRefreshToken))
		return
	}

	var user models.User
	if err := c.DB.First(&user, stored.UserID).Error; err != nil {
		utils.RespondError(ctx, utils.E(utils.KindUnauthorized, msgInvalidRefreshToken))
		return
	}

	if err := c.DB.Model(&stored).Update("revoked", true).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, msgInternalServerError, err))
		return
	}

	accessToken, err := generateAccessToken(user)
	if err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, msgInternalServerError, err))
		return
	}
	refreshToken, err := c.issueRefreshToken(user)
	if err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, msgInternalServerError, err))
		return
	}

	utils.Respond(ctx, http.StatusOK, "Token refreshed", gin.H{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

// Logout revokes a refresh token.
func (c *AuthController) Logout(ctx *gin.Context) {
	var body struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, msgInvalidInput))
		return
	}

	if err := c.DB.Model(&models.RefreshToken{}).
		Where("token = ?", body.RefreshToken).
		Update("revoked", true).Error; err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, msgInternalServerError, err))
		return
	}

	utils.Respond(ctx, http.StatusOK, "Logged out", nil)
}

// ActivateAccount activates a user account using the activation token
func (c *AuthController) ActivateAccount(ctx *gin.Context) {
	activationToken := ctx.Param("activationToken")

	result := c.DB.Model(&models.User{}).
		Where("account_activation_token = ? AND account_activation_token <> ''", activationToken).
		Updates(map[string]any{
			"account_activated":        true,
			"account_activation_token": "",
		})

	if result.Error != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, msgInternalServerError, result.Error))
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(ctx, utils.E(utils.KindValidation, msgInvalidActivationLink))
		return
	}

	utils.Respond(ctx, http.StatusOK, msgActivationSuccess, nil)
}

// SendPasswordResetLink sends a password reset link to the user's email
func (c *AuthController) SendPasswordResetLink(ctx *gin.Context) {
	var forgotPasswordData struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := ctx.ShouldBindJSON(&forgotPasswordData); err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, msgInvalidInput))
		return
	}

	var user models.User
	err := c.DB.Where("email = ?", forgotPasswordData.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(ctx, utils.E(utils.KindNotFound, msgUserNotFound))
		return
	}
	if err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, msgInternalServerError, err))
		return
	}

	passwordResetToken, err := utils.GenerateCode(16)
	if err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, msgInternalServerError, err))
		return
	}

	if result := c.DB.Model(&models.User{}).
		Where("email = ?", forgotPasswordData.Email).
		Update("password_reset_token", passwordResetToken); result.Error != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, msgInternalServerError, result.Error))
		return
	}

	if err := c.sendPasswordResetEmail(user, passwordResetToken); err != nil {
		log.Println("Error sending password reset email:", err)
	}

	utils.Respond(ctx, http.StatusOK, msgResetLinkSent, nil)
}

// ResetPassword resets a user's password using a reset token
func (c *AuthController) ResetPassword(ctx *gin.Context) {
	var resetPasswordData struct {
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := ctx.ShouldBindJSON(&resetPasswordData); err != nil {
		utils.RespondError(ctx, utils.E(utils.KindValidation, msgInvalidInput))
		return
	}

	hashedPassword, err := hashPassword(resetPasswordData.Password)
	if err != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, msgInternalServerError, err))
		return
	}

	resetToken := ctx.Param("resetToken")
	result := c.DB.Model(&models.User{}).
		Where("password_reset_token = ? AND password_reset_token <> ''", resetToken).
		Updates(map[string]any{
			"password":             hashedPassword,
			"password_reset_token": "",
		})

	if result.Error != nil {
		utils.RespondError(ctx, utils.Wrap(utils.KindInternal, msgInternalServerError, result.Error))
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(ctx, utils.E(utils.KindValidation, msgInvalidActivationLink))
		return
	}

	utils.Respond(ctx, http.StatusOK, "Password reset successful", nil)
}
