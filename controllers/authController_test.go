package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sokohub/sokohub-api/controllers"
	"github.com/sokohub/sokohub-api/models"
	"github.com/sokohub/sokohub-api/routes"
	"github.com/sokohub/sokohub-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newAuthTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	gin.SetMode(gin.TestMode)
	dsn := "file:" + uuid.New().String() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RefreshToken{}, &models.LoginActivity{}))

	server := gin.New()
	api := server.Group("")
	routes.AuthRoutes(api, controllers.NewAuthController(db, &utils.Mailer{}))
	return server, db
}

func doJSON(t *testing.T, server *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func signupPayload() map[string]any {
	return map[string]any{
		"fullname": "Achieng Otieno",
		"username": "achieng",
		"email":    "achieng@example.test",
		"password": "correct-horse-9",
	}
}

func TestSignupCreatesInactiveCustomer(t *testing.T) {
	server, db := newAuthTestRouter(t)

	recorder := doJSON(t, server, http.MethodPost, "/auth/signup", signupPayload())
	require.Equal(t, http.StatusCreated, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, true, body["success"])

	var user models.User
	require.NoError(t, db.Where("email = ?", "achieng@example.test").First(&user).Error)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.False(t, user.AccountActivated)
	assert.NotEmpty(t, user.AccountActivationToken)
	assert.NotEqual(t, "correct-horse-9", user.Password, "password must be stored hashed")
}

func TestSignupForcesUnknownRoleToCustomer(t *testing.T) {
	server, db := newAuthTestRouter(t)

	payload := signupPayload()
	payload["role"] = models.RoleSuperAdmin
	recorder := doJSON(t, server, http.MethodPost, "/auth/signup", payload)
	require.Equal(t, http.StatusCreated, recorder.Code)

	var user models.User
	require.NoError(t, db.Where("email = ?", "achieng@example.test").First(&user).Error)
	assert.Equal(t, models.RoleCustomer, user.Role)
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	server, _ := newAuthTestRouter(t)

	require.Equal(t, http.StatusCreated, doJSON(t, server, http.MethodPost, "/auth/signup", signupPayload()).Code)

	recorder := doJSON(t, server, http.MethodPost, "/auth/signup", signupPayload())
	assert.Equal(t, http.StatusConflict, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, false, body["success"])
}

// activate flips the account on directly, standing in for the email link.
func activate(t *testing.T, db *gorm.DB, email string) {
	t.Helper()
	require.NoError(t, db.Model(&models.User{}).Where("email = ?", email).
		Updates(map[string]any{"account_activated": true, "account_activation_token": ""}).Error)
}

func TestLoginBeforeActivationRejected(t *testing.T) {
	server, _ := newAuthTestRouter(t)
	require.Equal(t, http.StatusCreated, doJSON(t, server, http.MethodPost, "/auth/signup", signupPayload()).Code)

	recorder := doJSON(t, server, http.MethodPost, "/auth/login", map[string]any{
		"identifier": "achieng@example.test",
		"password":   "correct-horse-9",
	})
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestLoginReturnsTokensAndRecordsActivity(t *testing.T) {
	server, db := newAuthTestRouter(t)
	require.Equal(t, http.StatusCreated, doJSON(t, server, http.MethodPost, "/auth/signup", signupPayload()).Code)
	activate(t, db, "achieng@example.test")

	recorder := doJSON(t, server, http.MethodPost, "/auth/login", map[string]any{
		"identifier": "achieng",
		"password":   "correct-horse-9",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	data := body["data"].(map[string]any)
	require.NotEmpty(t, data["refreshToken"])

	parsed, err := jwt.Parse(data["accessToken"].(string), func(token *jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "achieng", claims["username"])
	assert.Equal(t, models.RoleCustomer, claims["role"])

	var activity int64
	require.NoError(t, db.Model(&models.LoginActivity{}).Count(&activity).Error)
	assert.Equal(t, int64(1), activity)
}

func TestLoginWrongPasswordRejected(t *testing.T) {
	server, db := newAuthTestRouter(t)
	require.Equal(t, http.StatusCreated, doJSON(t, server, http.MethodPost, "/auth/signup", signupPayload()).Code)
	activate(t, db, "achieng@example.test")

	recorder := doJSON(t, server, http.MethodPost, "/auth/login", map[string]any{
		"identifier": "achieng",
		"password":   "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	server, db := newAuthTestRouter(t)
	require.Equal(t, http.StatusCreated, doJSON(t, server, http.MethodPost, "/auth/signup", signupPayload()).Code)
	activate(t, db, "achieng@example.test")

	login := doJSON(t, server, http.MethodPost, "/auth/login", map[string]any{
		"identifier": "achieng",
		"password":   "correct-horse-9",
	})
	require.Equal(t, http.StatusOK, login.Code)
	first := decodeBody(t, login)["data"].(map[string]any)["refreshToken"].(string)

	refresh := doJSON(t, server, http.MethodPost, "/auth/refresh", map[string]any{"refreshToken": first})
	require.Equal(t, http.StatusOK, refresh.Code)
	second := decodeBody(t, refresh)["data"].(map[string]any)["refreshToken"].(string)
	assert.NotEqual(t, first, second)

	// The rotated-out token is single use.
	replay := doJSON(t, server, http.MethodPost, "/auth/refresh", map[string]any{"refreshToken": first})
	assert.Equal(t, http.StatusUnauthorized, replay.Code)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	server, db := newAuthTestRouter(t)
	require.Equal(t, http.StatusCreated, doJSON(t, server, http.MethodPost, "/auth/signup", signupPayload()).Code)
	activate(t, db, "achieng@example.test")

	login := doJSON(t, server, http.MethodPost, "/auth/login", map[string]any{
		"identifier": "achieng",
		"password":   "correct-horse-9",
	})
	token := decodeBody(t, login)["data"].(map[string]any)["refreshToken"].(string)

	require.Equal(t, http.StatusOK, doJSON(t, server, http.MethodPost, "/auth/logout", map[string]any{"refreshToken": token}).Code)

	recorder := doJSON(t, server, http.MethodPost, "/auth/refresh", map[string]any{"refreshToken": token})
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestActivateAccountWithToken(t *testing.T) {
	server, db := newAuthTestRouter(t)
	require.Equal(t, http.StatusCreated, doJSON(t, server, http.MethodPost, "/auth/signup", signupPayload()).Code)

	var user models.User
	require.NoError(t, db.Where("email = ?", "achieng@example.test").First(&user).Error)

	recorder := doJSON(t, server, http.MethodPost, "/auth/verify-email/"+user.AccountActivationToken, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	require.NoError(t, db.First(&user, user.ID).Error)
	assert.True(t, user.AccountActivated)
	assert.Empty(t, user.AccountActivationToken)

	// The consumed token cannot be replayed, and a blank token never matches.
	assert.Equal(t, http.StatusBadRequest, doJSON(t, server, http.MethodPost, "/auth/verify-email/bogus", nil).Code)
}

func TestResetPasswordWithToken(t *testing.T) {
	server, db := newAuthTestRouter(t)
	require.Equal(t, http.StatusCreated, doJSON(t, server, http.MethodPost, "/auth/signup", signupPayload()).Code)
	activate(t, db, "achieng@example.test")

	forgot := doJSON(t, server, http.MethodPost, "/auth/forgot-password", map[string]any{"email": "achieng@example.test"})
	require.Equal(t, http.StatusOK, forgot.Code)

	var user models.User
	require.NoError(t, db.Where("email = ?", "achieng@example.test").First(&user).Error)
	require.NotEmpty(t, user.PasswordResetToken)

	reset := doJSON(t, server, http.MethodPost, "/auth/reset-password/"+user.PasswordResetToken,
		map[string]any{"password": "new-password-12"})
	require.Equal(t, http.StatusOK, reset.Code)

	login := doJSON(t, server, http.MethodPost, "/auth/login", map[string]any{
		"identifier": "achieng",
		"password":   "new-password-12",
	})
	assert.Equal(t, http.StatusOK, login.Code)
}
