package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleCustomer   = "CUSTOMER"
	RoleSeller     = "SELLER"
	RoleEnterprise = "ENTERPRISE"
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPER_ADMIN"
)

type User struct {
	gorm.Model
	Fullname               string `json:"fullname" binding:"required"`
	Username               string `json:"username" binding:"required"`
	Email                  string `json:"email" gorm:"uniqueIndex" binding:"required,email"`
	Phone                  string `json:"phone"`
	Password               string `json:"password" binding:"required,min=8"`
	Role                   string `json:"role"`
	AcceptTerms            bool   `json:"acceptTerms"`
	SubscribeToNews        bool   `json:"subscribeToNews"`
	AccountActivated       bool   `json:"accountActivated"`
	AccountActivationToken string `json:"-"`
	PasswordResetToken     string `json:"-"`
}

type LoginData struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// RefreshToken is the server-side half of a session: the access JWT is
// short-lived and stateless, the refresh token is a stored row that can be
// rotated or revoked.
type RefreshToken struct {
	gorm.Model
	UserID    uint      `json:"userId" gorm:"index"`
	Token     string    `json:"token" gorm:"uniqueIndex"`
	ExpiresAt time.Time `json:"expiresAt"`
	Revoked   bool      `json:"revoked"`
}

func (t *RefreshToken) Usable(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}
