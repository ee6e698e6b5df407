package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateCode returns a hex string of length 2*size, used for email
// verification and password reset tokens.
func GenerateCode(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// NewOrderNumber builds a short human-readable order number.
func NewOrderNumber() string {
	id := uuid.New().String()
	return fmt.Sprintf("SKH-%s", strings.ToUpper(id[:8]))
}

// NewPaymentReference returns a unique payment reference.
func NewPaymentReference() string {
	return uuid.New().String()
}
