package utils

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Respond writes the success envelope shared by every endpoint.
func Respond(ctx *gin.Context, status int, message string, data any) {
	ctx.JSON(status, gin.H{
		"success":   true,
		"message":   message,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// RespondError translates a service error into the error envelope.
// Internal errors are logged server-side with their cause; the client
// only ever sees the generic message.
func RespondError(ctx *gin.Context, err error) {
	kind := KindOf(err)
	if kind == KindInternal {
		log.Println("internal error:", err)
	}
	status := kind.HTTPStatus()
	ctx.JSON(status, gin.H{
		"success":    false,
		"message":    MessageOf(err),
		"error":      kind.String(),
		"statusCode": status,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"path":       ctx.Request.URL.Path,
	})
}
