package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Respond writes data as JSON with the given status code.
func Respond(ctx *gin.Context, status int, data gin.H) {
	ctx.JSON(status, data)
}

// Success writes a 200 response.
func Success(ctx *gin.Context, data gin.H) {
	Respond(ctx, http.StatusOK, data)
}

// Message writes a body that only carries a human readable message.
func Message(ctx *gin.Context, status int, message string) {
	Respond(ctx, status, gin.H{"message": message})
}

// Error writes an expected failure, such as a validation problem or a missing record.
func Error(ctx *gin.Context, status int, message string) {
	Message(ctx, status, message)
}

// ErrorWithCause writes an unexpected failure together with the underlying error text.
func ErrorWithCause(ctx *gin.Context, status int, message string, err error) {
	body := gin.H{"message": message}
	if err != nil {
		body["error"] = err.Error()
	}
	Respond(ctx, status, body)
}

// ValidationFailed writes the field errors collected by a Checker.
func ValidationFailed(ctx *gin.Context, errs []FieldError) {
	Respond(ctx, http.StatusBadRequest, gin.H{"errors": errs})
}
