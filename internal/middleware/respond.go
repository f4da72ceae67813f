package middleware

import (
	"github.com/gin-gonic/gin"
)

// Error codes written directly by middleware. They match the codes used by
// the errors package so clients see one vocabulary.
const (
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeInternalServer  = "INTERNAL_SERVER_ERROR"
)

// abortWithError writes the standard error envelope and stops the chain.
// The errors package imports middleware, so the envelope is built here by hand.
func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":       code,
			"message":    message,
			"request_id": GetRequestID(c),
		},
	})
}
