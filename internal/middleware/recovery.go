package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jonpan30062/newsaferoute/internal/logger"
)

// Recovery turns a panic in any handler into a 500 with the standard error
// envelope. The stack is logged, never returned.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			requestLogger := GetLogger(c)
			if requestLogger == nil {
				requestLogger = log
			}

			fields := map[string]interface{}{
				"request_id": GetRequestID(c),
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"stack":      string(debug.Stack()),
			}
			if identity, ok := GetIdentity(c); ok {
				fields["user_id"] = identity.UserID
			}
			requestLogger.Error("Panic recovered", fmt.Errorf("panic: %v", recovered), fields)

			abortWithError(c, http.StatusInternalServerError, CodeInternalServer, "An unexpected error occurred")
		}()

		c.Next()
	}
}
