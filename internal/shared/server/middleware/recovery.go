package middleware

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"mindwell-backend/internal/shared/server/respond"
	"mindwell-backend/internal/shared/telemetry"
)

// Recovery turns a handler panic into the standard 500 envelope.
// Broken client connections are handled by gin and never reach the log.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		telemetry.Error("panic", map[string]any{
			"request_id": RequestIDFromContext(c),
			"user_id":    UserIDFromContext(c),
			"route":      c.FullPath(),
			"panic":      fmt.Sprint(rec),
			"stack":      string(debug.Stack()),
		})
		respond.Fail(c, respond.ErrInternal)
	})
}
