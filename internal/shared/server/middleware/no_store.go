package middleware

import "github.com/gin-gonic/gin"

// NoStore marks every response as uncacheable. Set before the handler runs so
// aborted requests carry the headers too.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Cache-Control", "no-store")
		h.Set("Pragma", "no-cache")
		c.Next()
	}
}
