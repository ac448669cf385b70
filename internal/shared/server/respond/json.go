package respond

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"mindwell-backend/internal/shared/util"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusOK, payload)
}

// Attachment writes body as a file download named fileName.
func Attachment(c *gin.Context, fileName, contentType string, body []byte) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		name = "download"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, contentType, body)
}
