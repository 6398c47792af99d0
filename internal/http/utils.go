package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/webdesk/internal/shared/id"
	"github.com/GriffinCanCode/webdesk/internal/shared/utils"
)

// windowParam reads and validates the :id path parameter. On failure it
// writes a 400 and returns false.
func windowParam(c *gin.Context) (id.WindowID, bool) {
	raw := c.Param("id")
	if err := utils.ValidateWindowID(raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return id.WindowID(raw), true
}

// bindJSON decodes a size-limited request body into v. On failure it
// writes a 400 and returns false.
func bindJSON(c *gin.Context, v any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, utils.MaxBodySize)
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// applied is the response for window operations. Unknown windows are not
// an error: the operation is simply not applied.
func applied(c *gin.Context, wid id.WindowID, ok bool) {
	c.JSON(http.StatusOK, gin.H{
		"applied":   ok,
		"window_id": wid,
	})
}
