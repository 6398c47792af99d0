package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/webdesk/internal/domain/dock"
	"github.com/GriffinCanCode/webdesk/internal/shared/types"
	"github.com/GriffinCanCode/webdesk/internal/shared/utils"
)

// ListDock returns the dock entries in display order
func (h *Handlers) ListDock(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.dock.Items()})
}

// ClickDock applies the launcher contract to one app
func (h *Handlers) ClickDock(c *gin.Context) {
	appKey := c.Param("appKey")
	if err := utils.ValidateAppKey(appKey); err != nil {
		badRequest(c, err)
		return
	}

	result, wid, err := h.dock.Click(appKey)
	if errors.Is(err, dock.ErrUnknownApp) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "app_key": appKey})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{"result": result, "app_key": appKey}
	if wid != "" {
		resp["window_id"] = wid
	}
	c.JSON(http.StatusOK, resp)
}

// MoveDock reorders one dock entry
func (h *Handlers) MoveDock(c *gin.Context) {
	appKey := c.Param("appKey")
	if err := utils.ValidateAppKey(appKey); err != nil {
		badRequest(c, err)
		return
	}
	var req types.DockMoveRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.dock.Move(appKey, req.Position); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "app_key": appKey})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": h.dock.Items()})
}
