package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webdesk/internal/domain/mode"
	"github.com/GriffinCanCode/webdesk/internal/shared/types"
	"github.com/GriffinCanCode/webdesk/internal/shared/utils"
)

// GetMode returns the desktop mode and the layers it renders
func (h *Handlers) GetMode(c *gin.Context) {
	m := h.core.CurrentMode()
	c.JSON(http.StatusOK, gin.H{
		"mode":   m,
		"layers": m.Layers(),
		"modes":  mode.All(),
	})
}

// SetMode changes the desktop mode. Selecting a mode collapses the picker.
func (h *Handlers) SetMode(c *gin.Context) {
	var req types.ModeRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := mode.Parse(req.Mode)
	if err != nil {
		badRequest(c, err)
		return
	}

	ok := h.core.SetMode(m)
	h.picker.Collapse()
	c.JSON(http.StatusOK, gin.H{
		"applied": ok,
		"mode":    h.core.CurrentMode(),
	})
}

// HandleKey is the keyboard surface. Mode keys change the mode in the
// core; the picker chord toggles the picker here.
func (h *Handlers) HandleKey(c *gin.Context) {
	var req types.KeyRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := utils.ValidateKeyName(req.Key); err != nil {
		badRequest(c, err)
		return
	}

	action := h.core.HandleKey(mode.Key{
		Name:  strings.TrimSpace(req.Key),
		Ctrl:  req.Ctrl,
		Alt:   req.Alt,
		Shift: req.Shift,
		Meta:  req.Meta,
	})
	switch action {
	case mode.ActionTogglePicker:
		h.picker.Toggle()
	case mode.ActionSetMode:
		h.picker.Collapse()
	}
	h.logger.Debug("key handled", zap.String("key", req.Key), zap.Stringer("action", action))

	c.JSON(http.StatusOK, gin.H{
		"handled":         action != mode.ActionNone,
		"action":          action.String(),
		"mode":            h.core.CurrentMode(),
		"picker_expanded": h.picker.Expanded(),
	})
}

// GetPicker returns the picker flag
func (h *Handlers) GetPicker(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"expanded": h.picker.Expanded()})
}

// FocusNext cycles focus through the visible windows. ?backward=true walks
// the stack the other way.
func (h *Handlers) FocusNext(c *gin.Context) {
	ok := h.core.FocusNext(c.Query("backward") == "true")
	c.JSON(http.StatusOK, gin.H{
		"applied":   ok,
		"active_id": h.core.Snapshot().ActiveID,
	})
}

// SetViewport records the desktop page's size. Maximized windows follow it.
func (h *Handlers) SetViewport(c *gin.Context) {
	var req types.ViewportRequest
	if !bindJSON(c, &req) {
		return
	}
	size := types.Size{Width: req.Width, Height: req.Height}
	if err := utils.ValidateSize(size); err != nil {
		badRequest(c, err)
		return
	}
	h.core.SetViewport(size)
	c.JSON(http.StatusOK, gin.H{"applied": true, "viewport": size})
}
