package http

import (
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webdesk/internal/domain/desktop"
	"github.com/GriffinCanCode/webdesk/internal/domain/dock"
	"github.com/GriffinCanCode/webdesk/internal/domain/mode"
	"github.com/GriffinCanCode/webdesk/internal/domain/window"
	"github.com/GriffinCanCode/webdesk/internal/shared/id"
	"github.com/GriffinCanCode/webdesk/internal/shared/types"
	"github.com/GriffinCanCode/webdesk/internal/shared/utils"
)

// Version is reported by the health endpoints
const Version = "0.3.0"

// PopoutStatus reports whether a detached context is attached to a window
type PopoutStatus interface {
	Connected(wid id.WindowID) bool
}

// Handlers contains all HTTP handlers
type Handlers struct {
	core    *desktop.Core
	dock    *dock.Dock
	picker  *mode.Picker
	popouts PopoutStatus
	logger  *zap.Logger
	started time.Time
}

// NewHandlers creates a new handler set
func NewHandlers(core *desktop.Core, dk *dock.Dock, picker *mode.Picker, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	if picker == nil {
		picker = &mode.Picker{}
	}
	return &Handlers{
		core:    core,
		dock:    dk,
		picker:  picker,
		logger:  logger,
		started: time.Now(),
	}
}

// SetPopoutStatus wires the popout socket hub used by GetPopout
func (h *Handlers) SetPopoutStatus(p PopoutStatus) {
	h.popouts = p
}

// Templates returns the HTML templates served by the handlers
func Templates() *template.Template {
	return shellTemplates
}

// Root handles the liveness probe
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "webdesk",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	snap := h.core.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"version":          Version,
		"uptime_seconds":   int64(time.Since(h.started).Seconds()),
		"snapshot_version": snap.Version,
		"mode":             snap.Mode,
		"desktop":          snap.Stats(),
		"dock_items":       len(h.dock.Items()),
	})
}

// ListWindows returns the full snapshot
func (h *Handlers) ListWindows(c *gin.Context) {
	c.JSON(http.StatusOK, h.core.Snapshot())
}

// OpenWindow opens a window. Missing geometry is filled from the dock's
// placement for the app.
func (h *Handlers) OpenWindow(c *gin.Context) {
	var req types.OpenRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := utils.ValidateAppKey(req.AppKey); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateTitle(req.Title); err != nil {
		badRequest(c, err)
		return
	}

	pos, size := h.dock.Placement(req.AppKey)
	if req.Position != nil {
		if err := utils.ValidatePosition(*req.Position); err != nil {
			badRequest(c, err)
			return
		}
		pos = *req.Position
	}
	if req.Size != nil {
		if err := utils.ValidateSize(*req.Size); err != nil {
			badRequest(c, err)
			return
		}
		size = *req.Size
	}

	wid := h.core.Open(types.OpenSpec{
		Title:     req.Title,
		AppKey:    req.AppKey,
		Position:  pos,
		Size:      size,
		Minimized: req.Minimized,
		Maximized: req.Maximized,
	})
	w, _ := h.core.Get(wid)

	c.JSON(http.StatusCreated, gin.H{
		"window_id": wid,
		"window":    w,
	})
}

// CloseWindow closes a window. A popped-out window is only asked to close;
// its record goes away when the detached context confirms.
func (h *Handlers) CloseWindow(c *gin.Context) {
	wid, ok := windowParam(c)
	if !ok {
		return
	}
	result := h.core.Close(wid)
	c.JSON(http.StatusOK, gin.H{
		"applied":   result != window.CloseNoop,
		"result":    result.String(),
		"window_id": wid,
	})
}

// FocusWindow brings a window to the front
func (h *Handlers) FocusWindow(c *gin.Context) {
	h.windowOp(c, h.core.Focus)
}

// MinimizeWindow hides a window
func (h *Handlers) MinimizeWindow(c *gin.Context) {
	h.windowOp(c, h.core.Minimize)
}

// MaximizeWindow fills the viewport
func (h *Handlers) MaximizeWindow(c *gin.Context) {
	h.windowOp(c, h.core.Maximize)
}

// RestoreWindow un-minimizes or un-maximizes
func (h *Handlers) RestoreWindow(c *gin.Context) {
	h.windowOp(c, h.core.Restore)
}

// UpdateGeometry applies one drag or resize frame
func (h *Handlers) UpdateGeometry(c *gin.Context) {
	wid, ok := windowParam(c)
	if !ok {
		return
	}
	var req types.GeometryRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Position == nil && req.Size == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "position or size is required"})
		return
	}
	if req.Position != nil {
		if err := utils.ValidatePosition(*req.Position); err != nil {
			badRequest(c, err)
			return
		}
	}
	if req.Size != nil {
		if err := utils.ValidateSize(*req.Size); err != nil {
			badRequest(c, err)
			return
		}
	}
	applied(c, wid, h.core.UpdateGeometry(wid, req.Position, req.Size))
}

// RequestPopout marks a window as pending detach and returns the shell
// URL the desktop page should open.
func (h *Handlers) RequestPopout(c *gin.Context) {
	wid, ok := windowParam(c)
	if !ok {
		return
	}
	ok = h.core.RequestPopout(wid)
	resp := gin.H{"applied": ok, "window_id": wid}
	if ok {
		resp["shell_url"] = ShellPath(wid)
	}
	c.JSON(http.StatusOK, resp)
}

// GetPopout reports the detach state of a window and whether its detached
// context is connected.
func (h *Handlers) GetPopout(c *gin.Context) {
	wid, ok := windowParam(c)
	if !ok {
		return
	}
	w, ok := h.core.Get(wid)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "window not found", "window_id": wid})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"window_id":  wid,
		"pending":    w.PopoutPending,
		"popped_out": w.IsPoppedOut,
		"connected":  h.popouts != nil && h.popouts.Connected(wid),
	})
}

// CancelPopout clears a pending detach
func (h *Handlers) CancelPopout(c *gin.Context) {
	h.windowOp(c, h.core.CancelPopout)
}

func (h *Handlers) windowOp(c *gin.Context, op func(id.WindowID) bool) {
	wid, ok := windowParam(c)
	if !ok {
		return
	}
	applied(c, wid, op(wid))
}
