package http

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/webdesk/internal/shared/id"
	"github.com/GriffinCanCode/webdesk/internal/ws"
)

// ShellTemplate is the name of the detached window page
const ShellTemplate = "popout.html"

//go:embed templates/*.html
var templateFS embed.FS

var shellTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type shellPage struct {
	WindowID   string
	Title      string
	AppKey     string
	SocketPath string
	Param      string
	Missing    bool
}

// ShellPath is where the detached context for wid is served
func ShellPath(wid id.WindowID) string {
	return "/popout/" + wid.String()
}

// PopoutShell serves the page a detached browser context loads. The page
// connects to the popout socket and speaks the protocol for one window.
// A window that no longer exists gets a 404 page that closes itself.
func (h *Handlers) PopoutShell(c *gin.Context) {
	wid, ok := windowParam(c)
	if !ok {
		return
	}

	page := shellPage{
		WindowID:   wid.String(),
		SocketPath: ws.PopoutPath,
		Param:      ws.WindowParam,
	}
	w, found := h.core.Get(wid)
	if !found {
		page.Missing = true
		page.Title = "Window closed"
		c.HTML(http.StatusNotFound, ShellTemplate, page)
		return
	}
	page.Title = w.Title
	page.AppKey = w.AppKey
	c.HTML(http.StatusOK, ShellTemplate, page)
}
