package http

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the REST API and the popout shell on r
func RegisterRoutes(r *gin.Engine, h *Handlers) {
	r.SetHTMLTemplate(Templates())

	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	windows := r.Group("/windows")
	{
		windows.GET("", h.ListWindows)
		windows.POST("", h.OpenWindow)
		windows.DELETE("/:id", h.CloseWindow)
		windows.POST("/:id/focus", h.FocusWindow)
		windows.POST("/:id/minimize", h.MinimizeWindow)
		windows.POST("/:id/maximize", h.MaximizeWindow)
		windows.POST("/:id/restore", h.RestoreWindow)
		windows.PATCH("/:id/geometry", h.UpdateGeometry)
		windows.GET("/:id/popout", h.GetPopout)
		windows.POST("/:id/popout", h.RequestPopout)
		windows.DELETE("/:id/popout", h.CancelPopout)
	}

	desk := r.Group("/desktop")
	{
		desk.GET("/mode", h.GetMode)
		desk.PUT("/mode", h.SetMode)
		desk.POST("/keys", h.HandleKey)
		desk.GET("/picker", h.GetPicker)
		desk.POST("/focus-next", h.FocusNext)
		desk.PUT("/viewport", h.SetViewport)
	}

	dk := r.Group("/dock")
	{
		dk.GET("", h.ListDock)
		dk.POST("/:appKey/click", h.ClickDock)
		dk.PUT("/:appKey/position", h.MoveDock)
	}

	r.GET("/popout/:id", h.PopoutShell)
}
