package types

// OpenRequest represents a request to open a window
type OpenRequest struct {
	Title     string    `json:"title" binding:"required"`
	AppKey    string    `json:"app_key" binding:"required"`
	Position  *Position `json:"position,omitempty"`
	Size      *Size     `json:"size,omitempty"`
	Minimized bool      `json:"minimized"`
	Maximized bool      `json:"maximized"`
}

// GeometryRequest represents a drag or resize frame
type GeometryRequest struct {
	Position *Position `json:"position,omitempty"`
	Size     *Size     `json:"size,omitempty"`
}

// ModeRequest represents a desktop mode change
type ModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// KeyRequest represents a key press forwarded by the desktop page
type KeyRequest struct {
	Key   string `json:"key" binding:"required"`
	Ctrl  bool   `json:"ctrl"`
	Alt   bool   `json:"alt"`
	Shift bool   `json:"shift"`
	Meta  bool   `json:"meta"`
}

// DockMoveRequest represents a dock icon drag
type DockMoveRequest struct {
	Position int `json:"position"`
}

// ViewportRequest reports the desktop page's viewport size
type ViewportRequest struct {
	Width  int `json:"width" binding:"required"`
	Height int `json:"height" binding:"required"`
}
