package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webdesk/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/webdesk/internal/shared/id"
	"github.com/GriffinCanCode/webdesk/internal/shared/types"
)

var ErrNotFound = errors.New("not found")

// APIError is a non-2xx answer from the server
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) match 404s
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Options configures a Client
type Options struct {
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Logger       *zap.Logger
}

// DefaultOptions returns settings suited to an operator CLI
func DefaultOptions() Options {
	return Options{
		Timeout:      10 * time.Second,
		RetryMax:     3,
		RetryWaitMin: 200 * time.Millisecond,
		RetryWaitMax: 2 * time.Second,
	}
}

// Client talks to the desktop REST API. Transient failures are retried by
// the transport; repeated server failures open the breaker.
type Client struct {
	resty   *resty.Client
	breaker *resilience.Breaker
	logger  *zap.Logger
}

// New creates a client for the server at baseURL
func New(baseURL string, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.RetryMax
	retryClient.RetryWaitMin = opts.RetryWaitMin
	retryClient.RetryWaitMax = opts.RetryWaitMax
	retryClient.Logger = retryLogger{logger}
	// hand the last response back so 5xx bodies reach the caller
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	restyClient := resty.NewWithClient(retryClient.StandardClient())
	restyClient.
		SetBaseURL(baseURL).
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", "deskctl/1.0").
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)

	breaker := resilience.New("desktop-api", resilience.Settings{
		Probes:   1,
		Cooldown: 5 * time.Second,
		Trip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsFailure: isOutage,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		},
	})

	return &Client{resty: restyClient, breaker: breaker, logger: logger}
}

// Health returns the server's health document
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	return out, c.do(ctx, http.MethodGet, "/health", nil, &out)
}

// Windows returns the full snapshot
func (c *Client) Windows(ctx context.Context) (*types.Snapshot, error) {
	var snap types.Snapshot
	if err := c.do(ctx, http.MethodGet, "/windows", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Open opens a window and returns its id
func (c *Client) Open(ctx context.Context, req types.OpenRequest) (id.WindowID, error) {
	var out struct {
		WindowID id.WindowID `json:"window_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/windows", req, &out); err != nil {
		return "", err
	}
	return out.WindowID, nil
}

// Close closes a window and reports what the server did: removed,
// deferred or noop
func (c *Client) Close(ctx context.Context, wid id.WindowID) (string, error) {
	var out struct {
		Result string `json:"result"`
	}
	if err := c.do(ctx, http.MethodDelete, "/windows/"+wid.String(), nil, &out); err != nil {
		return "", err
	}
	return out.Result, nil
}

// Focus brings a window to the front
func (c *Client) Focus(ctx context.Context, wid id.WindowID) (bool, error) {
	return c.windowOp(ctx, wid, "focus")
}

// Minimize hides a window
func (c *Client) Minimize(ctx context.Context, wid id.WindowID) (bool, error) {
	return c.windowOp(ctx, wid, "minimize")
}

// Maximize fills the viewport
func (c *Client) Maximize(ctx context.Context, wid id.WindowID) (bool, error) {
	return c.windowOp(ctx, wid, "maximize")
}

// Restore un-minimizes or un-maximizes
func (c *Client) Restore(ctx context.Context, wid id.WindowID) (bool, error) {
	return c.windowOp(ctx, wid, "restore")
}

// RequestPopout marks a window as pending detach
func (c *Client) RequestPopout(ctx context.Context, wid id.WindowID) (bool, error) {
	return c.windowOp(ctx, wid, "popout")
}

// FocusNext cycles focus through the visible windows and returns the newly
// active one
func (c *Client) FocusNext(ctx context.Context, backward bool) (id.WindowID, error) {
	var out struct {
		ActiveID id.WindowID `json:"active_id"`
	}
	path := "/desktop/focus-next"
	if backward {
		path += "?backward=true"
	}
	err := c.do(ctx, http.MethodPost, path, nil, &out)
	return out.ActiveID, err
}

// Mode returns the desktop mode
func (c *Client) Mode(ctx context.Context) (string, error) {
	var out struct {
		Mode string `json:"mode"`
	}
	if err := c.do(ctx, http.MethodGet, "/desktop/mode", nil, &out); err != nil {
		return "", err
	}
	return out.Mode, nil
}

// SetMode changes the desktop mode
func (c *Client) SetMode(ctx context.Context, mode string) (bool, error) {
	var out struct {
		Applied bool `json:"applied"`
	}
	err := c.do(ctx, http.MethodPut, "/desktop/mode", types.ModeRequest{Mode: mode}, &out)
	return out.Applied, err
}

// Dock returns the dock entries in display order
func (c *Client) Dock(ctx context.Context) ([]types.DockItem, error) {
	var out struct {
		Items []types.DockItem `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/dock", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// ClickResponse is what a dock click did
type ClickResponse struct {
	Result   string      `json:"result"`
	AppKey   string      `json:"app_key"`
	WindowID id.WindowID `json:"window_id,omitempty"`
}

// ClickDock applies the launcher contract to one app
func (c *Client) ClickDock(ctx context.Context, appKey string) (ClickResponse, error) {
	var out ClickResponse
	err := c.do(ctx, http.MethodPost, "/dock/"+appKey+"/click", nil, &out)
	return out, err
}

func (c *Client) windowOp(ctx context.Context, wid id.WindowID, op string) (bool, error) {
	var out struct {
		Applied bool `json:"applied"`
	}
	err := c.do(ctx, http.MethodPost, "/windows/"+wid.String()+"/"+op, nil, &out)
	return out.Applied, err
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		apiErr := &APIError{}
		req := c.resty.R().
			SetContext(ctx).
			SetResult(result).
			SetError(apiErr)
		if body != nil {
			req.SetBody(body)
		}

		resp, err := req.Execute(method, path)
		if err != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
		if resp.IsError() {
			apiErr.Status = resp.StatusCode()
			if apiErr.Message == "" {
				apiErr.Message = http.StatusText(resp.StatusCode())
			}
			return apiErr
		}
		c.logger.Debug("api call",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode()),
			zap.Duration("duration", resp.Time()),
		)
		return nil
	})
}

// isOutage counts transport errors and 5xx answers against the breaker.
// Client errors are answers, not outages.
func isOutage(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= http.StatusInternalServerError
	}
	return true
}

// retryLogger adapts zap to retryablehttp.LeveledLogger
type retryLogger struct {
	l *zap.Logger
}

func (r retryLogger) Error(msg string, kv ...interface{}) { r.l.Sugar().Errorw(msg, kv...) }
func (r retryLogger) Info(msg string, kv ...interface{})  { r.l.Sugar().Debugw(msg, kv...) }
func (r retryLogger) Debug(msg string, kv ...interface{}) { r.l.Sugar().Debugw(msg, kv...) }
func (r retryLogger) Warn(msg string, kv ...interface{})  { r.l.Sugar().Warnw(msg, kv...) }
