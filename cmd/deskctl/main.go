package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webdesk/internal/client"
	"github.com/GriffinCanCode/webdesk/internal/domain/popout"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/logging"
	"github.com/GriffinCanCode/webdesk/internal/shared/id"
	"github.com/GriffinCanCode/webdesk/internal/shared/types"
	"github.com/GriffinCanCode/webdesk/internal/ws"
)

const usage = `usage: deskctl [flags] <command> [args]

commands:
  health                 server health
  list                   list windows
  open <app> [title]     open a window
  focus <id>             focus a window
  minimize <id>          minimize a window
  maximize <id>          maximize a window
  restore <id>           restore a window
  close <id>             close a window
  next [back]            cycle focus through visible windows
  mode [name]            show or set the desktop mode
  dock                   list dock entries
  click <app>            click a dock entry
  attach <id>            pop a window out and host it here until interrupted

flags:
`

func main() {
	server := flag.String("server", envOr("DESKCTL_SERVER", "http://localhost:8000"), "Desktop server URL")
	timeout := flag.Duration("timeout", 10*time.Second, "Request timeout")
	asJSON := flag.Bool("json", false, "Print raw JSON")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	logger := logging.NewNop()
	if *verbose {
		logger = logging.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()

	opts := client.DefaultOptions()
	opts.Timeout = *timeout
	opts.Logger = logger.Component("client")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := &cli{
		api:    client.New(*server, opts),
		server: *server,
		out:    os.Stdout,
		json:   *asJSON,
		logger: logger.Component("deskctl"),
	}
	if err := cli.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "deskctl:", err)
		os.Exit(1)
	}
}

type cli struct {
	api    *client.Client
	server string
	out    io.Writer
	json   bool
	logger *zap.Logger
}

var errUsage = errors.New("wrong number of arguments")

func (c *cli) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "health":
		health, err := c.api.Health(ctx)
		if err != nil {
			return err
		}
		return c.printJSON(health)
	case "list":
		snap, err := c.api.Windows(ctx)
		if err != nil {
			return err
		}
		if c.json {
			return c.printJSON(snap)
		}
		return c.printWindows(snap)
	case "open":
		if len(args) < 1 || len(args) > 2 {
			return errUsage
		}
		title := args[0]
		if len(args) == 2 {
			title = args[1]
		}
		wid, err := c.api.Open(ctx, types.OpenRequest{Title: title, AppKey: args[0]})
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, wid)
		return nil
	case "focus", "minimize", "maximize", "restore":
		wid, err := windowArg(args)
		if err != nil {
			return err
		}
		ops := map[string]func(context.Context, id.WindowID) (bool, error){
			"focus":    c.api.Focus,
			"minimize": c.api.Minimize,
			"maximize": c.api.Maximize,
			"restore":  c.api.Restore,
		}
		ok, err := ops[cmd](ctx, wid)
		if err != nil {
			return err
		}
		return c.printApplied(ok)
	case "close":
		wid, err := windowArg(args)
		if err != nil {
			return err
		}
		result, err := c.api.Close(ctx, wid)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, result)
		return nil
	case "next":
		if len(args) > 1 || (len(args) == 1 && args[0] != "back") {
			return errUsage
		}
		active, err := c.api.FocusNext(ctx, len(args) == 1)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, active)
		return nil
	case "mode":
		if len(args) == 0 {
			m, err := c.api.Mode(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, m)
			return nil
		}
		ok, err := c.api.SetMode(ctx, args[0])
		if err != nil {
			return err
		}
		return c.printApplied(ok)
	case "dock":
		items, err := c.api.Dock(ctx)
		if err != nil {
			return err
		}
		if c.json {
			return c.printJSON(items)
		}
		return c.printDock(items)
	case "click":
		if len(args) != 1 {
			return errUsage
		}
		resp, err := c.api.ClickDock(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, resp.Result, resp.WindowID)
		return nil
	case "attach":
		wid, err := windowArg(args)
		if err != nil {
			return err
		}
		return c.attach(ctx, wid)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// attach hosts a window in this process the way a popped-out browser tab
// would: request the popout, connect, announce ready, and hand the window
// back on interrupt.
func (c *cli) attach(ctx context.Context, wid id.WindowID) error {
	ok, err := c.api.RequestPopout(ctx, wid)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("window %s cannot be popped out", wid)
	}

	transport, err := ws.Dial(ctx, c.server, wid)
	if err != nil {
		return err
	}
	detached := popout.NewDetached(wid, transport, c.logger)

	listenCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- detached.Listen(listenCtx) }()

	fmt.Fprintf(c.out, "attached %s, interrupt to return it\n", wid)
	select {
	case <-ctx.Done():
		if err := detached.Return(); err != nil && !errors.Is(err, popout.ErrDetachedClosed) {
			return err
		}
		fmt.Fprintln(c.out, "returned")
	case <-detached.Done():
		fmt.Fprintln(c.out, "closed by desktop")
	case err := <-errCh:
		detached.Unload()
		return err
	}
	return nil
}

func (c *cli) printWindows(snap *types.Snapshot) error {
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "mode: %s\tversion: %d\n", snap.Mode, snap.Version)
	fmt.Fprintln(tw, "ID\tAPP\tTITLE\tSTATE\tZ\tGEOMETRY\tAGE")
	now := time.Now()
	for _, w := range snap.Windows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%dx%d+%d+%d\t%s\n",
			w.ID, w.AppKey, w.Title, windowState(w, snap.ActiveID), w.ZOrder,
			w.Size.Width, w.Size.Height, w.Position.X, w.Position.Y,
			windowAge(w.ID, now))
	}
	return tw.Flush()
}

func (c *cli) printDock(items []types.DockItem) error {
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tAPP\tTITLE\tRUNNING\tACTIVE")
	for _, it := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%t\n", it.Position, it.AppKey, it.Title, it.IsRunning, it.IsActive)
	}
	return tw.Flush()
}

func (c *cli) printApplied(ok bool) error {
	if c.json {
		return c.printJSON(map[string]bool{"applied": ok})
	}
	if ok {
		fmt.Fprintln(c.out, "applied")
	} else {
		fmt.Fprintln(c.out, "not applied")
	}
	return nil
}

func (c *cli) printJSON(v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, string(data))
	return err
}

func windowState(w *types.Window, active id.WindowID) string {
	switch {
	case w.IsPoppedOut:
		return "popped-out"
	case w.PopoutPending:
		return "popout-pending"
	case w.IsMinimized:
		return "minimized"
	case w.IsMaximized && w.ID == active:
		return "maximized,active"
	case w.IsMaximized:
		return "maximized"
	case w.ID == active:
		return "active"
	default:
		return "normal"
	}
}

// windowAge reads the open time out of the window id
func windowAge(wid id.WindowID, now time.Time) string {
	opened, err := id.Timestamp(wid.String())
	if err != nil {
		return "-"
	}
	age := now.Sub(opened).Truncate(time.Second)
	if age < 0 {
		age = 0
	}
	return age.String()
}

func windowArg(args []string) (id.WindowID, error) {
	if len(args) != 1 {
		return "", errUsage
	}
	if !id.IsWindowID(args[0]) {
		return "", fmt.Errorf("%q is not a window id", args[0])
	}
	return id.WindowID(args[0]), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
