package dock

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webdesk/internal/shared/types"
)

// DefaultPattern matches every supported catalog file under the root
const DefaultPattern = "**/*.{yaml,yml,toml,json}"

var (
	ErrUnknownApp    = errors.New("unknown app")
	ErrUnsupported   = errors.New("unsupported catalog format")
	ErrMissingAppKey = errors.New("catalog entry has no key")
)

// App is one launchable application
type App struct {
	Key    string `json:"key" yaml:"key" toml:"key"`
	Title  string `json:"title" yaml:"title" toml:"title"`
	Icon   string `json:"icon,omitempty" yaml:"icon,omitempty" toml:"icon,omitempty"`
	Width  int    `json:"width,omitempty" yaml:"width,omitempty" toml:"width,omitempty"`
	Height int    `json:"height,omitempty" yaml:"height,omitempty" toml:"height,omitempty"`
}

// Size returns the app's initial window size, or fallback when unset
func (a App) Size(fallback types.Size) types.Size {
	if a.Width <= 0 || a.Height <= 0 {
		return fallback
	}
	return types.Size{Width: a.Width, Height: a.Height}
}

type catalogFile struct {
	Apps []App `json:"apps" yaml:"apps" toml:"apps"`
}

// Catalog is the static, ordered list of dock entries
type Catalog struct {
	apps  []App
	index map[string]int
}

// NewCatalog builds a catalog. Later duplicates of a key are ignored.
func NewCatalog(apps []App) *Catalog {
	c := &Catalog{index: make(map[string]int, len(apps))}
	for _, app := range apps {
		if app.Key == "" {
			continue
		}
		if _, dup := c.index[app.Key]; dup {
			continue
		}
		if app.Title == "" {
			app.Title = app.Key
		}
		c.index[app.Key] = len(c.apps)
		c.apps = append(c.apps, app)
	}
	return c
}

// DefaultCatalog is used when no catalog files are found
func DefaultCatalog() *Catalog {
	return NewCatalog([]App{
		{Key: "files", Title: "Files", Icon: "📁", Width: 720, Height: 480},
		{Key: "terminal", Title: "Terminal", Icon: "🖥️", Width: 640, Height: 400},
		{Key: "notes", Title: "Notes", Icon: "📝", Width: 480, Height: 520},
		{Key: "browser", Title: "Browser", Icon: "🌐", Width: 960, Height: 640},
		{Key: "settings", Title: "Settings", Icon: "⚙️", Width: 560, Height: 440},
	})
}

// Get returns one entry
func (c *Catalog) Get(key string) (App, bool) {
	i, ok := c.index[key]
	if !ok {
		return App{}, false
	}
	return c.apps[i], true
}

// Len returns the number of entries
func (c *Catalog) Len() int {
	return len(c.apps)
}

// Keys returns app keys in catalog order
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.apps))
	for i, app := range c.apps {
		keys[i] = app.Key
	}
	return keys
}

// LoadCatalog reads every file under dir matching pattern. A missing dir
// or a dir with no usable entries yields the default catalog. Files that
// fail to parse are logged and skipped.
func LoadCatalog(dir, pattern string, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir == "" {
		return DefaultCatalog(), nil
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		logger.Warn("catalog directory not found, using defaults", zap.String("dir", dir))
		return DefaultCatalog(), nil
	}
	return LoadCatalogFS(os.DirFS(dir), pattern, logger)
}

// LoadCatalogFS is LoadCatalog over an fs.FS
func LoadCatalogFS(fsys fs.FS, pattern string, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pattern == "" {
		pattern = DefaultPattern
	}

	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("glob catalog %q: %w", pattern, err)
	}
	sort.Strings(matches)

	var apps []App
	var loaded, failed int
	for _, name := range matches {
		entries, err := loadFile(fsys, name)
		if err != nil {
			logger.Warn("failed to load catalog file", zap.String("file", name), zap.Error(err))
			failed++
			continue
		}
		apps = append(apps, entries...)
		loaded++
	}

	catalog := NewCatalog(apps)
	logger.Info("catalog loaded",
		zap.Int("files", loaded),
		zap.Int("failed", failed),
		zap.Int("apps", catalog.Len()),
	)
	if catalog.Len() == 0 {
		return DefaultCatalog(), nil
	}
	return catalog, nil
}

func loadFile(fsys fs.FS, name string) ([]App, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	apps, err := decode(path.Ext(name), data)
	if err != nil {
		return nil, err
	}
	for i, app := range apps {
		if strings.TrimSpace(app.Key) == "" {
			return nil, fmt.Errorf("entry %d: %w", i, ErrMissingAppKey)
		}
	}
	return apps, nil
}

func decode(ext string, data []byte) ([]App, error) {
	var file catalogFile
	var err error

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	case ".toml":
		err = toml.Unmarshal(data, &file)
	case ".json":
		err = sonic.Unmarshal(data, &file)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
	if err != nil {
		return nil, err
	}
	return file.Apps, nil
}
