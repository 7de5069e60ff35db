package theme

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/leappage/internal/starlark"
	"github.com/leapstack-labs/leappage/pkg/core"
)

// Theme is a loaded theme. It implements core.DescriptorResolver.
type Theme struct {
	name     string
	fsys     fs.FS
	loader   *Loader
	registry *Registry
	logger   *slog.Logger
}

var _ core.DescriptorResolver = (*Theme)(nil)

// Option configures a Theme.
type Option func(*options)

type options struct {
	name   string
	engine *starlark.Engine
	logger *slog.Logger
}

// WithName sets the theme name used in logs.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithEngine sets the script engine bound to dynamic blocks.
func WithEngine(engine *starlark.Engine) Option {
	return func(o *options) { o.engine = engine }
}

// WithLogger sets the theme logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Open loads the theme rooted at fsys.
func Open(fsys fs.FS, opts ...Option) (*Theme, error) {
	o := options{name: "theme"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	t := &Theme{
		name:     o.name,
		fsys:     fsys,
		loader:   NewLoader(fsys, o.engine),
		registry: NewRegistry(),
		logger:   o.logger,
	}
	if err := t.Reload(); err != nil {
		return nil, err
	}
	return t, nil
}

// OpenDir loads <themesDir>/<name> from disk.
func OpenDir(themesDir, name string, opts ...Option) (*Theme, error) {
	dir := filepath.Join(themesDir, name)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("theme %s: %w", name, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("theme %s: %s is not a directory", name, dir)
	}
	return Open(os.DirFS(dir), append([]Option{WithName(name)}, opts...)...)
}

// Name returns the theme name.
func (t *Theme) Name() string {
	return t.name
}

// Reload rescans the theme and swaps in the new descriptors. On error the
// previous descriptors stay active.
func (t *Theme) Reload() error {
	descs, err := t.loader.Load()
	if err != nil {
		return err
	}
	t.registry.Replace(descs)
	t.logger.Debug("theme loaded", "theme", t.name, "blocks", len(descs))
	return nil
}

// Register adds a Go-implemented block that survives reloads.
func (t *Theme) Register(desc *core.BlockDescriptor) error {
	return t.registry.Register(desc)
}

// Resolve returns the descriptor for slug.
func (t *Theme) Resolve(slug string) (*core.BlockDescriptor, error) {
	desc, ok := t.registry.Get(slug)
	if !ok {
		return nil, &core.NotFoundError{Kind: "block", Key: slug}
	}
	return desc, nil
}

// ListAll returns every block, sorted by slug.
func (t *Theme) ListAll() []*core.BlockDescriptor {
	return t.registry.List()
}

// Layout returns the theme page layout, if the theme has one.
func (t *Theme) Layout() (string, bool, error) {
	content, err := fs.ReadFile(t.fsys, LayoutFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("theme %s: read layout: %w", t.name, err)
	}
	return string(content), true, nil
}
