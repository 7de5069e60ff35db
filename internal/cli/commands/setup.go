package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leappage/internal/block/builtin"
	"github.com/leapstack-labs/leappage/internal/builder"
	"github.com/leapstack-labs/leappage/internal/cli/output"
	"github.com/leapstack-labs/leappage/internal/config"
	"github.com/leapstack-labs/leappage/internal/starlark"
	"github.com/leapstack-labs/leappage/internal/store"
	"github.com/leapstack-labs/leappage/internal/theme"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext reads the config and logger stored by the root command.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}, nil
}

// OpenTheme loads the configured theme with a script engine bounded by
// scripts.max_steps, plus the built-in blocks it does not override.
func (c *CommandContext) OpenTheme() (*theme.Theme, error) {
	engine := starlark.NewEngine(
		starlark.WithMaxSteps(c.Cfg.Scripts.MaxSteps),
		starlark.WithLogger(c.Logger),
	)
	th, err := theme.OpenDir(c.Cfg.ThemesDir, c.Cfg.Theme,
		theme.WithEngine(engine),
		theme.WithLogger(c.Logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load theme: %w", err)
	}
	added, err := builtin.Register(th)
	if err != nil {
		return nil, fmt.Errorf("failed to register built-in blocks: %w", err)
	}
	c.Logger.Debug("built-in blocks registered", "theme", th.Name(), "blocks", added)
	return th, nil
}

// OpenStore opens the page store and applies pending migrations.
// The caller must close the store.
func (c *CommandContext) OpenStore(ctx context.Context) (*store.Store, error) {
	st, err := store.Open(c.Cfg.Database.Driver, c.Cfg.Database.DSN, c.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open page store: %w", err)
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// Site bundles the theme, store and page builder.
type Site struct {
	Theme   *theme.Theme
	Store   *store.Store
	Builder *builder.PageBuilder
}

// OpenSite opens everything needed to render pages. Returns a cleanup
// function that must be called (typically via defer).
func (c *CommandContext) OpenSite(ctx context.Context) (*Site, func(), error) {
	th, err := c.OpenTheme()
	if err != nil {
		return nil, nil, err
	}
	st, err := c.OpenStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	b, err := builder.New(th, st,
		builder.WithLogger(c.Logger),
		builder.WithSite(c.Cfg.Site),
	)
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}
	cleanup := func() {
		_ = st.Close()
	}
	return &Site{Theme: th, Store: st, Builder: b}, cleanup, nil
}
