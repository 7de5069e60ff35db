package page

import (
	"html/template"
	"log/slog"

	"github.com/leapstack-labs/leappage/internal/block"
	"github.com/leapstack-labs/leappage/pkg/core"
	"github.com/valyala/bytebufferpool"
)

// Theme supplies block descriptors and an optional page layout.
type Theme interface {
	core.DescriptorResolver
	Layout() (string, bool, error)
}

// Renderer renders pages in Live mode.
type Renderer struct {
	theme  Theme
	logger *slog.Logger
	values map[string]any
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithValues sets the auxiliary render context values block controllers
// receive with every request.
func WithValues(values map[string]any) Option {
	return func(r *Renderer) {
		r.values = values
	}
}

// NewRenderer creates a page renderer for theme.
func NewRenderer(theme Theme, logger *slog.Logger, opts ...Option) *Renderer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Renderer{theme: theme, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Body renders only the composed page content.
func (r *Renderer) Body(p *core.Page, req *core.Request) (string, error) {
	rc := core.NewRenderContext(core.ModeLive, p, req).WithValues(r.values)
	blocks := block.NewRenderer(r.theme, rc, block.WithLogger(r.logger))

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := Compose(buf, blocks, p.Data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Render renders the full document for a page.
func (r *Renderer) Render(p *core.Page, req *core.Request) (string, error) {
	body, err := r.Body(p, req)
	if err != nil {
		return "", err
	}

	layout, _, err := r.theme.Layout()
	if err != nil {
		return "", err
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	err = executeLayout(buf, layout, LayoutData{
		Title: p.Title(),
		CSS:   template.CSS(p.Data.CSS), //nolint:gosec // editor-compiled stylesheet
		Body:  template.HTML(body),     //nolint:gosec // composed from trusted theme blocks
	})
	if err != nil {
		return "", err
	}

	r.logger.Debug("page rendered", "page", p.ID, "bytes", buf.Len())
	return buf.String(), nil
}
