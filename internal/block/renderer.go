package block

import (
	"fmt"
	"html/template"
	"log/slog"

	"github.com/leapstack-labs/leappage/pkg/core"
)

// Renderer renders blocks within one render session. A session is one
// page request: the mode, page and request are fixed for its lifetime.
type Renderer struct {
	resolver core.DescriptorResolver
	rc       *core.RenderContext
	logger   *slog.Logger
	runtime  *Runtime
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the renderer logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRenderer creates a renderer for one session. A nil rc means a live
// render with no page and an empty GET request.
func NewRenderer(resolver core.DescriptorResolver, rc *core.RenderContext, opts ...Option) *Renderer {
	if rc == nil {
		rc = core.NewRenderContext(core.ModeLive, nil, nil)
	}
	r := &Renderer{
		resolver: resolver,
		rc:       rc,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.runtime = NewRuntime(r, rc, r.logger)
	return r
}

// Mode returns the session mode.
func (r *Renderer) Mode() core.Mode {
	return r.rc.Mode
}

// Page returns the session page, possibly nil.
func (r *Renderer) Page() *core.Page {
	return r.rc.Page
}

// Render renders desc with the given instance data. id identifies the
// instance in editor mode and defaults to the slug.
func (r *Renderer) Render(desc *core.BlockDescriptor, data core.BlockData, id string) (string, error) {
	var (
		body string
		err  error
	)
	if desc.IsStatic() {
		body, err = r.renderStatic(desc, data)
	} else {
		body, err = r.runtime.Execute(desc, data)
	}
	if err != nil {
		return "", err
	}

	if r.rc.Mode.ForPageBuilder() {
		if id == "" {
			id = desc.Slug
		}
		return renderComponent(editorTag(desc, id, body))
	}

	if !desc.IsStatic() {
		if class, ok := data.StyleIdentifier(); ok {
			return renderComponent(styleWrapper(class, body))
		}
	}
	return body, nil
}

// RenderWithSlug resolves slug and renders it.
func (r *Renderer) RenderWithSlug(slug string, data core.BlockData, id string) (string, error) {
	desc, err := r.resolver.Resolve(slug)
	if err != nil {
		return "", err
	}
	return r.Render(desc, data, id)
}

// RenderSlug renders a sub-block from inside a view. data is optional and
// may be a map, a markup string or a BlockData.
func (r *Renderer) RenderSlug(slug string, data ...any) (template.HTML, error) {
	var bd core.BlockData
	if len(data) > 0 {
		var err error
		if bd, err = toBlockData(data[0]); err != nil {
			return "", fmt.Errorf("render %s: %w", slug, err)
		}
	}
	out, err := r.RenderWithSlug(slug, bd, "")
	if err != nil {
		return "", err
	}
	return template.HTML(out), nil //nolint:gosec // block output is trusted theme markup
}

// renderStatic returns instance markup when present, else the view file.
func (r *Renderer) renderStatic(desc *core.BlockDescriptor, data core.BlockData) (string, error) {
	if data.HTML != "" {
		return data.HTML, nil
	}
	if html, ok := data.Values["html"].(string); ok && html != "" {
		return html, nil
	}
	src, err := desc.ReadView()
	if err != nil {
		return "", err
	}
	return string(src), nil
}

func toBlockData(v any) (core.BlockData, error) {
	switch d := v.(type) {
	case nil:
		return core.BlockData{}, nil
	case core.BlockData:
		return d, nil
	case string:
		return core.HTMLData(d), nil
	case template.HTML:
		return core.HTMLData(string(d)), nil
	case map[string]any:
		return core.ValuesData(d), nil
	default:
		return core.BlockData{}, fmt.Errorf("unsupported block data %T", v)
	}
}
