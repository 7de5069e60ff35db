// Package builder implements the page builder: it opens the editor,
// persists edits and re-renders single blocks for the editor canvas.
package builder

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/leapstack-labs/leappage/internal/block"
	"github.com/leapstack-labs/leappage/internal/page"
	"github.com/leapstack-labs/leappage/pkg/core"
	"github.com/valyala/bytebufferpool"
)

// Editor actions.
const (
	ActionEdit        = "edit"
	ActionStore       = "store"
	ActionRenderBlock = "renderBlock"
)

// PageBuilder dispatches page builder requests.
type PageBuilder struct {
	theme  page.Theme
	store  core.PageStore
	pages  *page.Renderer
	logger *slog.Logger
	prefix string
	script string
	site   map[string]any
	values map[string]any
}

// Option configures a PageBuilder.
type Option func(*PageBuilder)

// WithLogger sets the builder logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *PageBuilder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithPrefix sets the URL prefix the builder is mounted at.
func WithPrefix(prefix string) Option {
	return func(b *PageBuilder) {
		b.prefix = strings.TrimSuffix(prefix, "/")
	}
}

// WithSite sets site-wide values exposed to block controllers under the
// "site" key of the request context.
func WithSite(site map[string]any) Option {
	return func(b *PageBuilder) {
		b.site = site
	}
}

// ContextValues returns the auxiliary render context for theme: its name
// under "theme" when it has one, and site under "site".
func ContextValues(theme page.Theme, site map[string]any) map[string]any {
	values := map[string]any{"site": map[string]any{}}
	if named, ok := theme.(interface{ Name() string }); ok {
		values["theme"] = named.Name()
	}
	if site != nil {
		values["site"] = site
	}
	return values
}

// New creates a page builder. The editor client script is minified once here.
func New(theme page.Theme, store core.PageStore, opts ...Option) (*PageBuilder, error) {
	b := &PageBuilder{
		theme:  theme,
		store:  store,
		logger: slog.New(slog.DiscardHandler),
		prefix: "/pagebuilder",
	}
	for _, opt := range opts {
		opt(b)
	}
	b.values = ContextValues(theme, b.site)
	b.pages = page.NewRenderer(theme, b.logger, page.WithValues(b.values))

	script, err := minifyScript(editorSource)
	if err != nil {
		return nil, err
	}
	b.script = script
	return b, nil
}

// HandleRequest runs one builder action for the page named by the "page"
// parameter. A missing page yields a 404 response, an unknown action an
// empty 200. Errors are render failures the transport must report.
func (b *PageBuilder) HandleRequest(ctx context.Context, action string, req *core.Request) (*Response, error) {
	if req == nil {
		req = &core.Request{Method: "GET"}
	}
	pageID := req.Param("page")
	p, err := b.findPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		b.logger.Debug("page not found", "page", pageID, "action", action)
		return pageNotFound(), nil
	}

	switch action {
	case ActionEdit:
		return b.edit(ctx, p, req)
	case ActionStore:
		return b.storePage(ctx, p, req)
	case ActionRenderBlock:
		return b.renderBlock(p, req)
	default:
		b.logger.Debug("unknown page builder action", "action", action)
		return emptyResponse(), nil
	}
}

// RenderPage renders the Live document of a page.
func (b *PageBuilder) RenderPage(_ context.Context, p *core.Page, req *core.Request) (string, error) {
	return b.pages.Render(p, req)
}

// ServePage looks up a page and renders it in Live mode.
func (b *PageBuilder) ServePage(ctx context.Context, id string, req *core.Request) (*Response, error) {
	p, err := b.findPage(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return pageNotFound(), nil
	}
	out, err := b.RenderPage(ctx, p, req)
	if err != nil {
		return nil, err
	}
	return htmlResponse(out), nil
}

func (b *PageBuilder) findPage(ctx context.Context, id string) (*core.Page, error) {
	if id == "" {
		return nil, nil
	}
	p, err := b.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find page %s: %w", id, err)
	}
	return p, nil
}

// edit renders the editor document for p.
func (b *PageBuilder) edit(ctx context.Context, p *core.Page, req *core.Request) (*Response, error) {
	rc := core.NewRenderContext(core.ModeEditor, p, req).WithValues(b.values)
	renderer := block.NewRenderer(b.theme, rc, block.WithLogger(b.logger))

	blocks, err := candidates(renderer, b.theme.ListAll())
	if err != nil {
		return nil, err
	}

	pages, err := b.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}

	cfg := editorConfig{
		PageID:     p.ID,
		PageName:   p.Name,
		Blocks:     blocks,
		Components: p.Data.Components,
		Style:      p.Data.Style,
		BlocksData: p.Data.Blocks,
		Pages:      pages,
		URLs: editorURLs{
			Store:       b.actionURL(ActionStore, p.ID),
			RenderBlock: b.actionURL(ActionRenderBlock, p.ID),
			Events:      b.prefix + "/events",
			View:        "/pages/" + p.ID,
		},
	}
	if cfg.Components == nil {
		cfg.Components = []core.Component{}
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := editorDocument(p.Title(), cfg, b.script).Render(ctx, buf); err != nil {
		return nil, fmt.Errorf("render editor: %w", err)
	}
	return htmlResponse(buf.String()), nil
}

// storePage overwrites the page data with the "data" payload. A missing
// or malformed payload is ignored.
func (b *PageBuilder) storePage(ctx context.Context, p *core.Page, req *core.Request) (*Response, error) {
	raw, ok := req.Form["data"]
	if !ok || len(raw) == 0 {
		b.logger.Warn("store without data", "page", p.ID)
		return emptyResponse(), nil
	}

	data, err := decodePageData(raw[0])
	if err != nil {
		b.logger.Warn("ignoring malformed page data", "page", p.ID, "error", err)
		return emptyResponse(), nil
	}

	if _, err := b.store.Save(ctx, p, data); err != nil {
		return nil, fmt.Errorf("save page %s: %w", p.ID, err)
	}
	b.logger.Info("page saved", "page", p.ID, "components", len(data.Components), "blocks", len(data.Blocks))
	return emptyResponse(), nil
}

// renderBlock renders one block in editor mode for the canvas.
func (b *PageBuilder) renderBlock(p *core.Page, req *core.Request) (*Response, error) {
	slug, okSlug := formValue(req, "blockSlug")
	id, okID := formValue(req, "blockId")
	blocksData, okData := formValue(req, "blocksData")
	if !okSlug || !okID || !okData {
		b.logger.Warn("renderBlock with missing fields", "page", p.ID)
		return emptyResponse(), nil
	}

	rc := core.NewRenderContext(core.ModeEditor, p, req).WithValues(b.values)
	renderer := block.NewRenderer(b.theme, rc, block.WithLogger(b.logger))
	out, err := renderer.RenderWithSlug(slug, blockDataFor(blocksData, id), id)
	if err != nil {
		return nil, err
	}
	return htmlResponse(out), nil
}

func (b *PageBuilder) actionURL(action, pageID string) string {
	return b.prefix + "/" + action + "?page=" + url.QueryEscape(pageID)
}

// formValue reports a posted field; presence matters, not emptiness.
func formValue(req *core.Request, key string) (string, bool) {
	vs, ok := req.Form[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}
