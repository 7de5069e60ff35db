package builder

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/leapstack-labs/leappage/internal/testutil"
	"github.com/leapstack-labs/leappage/internal/theme"
	"github.com/leapstack-labs/leappage/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	pages   map[string]*core.Page
	saves   []core.PageData
	findErr error
}

func (s *fakeStore) FindByID(_ context.Context, id string) (*core.Page, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	p, ok := s.pages[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) Save(_ context.Context, p *core.Page, data core.PageData) (*core.Page, error) {
	s.saves = append(s.saves, data)
	cp := *p
	cp.Data = data
	s.pages[p.ID] = &cp
	return &cp, nil
}

func (s *fakeStore) ListAll(_ context.Context) ([]core.PageSummary, error) {
	out := make([]core.PageSummary, 0, len(s.pages))
	for _, p := range s.pages {
		out = append(out, core.PageSummary{ID: p.ID, Name: p.Name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func setupBuilder(t *testing.T) (*PageBuilder, *fakeStore) {
	t.Helper()
	th, err := theme.Open(fstest.MapFS{
		"blocks/text/view.html":  {Data: []byte("<p>Lorem</p>")},
		"blocks/text/block.yaml": {Data: []byte("title: Text\ncategory: Basic\n")},
		"blocks/hero/view.tmpl":  {Data: []byte(`<h1>{{ with .Block.Get "title" }}{{ . }}{{ end }}</h1>`)},
	})
	require.NoError(t, err)

	store := &fakeStore{pages: map[string]*core.Page{
		"p1": {
			ID:   "p1",
			Name: "Home",
			Data: core.PageData{
				Components: []core.Component{{Attributes: map[string]any{core.AttrBlockSlug: "hero", core.AttrBlockID: "h1"}}},
				Blocks:     map[string]core.BlockData{"h1": core.ValuesData(map[string]any{"title": "Welcome"})},
			},
		},
		"p2": {ID: "p2", Name: "About"},
	}}

	b, err := New(th, store, WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)
	return b, store
}

func postForm(pageID string, form url.Values) *core.Request {
	return &core.Request{
		Method: http.MethodPost,
		Query:  url.Values{"page": {pageID}},
		Form:   form,
	}
}

func TestHandleRequest_PageNotFound(t *testing.T) {
	b, store := setupBuilder(t)

	for _, action := range []string{ActionEdit, ActionStore, ActionRenderBlock, "bogus"} {
		t.Run(action, func(t *testing.T) {
			resp, err := b.HandleRequest(context.Background(), action, postForm("missing", url.Values{"data": {"{}"}}))
			require.NoError(t, err)
			assert.Equal(t, http.StatusNotFound, resp.Status)
			assert.Equal(t, "Page not found", resp.Body)
		})
	}

	resp, err := b.HandleRequest(context.Background(), ActionEdit, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Empty(t, store.saves)
}

func TestHandleRequest_UnknownAction(t *testing.T) {
	b, _ := setupBuilder(t)

	resp, err := b.HandleRequest(context.Background(), "publish", postForm("p1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Empty(t, resp.Body)
}

func TestHandleRequest_FindError(t *testing.T) {
	b, store := setupBuilder(t)
	store.findErr = errors.New("db down")

	_, err := b.HandleRequest(context.Background(), ActionEdit, postForm("p1", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func extractConfig(t *testing.T, doc string) editorConfig {
	t.Helper()
	start := strings.Index(doc, `id="pb-config"`)
	require.GreaterOrEqual(t, start, 0, "config script missing")
	open := strings.Index(doc[start:], ">")
	body := doc[start+open+1:]
	end := strings.Index(body, "</script>")
	require.GreaterOrEqual(t, end, 0)

	var cfg editorConfig
	require.NoError(t, json.Unmarshal([]byte(body[:end]), &cfg))
	return cfg
}

func TestEdit(t *testing.T) {
	b, _ := setupBuilder(t)

	resp, err := b.HandleRequest(context.Background(), ActionEdit, &core.Request{Method: http.MethodGet, Query: url.Values{"page": {"p1"}}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, ContentTypeHTML, resp.ContentType)

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Home - Page Builder</title>",
		`<div id="gjs"></div>`,
		`data-init="@get('/pagebuilder/events')"`,
		"grapes.min.js",
	} {
		assert.Contains(t, resp.Body, want)
	}

	cfg := extractConfig(t, resp.Body)
	assert.Equal(t, "p1", cfg.PageID)
	require.Len(t, cfg.Blocks, 2)

	hero, text := cfg.Blocks[0], cfg.Blocks[1]
	assert.Equal(t, "hero", hero.Slug)
	assert.False(t, hero.IsHTML)
	assert.Equal(t, `<pb-block block-slug="hero" block-id="hero" is-html="false"></pb-block>`, hero.Content)
	assert.Equal(t, "Hero", hero.Title)

	assert.Equal(t, "text", text.Slug)
	assert.True(t, text.IsHTML)
	assert.Equal(t, "Basic", text.Category)
	assert.Equal(t, `<pb-block block-slug="text" block-id="text" is-html="true"><p>Lorem</p></pb-block>`, text.Content)

	require.Len(t, cfg.Components, 1)
	assert.Equal(t, "Welcome", cfg.BlocksData["h1"].Values["title"])
	assert.Equal(t, []core.PageSummary{{ID: "p2", Name: "About"}, {ID: "p1", Name: "Home"}}, cfg.Pages)
	assert.Equal(t, "/pagebuilder/store?page=p1", cfg.URLs.Store)
	assert.Equal(t, "/pagebuilder/renderBlock?page=p1", cfg.URLs.RenderBlock)
}

func TestEditEmptyPageHasComponentList(t *testing.T) {
	b, _ := setupBuilder(t)

	resp, err := b.HandleRequest(context.Background(), ActionEdit, postForm("p2", nil))
	require.NoError(t, err)
	cfg := extractConfig(t, resp.Body)
	assert.NotNil(t, cfg.Components)
	assert.Empty(t, cfg.Components)
}

func TestStore(t *testing.T) {
	b, store := setupBuilder(t)
	payload := `{"components":[{"tagName":"section","classes":[{"name":"hero"}]}],"css":".x{}","blocks":{"b1":"<p>edited</p>"}}`

	resp, err := b.HandleRequest(context.Background(), ActionStore, postForm("p1", url.Values{"data": {payload}}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Empty(t, resp.Body)

	require.Len(t, store.saves, 1)
	saved := store.saves[0]
	assert.Equal(t, ".x{}", saved.CSS)
	assert.Equal(t, core.ClassList{"hero"}, saved.Components[0].Classes)
	assert.Equal(t, "<p>edited</p>", saved.Blocks["b1"].HTML)
}

func TestStore_IgnoredPayloads(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{"missing data", url.Values{}},
		{"invalid json", url.Values{"data": {"{not json"}}},
		{"null", url.Values{"data": {"null"}}},
		{"array", url.Values{"data": {"[1,2]"}}},
		{"empty", url.Values{"data": {""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, store := setupBuilder(t)
			resp, err := b.HandleRequest(context.Background(), ActionStore, postForm("p1", tt.form))
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.Status)
			assert.Empty(t, store.saves, "store must not be called")
		})
	}
}

func TestStore_LogsIgnoredPayload(t *testing.T) {
	th, err := theme.Open(fstest.MapFS{})
	require.NoError(t, err)
	logger, logs := testutil.NewCaptureLogger()
	b, err := New(th, &fakeStore{pages: map[string]*core.Page{"p1": {ID: "p1"}}}, WithLogger(logger))
	require.NoError(t, err)

	_, err = b.HandleRequest(context.Background(), ActionStore, postForm("p1", nil))
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "store without data")
}

func TestRenderBlock(t *testing.T) {
	b, _ := setupBuilder(t)
	form := url.Values{
		"blockSlug":  {"hero"},
		"blockId":    {"b9"},
		"blocksData": {`{"b9":{"title":"Hi","attributes":{"style-identifier":"s1"}},"other":"x"}`},
	}

	resp, err := b.HandleRequest(context.Background(), ActionRenderBlock, postForm("p1", form))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, `<pb-block block-slug="hero" block-id="b9" is-html="false"><h1>Hi</h1></pb-block>`, resp.Body)
}

func TestRenderBlock_NonObjectBlocksData(t *testing.T) {
	b, _ := setupBuilder(t)
	form := url.Values{
		"blockSlug":  {"hero"},
		"blockId":    {"b9"},
		"blocksData": {"[1,2,3]"},
	}

	resp, err := b.HandleRequest(context.Background(), ActionRenderBlock, postForm("p1", form))
	require.NoError(t, err)
	assert.Equal(t, `<pb-block block-slug="hero" block-id="b9" is-html="false"><h1></h1></pb-block>`, resp.Body)
}

func TestRenderBlock_MissingFields(t *testing.T) {
	b, _ := setupBuilder(t)

	for _, missing := range []string{"blockSlug", "blockId", "blocksData"} {
		t.Run(missing, func(t *testing.T) {
			form := url.Values{"blockSlug": {"hero"}, "blockId": {"b1"}, "blocksData": {"{}"}}
			form.Del(missing)

			resp, err := b.HandleRequest(context.Background(), ActionRenderBlock, postForm("p1", form))
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.Status)
			assert.Empty(t, resp.Body)
		})
	}
}

func TestRenderBlock_UnknownSlug(t *testing.T) {
	b, _ := setupBuilder(t)
	form := url.Values{"blockSlug": {"ghost"}, "blockId": {"g1"}, "blocksData": {"{}"}}

	resp, err := b.HandleRequest(context.Background(), ActionRenderBlock, postForm("p1", form))
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestServePage(t *testing.T) {
	b, _ := setupBuilder(t)

	resp, err := b.ServePage(context.Background(), "p1", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Contains(t, resp.Body, "<h1>Welcome</h1>")
	assert.NotContains(t, resp.Body, "pb-block")

	resp, err = b.ServePage(context.Background(), "missing", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestRenderPage_SameSlugInstances(t *testing.T) {
	b, _ := setupBuilder(t)
	p := &core.Page{
		ID:   "p3",
		Name: "Twice",
		Data: core.PageData{
			Components: []core.Component{
				{Attributes: map[string]any{core.AttrBlockSlug: "text", core.AttrBlockID: "text-a"}},
				{Attributes: map[string]any{core.AttrBlockSlug: "hero", core.AttrBlockID: "hero-a"}},
				{Attributes: map[string]any{core.AttrBlockSlug: "text", core.AttrBlockID: "text-b"}},
				{Attributes: map[string]any{core.AttrBlockSlug: "hero", core.AttrBlockID: "hero-b"}},
			},
			Blocks: map[string]core.BlockData{
				"text-a": core.HTMLData("<p>first</p>"),
				"text-b": core.HTMLData("<p>second</p>"),
				"hero-a": core.ValuesData(map[string]any{"title": "One"}),
				"hero-b": core.ValuesData(map[string]any{"title": "Two"}),
			},
		},
	}

	out, err := b.RenderPage(context.Background(), p, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "<p>first</p><h1>One</h1><p>second</p><h1>Two</h1>")
}

func TestEditorScriptAssignsInstanceIDs(t *testing.T) {
	b, _ := setupBuilder(t)
	assert.Contains(t, b.script, "block:drag:stop")
	assert.Contains(t, b.script, "Date.now().toString(36)")
	assert.Contains(t, b.script, `"block-id"`)
}

func TestContextValues(t *testing.T) {
	th, err := theme.Open(fstest.MapFS{}, theme.WithName("acme"))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"theme": "acme", "site": map[string]any{}}, ContextValues(th, nil))
	assert.Equal(t,
		map[string]any{"theme": "acme", "site": map[string]any{"name": "Acme"}},
		ContextValues(th, map[string]any{"name": "Acme"}))
}

func TestControllersSeeContext(t *testing.T) {
	controller := "def handle_request(block, request):\n" +
		"    block[\"greeting\"] = request.context[\"site\"][\"name\"] + \"/\" + request.context[\"theme\"]\n"
	th, err := theme.Open(fstest.MapFS{
		"blocks/greet/view.tmpl":       {Data: []byte(`{{ .Block.Get "greeting" }}`)},
		"blocks/greet/controller.star": {Data: []byte(controller)},
	}, theme.WithName("acme"))
	require.NoError(t, err)

	store := &fakeStore{pages: map[string]*core.Page{
		"p1": {
			ID:   "p1",
			Name: "Home",
			Data: core.PageData{
				Components: []core.Component{{Attributes: map[string]any{core.AttrBlockSlug: "greet", core.AttrBlockID: "g1"}}},
			},
		},
	}}
	b, err := New(th, store, WithSite(map[string]any{"name": "Acme"}), WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)

	resp, err := b.ServePage(context.Background(), "p1", nil)
	require.NoError(t, err)
	assert.Contains(t, resp.Body, "Acme/acme")

	resp, err = b.HandleRequest(context.Background(), ActionRenderBlock, postForm("p1", url.Values{
		"blockSlug":  {"greet"},
		"blockId":    {"g1"},
		"blocksData": {`{}`},
	}))
	require.NoError(t, err)
	assert.Equal(t, `<pb-block block-slug="greet" block-id="g1" is-html="false">Acme/acme</pb-block>`, resp.Body)
}

func TestMinifyScript(t *testing.T) {
	out, err := minifyScript("function add(first, second) {\n  return first + second;\n}\nconsole.log(add(1, 2));\n")
	require.NoError(t, err)
	assert.NotContains(t, out, "\n  ")
	assert.Contains(t, out, "console.log")

	_, err = minifyScript("function (")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minify editor script")
}

func TestDecodePageData(t *testing.T) {
	data, err := decodePageData(`  {"css":"a"}`)
	require.NoError(t, err)
	assert.Equal(t, "a", data.CSS)

	_, err = decodePageData(`"str"`)
	assert.Error(t, err)
}

func TestBlockDataFor(t *testing.T) {
	assert.Equal(t, "<p>x</p>", blockDataFor(`{"a":"<p>x</p>"}`, "a").HTML)
	assert.True(t, blockDataFor(`{"a":"<p>x</p>"}`, "b").IsEmpty())
	assert.True(t, blockDataFor(`{"a":42}`, "a").IsEmpty())
	assert.True(t, blockDataFor(`oops`, "a").IsEmpty())
}
