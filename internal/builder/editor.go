package builder

import (
	"context"
	"encoding/json"
	"io"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/leappage/internal/block"
	"github.com/leapstack-labs/leappage/pkg/core"
)

// Client assets loaded by the editor document.
const (
	grapesCSS    = "https://unpkg.com/grapesjs@0.22.5/dist/css/grapes.min.css"
	grapesJS     = "https://unpkg.com/grapesjs@0.22.5/dist/grapes.min.js"
	datastarJS   = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"
	configElemID = "pb-config"
)

// blockCandidate is a block offered in the editor's block panel.
type blockCandidate struct {
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	Icon      string `json:"icon,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	IsHTML    bool   `json:"isHtml"`
	Content   string `json:"content"`
}

type editorURLs struct {
	Store       string `json:"store"`
	RenderBlock string `json:"renderBlock"`
	Events      string `json:"events"`
	View        string `json:"view"`
}

// editorConfig is serialized into the editor document for the client.
type editorConfig struct {
	PageID     string                    `json:"pageId"`
	PageName   string                    `json:"pageName"`
	Blocks     []blockCandidate          `json:"blocks"`
	Components []core.Component          `json:"components"`
	Style      []json.RawMessage         `json:"style"`
	BlocksData map[string]core.BlockData `json:"blocksData"`
	Pages      []core.PageSummary        `json:"pages"`
	URLs       editorURLs                `json:"urls"`
}

// candidates lists every theme block for the editor. Static blocks carry
// their editor rendering; dynamic blocks carry an empty tagged placeholder
// that the client fills through renderBlock.
func candidates(r *block.Renderer, descs []*core.BlockDescriptor) ([]blockCandidate, error) {
	out := make([]blockCandidate, 0, len(descs))
	for _, desc := range descs {
		var (
			content string
			err     error
		)
		if desc.IsStatic() {
			content, err = r.Render(desc, core.BlockData{}, "")
		} else {
			content, err = block.EditorTag(desc, "", "")
		}
		if err != nil {
			return nil, err
		}
		out = append(out, blockCandidate{
			Slug:      desc.Slug,
			Title:     desc.Meta.Title,
			Category:  desc.Meta.Category,
			Icon:      desc.Meta.Icon,
			Thumbnail: desc.Meta.Thumbnail,
			IsHTML:    desc.IsStatic(),
			Content:   content,
		})
	}
	return out, nil
}

// editorDocument renders the full editor page.
func editorDocument(title string, cfg editorConfig, script string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		head := "<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n" +
			"<meta charset=\"utf-8\">\n" +
			"<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n" +
			"<title>" + templ.EscapeString(title) + " - Page Builder</title>\n" +
			"<link rel=\"stylesheet\" href=\"" + grapesCSS + "\">\n" +
			"<script src=\"" + grapesJS + "\"></script>\n" +
			"<script type=\"module\" src=\"" + datastarJS + "\"></script>\n" +
			"</head>\n<body>\n" +
			"<div id=\"pb-events\" data-init=\"@get('" + templ.EscapeString(cfg.URLs.Events) + "')\"></div>\n" +
			"<div id=\"gjs\"></div>\n"
		if _, err := io.WriteString(w, head); err != nil {
			return err
		}
		if err := templ.JSONScript(configElemID, cfg).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n<script>"); err != nil {
			return err
		}
		if err := templ.Raw(script).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</script>\n</body>\n</html>\n")
		return err
	})
}
