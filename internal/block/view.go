package block

import (
	"fmt"
	"html/template"
	"io"

	"github.com/leapstack-labs/leappage/pkg/core"
)

// ViewRenderer is the renderer service visible to dynamic views. It lets a
// view render sub-blocks without exposing the render session itself.
type ViewRenderer interface {
	RenderSlug(slug string, data ...any) (template.HTML, error)
}

// Scope is everything a dynamic view can see: the renderer, the page and
// the block model. Views reach these as .Renderer, .Page and .Block.
type Scope struct {
	Renderer ViewRenderer
	Page     *core.Page
	Block    core.BlockModel
}

var viewFuncs = template.FuncMap{
	"dict": dict,
}

// executeView parses the block's view and executes it against scope.
func executeView(desc *core.BlockDescriptor, scope Scope, w io.Writer) error {
	src, err := desc.ReadView()
	if err != nil {
		return err
	}

	tmpl, err := template.New(desc.Slug).Funcs(viewFuncs).Parse(string(src))
	if err != nil {
		return fmt.Errorf("block %s: parse view %s: %w", desc.Slug, desc.ViewResource, err)
	}

	if err := tmpl.Execute(w, scope); err != nil {
		return fmt.Errorf("block %s: execute view %s: %w", desc.Slug, desc.ViewResource, err)
	}
	return nil
}

// dict builds a map from alternating keys and values, for passing data to
// sub-blocks: {{ .Renderer.RenderSlug "card" (dict "title" "Hi") }}.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	out := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		out[key] = pairs[i+1]
	}
	return out, nil
}
