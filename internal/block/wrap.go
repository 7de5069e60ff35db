package block

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/leappage/pkg/core"
)

// EditorTagName is the element the editor uses to identify rendered blocks.
const EditorTagName = "pb-block"

// editorTag wraps body in the tagging element read by the page builder.
func editorTag(desc *core.BlockDescriptor, id, body string) templ.Component {
	isHTML := "false"
	if desc.IsStatic() {
		isHTML = "true"
	}
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<"+EditorTagName+
			` `+core.AttrBlockSlug+`="`+templ.EscapeString(desc.Slug)+`"`+
			` `+core.AttrBlockID+`="`+templ.EscapeString(id)+`"`+
			` `+core.AttrIsHTML+`="`+isHTML+`">`+
			body+
			"</"+EditorTagName+">")
		return err
	})
}

// styleWrapper wraps body in a container carrying the editor style class.
func styleWrapper(class, body string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div class="`+templ.EscapeString(class)+`">`+body+`</div>`)
		return err
	})
}

func renderComponent(c templ.Component) (string, error) {
	return capture(&sharedBuffers, func(w io.Writer) error {
		return c.Render(context.Background(), w)
	})
}

// EditorTag returns body wrapped in the editor tagging element for desc.
func EditorTag(desc *core.BlockDescriptor, id, body string) (string, error) {
	if id == "" {
		id = desc.Slug
	}
	return renderComponent(editorTag(desc, id, body))
}
