package builder

import (
	_ "embed"
	"fmt"

	"github.com/evanw/esbuild/pkg/api"
)

//go:embed assets/editor.js
var editorSource string

// minifyScript minifies client JavaScript.
func minifyScript(src string) (string, error) {
	result := api.Transform(src, api.TransformOptions{
		Loader:            api.LoaderJS,
		Target:            api.ES2020,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
	})
	if len(result.Errors) > 0 {
		msg := result.Errors[0]
		if msg.Location != nil {
			return "", fmt.Errorf("minify editor script: line %d: %s", msg.Location.Line, msg.Text)
		}
		return "", fmt.Errorf("minify editor script: %s", msg.Text)
	}
	return string(result.Code), nil
}
