package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFiles writes files (relative path to content) under dir.
func WriteFiles(t testing.TB, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", path, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

// SampleTheme is a small theme with one block of each kind.
var SampleTheme = map[string]string{
	"blocks/text/view.html":        "<p>Lorem ipsum</p>",
	"blocks/text/block.yaml":       "title: Text\ncategory: Basic\n",
	"blocks/hero/view.tmpl":        `<h1>{{ .Block.Get "title" }}</h1>`,
	"blocks/posts/view.tmpl":       `{{ range .Block.Get "visible" }}<article>{{ . }}</article>{{ end }}`,
	"blocks/posts/model.star":      "def build(data, editor):\n    return {\"posts\": [\"a\", \"b\", \"c\"]}\n",
	"blocks/posts/controller.star": "def handle_request(block, request):\n    n = int(request.query.get(\"n\", \"3\"))\n    block[\"visible\"] = block[\"posts\"][:n]\n",
}

// WriteSampleTheme writes SampleTheme to <dir>/<name> and returns dir.
func WriteSampleTheme(t testing.TB, name string) string {
	t.Helper()
	dir := t.TempDir()
	WriteFiles(t, filepath.Join(dir, name), SampleTheme)
	return dir
}
