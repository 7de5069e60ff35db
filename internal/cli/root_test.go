package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/leapstack-labs/leappage/internal/store"
	"github.com/leapstack-labs/leappage/internal/testutil"
	"github.com/leapstack-labs/leappage/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupProject writes a theme and config into a temp dir and changes into it.
func setupProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteFiles(t, filepath.Join(dir, "themes", "default"), testutil.SampleTheme)
	testutil.WriteFiles(t, dir, map[string]string{
		"leappage.yaml": "themes_dir: themes\ndatabase:\n  dsn: data/pages.db\nlog_level: error\n",
	})
	t.Chdir(dir)
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	setupProject(t)

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "leappage v"+Version)
}

func TestCompletion(t *testing.T) {
	out, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "leappage")

	_, err = run(t, "completion", "tcsh")
	assert.Error(t, err)
}

func TestInvalidConfigFails(t *testing.T) {
	setupProject(t)

	_, err := run(t, "blocks", "--db-driver", "mysql")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown database driver")
}

func TestBlocks(t *testing.T) {
	setupProject(t)

	out, err := run(t, "blocks", "-o", "json")
	require.NoError(t, err)

	var rows []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 4)
	assert.Equal(t, "hero", rows[0]["slug"])
	assert.Equal(t, "dynamic", rows[0]["kind"])
	assert.Equal(t, "posts", rows[1]["slug"])
	assert.Equal(t, "model.star, controller.star", rows[1]["scripts"])
	assert.Equal(t, "spacer", rows[2]["slug"])
	assert.Equal(t, "Layout", rows[2]["category"])
	assert.Equal(t, "", rows[2]["scripts"])
	assert.Equal(t, "text", rows[3]["slug"])
	assert.Equal(t, "Text", rows[3]["title"])
	assert.Equal(t, "static", rows[3]["kind"])
}

func TestBlockBuiltinSpacer(t *testing.T) {
	setupProject(t)

	out, err := run(t, "block", "spacer", "--data", `{"height":"2","unit":"rem"}`, "-o", "html")
	require.NoError(t, err)
	assert.Equal(t, `<div class="pb-spacer" style="height: 2rem"></div>`+"\n", out)
}

func TestBlockSeesSiteContext(t *testing.T) {
	dir := setupProject(t)
	controller := "def handle_request(block, request):\n" +
		"    block[\"site\"] = request.context[\"site\"][\"name\"]\n" +
		"    block[\"theme\"] = request.context[\"theme\"]\n"
	testutil.WriteFiles(t, dir, map[string]string{
		"leappage.yaml": "themes_dir: themes\ndatabase:\n  dsn: data/pages.db\nlog_level: error\nsite:\n  name: Acme\n",
	})
	testutil.WriteFiles(t, filepath.Join(dir, "themes", "default", "blocks", "banner"), map[string]string{
		"view.tmpl":       `{{ .Block.Get "site" }} on {{ .Block.Get "theme" }}`,
		"controller.star": controller,
	})

	out, err := run(t, "block", "banner", "-o", "html")
	require.NoError(t, err)
	assert.Equal(t, "Acme on default\n", out)
}

func TestBlocksMissingTheme(t *testing.T) {
	setupProject(t)

	_, err := run(t, "blocks", "--theme", "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load theme")
}

func TestBlock(t *testing.T) {
	setupProject(t)

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr string
	}{
		{
			name: "static",
			args: []string{"block", "text", "-o", "html"},
			want: "<p>Lorem ipsum</p>\n",
		},
		{
			name: "dynamic with settings",
			args: []string{"block", "hero", "--data", `{"title":"Hi"}`, "-o", "html"},
			want: "<h1>Hi</h1>\n",
		},
		{
			name: "editor mode",
			args: []string{"block", "text", "--editor", "--id", "t1", "-o", "html"},
			want: `<pb-block block-slug="text" block-id="t1" is-html="true"><p>Lorem ipsum</p></pb-block>` + "\n",
		},
		{
			name: "scripted with query",
			args: []string{"block", "posts", "-q", "n=2", "-o", "html"},
			want: "<article>a</article><article>b</article>\n",
		},
		{
			name:    "unknown block",
			args:    []string{"block", "ghost"},
			wantErr: "block not found: ghost",
		},
		{
			name:    "bad data",
			args:    []string{"block", "hero", "--data", "{"},
			wantErr: "invalid --data",
		},
		{
			name:    "unknown page",
			args:    []string{"block", "text", "--page", "nope"},
			wantErr: "page not found: nope",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestPagesAndRender(t *testing.T) {
	dir := setupProject(t)

	out, err := run(t, "pages", "create", "Home")
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	require.NotEmpty(t, id)

	out, err = run(t, "pages", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"`+id+`","name":"Home"}]`, out)

	st, err := store.Open(store.DialectSQLite, filepath.Join(dir, "data", "pages.db"), nil)
	require.NoError(t, err)
	p, err := st.FindByID(context.Background(), id)
	require.NoError(t, err)
	_, err = st.Save(context.Background(), p, core.PageData{
		Components: []core.Component{
			{Attributes: map[string]any{core.AttrBlockSlug: "posts", core.AttrBlockID: "p1"}},
			{Attributes: map[string]any{core.AttrBlockSlug: "text", core.AttrBlockID: "t1"}},
		},
	})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	t.Run("html", func(t *testing.T) {
		out, err := run(t, "render", id, "-o", "html", "-q", "n=1")
		require.NoError(t, err)
		assert.Contains(t, out, "<title>Home</title>")
		assert.Contains(t, out, "<article>a</article><p>Lorem ipsum</p>")
		assert.NotContains(t, out, "<article>b</article>")
	})

	t.Run("json", func(t *testing.T) {
		out, err := run(t, "render", id, "-o", "json")
		require.NoError(t, err)
		var got map[string]string
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, id, got["id"])
		assert.Equal(t, "Home", got["name"])
		assert.Contains(t, got["html"], "<article>c</article>")
	})

	t.Run("markdown", func(t *testing.T) {
		out, err := run(t, "render", id, "-o", "markdown")
		require.NoError(t, err)
		assert.Contains(t, out, "Lorem ipsum")
		assert.NotContains(t, out, "<p>")
	})

	t.Run("missing page", func(t *testing.T) {
		_, err := run(t, "render", "nope")
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestMigrate(t *testing.T) {
	setupProject(t)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "sqlite store at version 1\n", out)
}
