package commands

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/leapstack-labs/leappage/internal/block"
	"github.com/leapstack-labs/leappage/internal/builder"
	"github.com/leapstack-labs/leappage/internal/cli/output"
	"github.com/leapstack-labs/leappage/internal/page"
	"github.com/leapstack-labs/leappage/pkg/core"
	"github.com/spf13/cobra"
)

type blockOptions struct {
	data   string
	id     string
	editor bool
	pageID string
	query  string
}

// NewBlockCommand creates the block command.
func NewBlockCommand() *cobra.Command {
	var opts blockOptions

	cmd := &cobra.Command{
		Use:   "block <slug>",
		Short: "Render a single block",
		Long: `Render one block of the active theme.

--data takes the block data as stored by the editor: a JSON string of
markup, or an object of settings.`,
		Example: `  # Render a static block
  leappage block text

  # Render with settings, as the editor canvas would
  leappage block hero --data '{"title":"Hello"}' --editor --id hero-1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlock(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.data, "data", "", "Block data as JSON")
	cmd.Flags().StringVar(&opts.id, "id", "", "Block instance id (defaults to the slug)")
	cmd.Flags().BoolVar(&opts.editor, "editor", false, "Render in editor mode")
	cmd.Flags().StringVar(&opts.pageID, "page", "", "Page to render the block on")
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "Query string handed to the block controller")

	return cmd
}

func runBlock(cmd *cobra.Command, slug string, opts blockOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	var data core.BlockData
	if opts.data != "" {
		if err := json.Unmarshal([]byte(opts.data), &data); err != nil {
			return fmt.Errorf("invalid --data: %w", err)
		}
	}
	req, err := requestFromQuery(opts.query)
	if err != nil {
		return err
	}

	th, err := cmdCtx.OpenTheme()
	if err != nil {
		return err
	}

	var p *core.Page
	if opts.pageID != "" {
		st, err := cmdCtx.OpenStore(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		if p, err = st.FindByID(cmd.Context(), opts.pageID); err != nil {
			return err
		}
		if p == nil {
			return &core.NotFoundError{Kind: "page", Key: opts.pageID}
		}
	}

	mode := core.ModeLive
	if opts.editor {
		mode = core.ModeEditor
	}
	rc := core.NewRenderContext(mode, p, req).WithValues(builder.ContextValues(th, cmdCtx.Cfg.Site))
	renderer := block.NewRenderer(th, rc, block.WithLogger(cmdCtx.Logger))
	out, err := renderer.RenderWithSlug(slug, data, opts.id)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(map[string]string{"slug": slug, "mode": mode.String(), "html": out})
	case output.ModeMarkdown:
		md, err := page.ToMarkdown(out)
		if err != nil {
			return err
		}
		r.Printf("%s", md)
	default:
		r.Println(out)
	}
	return nil
}
