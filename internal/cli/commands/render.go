package commands

import (
	"fmt"
	"net/url"

	"github.com/leapstack-labs/leappage/internal/cli/output"
	"github.com/leapstack-labs/leappage/internal/page"
	"github.com/leapstack-labs/leappage/pkg/core"
	"github.com/spf13/cobra"
)

// RenderOutput is the JSON shape of a rendered page.
type RenderOutput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	HTML string `json:"html"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "render <page-id>",
		Short: "Render a stored page in Live mode",
		Long: `Render the Live document of a page with every block expanded.

Output adapts to environment:
  - Terminal: Markdown
  - Piped/Scripted: HTML`,
		Example: `  # Render a page to a file
  leappage render 0b6f... > index.html

  # Pass request parameters to block controllers
  leappage render 0b6f... --query "page=2"

  # Render as JSON
  leappage render 0b6f... --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], query)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Query string handed to block controllers")

	return cmd
}

func runRender(cmd *cobra.Command, id, query string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	req, err := requestFromQuery(query)
	if err != nil {
		return err
	}

	site, cleanup, err := cmdCtx.OpenSite(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	p, err := site.Store.FindByID(cmd.Context(), id)
	if err != nil {
		return err
	}
	if p == nil {
		return &core.NotFoundError{Kind: "page", Key: id}
	}

	doc, err := site.Builder.RenderPage(cmd.Context(), p, req)
	if err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(RenderOutput{ID: p.ID, Name: p.Name, HTML: doc})
	case output.ModeMarkdown:
		md, err := page.ToMarkdown(doc)
		if err != nil {
			return err
		}
		r.Printf("%s", md)
	default:
		r.Println(doc)
	}
	return nil
}

func requestFromQuery(query string) (*core.Request, error) {
	values, err := url.ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("invalid --query: %w", err)
	}
	return &core.Request{Method: "GET", Path: "/", Query: values, Form: url.Values{}}, nil
}
