package commands

import (
	"github.com/spf13/cobra"
)

// NewPagesCommand creates the pages command.
func NewPagesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pages",
		Short: "List stored pages",
		Args:  cobra.NoArgs,
		RunE:  runPages,
	}
	cmd.AddCommand(newPagesCreateCommand())
	return cmd
}

func runPages(cmd *cobra.Command, _ []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	st, err := cmdCtx.OpenStore(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	pages, err := st.ListAll(cmd.Context())
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(pages))
	for _, p := range pages {
		rows = append(rows, []string{p.ID, p.Name})
	}
	return cmdCtx.Renderer.Table([]string{"id", "name"}, rows)
}

func newPagesCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "create <name>",
		Short:   "Create an empty page",
		Example: `  leappage pages create "Home"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			st, err := cmdCtx.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			p, err := st.Create(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cmdCtx.Logger.Info("page created", "id", p.ID, "name", p.Name)
			cmdCtx.Renderer.Println(p.ID)
			return nil
		},
	}
}
