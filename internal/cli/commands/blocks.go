package commands

import (
	"strings"

	"github.com/leapstack-labs/leappage/pkg/core"
	"github.com/spf13/cobra"
)

// NewBlocksCommand creates the blocks command.
func NewBlocksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "blocks",
		Short: "List the blocks of the active theme",
		Args:  cobra.NoArgs,
		RunE:  runBlocks,
	}
}

func runBlocks(cmd *cobra.Command, _ []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	th, err := cmdCtx.OpenTheme()
	if err != nil {
		return err
	}

	descs := th.ListAll()
	if len(descs) == 0 {
		cmdCtx.Renderer.Warnf("theme %s has no blocks", th.Name())
	}
	rows := make([][]string, 0, len(descs))
	for _, d := range descs {
		rows = append(rows, []string{d.Slug, d.Meta.Title, d.Meta.Category, d.Kind.String(), scripts(d)})
	}
	return cmdCtx.Renderer.Table([]string{"slug", "title", "category", "kind", "scripts"}, rows)
}

func scripts(d *core.BlockDescriptor) string {
	var s []string
	if d.ModelResource != "" {
		s = append(s, d.ModelResource)
	}
	if d.ControllerResource != "" {
		s = append(s, d.ControllerResource)
	}
	return strings.Join(s, ", ")
}
