package builtin

import (
	"fmt"
	"slices"

	"github.com/leapstack-labs/leappage/internal/block"
	"github.com/leapstack-labs/leappage/pkg/core"
)

// SpacerSlug is the slug of the built-in spacer block.
const SpacerSlug = "spacer"

const (
	defaultSpacerHeight = 32
	defaultSpacerUnit   = "px"
	maxSpacerHeight     = 2000
)

var spacerUnits = []string{"px", "rem", "em", "vh", "%"}

// SpacerSettings are the editor settings of a spacer.
type SpacerSettings struct {
	Height int    `block:"height"`
	Unit   string `block:"unit"`
}

func spacer() *core.BlockDescriptor {
	return &core.BlockDescriptor{
		Slug:         SpacerSlug,
		Kind:         core.BlockDynamic,
		FS:           views,
		ViewResource: "views/spacer.tmpl",
		NewController: func(*core.BlockDescriptor, core.Mode) (core.BlockController, error) {
			return &spacerController{}, nil
		},
		Meta: core.BlockMeta{
			Title:    "Spacer",
			Category: "Layout",
		},
	}
}

type spacerController struct {
	block.BaseController
}

// HandleRequest normalizes the settings into a CSS height.
func (c *spacerController) HandleRequest(_ *core.Request) error {
	settings := SpacerSettings{Height: defaultSpacerHeight, Unit: defaultSpacerUnit}
	if err := block.Decode(c.Model(), &settings); err != nil {
		return err
	}

	settings.Height = min(max(settings.Height, 0), maxSpacerHeight)
	if !slices.Contains(spacerUnits, settings.Unit) {
		settings.Unit = defaultSpacerUnit
	}
	c.Model().Set("height", fmt.Sprintf("%d%s", settings.Height, settings.Unit))
	return nil
}
