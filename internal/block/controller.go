package block

import "github.com/leapstack-labs/leappage/pkg/core"

// BaseController is the default controller. It keeps the model and mode
// and leaves the model untouched when handling requests. Go controllers
// usually embed it.
type BaseController struct {
	model core.BlockModel
	mode  core.Mode
}

// DefaultController is the ControllerFactory used when a block supplies none.
func DefaultController(_ *core.BlockDescriptor, _ core.Mode) (core.BlockController, error) {
	return &BaseController{}, nil
}

// Init stores the model and mode.
func (c *BaseController) Init(model core.BlockModel, mode core.Mode) {
	c.model = model
	c.mode = mode
}

// HandleRequest does nothing.
func (c *BaseController) HandleRequest(_ *core.Request) error {
	return nil
}

// Model returns the model passed to Init.
func (c *BaseController) Model() core.BlockModel {
	return c.model
}

// Mode returns the mode passed to Init.
func (c *BaseController) Mode() core.Mode {
	return c.mode
}
