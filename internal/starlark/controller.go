package starlark

import (
	"fmt"

	"github.com/leapstack-labs/leappage/internal/block"
	"github.com/leapstack-labs/leappage/pkg/core"
	"go.starlark.net/starlark"
)

// ControllerFactory returns a factory for the controller script at path.
// The script must define handle_request(block, request) and may define
// init(block, editor).
func (e *Engine) ControllerFactory(path string) core.ControllerFactory {
	return func(desc *core.BlockDescriptor, mode core.Mode) (core.BlockController, error) {
		globals, err := e.load(desc, path, mode)
		if err != nil {
			return nil, err
		}

		handle, ok := function(globals, "handle_request")
		if !ok {
			return nil, &core.LoadError{Slug: desc.Slug, Resource: path, Message: "controller script must define handle_request(block, request)"}
		}
		initFn, _ := function(globals, "init")

		return &scriptController{
			engine: e,
			slug:   desc.Slug,
			path:   path,
			handle: handle,
			initFn: initFn,
		}, nil
	}
}

// scriptController adapts a controller script to core.BlockController.
// Scripts see the model as a mutable dict. After each call its entries are
// written back to model state and entries the script removed are deleted.
type scriptController struct {
	block.BaseController

	engine  *Engine
	slug    string
	path    string
	handle  starlark.Callable
	initFn  starlark.Callable
	initErr error
}

func (c *scriptController) Init(model core.BlockModel, mode core.Mode) {
	c.BaseController.Init(model, mode)
	if c.initFn != nil {
		c.initErr = c.callWithBlock("init", c.initFn, starlark.Bool(mode.ForPageBuilder()))
	}
}

func (c *scriptController) HandleRequest(req *core.Request) error {
	if c.initErr != nil {
		return c.initErr
	}
	reqVal, err := RequestToStarlark(req)
	if err != nil {
		return newScriptError(c.slug, c.path, "handle_request", err)
	}
	return c.callWithBlock("handle_request", c.handle, reqVal)
}

func (c *scriptController) callWithBlock(name string, fn starlark.Callable, extra starlark.Value) error {
	model := c.Model()
	before := model.Values()
	snapshot, err := GoToStarlark(before)
	if err != nil {
		return newScriptError(c.slug, c.path, name, fmt.Errorf("block values: %w", err))
	}

	if _, err := c.engine.call(c.slug, c.path, name, fn, snapshot, extra); err != nil {
		return err
	}

	converted, err := ToGo(snapshot)
	if err != nil {
		return newScriptError(c.slug, c.path, name, err)
	}
	after := converted.(map[string]any)
	for k := range before {
		if _, ok := after[k]; !ok {
			model.Delete(k)
		}
	}
	for k, v := range after {
		model.Set(k, v)
	}
	return nil
}
