package starlark

import (
	"fmt"

	"github.com/leapstack-labs/leappage/internal/block"
	"github.com/leapstack-labs/leappage/pkg/core"
	"go.starlark.net/starlark"
)

// ModelFactory returns a factory running the model script at path.
// The script must define build(data, editor) returning a dict; its
// entries become model state on top of the instance data.
func (e *Engine) ModelFactory(path string) core.ModelFactory {
	return func(desc *core.BlockDescriptor, data core.BlockData, mode core.Mode) (core.BlockModel, error) {
		globals, err := e.load(desc, path, mode)
		if err != nil {
			return nil, err
		}

		build, ok := function(globals, "build")
		if !ok {
			return nil, &core.LoadError{Slug: desc.Slug, Resource: path, Message: "model script must define build(data, editor)"}
		}

		arg, err := BlockDataToStarlark(data)
		if err != nil {
			return nil, &core.LoadError{Slug: desc.Slug, Resource: path, Err: err}
		}

		result, err := e.call(desc.Slug, path, "build", build, arg, starlark.Bool(mode.ForPageBuilder()))
		if err != nil {
			return nil, err
		}

		state, err := ToGo(result)
		if err != nil {
			return nil, newScriptError(desc.Slug, path, "build", err)
		}

		model := block.NewBaseModel(desc, data, mode)
		switch s := state.(type) {
		case nil:
		case map[string]any:
			for k, v := range s {
				model.Set(k, v)
			}
		default:
			return nil, newScriptError(desc.Slug, path, "build", fmt.Errorf("build must return a dict, got %s", result.Type()))
		}
		return model, nil
	}
}
