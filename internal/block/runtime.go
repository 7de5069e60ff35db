package block

import (
	"errors"
	"io"
	"log/slog"

	"github.com/leapstack-labs/leappage/pkg/core"
)

// Runtime executes dynamic blocks within one render session.
type Runtime struct {
	renderer ViewRenderer
	rc       *core.RenderContext
	logger   *slog.Logger
	buffers  bufferPool
}

// NewRuntime creates a runtime whose views see renderer and the session page.
func NewRuntime(renderer ViewRenderer, rc *core.RenderContext, logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runtime{renderer: renderer, rc: rc, logger: logger, buffers: &sharedBuffers}
}

// Execute runs the model/controller/view lifecycle for one dynamic block
// and returns the captured view output. Every call builds a fresh model
// and controller.
func (rt *Runtime) Execute(desc *core.BlockDescriptor, data core.BlockData) (string, error) {
	newModel := desc.NewModel
	if newModel == nil {
		newModel = DefaultModel
	}
	newController := desc.NewController
	if newController == nil {
		newController = DefaultController
	}

	model, err := newModel(desc, data, rt.rc.Mode)
	if err != nil {
		return "", loadFailure(desc.Slug, desc.ModelResource, err)
	}

	controller, err := newController(desc, rt.rc.Mode)
	if err != nil {
		return "", loadFailure(desc.Slug, desc.ControllerResource, err)
	}

	controller.Init(model, rt.rc.Mode)
	if err := controller.HandleRequest(rt.rc.ControllerRequest()); err != nil {
		return "", err
	}

	rt.logger.Debug("executing block view", "slug", desc.Slug, "view", desc.ViewResource, "mode", rt.rc.Mode)

	scope := Scope{
		Renderer: rt.renderer,
		Page:     rt.rc.Page,
		Block:    model,
	}
	return capture(rt.buffers, func(w io.Writer) error {
		return executeView(desc, scope, w)
	})
}

// loadFailure classifies a factory error as an implementation load failure.
func loadFailure(slug, resource string, err error) error {
	if errors.Is(err, core.ErrImplementationLoad) {
		return err
	}
	return &core.LoadError{Slug: slug, Resource: resource, Err: err}
}
