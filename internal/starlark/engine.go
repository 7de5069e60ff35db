package starlark

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/leapstack-labs/leappage/pkg/core"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// DefaultMaxSteps bounds a single script run.
const DefaultMaxSteps = 1_000_000

// Engine loads and runs block scripts. Scripts are read from the block's
// FS on every render and each run gets a fresh thread, so an edited
// script takes effect on the next request.
type Engine struct {
	maxSteps uint64
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxSteps sets the execution step limit per script run. Zero means
// unlimited.
func WithMaxSteps(n uint64) Option {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// WithLogger sets the logger receiving script print() output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a script engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		maxSteps: DefaultMaxSteps,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

// load executes a script file and returns its globals.
func (e *Engine) load(desc *core.BlockDescriptor, path string, mode core.Mode) (starlark.StringDict, error) {
	if desc.FS == nil {
		return nil, &core.LoadError{Slug: desc.Slug, Resource: path, Message: "no filesystem", Err: fs.ErrNotExist}
	}
	src, err := fs.ReadFile(desc.FS, path)
	if err != nil {
		return nil, &core.LoadError{Slug: desc.Slug, Resource: path, Message: fmt.Sprintf("cannot read script: %v", err), Err: err}
	}

	thread := e.newThread(desc.Slug + "/" + path)
	globals, err := starlark.ExecFileOptions(fileOptions, thread, path, src, Predeclared(desc.Slug, mode))
	if err != nil {
		scriptErr := newScriptError(desc.Slug, path, "<module>", err)
		return nil, &core.LoadError{Slug: desc.Slug, Resource: path, Message: scriptErr.Error(), Err: scriptErr}
	}
	return globals, nil
}

// call runs fn on a fresh thread.
func (e *Engine) call(slug, path, name string, fn starlark.Callable, args ...starlark.Value) (starlark.Value, error) {
	thread := e.newThread(slug + "/" + path + ":" + name)
	result, err := starlark.Call(thread, fn, starlark.Tuple(args), nil)
	if err != nil {
		return nil, newScriptError(slug, path, name, err)
	}
	return result, nil
}

func (e *Engine) newThread(name string) *starlark.Thread {
	thread := &starlark.Thread{
		Name: name,
		Print: func(t *starlark.Thread, msg string) {
			e.logger.Debug("script print", "thread", t.Name, "msg", msg)
		},
	}
	if e.maxSteps > 0 {
		thread.SetMaxExecutionSteps(e.maxSteps)
	}
	return thread
}

// function looks up a callable global.
func function(globals starlark.StringDict, name string) (starlark.Callable, bool) {
	fn, ok := globals[name].(starlark.Callable)
	return fn, ok
}

// ScriptError reports a failure raised while running a block script.
type ScriptError struct {
	Slug     string
	File     string
	Function string
	Message  string
	Err      error
}

func newScriptError(slug, file, function string, err error) *ScriptError {
	msg := err.Error()
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		msg = evalErr.Backtrace()
	}
	return &ScriptError{Slug: slug, File: file, Function: function, Message: msg, Err: err}
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("block %s: %s: %s: %s", e.Slug, e.File, e.Function, e.Message)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}
