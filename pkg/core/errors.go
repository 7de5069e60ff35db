package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the rendering error taxonomy.
// Use errors.Is to classify the typed errors below.
var (
	ErrNotFound           = errors.New("not found")
	ErrMissingResource    = errors.New("missing resource")
	ErrImplementationLoad = errors.New("implementation load failure")
)

// NotFoundError reports an unresolvable page or block slug.
type NotFoundError struct {
	Kind string // "block" or "page"
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ResourceError reports a block resource that could not be read.
type ResourceError struct {
	Slug string
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("block %s: cannot read %s: %v", e.Slug, e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// Is matches ErrMissingResource.
func (e *ResourceError) Is(target error) bool {
	return target == ErrMissingResource
}

// LoadError reports a dynamic block implementation that could not be
// loaded or instantiated.
type LoadError struct {
	Slug     string
	Resource string
	Message  string
	Err      error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Resource != "" {
		return fmt.Sprintf("block %s: %s: %s", e.Slug, e.Resource, msg)
	}
	return fmt.Sprintf("block %s: %s", e.Slug, msg)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is matches ErrImplementationLoad.
func (e *LoadError) Is(target error) bool {
	return target == ErrImplementationLoad
}
