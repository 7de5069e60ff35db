package core

import (
	"maps"
	"net/url"
)

// Request is the explicit request context handed to block controllers.
// Controllers read parameters from here instead of ambient global state.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Form   url.Values

	// Context carries the render session's auxiliary values. It is a copy;
	// controllers reading it cannot affect other blocks.
	Context map[string]any
}

// Param returns the first query value for key, falling back to the form.
func (r *Request) Param(key string) string {
	if r == nil {
		return ""
	}
	if v := r.Query.Get(key); v != "" {
		return v
	}
	return r.Form.Get(key)
}

// RenderContext is constructed once per rendering session and shared
// read-only by every block render in that session.
type RenderContext struct {
	Mode    Mode
	Page    *Page
	Request *Request

	// Values is an auxiliary free-form map passed through to dynamic
	// blocks. Controllers receive a copy as Request.Context.
	Values map[string]any
}

// NewRenderContext creates a render context for the given page and mode.
// A nil request is replaced by an empty GET request.
func NewRenderContext(mode Mode, page *Page, req *Request) *RenderContext {
	if req == nil {
		req = &Request{Method: "GET", Query: url.Values{}, Form: url.Values{}}
	}
	return &RenderContext{
		Mode:    mode,
		Page:    page,
		Request: req,
		Values:  map[string]any{},
	}
}

// WithValues sets the auxiliary values from a copy of values and returns rc.
// It is meant to be called while the context is being built, before any
// block renders with it.
func (rc *RenderContext) WithValues(values map[string]any) *RenderContext {
	rc.Values = maps.Clone(values)
	if rc.Values == nil {
		rc.Values = map[string]any{}
	}
	return rc
}

// ControllerRequest returns the request handed to block controllers,
// carrying a copy of the auxiliary values.
func (rc *RenderContext) ControllerRequest() *Request {
	req := Request{Method: "GET"}
	if rc.Request != nil {
		req = *rc.Request
	}
	req.Context = maps.Clone(rc.Values)
	if req.Context == nil {
		req.Context = map[string]any{}
	}
	return &req
}
