// Package block renders single theme blocks.
//
// A block is either static markup or a dynamic model/controller/view
// triad. The Renderer picks the path for a descriptor, the Runtime runs
// the dynamic lifecycle, and the result is wrapped for the active mode.
package block

import (
	"maps"

	"github.com/leapstack-labs/leappage/pkg/core"
)

// BaseModel is the default pass-through model. It exposes the instance
// data unchanged and keeps controller-set state separately.
type BaseModel struct {
	desc  *core.BlockDescriptor
	data  core.BlockData
	mode    core.Mode
	state   map[string]any
	removed map[string]struct{}
}

// NewBaseModel creates a pass-through model for one render.
func NewBaseModel(desc *core.BlockDescriptor, data core.BlockData, mode core.Mode) *BaseModel {
	return &BaseModel{
		desc:    desc,
		data:    data,
		mode:    mode,
		state:   make(map[string]any),
		removed: make(map[string]struct{}),
	}
}

// DefaultModel is the ModelFactory used when a block supplies none.
func DefaultModel(desc *core.BlockDescriptor, data core.BlockData, mode core.Mode) (core.BlockModel, error) {
	return NewBaseModel(desc, data, mode), nil
}

// Descriptor returns the block descriptor.
func (m *BaseModel) Descriptor() *core.BlockDescriptor {
	return m.desc
}

// Slug returns the block slug.
func (m *BaseModel) Slug() string {
	return m.desc.Slug
}

// Data returns the instance data the model was built from.
func (m *BaseModel) Data() core.BlockData {
	return m.data
}

// ForPageBuilder reports whether the block renders inside the editor.
func (m *BaseModel) ForPageBuilder() bool {
	return m.mode.ForPageBuilder()
}

// Get returns state for key, then instance data, then nil.
func (m *BaseModel) Get(key string) any {
	if _, gone := m.removed[key]; gone {
		return nil
	}
	if v, ok := m.state[key]; ok {
		return v
	}
	return m.data.Values[key]
}

// Set stores model state for key.
func (m *BaseModel) Set(key string, value any) {
	delete(m.removed, key)
	m.state[key] = value
}

// Delete removes key from the model. Instance data is left untouched but
// no longer shows through.
func (m *BaseModel) Delete(key string) {
	delete(m.state, key)
	m.removed[key] = struct{}{}
}

// Values returns instance values overlaid with model state.
func (m *BaseModel) Values() map[string]any {
	out := make(map[string]any, len(m.data.Values)+len(m.state))
	maps.Copy(out, m.data.Values)
	maps.Copy(out, m.state)
	for k := range m.removed {
		delete(out, k)
	}
	return out
}

// Attr returns an editor attribute of the instance, or "".
func (m *BaseModel) Attr(key string) any {
	return m.data.Attributes()[key]
}
