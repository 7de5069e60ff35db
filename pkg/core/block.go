package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
)

// BlockKind distinguishes literal markup blocks from model/controller/view blocks.
type BlockKind int

const (
	// BlockStatic blocks render their stored markup or the raw view file.
	BlockStatic BlockKind = iota
	// BlockDynamic blocks execute a view against a model prepared by a controller.
	BlockDynamic
)

// String returns the kind name.
func (k BlockKind) String() string {
	if k == BlockDynamic {
		return "dynamic"
	}
	return "static"
}

// BlockMeta holds the editor-facing description of a block.
type BlockMeta struct {
	Title     string `yaml:"title" json:"title"`
	Category  string `yaml:"category" json:"category"`
	Icon      string `yaml:"icon" json:"icon,omitempty"`
	Thumbnail string `yaml:"thumbnail" json:"thumbnail,omitempty"`
}

// BlockDescriptor describes one block of a theme.
// Descriptors are immutable once resolved; the core only reads them.
type BlockDescriptor struct {
	Slug string
	Kind BlockKind

	// FS holds the block's resources; ViewResource and the script
	// locators are paths inside it.
	FS                 fs.FS
	ViewResource       string
	ModelResource      string
	ControllerResource string

	// NewModel and NewController are nil for the default pass-through pair.
	NewModel      ModelFactory
	NewController ControllerFactory

	Meta BlockMeta
}

// IsStatic reports whether the block renders literal markup.
func (d *BlockDescriptor) IsStatic() bool {
	return d.Kind == BlockStatic
}

// ReadView returns the raw contents of the view resource.
func (d *BlockDescriptor) ReadView() ([]byte, error) {
	if d.FS == nil {
		return nil, &ResourceError{Slug: d.Slug, Path: d.ViewResource, Err: fs.ErrNotExist}
	}
	content, err := fs.ReadFile(d.FS, d.ViewResource)
	if err != nil {
		return nil, &ResourceError{Slug: d.Slug, Path: d.ViewResource, Err: err}
	}
	return content, nil
}

// BlockData is the stored payload of one block instance.
// Static blocks carry their edited markup in HTML; dynamic blocks carry
// arbitrary values, including an optional "attributes" map.
// In JSON a string decodes to HTML and an object decodes to Values.
type BlockData struct {
	HTML   string
	Values map[string]any
}

// HTMLData returns block data holding literal markup.
func HTMLData(html string) BlockData {
	return BlockData{HTML: html}
}

// ValuesData returns block data holding structured values.
func ValuesData(values map[string]any) BlockData {
	return BlockData{Values: values}
}

// IsEmpty reports whether the instance carries no payload at all.
func (d BlockData) IsEmpty() bool {
	return d.HTML == "" && len(d.Values) == 0
}

// Attributes returns the editor-managed attributes map, or nil.
func (d BlockData) Attributes() map[string]any {
	attrs, _ := d.Values["attributes"].(map[string]any)
	return attrs
}

// StyleIdentifier returns the CSS class assigned by the editor when visual
// styling was applied to the block instance.
func (d BlockData) StyleIdentifier() (string, bool) {
	v, ok := d.Attributes()["style-identifier"]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}

// MarshalJSON encodes values as an object and markup as a string.
func (d BlockData) MarshalJSON() ([]byte, error) {
	switch {
	case d.Values != nil:
		return json.Marshal(d.Values)
	case d.HTML != "":
		return json.Marshal(d.HTML)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a string (markup), an object (values), an empty
// array or null.
func (d *BlockData) UnmarshalJSON(b []byte) error {
	*d = BlockData{}
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		return nil
	}
	switch trimmed[0] {
	case 'n':
		return nil
	case '"':
		return json.Unmarshal(trimmed, &d.HTML)
	case '{':
		return json.Unmarshal(trimmed, &d.Values)
	case '[':
		var list []any
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		if len(list) > 0 {
			return fmt.Errorf("block data: unexpected non-empty array")
		}
		return nil
	default:
		return fmt.Errorf("block data: unsupported JSON value %q", trimmed)
	}
}

// BlockModel is the per-render instance of a block. It is what a block's
// view sees as .Block.
type BlockModel interface {
	Descriptor() *BlockDescriptor
	Slug() string
	Data() BlockData
	ForPageBuilder() bool

	// Get returns model state for key, falling back to the instance data.
	Get(key string) any
	// Set stores model state; the instance data itself is never modified.
	Set(key string, value any)
	// Delete hides key from Get and Values, instance data included.
	Delete(key string)
	// Values returns a merged copy of instance data and model state.
	Values() map[string]any
}

// BlockController prepares a model before its view is executed.
type BlockController interface {
	Init(model BlockModel, mode Mode)
	HandleRequest(req *Request) error
}

// ModelFactory creates a fresh model for one render.
type ModelFactory func(desc *BlockDescriptor, data BlockData, mode Mode) (BlockModel, error)

// ControllerFactory creates a fresh controller for one render.
type ControllerFactory func(desc *BlockDescriptor, mode Mode) (BlockController, error)

// DescriptorResolver resolves block slugs within the active theme.
type DescriptorResolver interface {
	// Resolve returns an error wrapping ErrNotFound for unknown slugs.
	Resolve(slug string) (*BlockDescriptor, error)
	ListAll() []*BlockDescriptor
}
