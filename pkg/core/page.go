package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Page is a stored page composed of blocks.
type Page struct {
	ID        string
	Name      string
	Route     string
	Layout    string
	Data      PageData
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Title returns the name used in document titles.
func (p *Page) Title() string {
	if p == nil {
		return ""
	}
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// PageData is the page-builder state of a page.
type PageData struct {
	// Components is the ordered component tree produced by the editor.
	Components []Component `json:"components,omitempty"`
	// Style holds the editor's style rules; it is passed through untouched.
	Style []json.RawMessage `json:"style,omitempty"`
	// CSS is the stylesheet compiled from Style.
	CSS string `json:"css,omitempty"`
	// Blocks maps block instance ids to their stored data.
	Blocks map[string]BlockData `json:"blocks,omitempty"`
}

// BlockData returns the stored data for a block instance id.
func (d PageData) BlockData(id string) BlockData {
	return d.Blocks[id]
}

// Component is one node of the editor component tree.
type Component struct {
	Type       string         `json:"type,omitempty"`
	TagName    string         `json:"tagName,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Classes    ClassList      `json:"classes,omitempty"`
	Content    string         `json:"content,omitempty"`
	Components []Component    `json:"components,omitempty"`
}

// Block attribute names of the rendered markup contract.
const (
	AttrBlockSlug = "block-slug"
	AttrBlockID   = "block-id"
	AttrIsHTML    = "is-html"
)

// BlockRef returns the block slug and instance id when the component is a
// placed block.
func (c Component) BlockRef() (slug, id string, ok bool) {
	slug, _ = c.Attributes[AttrBlockSlug].(string)
	if slug == "" {
		return "", "", false
	}
	id, _ = c.Attributes[AttrBlockID].(string)
	if id == "" {
		id = slug
	}
	return slug, id, true
}

// ClassList holds component classes. The editor stores them either as
// plain names or as {"name": ...} selector objects.
type ClassList []string

// UnmarshalJSON accepts both class representations.
func (l *ClassList) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*l = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(ClassList, 0, len(raw))
	for _, item := range raw {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			out = append(out, name)
			continue
		}
		var selector struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(item, &selector); err != nil {
			return fmt.Errorf("component class: %w", err)
		}
		if selector.Name != "" {
			out = append(out, selector.Name)
		}
	}
	*l = out
	return nil
}

// PageSummary is the id+name pair used by the link picker.
type PageSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PageStore persists pages.
type PageStore interface {
	// FindByID returns nil, nil when no page has the id.
	FindByID(ctx context.Context, id string) (*Page, error)
	// Save overwrites the stored data of page and returns the updated page.
	Save(ctx context.Context, page *Page, data PageData) (*Page, error)
	// ListAll returns every page as an id+name pair.
	ListAll(ctx context.Context) ([]PageSummary, error)
}
