// Package page renders stored pages: the editor component tree becomes
// HTML, placed blocks go through the block renderer, and the result is
// wrapped in the theme layout.
package page

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/leapstack-labs/leappage/pkg/core"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// BlockRenderer renders a placed block by slug.
type BlockRenderer interface {
	RenderWithSlug(slug string, data core.BlockData, id string) (string, error)
}

const textNodeType = "textnode"

// Compose renders components in document order and writes the markup to
// w. The first block error aborts the render.
func Compose(w io.Writer, r BlockRenderer, data core.PageData) error {
	c := composer{renderer: r, data: data}
	for i, comp := range data.Components {
		n, err := c.node(comp)
		if err != nil {
			return fmt.Errorf("component %d: %w", i, err)
		}
		if err := html.Render(w, n); err != nil {
			return err
		}
	}
	return nil
}

type composer struct {
	renderer BlockRenderer
	data     core.PageData
}

func (c *composer) node(comp core.Component) (*html.Node, error) {
	if slug, id, ok := comp.BlockRef(); ok {
		out, err := c.renderer.RenderWithSlug(slug, c.data.BlockData(id), id)
		if err != nil {
			return nil, err
		}
		return &html.Node{Type: html.RawNode, Data: out}, nil
	}

	if comp.Type == textNodeType {
		return &html.Node{Type: html.TextNode, Data: comp.Content}, nil
	}

	tag := strings.ToLower(comp.TagName)
	if tag == "" {
		tag = "div"
	}
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attributes(comp),
	}
	if isVoid(n.DataAtom) {
		return n, nil
	}

	if comp.Content != "" {
		n.AppendChild(&html.Node{Type: html.RawNode, Data: comp.Content})
	}
	for _, child := range comp.Components {
		cn, err := c.node(child)
		if err != nil {
			return nil, err
		}
		n.AppendChild(cn)
	}
	return n, nil
}

// attributes renders component attributes in key order, merging the
// class list into the class attribute. false and nil values are dropped;
// true renders as an empty attribute.
func attributes(comp core.Component) []html.Attribute {
	keys := make([]string, 0, len(comp.Attributes))
	for k := range comp.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var attrs []html.Attribute
	classes := append([]string(nil), comp.Classes...)
	for _, k := range keys {
		var val string
		switch v := comp.Attributes[k].(type) {
		case nil:
			continue
		case bool:
			if !v {
				continue
			}
		case string:
			val = v
		default:
			val = fmt.Sprint(v)
		}
		if k == "class" {
			classes = append(strings.Fields(val), classes...)
			continue
		}
		attrs = append(attrs, html.Attribute{Key: k, Val: val})
	}
	if len(classes) > 0 {
		attrs = append([]html.Attribute{{Key: "class", Val: strings.Join(classes, " ")}}, attrs...)
	}
	return attrs
}

func isVoid(a atom.Atom) bool {
	switch a {
	case atom.Area, atom.Base, atom.Br, atom.Col, atom.Embed, atom.Hr, atom.Img,
		atom.Input, atom.Link, atom.Meta, atom.Source, atom.Track, atom.Wbr:
		return true
	}
	return false
}
