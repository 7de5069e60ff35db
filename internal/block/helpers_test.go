package block

import (
	"sort"
	"testing/fstest"

	"github.com/leapstack-labs/leappage/pkg/core"
)

type mapResolver map[string]*core.BlockDescriptor

func (m mapResolver) Resolve(slug string) (*core.BlockDescriptor, error) {
	desc, ok := m[slug]
	if !ok {
		return nil, &core.NotFoundError{Kind: "block", Key: slug}
	}
	return desc, nil
}

func (m mapResolver) ListAll() []*core.BlockDescriptor {
	out := make([]*core.BlockDescriptor, 0, len(m))
	for _, d := range m {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

func staticBlock(slug, view string) *core.BlockDescriptor {
	return &core.BlockDescriptor{
		Slug:         slug,
		Kind:         core.BlockStatic,
		FS:           fstest.MapFS{"view.html": {Data: []byte(view)}},
		ViewResource: "view.html",
	}
}

func dynamicBlock(slug, view string) *core.BlockDescriptor {
	return &core.BlockDescriptor{
		Slug:         slug,
		Kind:         core.BlockDynamic,
		FS:           fstest.MapFS{"view.tmpl": {Data: []byte(view)}},
		ViewResource: "view.tmpl",
	}
}

func resolverOf(descs ...*core.BlockDescriptor) mapResolver {
	m := mapResolver{}
	for _, d := range descs {
		m[d.Slug] = d
	}
	return m
}
