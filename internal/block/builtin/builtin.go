// Package builtin provides Go-implemented blocks offered by every theme.
package builtin

import (
	"embed"
	"errors"

	"github.com/leapstack-labs/leappage/pkg/core"
)

//go:embed views
var views embed.FS

// Registrar is a descriptor resolver that accepts Go-implemented blocks.
type Registrar interface {
	core.DescriptorResolver
	Register(desc *core.BlockDescriptor) error
}

// Blocks returns fresh descriptors for every built-in block.
func Blocks() []*core.BlockDescriptor {
	return []*core.BlockDescriptor{
		spacer(),
	}
}

// Register adds the built-in blocks whose slug the theme does not define
// itself, and returns the slugs it added.
func Register(r Registrar) ([]string, error) {
	var added []string
	for _, desc := range Blocks() {
		_, err := r.Resolve(desc.Slug)
		if err == nil {
			continue
		}
		if !errors.Is(err, core.ErrNotFound) {
			return added, err
		}
		if err := r.Register(desc); err != nil {
			return added, err
		}
		added = append(added, desc.Slug)
	}
	return added, nil
}
