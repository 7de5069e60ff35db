// Package theme loads block descriptors from a theme directory.
//
// A theme is laid out as
//
//	blocks/<slug>/view.html      static block
//	blocks/<slug>/view.tmpl      dynamic block (html/template)
//	blocks/<slug>/model.star     optional, dynamic only
//	blocks/<slug>/controller.star
//	blocks/<slug>/block.yaml     optional editor metadata
//	layouts/page.html            optional page layout
package theme

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/leapstack-labs/leappage/internal/starlark"
	"github.com/leapstack-labs/leappage/pkg/core"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Resource file names inside a block directory.
const (
	BlocksDir      = "blocks"
	StaticView     = "view.html"
	DynamicView    = "view.tmpl"
	ModelScript    = "model.star"
	ControllerFile = "controller.star"
	MetaFile       = "block.yaml"
	LayoutFile     = "layouts/page.html"

	defaultCategory = "Blocks"
)

// Loader scans a theme filesystem for block directories.
type Loader struct {
	fsys   fs.FS
	engine *starlark.Engine
}

// NewLoader creates a loader for the theme rooted at fsys. Scripts are
// bound to engine.
func NewLoader(fsys fs.FS, engine *starlark.Engine) *Loader {
	if engine == nil {
		engine = starlark.NewEngine()
	}
	return &Loader{fsys: fsys, engine: engine}
}

// Load scans blocks/ and returns one descriptor per block, sorted by slug.
// A theme without a blocks directory is empty, not an error.
func (l *Loader) Load() ([]*core.BlockDescriptor, error) {
	entries, err := fs.ReadDir(l.fsys, BlocksDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan blocks directory: %w", err)
	}

	var descs []*core.BlockDescriptor
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		desc, err := l.loadBlock(entry.Name())
		if err != nil {
			return nil, err
		}
		descs = append(descs, desc)
	}

	sort.Slice(descs, func(i, j int) bool { return descs[i].Slug < descs[j].Slug })
	return descs, nil
}

// loadBlock builds the descriptor for blocks/<slug>.
func (l *Loader) loadBlock(slug string) (*core.BlockDescriptor, error) {
	if err := ValidateSlug(slug); err != nil {
		return nil, &LoadError{Slug: slug, Message: err.Error()}
	}

	dir := path.Join(BlocksDir, slug)
	sub, err := fs.Sub(l.fsys, dir)
	if err != nil {
		return nil, &LoadError{Slug: slug, Message: err.Error()}
	}

	hasStatic := exists(sub, StaticView)
	hasDynamic := exists(sub, DynamicView)
	hasModel := exists(sub, ModelScript)
	hasController := exists(sub, ControllerFile)

	desc := &core.BlockDescriptor{Slug: slug, FS: sub}

	switch {
	case hasStatic && hasDynamic:
		return nil, &LoadError{Slug: slug, Message: "both view.html and view.tmpl present"}
	case !hasStatic && !hasDynamic:
		return nil, &LoadError{Slug: slug, Message: "no view.html or view.tmpl"}
	case hasStatic:
		if hasModel || hasController {
			return nil, &LoadError{Slug: slug, Message: "static blocks cannot have scripts"}
		}
		desc.Kind = core.BlockStatic
		desc.ViewResource = StaticView
	default:
		desc.Kind = core.BlockDynamic
		desc.ViewResource = DynamicView
		if hasModel {
			desc.ModelResource = ModelScript
			desc.NewModel = l.engine.ModelFactory(ModelScript)
		}
		if hasController {
			desc.ControllerResource = ControllerFile
			desc.NewController = l.engine.ControllerFactory(ControllerFile)
		}
	}

	meta, err := readMeta(sub)
	if err != nil {
		return nil, &LoadError{Slug: slug, Message: err.Error()}
	}
	desc.Meta = withDefaults(meta, slug)

	return desc, nil
}

func readMeta(fsys fs.FS) (core.BlockMeta, error) {
	var meta core.BlockMeta
	content, err := fs.ReadFile(fsys, MetaFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return meta, nil
		}
		return meta, err
	}
	if err := yaml.Unmarshal(content, &meta); err != nil {
		return meta, fmt.Errorf("invalid %s: %w", MetaFile, err)
	}
	return meta, nil
}

var titleCaser = cases.Title(language.English)

func withDefaults(meta core.BlockMeta, slug string) core.BlockMeta {
	if meta.Title == "" {
		meta.Title = DefaultTitle(slug)
	}
	if meta.Category == "" {
		meta.Category = defaultCategory
	}
	return meta
}

// DefaultTitle turns a slug into an editor label: "hero-banner" is "Hero Banner".
func DefaultTitle(slug string) string {
	words := strings.NewReplacer("-", " ", "_", " ").Replace(slug)
	return titleCaser.String(words)
}

// ValidateSlug checks that a block slug is a lowercase identifier that
// may contain dashes and underscores.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug cannot be empty")
	}
	for i, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case (r == '-' || r == '_') && i > 0:
		default:
			return fmt.Errorf("invalid slug %q: use lowercase letters, digits, '-' and '_'", slug)
		}
	}
	return nil
}

func exists(fsys fs.FS, name string) bool {
	info, err := fs.Stat(fsys, name)
	return err == nil && !info.IsDir()
}

// LoadError reports a block directory that could not be loaded.
type LoadError struct {
	Slug    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("blocks/%s: %s", e.Slug, e.Message)
}
