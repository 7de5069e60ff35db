package starlark

import (
	"github.com/leapstack-labs/leappage/pkg/core"
	starjson "go.starlark.net/lib/json"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// Predeclared returns the globals every block script sees:
// struct, json, mode ("live" or "editor") and slug.
func Predeclared(slug string, mode core.Mode) starlark.StringDict {
	return starlark.StringDict{
		"struct": starlark.NewBuiltin("struct", starlarkstruct.Make),
		"json":   starjson.Module,
		"mode":   starlark.String(mode.String()),
		"slug":   starlark.String(slug),
	}
}
