package block

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/leapstack-labs/leappage/pkg/core"
)

// Decode copies a model's values into out, a pointer to a settings struct.
// Fields are matched by their `block` tag and weakly typed, so "3" decodes
// into an int field.
func Decode(model core.BlockModel, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "block",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("block %s: settings decoder: %w", model.Slug(), err)
	}
	if err := dec.Decode(model.Values()); err != nil {
		return fmt.Errorf("block %s: decode settings: %w", model.Slug(), err)
	}
	return nil
}
