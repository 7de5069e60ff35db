package builder

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/leapstack-labs/leappage/pkg/core"
)

// decodePageData parses the store payload. Anything but a JSON object is
// rejected.
func decodePageData(raw string) (core.PageData, error) {
	var data core.PageData
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return data, fmt.Errorf("page data must be a JSON object")
	}
	if err := json.Unmarshal(trimmed, &data); err != nil {
		return data, err
	}
	return data, nil
}

// blockDataFor extracts blocksData[id]. A payload that is not an object
// is treated as empty, and so is an entry that does not decode.
func blockDataFor(raw, id string) core.BlockData {
	var all map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		return core.BlockData{}
	}
	entry, ok := all[id]
	if !ok {
		return core.BlockData{}
	}
	var data core.BlockData
	if err := json.Unmarshal(entry, &data); err != nil {
		return core.BlockData{}
	}
	return data
}
