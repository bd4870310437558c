package sink

import (
	"encoding/json"

	"github.com/matzehuels/dendro/pkg/render"
)

// RenderJSON encodes s with its draw commands in scene order, for clients
// that draw with their own toolkit.
func RenderJSON(s *render.Scene) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// ReadJSON decodes a scene written by [RenderJSON].
func ReadJSON(data []byte) (*render.Scene, error) {
	var s render.Scene
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
