package codec

import (
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"

	"netlab/internal/domain"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse imports a topology from JSON
func (c *JSONCodec) Parse(r io.Reader) (*domain.Topology, error) {
	topo := domain.NewTopology()
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(topo); err != nil {
		return nil, errors.Wrap(err, "failed to parse JSON")
	}

	return topo, nil
}

// Export exports a topology to JSON
func (c *JSONCodec) Export(topo *domain.Topology, w io.Writer) error {
	return c.Encode(topo, w)
}

// Encode writes any value (runs, parse results) as indented JSON
func (c *JSONCodec) Encode(v any, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(v); err != nil {
		return errors.Wrap(err, "failed to encode JSON")
	}

	return nil
}
