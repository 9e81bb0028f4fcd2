package codec

import (
	"io"

	"netlab/internal/domain"
)

// Importer reads a topology document from a serialized form
type Importer interface {
	Parse(r io.Reader) (*domain.Topology, error)
	Format() string
}

// Exporter writes a topology document in a serialized form
type Exporter interface {
	Export(topo *domain.Topology, w io.Writer) error
	Format() string
}
