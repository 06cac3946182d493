package query

import (
	"context"

	"github.com/asaidimu/go-paginate/core/schema"
)

// DocumentSource loads stored collections into a single document keyed by
// collection name, the shape Paginate reads. Each implementation is
// responsible for decoding its storage format into records whose nested
// fields are maps and slices.
type DocumentSource interface {
	// Load reads the collections described by schemas.
	Load(ctx context.Context, schemas ...*schema.SchemaDefinition) (schema.Document, error)
}
