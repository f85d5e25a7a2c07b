package interfaces

import (
	"context"

	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/models"
)

// TableStore is the slice of the storage service the purge pipeline needs:
// resolve a table, page through its keys, delete a batch atomically.
type TableStore interface {
	// ResolveTable verifies the table exists and caches its key schema.
	// A resolution error skips the table, it is not fatal to the run.
	ResolveTable(ctx context.Context, table string) error

	// FetchPage runs one key-projection scan page. A nil token starts from
	// the beginning; a nil NextToken on the returned page means exhausted.
	FetchPage(ctx context.Context, table string, token models.ContinuationToken, pageSize int32) (models.Page, error)

	// DeleteBatch submits the batch as one atomic transaction and reports
	// a per-operation status. A returned error means the whole transaction
	// was rejected and nothing in it was deleted.
	DeleteBatch(ctx context.Context, batch *models.PendingBatch) ([]models.OperationResult, error)
}
