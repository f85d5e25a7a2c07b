package interfaces

import (
	"context"

	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/models"
)

// EntitySource yields entity references one at a time. The boolean return is
// false once the source is exhausted; an error ends the sequence for good.
type EntitySource interface {
	Next(ctx context.Context) (models.EntityRef, bool, error)
}

// BatchSource yields ready-to-execute delete batches. A nil batch with a nil
// error marks the end of the sequence.
type BatchSource interface {
	Next(ctx context.Context) (*models.PendingBatch, error)
}
