package deleter

import (
	"context"

	"github.com/sanjiv-madhavan/dynamodb-table-purge/interfaces"
	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/constants"
	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/models"
)

// ProgressFunc observes the running tally; invoked every progress interval.
type ProgressFunc func(models.DeleteResult)

// BatchDeleter drains a batch source, executing each batch as one atomic
// delete transaction and tallying per-operation outcomes.
type BatchDeleter struct {
	store            interfaces.TableStore
	progress         ProgressFunc
	progressInterval int
}

func NewBatchDeleter(store interfaces.TableStore, progress ProgressFunc) *BatchDeleter {
	return &BatchDeleter{
		store:            store,
		progress:         progress,
		progressInterval: constants.ProgressInterval,
	}
}

// Execute runs batches until the source is exhausted. Counts accumulated
// before an error are returned alongside it; a rejected transaction is not
// retried.
func (d *BatchDeleter) Execute(ctx context.Context, batches interfaces.BatchSource) (models.DeleteResult, error) {
	var result models.DeleteResult
	executed := 0

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		batch, err := batches.Next(ctx)
		if err != nil {
			return result, err
		}
		if batch == nil {
			return result, nil
		}

		opResults, err := d.store.DeleteBatch(ctx, batch)
		if err != nil {
			return result, err
		}

		result.TotalCount += len(batch.Ops)
		for _, op := range opResults {
			if op.Status != constants.OpStatusOK {
				result.ErrorCount++
			}
		}

		executed++
		if d.progress != nil && executed%d.progressInterval == 0 {
			d.progress(result)
		}
	}
}
