package accumulator

import (
	"context"

	"github.com/sanjiv-madhavan/dynamodb-table-purge/interfaces"
	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/models"
)

// BatchAccumulator groups an entity stream into single-partition delete
// batches while keeping the total number of pending operations bounded.
//
// A batch is emitted the moment it fills up. If intake pushes the pending
// total past cacheSize, the most-filled cached batch is evicted instead:
// it is the closest to its natural emission point and flushes the most
// entities per eviction. At end of input the cache drains in insertion order.
type BatchAccumulator struct {
	source    interfaces.EntitySource
	cache     *batchCache
	cacheSize int

	flushing   bool
	flushQueue []*models.PendingBatch
}

func NewBatchAccumulator(source interfaces.EntitySource, batchSize, cacheSize int) *BatchAccumulator {
	return &BatchAccumulator{
		source:    source,
		cache:     newBatchCache(batchSize),
		cacheSize: cacheSize,
	}
}

// Next returns the next ready batch, pulling from the source as needed.
// A nil batch with nil error means the input is exhausted and fully flushed.
func (a *BatchAccumulator) Next(ctx context.Context) (*models.PendingBatch, error) {
	if a.flushing {
		return a.popFlush(), nil
	}

	for {
		ref, ok, err := a.source.Next(ctx)
		if err != nil {
			// Structural failure: pending batches are abandoned, the
			// unit aborts with whatever it already deleted.
			return nil, err
		}
		if !ok {
			a.flushing = true
			a.flushQueue = a.cache.drain()
			return a.popFlush(), nil
		}

		if full := a.cache.add(ref); full != nil {
			return full, nil
		}
		if a.cache.totalPending > a.cacheSize {
			return a.cache.evict(), nil
		}
	}
}

// PendingOperations reports the current pending total, for observation.
func (a *BatchAccumulator) PendingOperations() int {
	return a.cache.totalPending
}

func (a *BatchAccumulator) popFlush() *models.PendingBatch {
	if len(a.flushQueue) == 0 {
		return nil
	}
	batch := a.flushQueue[0]
	a.flushQueue = a.flushQueue[1:]
	return batch
}
