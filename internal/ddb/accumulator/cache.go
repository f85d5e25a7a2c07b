package accumulator

import (
	"sort"

	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/models"
)

// batchCache holds every partially filled batch, keyed by (table, partition),
// together with the running total of pending operations across all of them.
type batchCache struct {
	batchSize    int
	entries      map[models.BatchKey]*cacheEntry
	totalPending int
	nextSeq      uint64
}

type cacheEntry struct {
	batch *models.PendingBatch
	// seq is the insertion order, the eviction tie-break.
	seq uint64
}

func newBatchCache(batchSize int) *batchCache {
	return &batchCache{
		batchSize: batchSize,
		entries:   make(map[models.BatchKey]*cacheEntry),
	}
}

// add appends ref to its batch, creating the batch if needed. When the batch
// reaches the size cap it is removed and returned; otherwise nil.
func (c *batchCache) add(ref models.EntityRef) *models.PendingBatch {
	key := ref.BatchKey()
	entry, ok := c.entries[key]
	if !ok {
		entry = &cacheEntry{
			batch: models.NewPendingBatch(key, c.batchSize),
			seq:   c.nextSeq,
		}
		c.nextSeq++
		c.entries[key] = entry
	}

	entry.batch.Append(ref)
	c.totalPending++

	if entry.batch.Full() {
		c.remove(key, entry)
		return entry.batch
	}
	return nil
}

// evict removes and returns the batch with the smallest remaining capacity,
// breaking ties by lowest insertion order. Returns nil on an empty cache.
func (c *batchCache) evict() *models.PendingBatch {
	var victimKey models.BatchKey
	var victim *cacheEntry
	for key, entry := range c.entries {
		if victim == nil ||
			entry.batch.Remaining < victim.batch.Remaining ||
			(entry.batch.Remaining == victim.batch.Remaining && entry.seq < victim.seq) {
			victimKey = key
			victim = entry
		}
	}
	if victim == nil {
		return nil
	}
	c.remove(victimKey, victim)
	return victim.batch
}

// drain removes and returns every remaining batch in insertion order.
func (c *batchCache) drain() []*models.PendingBatch {
	remaining := make([]*cacheEntry, 0, len(c.entries))
	for _, entry := range c.entries {
		remaining = append(remaining, entry)
	}
	sort.Slice(remaining, func(i, j int) bool {
		return remaining[i].seq < remaining[j].seq
	})

	batches := make([]*models.PendingBatch, len(remaining))
	for i, entry := range remaining {
		batches[i] = entry.batch
	}
	c.entries = make(map[models.BatchKey]*cacheEntry)
	c.totalPending = 0
	return batches
}

func (c *batchCache) remove(key models.BatchKey, entry *cacheEntry) {
	delete(c.entries, key)
	c.totalPending -= len(entry.batch.Ops)
}
