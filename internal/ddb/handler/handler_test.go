package handler

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/constants"
	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/middleware"
	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/models"
)

// memoryStore serves a fixed set of rows in pages and records the batches
// it was asked to delete.
type memoryStore struct {
	rows       []models.EntityRef
	resolveErr error
	batchSizes []int
	deleted    int
}

func (s *memoryStore) ResolveTable(ctx context.Context, table string) error {
	return s.resolveErr
}

func (s *memoryStore) FetchPage(ctx context.Context, table string, token models.ContinuationToken, pageSize int32) (models.Page, error) {
	start := 0
	if len(token) > 0 {
		fmt.Sscanf(token["offset"], "%d", &start)
	}
	end := start + int(pageSize)
	if end > len(s.rows) {
		end = len(s.rows)
	}
	page := models.Page{Items: s.rows[start:end]}
	if end < len(s.rows) {
		page.NextToken = models.ContinuationToken{"offset": fmt.Sprintf("%d", end)}
	}
	return page, nil
}

func (s *memoryStore) DeleteBatch(ctx context.Context, batch *models.PendingBatch) ([]models.OperationResult, error) {
	s.batchSizes = append(s.batchSizes, len(batch.Ops))
	s.deleted += len(batch.Ops)
	results := make([]models.OperationResult, len(batch.Ops))
	for i, ref := range batch.Ops {
		results[i] = models.OperationResult{Ref: ref, Status: constants.OpStatusOK}
	}
	return results, nil
}

func TestRun_PurgesWholeTable(t *testing.T) {
	store := &memoryStore{}
	for i := 0; i < 250; i++ {
		store.rows = append(store.rows, models.EntityRef{
			Table:        "orders",
			PartitionKey: "P1",
			RowKey:       fmt.Sprintf("row-%04d", i),
		})
	}
	h := NewTablePurgeHandler("dev", store, middleware.NewMiddleware(), models.PurgeJob{
		PageSize:  100,
		CacheSize: constants.DefaultCacheSize,
	})

	result, err := h.Run(context.Background(), "orders")

	require.NoError(t, err)
	assert.Equal(t, 250, result.TotalCount)
	assert.Equal(t, 0, result.ErrorCount)
	assert.Equal(t, 250, store.deleted)
	assert.Equal(t, []int{100, 100, 50}, store.batchSizes)
}

func TestRun_UnresolvableTableIsSkipped(t *testing.T) {
	store := &memoryStore{resolveErr: errors.New("table does not exist")}
	h := NewTablePurgeHandler("dev", store, middleware.NewMiddleware(), models.PurgeJob{
		PageSize:  100,
		CacheSize: constants.DefaultCacheSize,
	})

	result, err := h.Run(context.Background(), "missing")

	require.NoError(t, err)
	assert.Equal(t, models.DeleteResult{}, result)
	assert.Equal(t, 0, store.deleted)
}
