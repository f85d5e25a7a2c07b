package deleter

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/constants"
	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/models"
)

type scriptedBatches struct {
	batches []*models.PendingBatch
	i       int
	err     error
}

func (s *scriptedBatches) Next(ctx context.Context) (*models.PendingBatch, error) {
	if s.i < len(s.batches) {
		batch := s.batches[s.i]
		s.i++
		return batch, nil
	}
	if s.err != nil {
		return nil, s.err
	}
	return nil, nil
}

// tallyStore commits batches with scripted per-operation statuses.
type tallyStore struct {
	failOnCall int // 1-based DeleteBatch call that gets rejected; 0 disables
	badRowKeys map[string]bool
	calls      int
}

func (s *tallyStore) ResolveTable(ctx context.Context, table string) error {
	return nil
}

func (s *tallyStore) FetchPage(ctx context.Context, table string, token models.ContinuationToken, pageSize int32) (models.Page, error) {
	panic("deleter never fetches")
}

func (s *tallyStore) DeleteBatch(ctx context.Context, batch *models.PendingBatch) ([]models.OperationResult, error) {
	s.calls++
	if s.failOnCall > 0 && s.calls == s.failOnCall {
		return nil, errors.New("transaction rejected")
	}
	results := make([]models.OperationResult, len(batch.Ops))
	for i, ref := range batch.Ops {
		status := constants.OpStatusOK
		if s.badRowKeys[ref.RowKey] {
			status = "ConditionalCheckFailed"
		}
		results[i] = models.OperationResult{Ref: ref, Status: status}
	}
	return results, nil
}

func batchOf(partition string, n int) *models.PendingBatch {
	key := models.BatchKey{Table: "orders", PartitionKey: partition}
	batch := models.NewPendingBatch(key, n)
	for i := 0; i < n; i++ {
		batch.Append(models.EntityRef{
			Table:        "orders",
			PartitionKey: partition,
			RowKey:       fmt.Sprintf("%s-%d", partition, i),
		})
	}
	return batch
}

func TestExecute_CountsEveryOperation(t *testing.T) {
	source := &scriptedBatches{batches: []*models.PendingBatch{
		batchOf("P1", 100),
		batchOf("P2", 37),
	}}
	d := NewBatchDeleter(&tallyStore{}, nil)

	result, err := d.Execute(context.Background(), source)

	require.NoError(t, err)
	assert.Equal(t, 137, result.TotalCount)
	assert.Equal(t, 0, result.ErrorCount)
}

func TestExecute_TalliesPerOperationFailures(t *testing.T) {
	store := &tallyStore{badRowKeys: map[string]bool{
		"P1-3": true,
		"P1-7": true,
		"P2-0": true,
	}}
	source := &scriptedBatches{batches: []*models.PendingBatch{
		batchOf("P1", 10),
		batchOf("P2", 5),
	}}
	d := NewBatchDeleter(store, nil)

	result, err := d.Execute(context.Background(), source)

	require.NoError(t, err)
	assert.Equal(t, 15, result.TotalCount)
	assert.Equal(t, 3, result.ErrorCount)
}

func TestExecute_RejectedTransactionAbortsWithPartialCounts(t *testing.T) {
	store := &tallyStore{failOnCall: 2}
	source := &scriptedBatches{batches: []*models.PendingBatch{
		batchOf("P1", 10),
		batchOf("P2", 10),
		batchOf("P3", 10),
	}}
	d := NewBatchDeleter(store, nil)

	result, err := d.Execute(context.Background(), source)

	require.Error(t, err)
	assert.Equal(t, 10, result.TotalCount)
	assert.Equal(t, 2, store.calls, "no retry, no further batches")
}

func TestExecute_SourceErrorPropagates(t *testing.T) {
	sourceErr := errors.New("scan failed")
	source := &scriptedBatches{
		batches: []*models.PendingBatch{batchOf("P1", 4)},
		err:     sourceErr,
	}
	d := NewBatchDeleter(&tallyStore{}, nil)

	result, err := d.Execute(context.Background(), source)

	assert.ErrorIs(t, err, sourceErr)
	assert.Equal(t, 4, result.TotalCount)
}

func TestExecute_EmitsPeriodicProgress(t *testing.T) {
	batches := make([]*models.PendingBatch, 0, 2*constants.ProgressInterval)
	for i := 0; i < 2*constants.ProgressInterval; i++ {
		batches = append(batches, batchOf(fmt.Sprintf("P%d", i), 1))
	}
	var observations []models.DeleteResult
	d := NewBatchDeleter(&tallyStore{}, func(progress models.DeleteResult) {
		observations = append(observations, progress)
	})

	result, err := d.Execute(context.Background(), &scriptedBatches{batches: batches})

	require.NoError(t, err)
	require.Len(t, observations, 2)
	assert.Equal(t, constants.ProgressInterval, observations[0].TotalCount)
	assert.Equal(t, result, observations[1])
}

func TestExecute_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := &tallyStore{}
	d := NewBatchDeleter(store, nil)

	result, err := d.Execute(ctx, &scriptedBatches{batches: []*models.PendingBatch{batchOf("P1", 5)}})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, result.TotalCount)
	assert.Equal(t, 0, store.calls)
}
