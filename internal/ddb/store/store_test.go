package store

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/models"
)

func TestFetchPage_RequiresResolvedTable(t *testing.T) {
	s := NewTableStore(nil)

	_, err := s.FetchPage(context.Background(), "orders", nil, 100)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not resolved")
}

func TestDeleteBatch_RequiresResolvedTable(t *testing.T) {
	s := NewTableStore(nil)
	batch := models.NewPendingBatch(models.BatchKey{Table: "orders", PartitionKey: "P1"}, 100)
	batch.Append(models.EntityRef{Table: "orders", PartitionKey: "P1", RowKey: "r1"})

	_, err := s.DeleteBatch(context.Background(), batch)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not resolved")
}

func TestContinuationTokenRoundTrip(t *testing.T) {
	token := models.ContinuationToken{"pk": "P1", "sk": "row-42"}

	key := attributeKey(token)

	require.Len(t, key, 2)
	assert.Equal(t, "P1", stringAttribute(key["pk"]))
	assert.Equal(t, "row-42", stringAttribute(key["sk"]))
}

func TestStringAttribute_NonStringValue(t *testing.T) {
	assert.Equal(t, "", stringAttribute(&types.AttributeValueMemberN{Value: "7"}))
	assert.Equal(t, "", stringAttribute(nil))
}
