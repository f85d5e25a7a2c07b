package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/constants"
	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/models"
)

// TableStore drives one DynamoDB client. Resolved key schemas are cached per
// table for the lifetime of the run. Key attributes are assumed string-typed.
// Safe for use by the account's table pipelines concurrently.
type TableStore struct {
	client *dynamodb.Client

	mu      sync.RWMutex
	schemas map[string]*models.TableKeySchema
}

func NewTableStore(client *dynamodb.Client) *TableStore {
	return &TableStore{
		client:  client,
		schemas: make(map[string]*models.TableKeySchema),
	}
}

func (s *TableStore) ResolveTable(ctx context.Context, table string) error {
	if s.schema(table) != nil {
		return nil
	}

	tableOutput, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(table),
	})
	if err != nil {
		var notFoundEx *types.ResourceNotFoundException
		if errors.As(err, &notFoundEx) {
			return fmt.Errorf("dynamodb table `%s` does not exist: %w", table, err)
		}
		return fmt.Errorf("couldn't determine existence of table `%s`: %w", table, err)
	}
	if tableOutput == nil || tableOutput.Table == nil {
		return fmt.Errorf("dynamodb table `%s` does not exist", table)
	}

	schema := &models.TableKeySchema{
		TableName: table,
	}
	for _, keySchemaElement := range tableOutput.Table.KeySchema {
		if keySchemaElement.KeyType == types.KeyTypeHash {
			schema.PartitionKey = aws.ToString(keySchemaElement.AttributeName)
		} else if keySchemaElement.KeyType == types.KeyTypeRange {
			schema.RangeKey = aws.ToString(keySchemaElement.AttributeName)
		}
		if schema.PartitionKey != "" && schema.RangeKey != "" {
			break
		}
	}
	if schema.PartitionKey == "" {
		return fmt.Errorf("dynamodb table `%s` has no hash key in its schema", table)
	}

	s.mu.Lock()
	s.schemas[table] = schema
	s.mu.Unlock()
	return nil
}

func (s *TableStore) schema(table string) *models.TableKeySchema {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schemas[table]
}

// FetchPage scans one page of the table, projecting only the key attributes.
func (s *TableStore) FetchPage(ctx context.Context, table string, token models.ContinuationToken, pageSize int32) (models.Page, error) {
	schema := s.schema(table)
	if schema == nil {
		return models.Page{}, fmt.Errorf("table `%s` was not resolved before fetching", table)
	}

	scanInput := &dynamodb.ScanInput{
		TableName:                aws.String(table),
		ProjectionExpression:     aws.String("#pk"),
		ExpressionAttributeNames: map[string]string{"#pk": schema.PartitionKey},
	}
	if schema.RangeKey != "" {
		scanInput.ProjectionExpression = aws.String("#pk, #sortkey")
		scanInput.ExpressionAttributeNames["#sortkey"] = schema.RangeKey
	}
	if pageSize > 0 {
		scanInput.Limit = aws.Int32(pageSize)
	}
	if len(token) > 0 {
		scanInput.ExclusiveStartKey = attributeKey(token)
	}

	scanOutput, err := s.client.Scan(ctx, scanInput)
	if err != nil {
		return models.Page{}, fmt.Errorf("failed to scan page of table `%s`: %w", table, err)
	}

	page := models.Page{
		Items: make([]models.EntityRef, 0, len(scanOutput.Items)),
	}
	for _, item := range scanOutput.Items {
		page.Items = append(page.Items, models.EntityRef{
			Table:        table,
			PartitionKey: stringAttribute(item[schema.PartitionKey]),
			RowKey:       stringAttribute(item[schema.RangeKey]),
		})
	}
	if len(scanOutput.LastEvaluatedKey) > 0 {
		next := make(models.ContinuationToken, len(scanOutput.LastEvaluatedKey))
		for name, value := range scanOutput.LastEvaluatedKey {
			next[name] = stringAttribute(value)
		}
		page.NextToken = next
	}
	return page, nil
}

// DeleteBatch submits the batch as a single TransactWriteItems call. A
// committed transaction means every operation succeeded; a rejected one
// deleted nothing and is returned as an error.
func (s *TableStore) DeleteBatch(ctx context.Context, batch *models.PendingBatch) ([]models.OperationResult, error) {
	schema := s.schema(batch.Key.Table)
	if schema == nil {
		return nil, fmt.Errorf("table `%s` was not resolved before deleting", batch.Key.Table)
	}

	transactItems := make([]types.TransactWriteItem, 0, len(batch.Ops))
	for _, ref := range batch.Ops {
		key := map[string]types.AttributeValue{
			schema.PartitionKey: &types.AttributeValueMemberS{Value: ref.PartitionKey},
		}
		if schema.RangeKey != "" {
			key[schema.RangeKey] = &types.AttributeValueMemberS{Value: ref.RowKey}
		}
		transactItems = append(transactItems, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName: aws.String(batch.Key.Table),
				Key:       key,
			},
		})
	}

	_, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: transactItems,
	})
	if err != nil {
		return nil, fmt.Errorf("delete transaction rejected for table `%s` partition `%s`: %w",
			batch.Key.Table, batch.Key.PartitionKey, err)
	}

	results := make([]models.OperationResult, len(batch.Ops))
	for i, ref := range batch.Ops {
		results[i] = models.OperationResult{Ref: ref, Status: constants.OpStatusOK}
	}
	return results, nil
}

func attributeKey(token models.ContinuationToken) map[string]types.AttributeValue {
	key := make(map[string]types.AttributeValue, len(token))
	for name, value := range token {
		key[name] = &types.AttributeValueMemberS{Value: value}
	}
	return key
}

func stringAttribute(value types.AttributeValue) string {
	if s, ok := value.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}
