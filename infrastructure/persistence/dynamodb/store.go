package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	pkgerrors "trustie-admin/pkg/errors"
)

// API is the subset of the DynamoDB client the record store uses
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// Key is a primary key
type Key map[string]types.AttributeValue

// stringKey builds a key of two string attributes
func stringKey(pkName, pk, skName, sk string) Key {
	return Key{
		pkName: &types.AttributeValueMemberS{Value: pk},
		skName: &types.AttributeValueMemberS{Value: sk},
	}
}

// maxBatchItems is the service ceiling on one BatchWriteItem request
const maxBatchItems = 25

// RecordStore wraps one table. Every failure comes back as an AppError
// classified by mapError.
type RecordStore struct {
	api          API
	table        string
	logger       *zap.Logger
	batchRetries int
	retryDelay   time.Duration
}

// NewRecordStore creates a store for table
func NewRecordStore(api API, table string, logger *zap.Logger) *RecordStore {
	return &RecordStore{
		api:          api,
		table:        table,
		logger:       logger,
		batchRetries: 3,
		retryDelay:   50 * time.Millisecond,
	}
}

// Table returns the table name
func (s *RecordStore) Table() string { return s.table }

// Get reads one item into out. It reports false when the item is absent.
func (s *RecordStore) Get(ctx context.Context, key Key, out interface{}) (bool, error) {
	result, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       key,
	})
	if err != nil {
		return false, mapError("GetItem", s.table, err)
	}
	if result.Item == nil {
		return false, nil
	}
	if err := attributevalue.UnmarshalMap(result.Item, out); err != nil {
		return false, pkgerrors.NewDatabaseError("unmarshal", err)
	}
	return true, nil
}

// Put writes item, guarded by cond when it is non-nil
func (s *RecordStore) Put(ctx context.Context, item interface{}, cond *expression.ConditionBuilder) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	}
	if cond != nil {
		expr, err := expression.NewBuilder().WithCondition(*cond).Build()
		if err != nil {
			return pkgerrors.NewInternalError("failed to build condition").WithCause(err)
		}
		input.ConditionExpression = expr.Condition()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	_, err = s.api.PutItem(ctx, input)
	return mapError("PutItem", s.table, err)
}

// Update applies update in one request and unmarshals the item after the
// update into out. When cond fails the returned CONFLICT error carries the
// item as it was; see conditionFailedItem.
func (s *RecordStore) Update(ctx context.Context, key Key, update expression.UpdateBuilder, cond *expression.ConditionBuilder, out interface{}) error {
	builder := expression.NewBuilder().WithUpdate(update)
	if cond != nil {
		builder = builder.WithCondition(*cond)
	}
	expr, err := builder.Build()
	if err != nil {
		return pkgerrors.NewInternalError("failed to build update expression").WithCause(err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       key,
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	}
	if cond != nil {
		input.ConditionExpression = expr.Condition()
		input.ReturnValuesOnConditionCheckFailure = types.ReturnValuesOnConditionCheckFailureAllOld
	}

	result, err := s.api.UpdateItem(ctx, input)
	if err != nil {
		return mapError("UpdateItem", s.table, err)
	}
	if out != nil {
		if err := attributevalue.UnmarshalMap(result.Attributes, out); err != nil {
			return pkgerrors.NewDatabaseError("unmarshal", err)
		}
	}
	return nil
}

// Delete removes one item
func (s *RecordStore) Delete(ctx context.Context, key Key) error {
	_, err := s.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       key,
	})
	return mapError("DeleteItem", s.table, err)
}

// QueryAll runs keyCond to the last page and unmarshals every item into out,
// which must point to a slice.
func (s *RecordStore) QueryAll(ctx context.Context, keyCond expression.KeyConditionBuilder, out interface{}) error {
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return pkgerrors.NewInternalError("failed to build key condition").WithCause(err)
	}

	paginator := dynamodb.NewQueryPaginator(s.api, &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	var items []map[string]types.AttributeValue
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return mapError("Query", s.table, err)
		}
		items = append(items, page.Items...)
	}
	if err := attributevalue.UnmarshalListOfMaps(items, out); err != nil {
		return pkgerrors.NewDatabaseError("unmarshal", err)
	}
	return nil
}

// ScanAll reads the whole table into out, which must point to a slice
func (s *RecordStore) ScanAll(ctx context.Context, out interface{}) error {
	paginator := dynamodb.NewScanPaginator(s.api, &dynamodb.ScanInput{
		TableName: aws.String(s.table),
	})

	var items []map[string]types.AttributeValue
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return mapError("Scan", s.table, err)
		}
		items = append(items, page.Items...)
	}
	if err := attributevalue.UnmarshalListOfMaps(items, out); err != nil {
		return pkgerrors.NewDatabaseError("unmarshal", err)
	}
	return nil
}

// ScanPage reads one page starting at cursor. The filter runs after the page
// is read, so a page may hold no matches while next is still non-empty.
func (s *RecordStore) ScanPage(ctx context.Context, filter expression.ConditionBuilder, projection *expression.ProjectionBuilder, cursor string, out interface{}) (string, error) {
	startKey, err := decodeCursor(cursor)
	if err != nil {
		return "", err
	}

	builder := expression.NewBuilder().WithFilter(filter)
	if projection != nil {
		builder = builder.WithProjection(*projection)
	}
	expr, err := builder.Build()
	if err != nil {
		return "", pkgerrors.NewInternalError("failed to build scan filter").WithCause(err)
	}

	result, err := s.api.Scan(ctx, &dynamodb.ScanInput{
		TableName:                 aws.String(s.table),
		FilterExpression:          expr.Filter(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ExclusiveStartKey:         startKey,
	})
	if err != nil {
		return "", mapError("Scan", s.table, err)
	}
	if err := attributevalue.UnmarshalListOfMaps(result.Items, out); err != nil {
		return "", pkgerrors.NewDatabaseError("unmarshal", err)
	}
	return encodeCursor(result.LastEvaluatedKey)
}

// BatchPut writes items in requests of at most 25, resubmitting unprocessed
// items a bounded number of times.
func (s *RecordStore) BatchPut(ctx context.Context, items []interface{}) error {
	for start := 0; start < len(items); start += maxBatchItems {
		end := start + maxBatchItems
		if end > len(items) {
			end = len(items)
		}

		requests := make([]types.WriteRequest, 0, end-start)
		for _, item := range items[start:end] {
			av, err := attributevalue.MarshalMap(item)
			if err != nil {
				return pkgerrors.NewDatabaseError("marshal", err)
			}
			requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: av}})
		}
		if err := s.writeBatch(ctx, requests); err != nil {
			return err
		}
	}
	return nil
}

func (s *RecordStore) writeBatch(ctx context.Context, requests []types.WriteRequest) error {
	pending := map[string][]types.WriteRequest{s.table: requests}
	for attempt := 0; ; attempt++ {
		result, err := s.api.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			return mapError("BatchWriteItem", s.table, err)
		}
		if len(result.UnprocessedItems[s.table]) == 0 {
			return nil
		}
		if attempt >= s.batchRetries {
			return pkgerrors.NewRateLimitError("dynamodb").
				WithDetail("operation", "BatchWriteItem").
				WithDetail("unprocessed", len(result.UnprocessedItems[s.table]))
		}

		s.logger.Debug("Retrying unprocessed batch items",
			zap.String("table", s.table),
			zap.Int("unprocessed", len(result.UnprocessedItems[s.table])),
			zap.Int("attempt", attempt+1),
		)
		pending = result.UnprocessedItems

		select {
		case <-ctx.Done():
			return mapError("BatchWriteItem", s.table, ctx.Err())
		case <-time.After(s.retryDelay << attempt):
		}
	}
}
