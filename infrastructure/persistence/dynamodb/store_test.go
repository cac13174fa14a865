package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trustie-admin/application/ports"
	"trustie-admin/domain/core/entities"
	"trustie-admin/domain/core/valueobjects"
	pkgerrors "trustie-admin/pkg/errors"
)

// stubAPI answers each operation with the matching function field
type stubAPI struct {
	API
	getItem    func(*dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error)
	putItem    func(*dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error)
	updateItem func(*dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error)
	scan       func(*dynamodb.ScanInput) (*dynamodb.ScanOutput, error)
	batchWrite func(*dynamodb.BatchWriteItemInput) (*dynamodb.BatchWriteItemOutput, error)
}

func (s *stubAPI) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return s.getItem(in)
}

func (s *stubAPI) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return s.putItem(in)
}

func (s *stubAPI) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	return s.updateItem(in)
}

func (s *stubAPI) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	return s.scan(in)
}

func (s *stubAPI) BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	return s.batchWrite(in)
}

func newTestStore(api API) *RecordStore {
	store := NewRecordStore(api, "test-table", zap.NewNop())
	store.retryDelay = time.Millisecond
	return store
}

func marshalT(t *testing.T, v interface{}) map[string]types.AttributeValue {
	t.Helper()
	av, err := attributevalue.MarshalMap(v)
	require.NoError(t, err)
	return av
}

func TestMarkPublishedClassifiesConditionFailures(t *testing.T) {
	id, err := valueobjects.ParsePostID("flash_abc")
	require.NoError(t, err)
	token := valueobjects.NewStatusToken("flash", valueobjects.StatusPublished, time.Now())

	tests := []struct {
		name    string
		old     map[string]types.AttributeValue
		guard   ports.PublishGuard
		checkFn func(error) bool
	}{
		{
			name:    "missing post",
			checkFn: pkgerrors.IsNotFound,
		},
		{
			name:    "other owner",
			old:     marshalT(t, eventItem{EventID: "flash_abc", UserID: "owner", LastStatus: "created"}),
			guard:   ports.PublishGuard{ActorID: "intruder"},
			checkFn: pkgerrors.IsForbidden,
		},
		{
			name:    "already published",
			old:     marshalT(t, eventItem{EventID: "flash_abc", UserID: "owner", LastStatus: "published"}),
			guard:   ports.PublishGuard{ActorID: "owner", RequireUnpublished: true},
			checkFn: pkgerrors.IsConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &stubAPI{updateItem: func(in *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
				assert.Equal(t, types.ReturnValuesOnConditionCheckFailureAllOld, in.ReturnValuesOnConditionCheckFailure)
				return nil, &types.ConditionalCheckFailedException{Message: aws.String("failed"), Item: tt.old}
			}}
			repo := NewEventRepository(newTestStore(api), zap.NewNop())

			_, err := repo.MarkPublished(context.Background(), id, token, tt.guard)
			require.Error(t, err)
			assert.True(t, tt.checkFn(err), "unexpected error: %v", err)
		})
	}
}

func TestMarkPublishedReturnsUpdatedPost(t *testing.T) {
	id, err := valueobjects.ParsePostID("goal_abc")
	require.NoError(t, err)
	value := 150.0

	api := &stubAPI{updateItem: func(in *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
		assert.Equal(t, "goal_abc", in.Key["eventId"].(*types.AttributeValueMemberS).Value)
		assert.Equal(t, "post_detail", in.Key["eventType"].(*types.AttributeValueMemberS).Value)
		return &dynamodb.UpdateItemOutput{Attributes: marshalT(t, eventItem{
			EventID: "goal_abc", EventType: "post_detail", UserID: "owner",
			LastStatus: "published", Value: &value,
		})}, nil
	}}
	repo := NewEventRepository(newTestStore(api), zap.NewNop())

	post, err := repo.MarkPublished(context.Background(), id, valueobjects.NewStatusToken("goal", "published", time.Now()), ports.PublishGuard{})
	require.NoError(t, err)
	assert.Equal(t, "owner", post.UserID)
	require.NotNil(t, post.Goal)
	assert.Equal(t, 150.0, post.Goal.Value)
}

func TestBatchPutRetriesUnprocessedItems(t *testing.T) {
	calls := 0
	api := &stubAPI{batchWrite: func(in *dynamodb.BatchWriteItemInput) (*dynamodb.BatchWriteItemOutput, error) {
		calls++
		requests := in.RequestItems["test-table"]
		if calls == 1 {
			assert.Len(t, requests, 3)
			return &dynamodb.BatchWriteItemOutput{UnprocessedItems: map[string][]types.WriteRequest{
				"test-table": requests[2:],
			}}, nil
		}
		assert.Len(t, requests, 1)
		return &dynamodb.BatchWriteItemOutput{}, nil
	}}
	repo := NewUserRepository(newTestStore(api), zap.NewNop())

	err := repo.PutFeedPointers(context.Background(), []entities.FeedPointer{
		entities.NewFeedPointer("u1", "2024-06-01T08:30:00.000Z", "chat_1", "author"),
		entities.NewFeedPointer("u2", "2024-06-01T08:30:00.000Z", "chat_1", "author"),
		entities.NewFeedPointer("u3", "2024-06-01T08:30:00.000Z", "chat_1", "author"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestBatchPutGivesUpAfterRetries(t *testing.T) {
	api := &stubAPI{batchWrite: func(in *dynamodb.BatchWriteItemInput) (*dynamodb.BatchWriteItemOutput, error) {
		return &dynamodb.BatchWriteItemOutput{UnprocessedItems: in.RequestItems}, nil
	}}
	repo := NewUserRepository(newTestStore(api), zap.NewNop())

	err := repo.PutFeedPointers(context.Background(), []entities.FeedPointer{
		entities.NewFeedPointer("u1", "d", "chat_1", "author"),
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeRateLimit))
}

func TestPutFeedPointersRejectsOversizedBatch(t *testing.T) {
	repo := NewUserRepository(newTestStore(&stubAPI{}), zap.NewNop())
	pointers := make([]entities.FeedPointer, ports.MaxBatchWrite+1)
	err := repo.PutFeedPointers(context.Background(), pointers)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestScanProfilesCursor(t *testing.T) {
	lastKey := map[string]types.AttributeValue{
		"userId":    &types.AttributeValueMemberS{Value: "u-25"},
		"primarySK": &types.AttributeValueMemberS{Value: "profile_basic"},
	}
	var seenStart map[string]types.AttributeValue

	api := &stubAPI{scan: func(in *dynamodb.ScanInput) (*dynamodb.ScanOutput, error) {
		seenStart = in.ExclusiveStartKey
		assert.Equal(t, "profile_basic", in.ExpressionAttributeValues[":0"].(*types.AttributeValueMemberS).Value)
		out := &dynamodb.ScanOutput{Items: []map[string]types.AttributeValue{
			{"userId": &types.AttributeValueMemberS{Value: "u-1"}},
		}}
		if in.ExclusiveStartKey == nil {
			out.LastEvaluatedKey = lastKey
		}
		return out, nil
	}}
	repo := NewUserRepository(newTestStore(api), zap.NewNop())

	first, err := repo.ScanProfiles(context.Background(), "profile_basic", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"u-1"}, first.UserIDs)
	require.NotEmpty(t, first.Next)

	second, err := repo.ScanProfiles(context.Background(), "profile_basic", first.Next)
	require.NoError(t, err)
	assert.Empty(t, second.Next)
	assert.Equal(t, lastKey, seenStart)
}

func TestResourceUpdateSetsOnlySuppliedFields(t *testing.T) {
	notes := "chapter 3"
	api := &stubAPI{updateItem: func(in *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
		names := make([]string, 0, len(in.ExpressionAttributeNames))
		for _, n := range in.ExpressionAttributeNames {
			names = append(names, n)
		}
		assert.ElementsMatch(t, []string{"PK", "lastModified", "notes"}, names)
		return &dynamodb.UpdateItemOutput{Attributes: marshalT(t, resourceItem{
			PK: "r1", SK: "sk", ResourceID: "r1", Notes: notes, LastModified: "2024-06-01T08:30:00.001Z",
		})}, nil
	}}
	repo := NewResourceRepository(newTestStore(api), zap.NewNop())

	res, err := repo.Update(context.Background(), "r1", "sk", entities.ResourcePatch{Notes: &notes}, time.Date(2024, 6, 1, 8, 30, 0, 1e6, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "chapter 3", res.Notes)
}

func TestMapError(t *testing.T) {
	throttled := &types.ProvisionedThroughputExceededException{Message: aws.String("slow down")}
	assert.True(t, pkgerrors.IsType(mapError("Scan", "t", throttled), pkgerrors.ErrorTypeRateLimit))
	assert.True(t, pkgerrors.IsType(mapError("Scan", "t", context.DeadlineExceeded), pkgerrors.ErrorTypeTimeout))
	assert.True(t, pkgerrors.IsType(mapError("Scan", "t", errors.New("boom")), pkgerrors.ErrorTypeDatabase))
	assert.NoError(t, mapError("Scan", "t", nil))
}
