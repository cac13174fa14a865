package search

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	pkgerrors "trustie-admin/pkg/errors"
)

type stubInvoker struct {
	calls   []*lambda.InvokeInput
	respond func(*lambda.InvokeInput) (*lambda.InvokeOutput, error)
}

func (s *stubInvoker) Invoke(ctx context.Context, in *lambda.InvokeInput, _ ...func(*lambda.Options)) (*lambda.InvokeOutput, error) {
	s.calls = append(s.calls, in)
	return s.respond(in)
}

func payloadOf(t *testing.T, in *lambda.InvokeInput) map[string]map[string]string {
	t.Helper()
	var p map[string]map[string]string
	require.NoError(t, json.Unmarshal(in.Payload, &p))
	return p
}

var functions = Functions{SearchUser: "search-user", SearchEvent: "search-event", UsageStats: "usage-stats"}

func TestSearchEventsPayload(t *testing.T) {
	stub := &stubInvoker{respond: func(in *lambda.InvokeInput) (*lambda.InvokeOutput, error) {
		return &lambda.InvokeOutput{Payload: []byte(`[{"eventId":"flash_1","title":"Hi"}]`)}, nil
	}}
	c := NewLambdaClient(stub, functions, DefaultBreakerConfig(), zap.NewNop())

	hits, err := c.SearchEvents(context.Background(), "hi", "post", "u-1")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "flash_1", hits[0]["eventId"])

	require.Len(t, stub.calls, 1)
	assert.Equal(t, "search-event", aws.ToString(stub.calls[0].FunctionName))
	assert.Equal(t, map[string]map[string]string{
		"arguments": {"search": "hi", "type": "post", "userId": "u-1"},
	}, payloadOf(t, stub.calls[0]))
}

func TestSearchUsersNullPayload(t *testing.T) {
	stub := &stubInvoker{respond: func(in *lambda.InvokeInput) (*lambda.InvokeOutput, error) {
		return &lambda.InvokeOutput{Payload: []byte("null")}, nil
	}}
	c := NewLambdaClient(stub, functions, DefaultBreakerConfig(), zap.NewNop())

	hits, err := c.SearchUsers(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Equal(t, map[string]map[string]string{"arguments": {"search": "nobody"}}, payloadOf(t, stub.calls[0]))
}

func TestUsageStatsPassesPayloadThrough(t *testing.T) {
	stub := &stubInvoker{respond: func(in *lambda.InvokeInput) (*lambda.InvokeOutput, error) {
		return &lambda.InvokeOutput{Payload: []byte(`{"series":[1,2,3]}`)}, nil
	}}
	c := NewLambdaClient(stub, functions, DefaultBreakerConfig(), zap.NewNop())

	stats, err := c.UsageStats(context.Background(), "growth")
	require.NoError(t, err)
	assert.JSONEq(t, `{"series":[1,2,3]}`, string(stats))
	assert.Equal(t, map[string]map[string]string{"arguments": {"statsType": "growth"}}, payloadOf(t, stub.calls[0]))
}

func TestFunctionErrorIsExternal(t *testing.T) {
	stub := &stubInvoker{respond: func(in *lambda.InvokeInput) (*lambda.InvokeOutput, error) {
		return &lambda.InvokeOutput{FunctionError: aws.String("Unhandled"), Payload: []byte(`{"errorMessage":"boom"}`)}, nil
	}}
	c := NewLambdaClient(stub, functions, DefaultBreakerConfig(), zap.NewNop())

	_, err := c.SearchUsers(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeExternal))
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	stub := &stubInvoker{respond: func(in *lambda.InvokeInput) (*lambda.InvokeOutput, error) {
		return nil, errors.New("connection reset")
	}}
	cfg := BreakerConfig{MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, FailureThreshold: 0.5, MinRequests: 2}
	c := NewLambdaClient(stub, functions, cfg, zap.NewNop())

	for i := 0; i < 2; i++ {
		_, err := c.SearchUsers(context.Background(), "x")
		require.Error(t, err)
	}
	_, err := c.SearchUsers(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnavailable))
	assert.Len(t, stub.calls, 2)
}
