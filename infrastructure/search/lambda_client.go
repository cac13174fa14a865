package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"trustie-admin/application/ports"
	pkgerrors "trustie-admin/pkg/errors"
)

// InvokeAPI is the subset of the Lambda client used here
type InvokeAPI interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// Functions names the remote functions
type Functions struct {
	SearchUser  string
	SearchEvent string
	UsageStats  string
}

// BreakerConfig tunes the circuit breaker shared by all invocations
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the settings used in production
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// arguments mirrors the resolver-style payload the functions expect
type arguments struct {
	Arguments interface{} `json:"arguments"`
}

// LambdaClient implements ports.SearchClient with synchronous invocations
type LambdaClient struct {
	api       InvokeAPI
	functions Functions
	breaker   *gobreaker.CircuitBreaker
	logger    *zap.Logger
}

// NewLambdaClient creates a new search client
func NewLambdaClient(api InvokeAPI, functions Functions, cfg BreakerConfig, logger *zap.Logger) *LambdaClient {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "remote-search",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// bad input is the caller's fault, not the function's
		IsSuccessful: func(err error) bool {
			return err == nil || pkgerrors.IsValidation(err)
		},
	})

	return &LambdaClient{
		api:       api,
		functions: functions,
		breaker:   breaker,
		logger:    logger,
	}
}

// SearchUsers implements ports.SearchClient
func (c *LambdaClient) SearchUsers(ctx context.Context, search string) ([]ports.SearchHit, error) {
	payload, err := c.invoke(ctx, c.functions.SearchUser, map[string]string{"search": search})
	if err != nil {
		return nil, err
	}
	return decodeHits(c.functions.SearchUser, payload)
}

// SearchEvents implements ports.SearchClient
func (c *LambdaClient) SearchEvents(ctx context.Context, search, eventType, userID string) ([]ports.SearchHit, error) {
	payload, err := c.invoke(ctx, c.functions.SearchEvent, map[string]string{
		"search": search,
		"type":   eventType,
		"userId": userID,
	})
	if err != nil {
		return nil, err
	}
	return decodeHits(c.functions.SearchEvent, payload)
}

// UsageStats implements ports.SearchClient. The payload is passed through.
func (c *LambdaClient) UsageStats(ctx context.Context, statsType string) (json.RawMessage, error) {
	payload, err := c.invoke(ctx, c.functions.UsageStats, map[string]string{"statsType": statsType})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(payload), nil
}

func (c *LambdaClient) invoke(ctx context.Context, function string, args interface{}) ([]byte, error) {
	if function == "" {
		return nil, pkgerrors.NewUnavailableError("search").WithDetail("reason", "function not configured")
	}
	body, err := json.Marshal(arguments{Arguments: args})
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to encode invocation payload").WithCause(err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		out, err := c.api.Invoke(ctx, &lambda.InvokeInput{
			FunctionName:   aws.String(function),
			InvocationType: types.InvocationTypeRequestResponse,
			Payload:        body,
		})
		if err != nil {
			return nil, pkgerrors.NewExternalError(function, err)
		}
		if out.FunctionError != nil {
			return nil, pkgerrors.NewExternalError(function,
				fmt.Errorf("%s: %s", aws.ToString(out.FunctionError), bytes.TrimSpace(out.Payload)))
		}
		return out.Payload, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, pkgerrors.NewUnavailableError(function).WithCause(err)
		}
		c.logger.Error("Remote function failed",
			zap.String("function", function),
			zap.Error(err),
		)
		return nil, err
	}
	return result.([]byte), nil
}

func decodeHits(function string, payload []byte) ([]ports.SearchHit, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []ports.SearchHit{}, nil
	}
	var hits []ports.SearchHit
	if err := json.Unmarshal(trimmed, &hits); err != nil {
		return nil, pkgerrors.NewExternalError(function, fmt.Errorf("unexpected search payload: %w", err))
	}
	return hits, nil
}
