package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	pkgerrors "trustie-admin/pkg/errors"
)

// mapError classifies a store failure. A nil error maps to nil.
func mapError(operation, table string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.NewTimeoutError(operation).WithDetail("table", table).WithCause(err)
	}

	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return pkgerrors.NewDatabaseError(operation, err).WithDetail("table", table)
	}

	switch ae.ErrorCode() {
	case "ConditionalCheckFailedException", "TransactionConflictException":
		return pkgerrors.NewConflictError(fmt.Sprintf("conditional check failed on %s", table)).
			WithDetail("operation", operation).
			WithCause(err)
	case "ProvisionedThroughputExceededException", "RequestLimitExceeded", "ThrottlingException":
		return pkgerrors.NewRateLimitError("dynamodb").
			WithDetail("operation", operation).
			WithDetail("table", table).
			WithCause(err)
	case "ServiceUnavailable":
		return pkgerrors.NewUnavailableError("dynamodb").WithCause(err)
	case "ValidationException":
		// malformed expressions are programming errors, not bad input
		return pkgerrors.NewDatabaseError(operation, err).
			WithDetail("table", table).
			WithDetail("reason", ae.ErrorMessage())
	default:
		return pkgerrors.NewDatabaseError(operation, err).WithDetail("table", table)
	}
}

// conditionFailedItem returns the record that failed a condition check, when
// the request asked for it with ReturnValuesOnConditionCheckFailure.
func conditionFailedItem(err error) (map[string]types.AttributeValue, bool) {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return ccf.Item, true
	}
	return nil, false
}
