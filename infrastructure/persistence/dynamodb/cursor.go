package dynamodb

import (
	"encoding/base64"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	pkgerrors "trustie-admin/pkg/errors"
)

// encodeCursor turns a LastEvaluatedKey into an opaque string. An empty key
// encodes to "".
func encodeCursor(key map[string]types.AttributeValue) (string, error) {
	if len(key) == 0 {
		return "", nil
	}
	var plain map[string]interface{}
	if err := attributevalue.UnmarshalMap(key, &plain); err != nil {
		return "", pkgerrors.NewInternalError("failed to encode scan cursor").WithCause(err)
	}
	data, err := json.Marshal(plain)
	if err != nil {
		return "", pkgerrors.NewInternalError("failed to encode scan cursor").WithCause(err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// decodeCursor reverses encodeCursor
func decodeCursor(cursor string) (map[string]types.AttributeValue, error) {
	if cursor == "" {
		return nil, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, pkgerrors.NewValidationError("invalid scan cursor").WithCause(err)
	}
	var plain map[string]interface{}
	if err := json.Unmarshal(data, &plain); err != nil {
		return nil, pkgerrors.NewValidationError("invalid scan cursor").WithCause(err)
	}
	key, err := attributevalue.MarshalMap(plain)
	if err != nil {
		return nil, pkgerrors.NewValidationError("invalid scan cursor").WithCause(err)
	}
	return key, nil
}
