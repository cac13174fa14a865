package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"go.uber.org/zap"

	"trustie-admin/application/ports"
	"trustie-admin/domain/core/entities"
	"trustie-admin/domain/core/valueobjects"
	pkgerrors "trustie-admin/pkg/errors"
)

const (
	attrUserID    = "userId"
	attrPrimarySK = "primarySK"
)

type feedItem struct {
	UserID    string `dynamodbav:"userId"`
	PrimarySK string `dynamodbav:"primarySK"`
	FriendID  string `dynamodbav:"friendId"`
}

type userIDItem struct {
	UserID string `dynamodbav:"userId"`
}

// UserRepository reads and writes sub-records keyed by (userId, primarySK)
type UserRepository struct {
	store  *RecordStore
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(store *RecordStore, logger *zap.Logger) *UserRepository {
	return &UserRepository{store: store, logger: logger}
}

func toUserRecord(raw map[string]interface{}) entities.UserRecord {
	rec := entities.UserRecord{Attributes: make(map[string]interface{}, len(raw))}
	for k, v := range raw {
		switch k {
		case attrUserID:
			rec.UserID, _ = v.(string)
		case attrPrimarySK:
			rec.PrimarySK, _ = v.(string)
		default:
			rec.Attributes[k] = v
		}
	}
	return rec
}

// GetSection implements ports.UserRepository
func (r *UserRepository) GetSection(ctx context.Context, userID string, section valueobjects.ProfileSection) (*entities.UserRecord, error) {
	var raw map[string]interface{}
	found, err := r.store.Get(ctx, stringKey(attrUserID, userID, attrPrimarySK, string(section)), &raw)
	if err != nil || !found {
		return nil, err
	}
	rec := toUserRecord(raw)
	return &rec, nil
}

// ListByPrefix implements ports.UserRepository
func (r *UserRepository) ListByPrefix(ctx context.Context, userID, prefix string) ([]entities.UserRecord, error) {
	keyCond := expression.Key(attrUserID).Equal(expression.Value(userID)).
		And(expression.Key(attrPrimarySK).BeginsWith(prefix))

	var raws []map[string]interface{}
	if err := r.store.QueryAll(ctx, keyCond, &raws); err != nil {
		return nil, err
	}
	records := make([]entities.UserRecord, 0, len(raws))
	for _, raw := range raws {
		records = append(records, toUserRecord(raw))
	}
	return records, nil
}

// ApplyPostStatus implements ports.UserRepository. Counters start from zero
// when the record or the attribute does not exist yet.
func (r *UserRepository) ApplyPostStatus(ctx context.Context, update entities.PostStatusUpdate) error {
	counter := expression.Name(update.Counter)
	expr := expression.
		Set(counter, expression.Plus(expression.IfNotExists(counter, expression.Value(0)), expression.Value(1))).
		Set(expression.Name("updated"), expression.Value(update.Updated))
	if update.HasPicture {
		expr = expr.
			Set(expression.Name("picture"), expression.Value(update.Picture)).
			Set(expression.Name("preview"), expression.Value(update.Preview)).
			Set(expression.Name("picturePath"), expression.Value(update.PicturePath))
	}

	key := stringKey(attrUserID, update.UserID, attrPrimarySK, string(valueobjects.SectionPostStatus))
	return r.store.Update(ctx, key, expr, nil, nil)
}

// ScanProfiles implements ports.UserRepository
func (r *UserRepository) ScanProfiles(ctx context.Context, profileSK, cursor string) (ports.ProfilePage, error) {
	filter := expression.Name(attrPrimarySK).Equal(expression.Value(profileSK))
	projection := expression.NamesList(expression.Name(attrUserID))

	var items []userIDItem
	next, err := r.store.ScanPage(ctx, filter, &projection, cursor, &items)
	if err != nil {
		return ports.ProfilePage{}, err
	}

	page := ports.ProfilePage{UserIDs: make([]string, 0, len(items)), Next: next}
	for _, item := range items {
		page.UserIDs = append(page.UserIDs, item.UserID)
	}
	return page, nil
}

// PutFeedPointers implements ports.UserRepository
func (r *UserRepository) PutFeedPointers(ctx context.Context, pointers []entities.FeedPointer) error {
	if len(pointers) > ports.MaxBatchWrite {
		return pkgerrors.NewValidationError(fmt.Sprintf("batch of %d feed pointers exceeds %d", len(pointers), ports.MaxBatchWrite))
	}
	items := make([]interface{}, 0, len(pointers))
	for _, p := range pointers {
		items = append(items, feedItem{UserID: p.UserID, PrimarySK: p.PrimarySK, FriendID: p.FriendID})
	}
	return r.store.BatchPut(ctx, items)
}
