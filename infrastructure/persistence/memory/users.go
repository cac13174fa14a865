package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"trustie-admin/application/ports"
	"trustie-admin/domain/core/entities"
	"trustie-admin/domain/core/valueobjects"
	pkgerrors "trustie-admin/pkg/errors"
)

type userKey struct {
	userID    string
	primarySK string
}

// UserRepository is an in-process users table. Scans walk records in
// insertion order and, like the real store, apply the filter after reading a
// page, so a page may hold fewer matches than PageSize.
type UserRepository struct {
	mu         sync.RWMutex
	records    map[userKey]entities.UserRecord
	order      []userKey
	pageSize   int
	batchCalls int
}

// NewUserRepository creates an empty table. pageSize <= 0 means one page.
func NewUserRepository(pageSize int) *UserRepository {
	return &UserRepository{
		records:  make(map[userKey]entities.UserRecord),
		pageSize: pageSize,
	}
}

// Seed stores records as-is
func (r *UserRepository) Seed(records ...entities.UserRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range records {
		r.putLocked(rec)
	}
}

func (r *UserRepository) putLocked(rec entities.UserRecord) {
	key := userKey{userID: rec.UserID, primarySK: rec.PrimarySK}
	if _, exists := r.records[key]; !exists {
		r.order = append(r.order, key)
	}
	r.records[key] = copyUserRecord(rec)
}

// Record returns a stored record
func (r *UserRepository) Record(userID, primarySK string) (entities.UserRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[userKey{userID: userID, primarySK: primarySK}]
	return copyUserRecord(rec), ok
}

// BatchCalls returns how many PutFeedPointers calls succeeded
func (r *UserRepository) BatchCalls() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.batchCalls
}

// GetSection implements ports.UserRepository
func (r *UserRepository) GetSection(ctx context.Context, userID string, section valueobjects.ProfileSection) (*entities.UserRecord, error) {
	rec, ok := r.Record(userID, string(section))
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// ListByPrefix implements ports.UserRepository
func (r *UserRepository) ListByPrefix(ctx context.Context, userID, prefix string) ([]entities.UserRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []entities.UserRecord
	for _, key := range r.order {
		if key.userID == userID && strings.HasPrefix(key.primarySK, prefix) {
			out = append(out, copyUserRecord(r.records[key]))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PrimarySK < out[j].PrimarySK })
	return out, nil
}

// ApplyPostStatus implements ports.UserRepository
func (r *UserRepository) ApplyPostStatus(ctx context.Context, update entities.PostStatusUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := userKey{userID: update.UserID, primarySK: string(valueobjects.SectionPostStatus)}
	rec, ok := r.records[key]
	if !ok {
		rec = entities.UserRecord{UserID: update.UserID, PrimarySK: key.primarySK}
	}
	rec = copyUserRecord(rec)

	current, _ := rec.Attributes[update.Counter].(int)
	rec.Attributes[update.Counter] = current + 1
	rec.Attributes["updated"] = update.Updated
	if update.HasPicture {
		rec.Attributes["picture"] = update.Picture
		rec.Attributes["preview"] = update.Preview
		rec.Attributes["picturePath"] = update.PicturePath
	}
	r.putLocked(rec)
	return nil
}

// ScanProfiles implements ports.UserRepository
func (r *UserRepository) ScanProfiles(ctx context.Context, profileSK, cursor string) (ports.ProfilePage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	start := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 || n > len(r.order) {
			return ports.ProfilePage{}, pkgerrors.NewValidationError(fmt.Sprintf("invalid scan cursor %q", cursor))
		}
		start = n
	}
	end := len(r.order)
	if r.pageSize > 0 && start+r.pageSize < end {
		end = start + r.pageSize
	}

	page := ports.ProfilePage{}
	for _, key := range r.order[start:end] {
		if key.primarySK == profileSK {
			page.UserIDs = append(page.UserIDs, key.userID)
		}
	}
	if end < len(r.order) {
		page.Next = strconv.Itoa(end)
	}
	return page, nil
}

// PutFeedPointers implements ports.UserRepository
func (r *UserRepository) PutFeedPointers(ctx context.Context, pointers []entities.FeedPointer) error {
	if len(pointers) > ports.MaxBatchWrite {
		return pkgerrors.NewValidationError(fmt.Sprintf("batch of %d exceeds %d items", len(pointers), ports.MaxBatchWrite))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pointers {
		r.putLocked(entities.UserRecord{
			UserID:     p.UserID,
			PrimarySK:  p.PrimarySK,
			Attributes: map[string]interface{}{"friendId": p.FriendID},
		})
	}
	r.batchCalls++
	return nil
}

func copyUserRecord(rec entities.UserRecord) entities.UserRecord {
	attrs := make(map[string]interface{}, len(rec.Attributes))
	for k, v := range rec.Attributes {
		attrs[k] = v
	}
	rec.Attributes = attrs
	return rec
}
