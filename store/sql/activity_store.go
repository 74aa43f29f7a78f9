package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-transform/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const defaultActivityListLimit = 50

// ActivityStore appends transform run outcomes to
// transform_activity_entries. Rows are immutable once written.
type ActivityStore struct {
	db   *bun.DB
	repo repository.Repository[*transformActivityRecord]
}

func NewActivityStore(db *bun.DB) (*ActivityStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*transformActivityRecord](db, activityHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid activity repository wiring: %w", err)
		}
	}
	return &ActivityStore{db: db, repo: repo}, nil
}

func (s *ActivityStore) Record(ctx context.Context, entry core.TransformActivityEntry) (core.TransformActivityEntry, error) {
	if s == nil || s.repo == nil {
		return core.TransformActivityEntry{}, fmt.Errorf("sqlstore: activity store is not configured")
	}
	entry.SpecID = strings.TrimSpace(entry.SpecID)
	if entry.SpecID == "" {
		return core.TransformActivityEntry{}, fmt.Errorf("sqlstore: activity spec id is required")
	}

	id := strings.TrimSpace(entry.ID)
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := entry.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	status := strings.TrimSpace(entry.Status)
	if status == "" {
		status = "success"
	}

	record := &transformActivityRecord{
		ID:            id,
		SpecID:        entry.SpecID,
		SpecVersion:   entry.SpecVersion,
		IdentityValue: strings.TrimSpace(entry.IdentityValue),
		Status:        status,
		Error:         strings.TrimSpace(entry.Error),
		DurationMS:    entry.DurationMS,
		Metadata:      copyAnyMap(entry.Metadata),
		CreatedAt:     createdAt,
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return core.TransformActivityEntry{}, err
	}
	return created.toDomain(), nil
}

func (s *ActivityStore) ListRecent(ctx context.Context, specID string, limit int) ([]core.TransformActivityEntry, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: activity store is not configured")
	}
	if limit <= 0 {
		limit = defaultActivityListLimit
	}
	var records []*transformActivityRecord
	query := s.db.NewSelect().
		Model(&records).
		OrderExpr("?TableAlias.created_at DESC").
		Limit(limit)
	if specID = strings.TrimSpace(specID); specID != "" {
		query = query.Where("?TableAlias.spec_id = ?", specID)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]core.TransformActivityEntry, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}
