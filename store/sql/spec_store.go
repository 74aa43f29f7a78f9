package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-transform/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SpecStore persists versioned mapping spec documents in
// transform_mapping_specs. One row per (spec_id, version); the pair is
// unique at the schema level.
type SpecStore struct {
	db   *bun.DB
	repo repository.Repository[*mappingSpecRecord]
}

func NewSpecStore(db *bun.DB) (*SpecStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*mappingSpecRecord](db, mappingSpecHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid mapping spec repository wiring: %w", err)
		}
	}
	return &SpecStore{db: db, repo: repo}, nil
}

func (s *SpecStore) CreateDraft(ctx context.Context, spec core.MappingSpec) (core.MappingSpec, error) {
	if s == nil || s.db == nil {
		return core.MappingSpec{}, fmt.Errorf("sqlstore: spec store is not configured")
	}
	spec.SpecID = strings.TrimSpace(spec.SpecID)
	if spec.SpecID == "" {
		return core.MappingSpec{}, fmt.Errorf("sqlstore: spec id is required")
	}
	if spec.Version < 1 {
		return core.MappingSpec{}, fmt.Errorf("sqlstore: spec version must be >= 1")
	}

	record := newMappingSpecRecord(spec)
	if strings.TrimSpace(record.ID) == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return core.MappingSpec{}, fmt.Errorf("sqlstore: spec %s version %d already exists", spec.SpecID, spec.Version)
		}
		return core.MappingSpec{}, err
	}
	return record.toDomain(), nil
}

func (s *SpecStore) UpdateDraft(ctx context.Context, spec core.MappingSpec) (core.MappingSpec, error) {
	if s == nil || s.db == nil {
		return core.MappingSpec{}, fmt.Errorf("sqlstore: spec store is not configured")
	}
	spec.SpecID = strings.TrimSpace(spec.SpecID)

	var out core.MappingSpec
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := findSpecVersionTx(ctx, tx, spec.SpecID, spec.Version)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("sqlstore: spec %s version %d not found", spec.SpecID, spec.Version)
		}

		record := newMappingSpecRecord(spec)
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		record.UpdatedAt = time.Now().UTC()
		if _, err := tx.NewUpdate().Model(record).Where("id = ?", record.ID).Exec(ctx); err != nil {
			return err
		}
		out = record.toDomain()
		return nil
	})
	if err != nil {
		return core.MappingSpec{}, err
	}
	return out, nil
}

func (s *SpecStore) SetStatus(ctx context.Context, specID string, version int, status core.MappingSpecStatus, now time.Time) (core.MappingSpec, error) {
	if s == nil || s.db == nil {
		return core.MappingSpec{}, fmt.Errorf("sqlstore: spec store is not configured")
	}
	specID = strings.TrimSpace(specID)

	var out core.MappingSpec
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := findSpecVersionTx(ctx, tx, specID, version)
		if err != nil {
			return err
		}
		if record == nil {
			return fmt.Errorf("sqlstore: spec %s version %d not found", specID, version)
		}
		record.Status = string(status)
		record.UpdatedAt = now.UTC()
		if _, err := tx.NewUpdate().
			Model(record).
			Column("status", "updated_at").
			Where("id = ?", record.ID).
			Exec(ctx); err != nil {
			return err
		}
		out = record.toDomain()
		return nil
	})
	if err != nil {
		return core.MappingSpec{}, err
	}
	return out, nil
}

func (s *SpecStore) GetVersion(ctx context.Context, specID string, version int) (core.MappingSpec, bool, error) {
	if s == nil || s.db == nil {
		return core.MappingSpec{}, false, fmt.Errorf("sqlstore: spec store is not configured")
	}
	record := &mappingSpecRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.spec_id = ?", strings.TrimSpace(specID)).
		Where("?TableAlias.version = ?", version).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.MappingSpec{}, false, nil
		}
		return core.MappingSpec{}, false, err
	}
	return record.toDomain(), true, nil
}

func (s *SpecStore) GetLatest(ctx context.Context, specID string) (core.MappingSpec, bool, error) {
	if s == nil || s.db == nil {
		return core.MappingSpec{}, false, fmt.Errorf("sqlstore: spec store is not configured")
	}
	record := &mappingSpecRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.spec_id = ?", strings.TrimSpace(specID)).
		OrderExpr("?TableAlias.version DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.MappingSpec{}, false, nil
		}
		return core.MappingSpec{}, false, err
	}
	return record.toDomain(), true, nil
}

func (s *SpecStore) GetPublished(ctx context.Context, specID string) (core.MappingSpec, bool, error) {
	if s == nil || s.db == nil {
		return core.MappingSpec{}, false, fmt.Errorf("sqlstore: spec store is not configured")
	}
	record := &mappingSpecRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.spec_id = ?", strings.TrimSpace(specID)).
		Where("?TableAlias.status = ?", string(core.MappingSpecStatusPublished)).
		OrderExpr("?TableAlias.version DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.MappingSpec{}, false, nil
		}
		return core.MappingSpec{}, false, err
	}
	return record.toDomain(), true, nil
}

func (s *SpecStore) List(ctx context.Context) ([]core.MappingSpec, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: spec store is not configured")
	}
	var records []*mappingSpecRecord
	err := s.db.NewSelect().
		Model(&records).
		OrderExpr("?TableAlias.spec_id ASC").
		OrderExpr("?TableAlias.version ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]core.MappingSpec, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *SpecStore) PublishVersion(ctx context.Context, specID string, version int, publishedAt time.Time) (core.MappingSpec, error) {
	if s == nil || s.db == nil {
		return core.MappingSpec{}, fmt.Errorf("sqlstore: spec store is not configured")
	}
	specID = strings.TrimSpace(specID)
	publishedAt = publishedAt.UTC()

	var out core.MappingSpec
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := findSpecVersionTx(ctx, tx, specID, version)
		if err != nil {
			return err
		}
		if record == nil {
			return fmt.Errorf("sqlstore: spec %s version %d not found", specID, version)
		}

		// a publish supersedes any previously published version of the spec
		if _, err := tx.NewUpdate().
			Model((*mappingSpecRecord)(nil)).
			Set("status = ?", string(core.MappingSpecStatusArchived)).
			Set("updated_at = ?", publishedAt).
			Where("?TableAlias.spec_id = ?", specID).
			Where("?TableAlias.status = ?", string(core.MappingSpecStatusPublished)).
			Where("?TableAlias.version != ?", version).
			Exec(ctx); err != nil {
			return err
		}

		record.Status = string(core.MappingSpecStatusPublished)
		record.PublishedAt = &publishedAt
		record.UpdatedAt = publishedAt
		if _, err := tx.NewUpdate().
			Model(record).
			Column("status", "published_at", "updated_at").
			Where("id = ?", record.ID).
			Exec(ctx); err != nil {
			return err
		}
		out = record.toDomain()
		return nil
	})
	if err != nil {
		return core.MappingSpec{}, err
	}
	return out, nil
}

func findSpecVersionTx(ctx context.Context, tx bun.Tx, specID string, version int) (*mappingSpecRecord, error) {
	record := &mappingSpecRecord{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.spec_id = ?", specID).
		Where("?TableAlias.version = ?", version).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}
