package core

import (
	"context"
	"fmt"
	"time"
)

type SpecLifecycleOption func(*SpecLifecycle)

func WithSpecLifecycleClock(now func() time.Time) SpecLifecycleOption {
	return func(s *SpecLifecycle) {
		if s == nil || now == nil {
			return
		}
		s.now = now
	}
}

func WithSpecLifecycleEventBus(bus LifecycleEventBus) SpecLifecycleOption {
	return func(s *SpecLifecycle) {
		if s == nil {
			return
		}
		s.eventBus = bus
	}
}

// SpecLifecycle enforces draft/publish/archive transitions over stored
// mapping spec documents: versions are monotonic, published versions are
// immutable, and every transition emits a lifecycle event.
type SpecLifecycle struct {
	store    MappingSpecStore
	eventBus LifecycleEventBus
	now      func() time.Time
}

func NewSpecLifecycle(store MappingSpecStore, opts ...SpecLifecycleOption) (*SpecLifecycle, error) {
	if store == nil {
		return nil, ErrSpecStoreRequired
	}
	lifecycle := &SpecLifecycle{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(lifecycle)
		}
	}
	return lifecycle, nil
}

func (s *SpecLifecycle) CreateDraft(ctx context.Context, spec MappingSpec) (MappingSpec, error) {
	if s == nil || s.store == nil {
		return MappingSpec{}, ErrSpecStoreRequired
	}
	spec = normalizeMappingSpec(spec)
	spec.Status = MappingSpecStatusDraft
	spec.PublishedAt = nil

	if spec.Version == 0 {
		latest, found, err := s.store.GetLatest(ctx, spec.SpecID)
		if err != nil {
			return MappingSpec{}, err
		}
		if found {
			if latest.Status == MappingSpecStatusDraft {
				return MappingSpec{}, fmt.Errorf(
					"core: mapping spec %s already has an open draft (version %d)",
					spec.SpecID, latest.Version,
				)
			}
			spec.Version = latest.Version + 1
		} else {
			spec.Version = 1
		}
	}

	if existing, found, err := s.store.GetVersion(ctx, spec.SpecID, spec.Version); err != nil {
		return MappingSpec{}, err
	} else if found {
		if existing.Status == MappingSpecStatusPublished {
			return MappingSpec{}, fmt.Errorf(
				"core: mapping spec %s version %d is immutable once published",
				spec.SpecID, spec.Version,
			)
		}
		return MappingSpec{}, fmt.Errorf(
			"core: mapping spec %s version %d already exists",
			spec.SpecID, spec.Version,
		)
	}

	if err := spec.Validate(); err != nil {
		return MappingSpec{}, err
	}
	saved, err := s.store.CreateDraft(ctx, spec)
	if err != nil {
		return MappingSpec{}, err
	}
	if err := s.publishEvent(ctx, saved, "transform.mapping_spec.draft_created"); err != nil {
		return MappingSpec{}, err
	}
	return saved, nil
}

func (s *SpecLifecycle) UpdateDraft(ctx context.Context, spec MappingSpec) (MappingSpec, error) {
	if s == nil || s.store == nil {
		return MappingSpec{}, ErrSpecStoreRequired
	}
	spec = normalizeMappingSpec(spec)
	if spec.Version < 1 {
		return MappingSpec{}, fmt.Errorf("core: mapping spec version must be >= 1")
	}

	existing, found, err := s.store.GetVersion(ctx, spec.SpecID, spec.Version)
	if err != nil {
		return MappingSpec{}, err
	}
	if !found {
		return MappingSpec{}, fmt.Errorf(
			"core: mapping spec %s version %d not found: %w",
			spec.SpecID, spec.Version, ErrSpecNotFound,
		)
	}
	if existing.Status != MappingSpecStatusDraft {
		return MappingSpec{}, fmt.Errorf(
			"core: mapping spec %s version %d is %s and cannot be updated",
			spec.SpecID, spec.Version, existing.Status,
		)
	}

	spec.Status = MappingSpecStatusDraft
	spec.PublishedAt = nil
	if err := spec.Validate(); err != nil {
		return MappingSpec{}, err
	}
	saved, err := s.store.UpdateDraft(ctx, spec)
	if err != nil {
		return MappingSpec{}, err
	}
	if err := s.publishEvent(ctx, saved, "transform.mapping_spec.draft_updated"); err != nil {
		return MappingSpec{}, err
	}
	return saved, nil
}

func (s *SpecLifecycle) Publish(ctx context.Context, specID string, version int) (MappingSpec, error) {
	if s == nil || s.store == nil {
		return MappingSpec{}, ErrSpecStoreRequired
	}
	existing, found, err := s.store.GetVersion(ctx, specID, version)
	if err != nil {
		return MappingSpec{}, err
	}
	if !found {
		return MappingSpec{}, fmt.Errorf(
			"core: mapping spec %s version %d not found: %w",
			specID, version, ErrSpecNotFound,
		)
	}
	switch existing.Status {
	case MappingSpecStatusPublished:
		return existing, nil
	case MappingSpecStatusArchived:
		return MappingSpec{}, fmt.Errorf(
			"core: mapping spec %s version %d is archived and cannot be published",
			specID, version,
		)
	}

	published, err := s.store.PublishVersion(ctx, specID, version, s.now())
	if err != nil {
		return MappingSpec{}, err
	}
	if err := s.publishEvent(ctx, published, "transform.mapping_spec.published"); err != nil {
		return MappingSpec{}, err
	}
	return published, nil
}

func (s *SpecLifecycle) Archive(ctx context.Context, specID string, version int) (MappingSpec, error) {
	if s == nil || s.store == nil {
		return MappingSpec{}, ErrSpecStoreRequired
	}
	existing, found, err := s.store.GetVersion(ctx, specID, version)
	if err != nil {
		return MappingSpec{}, err
	}
	if !found {
		return MappingSpec{}, fmt.Errorf(
			"core: mapping spec %s version %d not found: %w",
			specID, version, ErrSpecNotFound,
		)
	}
	if existing.Status == MappingSpecStatusArchived {
		return existing, nil
	}

	archived, err := s.store.SetStatus(ctx, specID, version, MappingSpecStatusArchived, s.now())
	if err != nil {
		return MappingSpec{}, err
	}
	if err := s.publishEvent(ctx, archived, "transform.mapping_spec.archived"); err != nil {
		return MappingSpec{}, err
	}
	return archived, nil
}

func (s *SpecLifecycle) publishEvent(ctx context.Context, spec MappingSpec, eventType string) error {
	if s.eventBus == nil {
		return nil
	}
	return s.eventBus.Publish(ctx, LifecycleEvent{
		Type:       eventType,
		Spec:       spec,
		OccurredAt: s.now(),
	})
}
