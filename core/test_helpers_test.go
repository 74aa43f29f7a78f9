package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// memorySpecStore is an in-memory MappingSpecStore used across the
// lifecycle and service tests.
type memorySpecStore struct {
	mu    sync.Mutex
	next  int
	specs map[string]MappingSpec
}

func newMemorySpecStore() *memorySpecStore {
	return &memorySpecStore{specs: make(map[string]MappingSpec)}
}

func specKey(specID string, version int) string {
	return fmt.Sprintf("%s@%d", specID, version)
}

func (s *memorySpecStore) CreateDraft(ctx context.Context, spec MappingSpec) (MappingSpec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := specKey(spec.SpecID, spec.Version)
	if _, exists := s.specs[key]; exists {
		return MappingSpec{}, fmt.Errorf("memory store: %s already exists", key)
	}
	s.next++
	spec.ID = fmt.Sprintf("ms_%d", s.next)
	now := time.Now().UTC()
	spec.CreatedAt = now
	spec.UpdatedAt = now
	s.specs[key] = spec
	return spec, nil
}

func (s *memorySpecStore) UpdateDraft(ctx context.Context, spec MappingSpec) (MappingSpec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := specKey(spec.SpecID, spec.Version)
	existing, exists := s.specs[key]
	if !exists {
		return MappingSpec{}, fmt.Errorf("memory store: %s not found", key)
	}
	spec.ID = existing.ID
	spec.CreatedAt = existing.CreatedAt
	spec.UpdatedAt = time.Now().UTC()
	s.specs[key] = spec
	return spec, nil
}

func (s *memorySpecStore) SetStatus(ctx context.Context, specID string, version int, status MappingSpecStatus, now time.Time) (MappingSpec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := specKey(specID, version)
	spec, exists := s.specs[key]
	if !exists {
		return MappingSpec{}, fmt.Errorf("memory store: %s not found", key)
	}
	spec.Status = status
	spec.UpdatedAt = now
	s.specs[key] = spec
	return spec, nil
}

func (s *memorySpecStore) GetVersion(ctx context.Context, specID string, version int) (MappingSpec, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	spec, exists := s.specs[specKey(specID, version)]
	return spec, exists, nil
}

func (s *memorySpecStore) GetLatest(ctx context.Context, specID string) (MappingSpec, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest MappingSpec
	found := false
	for _, spec := range s.specs {
		if spec.SpecID != specID {
			continue
		}
		if !found || spec.Version > latest.Version {
			latest = spec
			found = true
		}
	}
	return latest, found, nil
}

func (s *memorySpecStore) GetPublished(ctx context.Context, specID string) (MappingSpec, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var published MappingSpec
	found := false
	for _, spec := range s.specs {
		if spec.SpecID != specID || spec.Status != MappingSpecStatusPublished {
			continue
		}
		if !found || spec.Version > published.Version {
			published = spec
			found = true
		}
	}
	return published, found, nil
}

func (s *memorySpecStore) List(ctx context.Context) ([]MappingSpec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]MappingSpec, 0, len(s.specs))
	for _, spec := range s.specs {
		out = append(out, spec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SpecID != out[j].SpecID {
			return out[i].SpecID < out[j].SpecID
		}
		return out[i].Version < out[j].Version
	})
	return out, nil
}

func (s *memorySpecStore) PublishVersion(ctx context.Context, specID string, version int, publishedAt time.Time) (MappingSpec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := specKey(specID, version)
	spec, exists := s.specs[key]
	if !exists {
		return MappingSpec{}, fmt.Errorf("memory store: %s not found", key)
	}
	// a publish supersedes any previously published version of the spec
	for k, other := range s.specs {
		if other.SpecID == specID && other.Status == MappingSpecStatusPublished && other.Version != version {
			other.Status = MappingSpecStatusArchived
			other.UpdatedAt = publishedAt
			s.specs[k] = other
		}
	}
	spec.Status = MappingSpecStatusPublished
	at := publishedAt
	spec.PublishedAt = &at
	spec.UpdatedAt = publishedAt
	s.specs[key] = spec
	return spec, nil
}

type memoryActivityStore struct {
	mu      sync.Mutex
	next    int
	entries []TransformActivityEntry
}

func newMemoryActivityStore() *memoryActivityStore {
	return &memoryActivityStore{}
}

func (s *memoryActivityStore) Record(ctx context.Context, entry TransformActivityEntry) (TransformActivityEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	entry.ID = fmt.Sprintf("act_%d", s.next)
	s.entries = append(s.entries, entry)
	return entry, nil
}

func (s *memoryActivityStore) ListRecent(ctx context.Context, specID string, limit int) ([]TransformActivityEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TransformActivityEntry, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		if specID != "" && s.entries[i].SpecID != specID {
			continue
		}
		out = append(out, s.entries[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

type captureEventBus struct {
	mu     sync.Mutex
	events []LifecycleEvent
}

func (b *captureEventBus) Publish(ctx context.Context, event LifecycleEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return nil
}

func (b *captureEventBus) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, event := range b.events {
		out = append(out, event.Type)
	}
	return out
}

type captureMetrics struct {
	mu       sync.Mutex
	counters map[string]int64
}

func newCaptureMetrics() *captureMetrics {
	return &captureMetrics{counters: make(map[string]int64)}
}

func (m *captureMetrics) IncCounter(ctx context.Context, name string, value int64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += value
}

func (m *captureMetrics) ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string) {
}

func (m *captureMetrics) counter(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

// catalogSpec is a draft spec document mirroring catalogConfig as stored
// rules.
func catalogSpec(specID string, version int) MappingSpec {
	return MappingSpec{
		SpecID:  specID,
		Name:    "catalog mapping",
		Version: version,
		Status:  MappingSpecStatusDraft,
		Sections: []MappingSection{
			{
				Name: SectionCore,
				Rules: []MappingRule{
					{Target: "sku", SourceField: "id"},
					{Target: "name", SourceField: "title"},
				},
			},
			{
				Name: SectionExtensionAttributes,
				Rules: []MappingRule{
					{Target: "stock_item.qty", SourceField: "inventory"},
				},
			},
			{
				Name: SectionCustomAttributes,
				Rules: []MappingRule{
					{Target: "color", SourceField: "colour"},
				},
			},
		},
	}
}

var _ MappingSpecStore = (*memorySpecStore)(nil)
var _ TransformActivityStore = (*memoryActivityStore)(nil)
var _ LifecycleEventBus = (*captureEventBus)(nil)
var _ MetricsRecorder = (*captureMetrics)(nil)
