package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// Registry holds named resolver functions so stored mapping spec documents
// can reference them by name.
type Registry interface {
	Register(name string, fn Resolver) error
	Get(name string) (Resolver, bool)
	Names() []string
}

// MappingSpecStore persists versioned mapping spec documents.
type MappingSpecStore interface {
	CreateDraft(ctx context.Context, spec MappingSpec) (MappingSpec, error)
	UpdateDraft(ctx context.Context, spec MappingSpec) (MappingSpec, error)
	SetStatus(ctx context.Context, specID string, version int, status MappingSpecStatus, now time.Time) (MappingSpec, error)
	GetVersion(ctx context.Context, specID string, version int) (MappingSpec, bool, error)
	GetLatest(ctx context.Context, specID string) (MappingSpec, bool, error)
	GetPublished(ctx context.Context, specID string) (MappingSpec, bool, error)
	List(ctx context.Context) ([]MappingSpec, error)
	PublishVersion(ctx context.Context, specID string, version int, publishedAt time.Time) (MappingSpec, error)
}

// TransformActivityEntry records the outcome of one transform run.
type TransformActivityEntry struct {
	ID            string
	SpecID        string
	SpecVersion   int
	IdentityValue string
	Status        string
	Error         string
	DurationMS    int64
	Metadata      map[string]any
	CreatedAt     time.Time
}

type TransformActivityStore interface {
	Record(ctx context.Context, entry TransformActivityEntry) (TransformActivityEntry, error)
	ListRecent(ctx context.Context, specID string, limit int) ([]TransformActivityEntry, error)
}

type LifecycleEvent struct {
	Type       string
	Spec       MappingSpec
	OccurredAt time.Time
	Metadata   map[string]any
}

type LifecycleEventBus interface {
	Publish(ctx context.Context, event LifecycleEvent) error
}

// StoreProvider exposes the persistence-backed stores a repository factory
// builds for the service.
type StoreProvider interface {
	SpecStore() MappingSpecStore
	ActivityStore() TransformActivityStore
}

type RepositoryStoreFactory interface {
	BuildStores(persistenceClient any) (StoreProvider, error)
}

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

// SpecValidator is the compiler-backed contract the previewer and service
// consume: bind + compile a spec document and report issues.
type SpecValidator interface {
	ValidateSpec(ctx context.Context, req ValidateSpecRequest) (ValidateSpecResult, error)
}

type ValidateSpecRequest struct {
	Spec MappingSpec
}

type ValidateSpecResult struct {
	Valid          bool
	Issues         []ConfigIssue
	NormalizedSpec MappingSpec
	Compiled       CompiledConfig
}

// TransformService is the operation surface the command and query packages
// sit on top of.
type TransformService interface {
	Transform(ctx context.Context, req TransformRequest) (TransformResult, error)
	ValidateSpec(ctx context.Context, req ValidateSpecRequest) (ValidateSpecResult, error)
	PreviewSpec(ctx context.Context, req PreviewSpecRequest) (PreviewResult, error)
	CreateDraft(ctx context.Context, spec MappingSpec) (MappingSpec, error)
	UpdateDraft(ctx context.Context, spec MappingSpec) (MappingSpec, error)
	PublishSpec(ctx context.Context, specID string, version int) (MappingSpec, error)
	ArchiveSpec(ctx context.Context, specID string, version int) (MappingSpec, error)
	GetSpec(ctx context.Context, specID string, version int) (MappingSpec, error)
	ListSpecs(ctx context.Context) ([]MappingSpec, error)
	ListActivity(ctx context.Context, specID string, limit int) ([]TransformActivityEntry, error)
}

type TransformRequest struct {
	SpecID string
	// Version selects an exact spec version; zero means the published one.
	Version  int
	Source   SourceRecord
	Metadata map[string]any
}

type TransformResult struct {
	Output      OutputRecord
	SpecID      string
	SpecVersion int
	Duration    time.Duration
}
