package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// Service fronts the transform engine with spec storage, lifecycle,
// validation, preview, and activity recording. One service instance is
// safe for concurrent use; compiled engines are cached per spec version.
type Service struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorFactory    ErrorFactory
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	registry        Registry
	specStore       MappingSpecStore
	activityStore   TransformActivityStore
	compiler        *ConfigCompiler
	lifecycle       *SpecLifecycle
	previewer       *Previewer
	resolverContext *ResolverContext
	now             func() time.Time

	mu      sync.RWMutex
	engines map[string]*Engine
}

type ServiceDependencies struct {
	Logger          Logger
	LoggerProvider  LoggerProvider
	MetricsRecorder MetricsRecorder
	ErrorFactory    ErrorFactory
	ErrorMapper     ErrorMapper
	ConfigProvider  ConfigProvider
	OptionsResolver OptionsResolver
	Registry        Registry
	SpecStore       MappingSpecStore
	ActivityStore   TransformActivityStore
	ResolverContext *ResolverContext
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("transform", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("transform"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.registry == nil {
		builder.registry = NewResolverRegistry()
	}
	if builder.clock == nil {
		builder.clock = func() time.Time { return time.Now().UTC() }
	}

	if builder.specStore == nil && builder.repositoryFactory != nil {
		factory, ok := builder.repositoryFactory.(RepositoryStoreFactory)
		if !ok {
			return nil, fmt.Errorf("core: repository factory does not implement RepositoryStoreFactory")
		}
		stores, err := factory.BuildStores(builder.persistenceClient)
		if err != nil {
			return nil, err
		}
		builder.specStore = stores.SpecStore()
		if builder.activityStore == nil {
			builder.activityStore = stores.ActivityStore()
		}
	}

	svc := &Service{
		config:          builder.runtimeConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorFactory:    builder.errorFactory,
		errorMapper:     builder.errorMapper,
		configProvider:  builder.configProvider,
		optionsResolver: builder.optionsResolver,
		registry:        builder.registry,
		specStore:       builder.specStore,
		activityStore:   builder.activityStore,
		compiler:        NewConfigCompiler(),
		previewer:       NewPreviewer(nil, WithPreviewerClock(builder.clock)),
		resolverContext: builder.resolverContext,
		now:             builder.clock,
		engines:         make(map[string]*Engine),
	}

	if builder.specStore != nil {
		lifecycle, err := NewSpecLifecycle(
			builder.specStore,
			WithSpecLifecycleClock(builder.clock),
			WithSpecLifecycleEventBus(builder.eventBus),
		)
		if err != nil {
			return nil, err
		}
		svc.lifecycle = lifecycle
	}

	return svc, nil
}

// NewServiceFromConfig loads configuration through the config provider,
// layers it under the runtime overrides, and builds the service on the
// resolved result.
func NewServiceFromConfig(ctx context.Context, runtime Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(runtime)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}
	provider := builder.configProvider
	if provider == nil {
		provider = NewCfgxConfigProvider(nil)
	}
	resolver := builder.optionsResolver
	if resolver == nil {
		resolver = GoOptionsResolver{}
	}

	defaults := DefaultConfig()
	loaded, err := provider.Load(ctx, defaults)
	if err != nil {
		return nil, err
	}
	resolved, err := resolver.Resolve(defaults, loaded, runtime)
	if err != nil {
		return nil, err
	}
	return NewService(resolved, options...)
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Registry() Registry {
	if s == nil {
		return nil
	}
	return s.registry
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:          s.logger,
		LoggerProvider:  s.loggerProvider,
		MetricsRecorder: s.metricsRecorder,
		ErrorFactory:    s.errorFactory,
		ErrorMapper:     s.errorMapper,
		ConfigProvider:  s.configProvider,
		OptionsResolver: s.optionsResolver,
		Registry:        s.registry,
		SpecStore:       s.specStore,
		ActivityStore:   s.activityStore,
		ResolverContext: s.resolverContext,
	}
}

// RegisterResolver adds a named resolver available to spec bindings.
func (s *Service) RegisterResolver(name string, fn Resolver) error {
	if s == nil || s.registry == nil {
		return fmt.Errorf("core: resolver registry is required")
	}
	return s.registry.Register(name, fn)
}

func (s *Service) Transform(ctx context.Context, req TransformRequest) (TransformResult, error) {
	if s == nil {
		return TransformResult{}, fmt.Errorf("core: service is required")
	}
	started := time.Now()
	spec, err := s.loadSpec(ctx, req.SpecID, req.Version)
	if err != nil {
		return TransformResult{}, s.mapError(err)
	}

	engine, err := s.engineFor(spec)
	if err != nil {
		return TransformResult{}, s.mapError(err)
	}

	output, transformErr := engine.Transform(ctx, req.Source)
	duration := time.Since(started)
	s.recordActivity(ctx, spec, output, transformErr, duration, req.Metadata)
	s.observeTransform(ctx, spec, transformErr, duration)
	if transformErr != nil {
		return TransformResult{}, s.mapError(transformErr)
	}

	return TransformResult{
		Output:      output,
		SpecID:      spec.SpecID,
		SpecVersion: spec.Version,
		Duration:    duration,
	}, nil
}

// TransformWith runs a one-off transform over an inline configuration,
// bypassing spec storage. Useful for callers that assemble configuration
// programmatically.
func (s *Service) TransformWith(ctx context.Context, cfg EngineConfig, source SourceRecord) (OutputRecord, error) {
	if s == nil {
		return nil, fmt.Errorf("core: service is required")
	}
	engine, err := NewEngine(cfg,
		WithEngineLogger(s.logger),
		WithEngineMetrics(s.metricsRecorder),
		WithResolverContext(s.resolverContext),
	)
	if err != nil {
		return nil, s.mapError(err)
	}
	output, err := engine.Transform(ctx, source)
	if err != nil {
		return nil, s.mapError(err)
	}
	return output, nil
}

func (s *Service) ValidateSpec(ctx context.Context, req ValidateSpecRequest) (ValidateSpecResult, error) {
	if s == nil || s.compiler == nil {
		return ValidateSpecResult{}, fmt.Errorf("core: service compiler is required")
	}
	normalized := normalizeMappingSpec(req.Spec)

	cfg, err := BindSpec(normalized, s.registry)
	if err != nil {
		issues := []ConfigIssue{configIssue("resolver_unbound", err.Error(), "", "", ConfigIssueError)}
		return ValidateSpecResult{
			Valid:          false,
			Issues:         issues,
			NormalizedSpec: normalized,
		}, nil
	}

	compiled, issues, err := s.compiler.Compile(cfg)
	if err != nil {
		return ValidateSpecResult{}, s.mapError(err)
	}
	return ValidateSpecResult{
		Valid:          !ContainsConfigErrors(issues),
		Issues:         issues,
		NormalizedSpec: normalized,
		Compiled:       compiled,
	}, nil
}

func (s *Service) PreviewSpec(ctx context.Context, req PreviewSpecRequest) (PreviewResult, error) {
	if s == nil || s.previewer == nil {
		return PreviewResult{}, fmt.Errorf("core: service previewer is required")
	}
	cfg, err := BindSpec(req.Spec, s.registry)
	if err != nil {
		return PreviewResult{}, s.mapError(err)
	}
	deps := req.Deps
	if deps == nil {
		deps = s.resolverContext
	}
	result, err := s.previewer.Preview(ctx, PreviewRequest{
		Config:  cfg,
		Samples: req.Samples,
		Deps:    deps,
	})
	if err != nil {
		return PreviewResult{}, s.mapError(err)
	}
	return result, nil
}

func (s *Service) CreateDraft(ctx context.Context, spec MappingSpec) (MappingSpec, error) {
	if s == nil || s.lifecycle == nil {
		return MappingSpec{}, s.mapError(ErrSpecStoreRequired)
	}
	saved, err := s.lifecycle.CreateDraft(ctx, spec)
	if err != nil {
		return MappingSpec{}, s.mapError(err)
	}
	return saved, nil
}

func (s *Service) UpdateDraft(ctx context.Context, spec MappingSpec) (MappingSpec, error) {
	if s == nil || s.lifecycle == nil {
		return MappingSpec{}, s.mapError(ErrSpecStoreRequired)
	}
	saved, err := s.lifecycle.UpdateDraft(ctx, spec)
	if err != nil {
		return MappingSpec{}, s.mapError(err)
	}
	s.invalidateEngine(saved.SpecID, saved.Version)
	return saved, nil
}

func (s *Service) PublishSpec(ctx context.Context, specID string, version int) (MappingSpec, error) {
	if s == nil || s.lifecycle == nil {
		return MappingSpec{}, s.mapError(ErrSpecStoreRequired)
	}
	published, err := s.lifecycle.Publish(ctx, specID, version)
	if err != nil {
		return MappingSpec{}, s.mapError(err)
	}
	s.invalidateEngine(published.SpecID, published.Version)
	return published, nil
}

func (s *Service) ArchiveSpec(ctx context.Context, specID string, version int) (MappingSpec, error) {
	if s == nil || s.lifecycle == nil {
		return MappingSpec{}, s.mapError(ErrSpecStoreRequired)
	}
	archived, err := s.lifecycle.Archive(ctx, specID, version)
	if err != nil {
		return MappingSpec{}, s.mapError(err)
	}
	s.invalidateEngine(archived.SpecID, archived.Version)
	return archived, nil
}

func (s *Service) GetSpec(ctx context.Context, specID string, version int) (MappingSpec, error) {
	if s == nil || s.specStore == nil {
		return MappingSpec{}, s.mapError(ErrSpecStoreRequired)
	}
	spec, err := s.loadSpec(ctx, specID, version)
	if err != nil {
		return MappingSpec{}, s.mapError(err)
	}
	return spec, nil
}

func (s *Service) ListSpecs(ctx context.Context) ([]MappingSpec, error) {
	if s == nil || s.specStore == nil {
		return nil, s.mapError(ErrSpecStoreRequired)
	}
	specs, err := s.specStore.List(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}
	return specs, nil
}

func (s *Service) ListActivity(ctx context.Context, specID string, limit int) ([]TransformActivityEntry, error) {
	if s == nil || s.activityStore == nil {
		return nil, s.mapError(fmt.Errorf("core: transform activity store is required"))
	}
	entries, err := s.activityStore.ListRecent(ctx, specID, limit)
	if err != nil {
		return nil, s.mapError(err)
	}
	return entries, nil
}

func (s *Service) loadSpec(ctx context.Context, specID string, version int) (MappingSpec, error) {
	if s.specStore == nil {
		return MappingSpec{}, ErrSpecStoreRequired
	}
	specID = strings.TrimSpace(specID)
	if specID == "" {
		return MappingSpec{}, fmt.Errorf("core: spec id is required")
	}
	if version > 0 {
		spec, found, err := s.specStore.GetVersion(ctx, specID, version)
		if err != nil {
			return MappingSpec{}, err
		}
		if !found {
			return MappingSpec{}, fmt.Errorf("core: mapping spec %s version %d: %w", specID, version, ErrSpecNotFound)
		}
		return spec, nil
	}
	spec, found, err := s.specStore.GetPublished(ctx, specID)
	if err != nil {
		return MappingSpec{}, err
	}
	if !found {
		return MappingSpec{}, fmt.Errorf("core: mapping spec %s: %w", specID, ErrSpecNotPublished)
	}
	return spec, nil
}

func (s *Service) engineFor(spec MappingSpec) (*Engine, error) {
	key := fmt.Sprintf("%s@%d", spec.SpecID, spec.Version)
	s.mu.RLock()
	engine, ok := s.engines[key]
	s.mu.RUnlock()
	if ok {
		return engine, nil
	}

	cfg, err := BindSpec(spec, s.registry)
	if err != nil {
		return nil, err
	}
	engine, err = NewEngine(cfg,
		WithEngineLogger(s.logger),
		WithEngineMetrics(s.metricsRecorder),
		WithResolverContext(s.resolverContext),
	)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	// another call may have built the same engine concurrently; both are
	// equivalent, last stored wins
	s.engines[key] = engine
	s.mu.Unlock()
	return engine, nil
}

func (s *Service) invalidateEngine(specID string, version int) {
	key := fmt.Sprintf("%s@%d", specID, version)
	s.mu.Lock()
	delete(s.engines, key)
	s.mu.Unlock()
}

func (s *Service) recordActivity(
	ctx context.Context,
	spec MappingSpec,
	output OutputRecord,
	transformErr error,
	duration time.Duration,
	metadata map[string]any,
) {
	if s.activityStore == nil || !s.config.ActivityEnabled {
		return
	}
	entry := TransformActivityEntry{
		SpecID:      spec.SpecID,
		SpecVersion: spec.Version,
		Status:      "success",
		DurationMS:  duration.Milliseconds(),
		Metadata:    metadata,
		CreatedAt:   s.now(),
	}
	if transformErr != nil {
		entry.Status = "failed"
		entry.Error = transformErr.Error()
	} else {
		entry.IdentityValue = identityValueOf(output, spec)
	}
	if _, err := s.activityStore.Record(ctx, entry); err != nil {
		s.logger.Warn("recording transform activity failed",
			"spec_id", spec.SpecID,
			"spec_version", spec.Version,
			"error", err.Error(),
		)
	}
}

func (s *Service) observeTransform(ctx context.Context, spec MappingSpec, transformErr error, duration time.Duration) {
	status := "success"
	if transformErr != nil {
		status = "failure"
	}
	tags := map[string]string{
		"spec_id": spec.SpecID,
		"status":  status,
	}
	s.metricsRecorder.IncCounter(ctx, "transform.record.total", 1, cloneTags(tags))
	s.metricsRecorder.ObserveHistogram(ctx, "transform.record.duration_ms", float64(duration.Milliseconds()), cloneTags(tags))
	if transformErr != nil {
		s.logger.Error("transform failed",
			"spec_id", spec.SpecID,
			"spec_version", spec.Version,
			"duration_ms", duration.Milliseconds(),
			"error", transformErr.Error(),
		)
		return
	}
	s.logger.Info("transform succeeded",
		"spec_id", spec.SpecID,
		"spec_version", spec.Version,
		"duration_ms", duration.Milliseconds(),
	)
}

func identityValueOf(output OutputRecord, spec MappingSpec) string {
	spec = normalizeMappingSpec(spec)
	body, ok := output[spec.EnvelopeKey].(map[string]any)
	if !ok {
		return ""
	}
	value, ok := lookupPathValue(body, spec.IdentityPath)
	if !ok || value == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(value))
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	if mapped := s.errorMapper(err); mapped != nil {
		return mapped
	}
	return err
}
