package transform

import (
	"context"

	"github.com/goliatone/go-transform/core"
)

type Config = core.Config

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies

type Engine = core.Engine
type EngineConfig = core.EngineConfig
type Resolver = core.Resolver
type ResolverContext = core.ResolverContext
type Registry = core.Registry
type SourceRecord = core.SourceRecord
type OutputRecord = core.OutputRecord

type MappingSpec = core.MappingSpec
type MappingSection = core.MappingSection
type MappingRule = core.MappingRule
type MappingSpecStatus = core.MappingSpecStatus
type MappingSpecStore = core.MappingSpecStore
type TransformActivityEntry = core.TransformActivityEntry
type TransformActivityStore = core.TransformActivityStore

type TransformRequest = core.TransformRequest
type TransformResult = core.TransformResult
type ValidateSpecRequest = core.ValidateSpecRequest
type ValidateSpecResult = core.ValidateSpecResult
type PreviewSpecRequest = core.PreviewSpecRequest
type PreviewResult = core.PreviewResult

var (
	WithLogger                 = core.WithLogger
	WithLoggerProvider         = core.WithLoggerProvider
	WithMetricsRecorder        = core.WithMetricsRecorder
	WithErrorFactory           = core.WithErrorFactory
	WithErrorMapper            = core.WithErrorMapper
	WithConfigProvider         = core.WithConfigProvider
	WithOptionsResolver        = core.WithOptionsResolver
	WithRegistry               = core.WithRegistry
	WithSpecStore              = core.WithSpecStore
	WithActivityStore          = core.WithActivityStore
	WithLifecycleEventBus      = core.WithLifecycleEventBus
	WithServiceResolverContext = core.WithServiceResolverContext
	WithPersistenceClient      = core.WithPersistenceClient
	WithRepositoryFactory      = core.WithRepositoryFactory
	WithClock                  = core.WithClock
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func NewServiceFromConfig(ctx context.Context, runtime Config, opts ...Option) (*Service, error) {
	return core.NewServiceFromConfig(ctx, runtime, opts...)
}

func NewResolverRegistry() *core.ResolverRegistry {
	return core.NewResolverRegistry()
}

func NewEngine(cfg EngineConfig, opts ...core.EngineOption) (*Engine, error) {
	return core.NewEngine(cfg, opts...)
}
