package core

import (
	"context"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"golang.org/x/sync/errgroup"
)

// Engine applies one compiled mapping configuration to source records.
// The configuration is bound at construction and immutable for the
// engine's lifetime; a single engine serves arbitrarily many concurrent
// Transform calls.
type Engine struct {
	compiled CompiledConfig
	deps     *ResolverContext
	logger   Logger
	metrics  MetricsRecorder
}

type EngineOption func(*Engine)

func WithEngineLogger(logger Logger) EngineOption {
	return func(e *Engine) {
		if e == nil || logger == nil {
			return
		}
		e.logger = logger
	}
}

func WithEngineMetrics(recorder MetricsRecorder) EngineOption {
	return func(e *Engine) {
		if e == nil || recorder == nil {
			return
		}
		e.metrics = recorder
	}
}

// WithResolverContext binds the dependency context handed to every
// resolver invocation.
func WithResolverContext(rc *ResolverContext) EngineOption {
	return func(e *Engine) {
		if e == nil {
			return
		}
		e.deps = rc
	}
}

// NewEngine compiles cfg and builds an engine. Configurations with
// duplicate destination keys or nested-path conflicts are rejected here.
func NewEngine(cfg EngineConfig, opts ...EngineOption) (*Engine, error) {
	compiled, issues, err := NewConfigCompiler().Compile(cfg)
	if err != nil {
		return nil, err
	}
	if ContainsConfigErrors(issues) {
		return nil, configInvalidError(issues)
	}
	return NewEngineFromCompiled(compiled, opts...)
}

// NewEngineFromCompiled builds an engine from an already compiled
// configuration, skipping re-validation.
func NewEngineFromCompiled(compiled CompiledConfig, opts ...EngineOption) (*Engine, error) {
	engine := &Engine{
		compiled: compiled,
		logger:   glog.Nop(),
		metrics:  NopMetricsRecorder{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(engine)
		}
	}
	return engine, nil
}

func (e *Engine) Compiled() CompiledConfig {
	if e == nil {
		return CompiledConfig{}
	}
	return e.compiled
}

// Transform resolves every mapped field concurrently, joins, assembles the
// output on a single goroutine, validates the identity field, and wraps
// the body in the configured envelope.
//
// A nil resolved value is absent and contributes nothing. Any resolver or
// transform failure aborts the whole call; sibling resolutions already in
// flight are not cancelled, their results are discarded with the failed
// call. No timeout is imposed here; bound latency via ctx if needed.
func (e *Engine) Transform(ctx context.Context, source SourceRecord) (OutputRecord, error) {
	if e == nil {
		return nil, ErrConfigInvalid
	}
	start := time.Now()
	fields := e.compiled.Fields

	// resolution phase: one task per field, each writing its own slot
	resolved := make([]any, len(fields))
	var group errgroup.Group
	for i := range fields {
		idx := i
		field := fields[i]
		group.Go(func() error {
			value, err := field.Instruction.resolve(ctx, source, e.deps)
			if err != nil {
				return resolutionError(field, err)
			}
			if value == nil {
				return nil
			}
			if name := field.Instruction.Transform(); name != "" && name != TransformIdentity {
				value, err = ApplyTransform(name, value)
				if err != nil {
					return resolutionError(field, err)
				}
			}
			resolved[idx] = value
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		e.metrics.IncCounter(ctx, "transform.failed", 1, map[string]string{"reason": "resolution"})
		return nil, err
	}

	// assembly phase: single-threaded, declared order
	body := make(map[string]any)
	// the canonical flat attribute list is part of the output contract:
	// present and empty even when no section appends to it
	lists := map[string][]AttributeValue{
		CustomAttributesKey: make([]AttributeValue, 0),
	}
	for _, section := range e.compiled.Sections {
		if section.Placement == PlacementAppendToList {
			lists[section.TargetKey] = make([]AttributeValue, 0)
		}
	}
	for i, field := range fields {
		value := resolved[i]
		if value == nil {
			continue
		}
		switch field.Section.Placement {
		case PlacementMergeAtRoot:
			if err := writePathValue(body, field.Target, value); err != nil {
				e.metrics.IncCounter(ctx, "transform.failed", 1, map[string]string{"reason": "assembly"})
				return nil, err
			}
		case PlacementNestUnderKey:
			path := field.Section.TargetKey + "." + field.Target
			if err := writePathValue(body, path, value); err != nil {
				e.metrics.IncCounter(ctx, "transform.failed", 1, map[string]string{"reason": "assembly"})
				return nil, err
			}
		case PlacementAppendToList:
			lists[field.Section.TargetKey] = append(lists[field.Section.TargetKey], AttributeValue{
				AttributeCode: field.Target,
				Value:         value,
			})
		}
	}
	for key, list := range lists {
		body[key] = list
	}

	if err := e.validateIdentity(body); err != nil {
		e.metrics.IncCounter(ctx, "transform.failed", 1, map[string]string{"reason": "validation"})
		return nil, err
	}

	e.metrics.IncCounter(ctx, "transform.success", 1, nil)
	e.metrics.ObserveHistogram(ctx, "transform.duration_ms", float64(time.Since(start).Milliseconds()), nil)
	e.logger.Debug("transform completed",
		"fields", len(fields),
		"envelope", e.compiled.EnvelopeKey,
	)

	return OutputRecord{e.compiled.EnvelopeKey: body}, nil
}

func (e *Engine) validateIdentity(body map[string]any) error {
	value, ok := lookupPathValue(body, e.compiled.IdentityPath)
	if !ok {
		return identityMissingError(e.compiled.IdentityPath)
	}
	if text, isString := value.(string); isString && strings.TrimSpace(text) == "" {
		return identityMissingError(e.compiled.IdentityPath)
	}
	return nil
}
