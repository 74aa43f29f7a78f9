package core

import (
	"context"
	"fmt"
	"strings"
)

// Resolver computes a field value from the full source record. Returning a
// nil value means "omit this field from output". The resolver context
// carries injected dependencies; resolvers must not reach for globals.
type Resolver func(ctx context.Context, source SourceRecord, rc *ResolverContext) (any, error)

// ResolverContext is the explicit dependency context threaded into every
// resolver invocation. It is bound once at engine construction and treated
// as immutable afterwards.
type ResolverContext struct {
	Clients map[string]any
	Values  map[string]any
	Logger  Logger
}

func (rc *ResolverContext) Client(name string) (any, bool) {
	if rc == nil {
		return nil, false
	}
	client, ok := rc.Clients[strings.TrimSpace(name)]
	return client, ok
}

func (rc *ResolverContext) Value(name string) (any, bool) {
	if rc == nil {
		return nil, false
	}
	value, ok := rc.Values[strings.TrimSpace(name)]
	return value, ok
}

type InstructionKind string

const (
	InstructionFieldRef InstructionKind = "field_ref"
	InstructionResolver InstructionKind = "resolver"
)

// Instruction is the tagged source-instruction variant: either a field
// reference read verbatim off the source record, or a resolver function.
type Instruction struct {
	kind         InstructionKind
	fieldRef     string
	resolver     Resolver
	resolverName string
	transform    string
}

// FromField builds a field-reference instruction reading the named key
// directly off the source record.
func FromField(name string) Instruction {
	return Instruction{
		kind:     InstructionFieldRef,
		fieldRef: strings.TrimSpace(name),
	}
}

// FromResolver builds a resolver instruction around fn.
func FromResolver(fn Resolver) Instruction {
	return Instruction{
		kind:     InstructionResolver,
		resolver: fn,
	}
}

// NamedResolver is FromResolver with a diagnostic name, used when
// instructions are bound from stored mapping spec documents.
func NamedResolver(name string, fn Resolver) Instruction {
	in := FromResolver(fn)
	in.resolverName = strings.TrimSpace(name)
	return in
}

// WithTransform attaches an optional value transform applied to the
// resolved, non-absent value.
func (in Instruction) WithTransform(name string) Instruction {
	in.transform = NormalizeTransform(name)
	return in
}

func (in Instruction) Kind() InstructionKind { return in.kind }

func (in Instruction) FieldRef() string { return in.fieldRef }

func (in Instruction) ResolverName() string { return in.resolverName }

func (in Instruction) Transform() string { return in.transform }

func (in Instruction) Validate() error {
	switch in.kind {
	case InstructionFieldRef:
		if in.fieldRef == "" {
			return fmt.Errorf("core: field reference name is required")
		}
	case InstructionResolver:
		if in.resolver == nil {
			return fmt.Errorf("core: resolver function is required")
		}
	default:
		return fmt.Errorf("core: instruction has no source")
	}
	if in.transform != "" && !IsSupportedTransform(in.transform) {
		return fmt.Errorf("core: unsupported transform %q", in.transform)
	}
	return nil
}

// describe names the instruction source for diagnostics.
func (in Instruction) describe() string {
	switch in.kind {
	case InstructionFieldRef:
		return "field " + in.fieldRef
	case InstructionResolver:
		if in.resolverName != "" {
			return "resolver " + in.resolverName
		}
		return "resolver"
	default:
		return "unset instruction"
	}
}

// resolve evaluates the instruction against one source record. A missing
// source key resolves to nil, which the engine treats as absent.
func (in Instruction) resolve(ctx context.Context, source SourceRecord, rc *ResolverContext) (any, error) {
	switch in.kind {
	case InstructionFieldRef:
		value, ok := source[in.fieldRef]
		if !ok {
			return nil, nil
		}
		return value, nil
	case InstructionResolver:
		if in.resolver == nil {
			return nil, fmt.Errorf("core: resolver function is nil")
		}
		return in.resolver(ctx, source, rc)
	default:
		return nil, fmt.Errorf("core: instruction has no source")
	}
}
