package core

import (
	"fmt"
	"strings"
	"time"
)

type MappingSpecStatus string

const (
	MappingSpecStatusDraft     MappingSpecStatus = "draft"
	MappingSpecStatusPublished MappingSpecStatus = "published"
	MappingSpecStatusArchived  MappingSpecStatus = "archived"
)

func (s MappingSpecStatus) IsValid() bool {
	switch s {
	case MappingSpecStatusDraft, MappingSpecStatusPublished, MappingSpecStatusArchived:
		return true
	default:
		return false
	}
}

// MappingRule is one serializable destination-key mapping inside a stored
// spec document. Exactly one of SourceField and Resolver must be set;
// Resolver names a function in the resolver registry.
type MappingRule struct {
	ID          string
	Target      string
	SourceField string
	Resolver    string
	Transform   string
	Metadata    map[string]any
}

func (r MappingRule) Validate() error {
	if strings.TrimSpace(r.Target) == "" {
		return fmt.Errorf("core: rule target is required")
	}
	hasField := strings.TrimSpace(r.SourceField) != ""
	hasResolver := strings.TrimSpace(r.Resolver) != ""
	if hasField == hasResolver {
		return fmt.Errorf("core: rule %q must set exactly one of source field and resolver", r.Target)
	}
	if transform := NormalizeTransform(r.Transform); !IsSupportedTransform(transform) {
		return fmt.Errorf("core: rule %q uses unsupported transform %q", r.Target, r.Transform)
	}
	return nil
}

// MappingSection groups rules under one section descriptor. Placement and
// TargetKey may be left empty for the three canonical section names, which
// default to the product payload shape.
type MappingSection struct {
	Name      string
	Placement Placement
	TargetKey string
	Rules     []MappingRule
}

// Descriptor materializes the section descriptor, applying canonical
// defaults for the well-known section names.
func (s MappingSection) Descriptor() SectionDescriptor {
	name := strings.TrimSpace(s.Name)
	descriptor := SectionDescriptor{
		Name:      name,
		Placement: s.Placement,
		TargetKey: strings.TrimSpace(s.TargetKey),
		Keys:      KeyKindPath,
	}
	if descriptor.Placement == "" {
		switch name {
		case SectionCore:
			return CoreSection()
		case SectionExtensionAttributes:
			return ExtensionAttributesSection()
		case SectionCustomAttributes:
			return CustomAttributesSection()
		default:
			descriptor.Placement = PlacementMergeAtRoot
		}
	}
	if descriptor.Placement == PlacementAppendToList {
		descriptor.Keys = KeyKindFlat
	}
	return descriptor
}

// MappingSpec is the versioned, serializable mapping document the
// lifecycle and store operate on. Binding it against a resolver registry
// yields an EngineConfig.
type MappingSpec struct {
	ID           string
	SpecID       string
	Name         string
	Description  string
	EnvelopeKey  string
	IdentityPath string
	Version      int
	Status       MappingSpecStatus
	Sections     []MappingSection
	Metadata     map[string]any
	CreatedAt    time.Time
	UpdatedAt    time.Time
	PublishedAt  *time.Time
}

func (s MappingSpec) Validate() error {
	if strings.TrimSpace(s.SpecID) == "" {
		return fmt.Errorf("core: mapping spec id is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("core: mapping spec name is required")
	}
	if s.Version < 1 {
		return fmt.Errorf("core: mapping spec version must be >= 1")
	}
	if !s.Status.IsValid() {
		return fmt.Errorf("core: invalid mapping spec status %q", s.Status)
	}
	if len(s.Sections) == 0 {
		return fmt.Errorf("core: mapping spec must declare at least one section")
	}
	for _, section := range s.Sections {
		if err := section.Descriptor().Validate(); err != nil {
			return err
		}
		for idx, rule := range section.Rules {
			if err := rule.Validate(); err != nil {
				return fmt.Errorf("core: invalid rule at index %d in section %q: %w", idx, section.Name, err)
			}
		}
	}
	return nil
}

func normalizeMappingSpec(spec MappingSpec) MappingSpec {
	spec.SpecID = strings.TrimSpace(spec.SpecID)
	spec.Name = strings.TrimSpace(spec.Name)
	spec.Description = strings.TrimSpace(spec.Description)
	spec.EnvelopeKey = strings.TrimSpace(spec.EnvelopeKey)
	if spec.EnvelopeKey == "" {
		spec.EnvelopeKey = DefaultEnvelopeKey
	}
	spec.IdentityPath = normalizePath(spec.IdentityPath)
	if spec.IdentityPath == "" {
		spec.IdentityPath = DefaultIdentityPath
	}
	sections := make([]MappingSection, len(spec.Sections))
	for i, section := range spec.Sections {
		section.Name = strings.TrimSpace(section.Name)
		section.TargetKey = strings.TrimSpace(section.TargetKey)
		rules := make([]MappingRule, len(section.Rules))
		for j, rule := range section.Rules {
			rule.ID = strings.TrimSpace(rule.ID)
			rule.Target = normalizePath(rule.Target)
			rule.SourceField = strings.TrimSpace(rule.SourceField)
			rule.Resolver = strings.TrimSpace(rule.Resolver)
			rule.Transform = NormalizeTransform(rule.Transform)
			rules[j] = rule
		}
		section.Rules = rules
		sections[i] = section
	}
	spec.Sections = sections
	return spec
}
