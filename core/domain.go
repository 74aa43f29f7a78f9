package core

import (
	"fmt"
	"strings"
)

// SourceRecord is the caller-supplied keyed input describing one entity.
// The engine never mutates it.
type SourceRecord map[string]any

// OutputRecord is the assembled result of one Transform call: a single
// envelope key wrapping the payload body.
type OutputRecord map[string]any

// AttributeValue is one entry of a flat attribute list section. The field
// names are part of the payload contract.
type AttributeValue struct {
	AttributeCode string `json:"attribute_code"`
	Value         any    `json:"value"`
}

type Placement string

const (
	PlacementMergeAtRoot  Placement = "merge_at_root"
	PlacementNestUnderKey Placement = "nest_under_key"
	PlacementAppendToList Placement = "append_to_list"
)

func (p Placement) IsValid() bool {
	switch p {
	case PlacementMergeAtRoot, PlacementNestUnderKey, PlacementAppendToList:
		return true
	default:
		return false
	}
}

type KeyKind string

const (
	KeyKindPath KeyKind = "path"
	KeyKindFlat KeyKind = "flat"
)

// SectionDescriptor declares how a section's resolved fields land in the
// output: a placement strategy plus the key semantics of destination keys.
// Sections are data, not special-cased branches.
type SectionDescriptor struct {
	Name      string
	Placement Placement
	TargetKey string
	Keys      KeyKind
}

func (d SectionDescriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("core: section name is required")
	}
	if !d.Placement.IsValid() {
		return fmt.Errorf("core: section %q has invalid placement %q", d.Name, d.Placement)
	}
	if d.Placement != PlacementMergeAtRoot && strings.TrimSpace(d.TargetKey) == "" {
		return fmt.Errorf("core: section %q placement %q requires a target key", d.Name, d.Placement)
	}
	if d.Keys != KeyKindPath && d.Keys != KeyKindFlat {
		return fmt.Errorf("core: section %q has invalid key kind %q", d.Name, d.Keys)
	}
	if d.Placement == PlacementAppendToList && d.Keys != KeyKindFlat {
		return fmt.Errorf("core: section %q appends to a list and requires flat keys", d.Name)
	}
	return nil
}

// Canonical section names and output keys for the product payload shape.
const (
	SectionCore                = "core"
	SectionExtensionAttributes = "extensionAttributes"
	SectionCustomAttributes    = "customAttributes"

	DefaultEnvelopeKey     = "product"
	DefaultIdentityPath    = "sku"
	ExtensionAttributesKey = "extension_attributes"
	CustomAttributesKey    = "custom_attributes"
)

func CoreSection() SectionDescriptor {
	return SectionDescriptor{
		Name:      SectionCore,
		Placement: PlacementMergeAtRoot,
		Keys:      KeyKindPath,
	}
}

func ExtensionAttributesSection() SectionDescriptor {
	return SectionDescriptor{
		Name:      SectionExtensionAttributes,
		Placement: PlacementNestUnderKey,
		TargetKey: ExtensionAttributesKey,
		Keys:      KeyKindPath,
	}
}

func CustomAttributesSection() SectionDescriptor {
	return SectionDescriptor{
		Name:      SectionCustomAttributes,
		Placement: PlacementAppendToList,
		TargetKey: CustomAttributesKey,
		Keys:      KeyKindFlat,
	}
}

// FieldMapping binds one destination key to one source instruction.
type FieldMapping struct {
	Target      string
	Instruction Instruction
}

// SectionMapping is an ordered group of field mappings sharing one
// placement strategy. Field order is significant: the flat attribute list
// preserves it.
type SectionMapping struct {
	Descriptor SectionDescriptor
	Fields     []FieldMapping
}

// EngineConfig is the full mapping configuration bound at engine
// construction time. Section order is the declared iteration order.
type EngineConfig struct {
	EnvelopeKey  string
	IdentityPath string
	Sections     []SectionMapping
}

func (c EngineConfig) Validate() error {
	if strings.TrimSpace(c.EnvelopeKey) == "" {
		return fmt.Errorf("core: envelope key is required")
	}
	if strings.TrimSpace(c.IdentityPath) == "" {
		return fmt.Errorf("core: identity path is required")
	}
	if len(c.Sections) == 0 {
		return fmt.Errorf("core: at least one section mapping is required")
	}
	for _, section := range c.Sections {
		if err := section.Descriptor.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func normalizeEngineConfig(cfg EngineConfig) EngineConfig {
	cfg.EnvelopeKey = strings.TrimSpace(cfg.EnvelopeKey)
	if cfg.EnvelopeKey == "" {
		cfg.EnvelopeKey = DefaultEnvelopeKey
	}
	cfg.IdentityPath = normalizePath(cfg.IdentityPath)
	if cfg.IdentityPath == "" {
		cfg.IdentityPath = DefaultIdentityPath
	}
	sections := make([]SectionMapping, len(cfg.Sections))
	for i, section := range cfg.Sections {
		section.Descriptor.Name = strings.TrimSpace(section.Descriptor.Name)
		section.Descriptor.TargetKey = strings.TrimSpace(section.Descriptor.TargetKey)
		fields := make([]FieldMapping, len(section.Fields))
		for j, field := range section.Fields {
			field.Target = normalizePath(field.Target)
			fields[j] = field
		}
		section.Fields = fields
		sections[i] = section
	}
	cfg.Sections = sections
	return cfg
}
