// Package specdoc reads and writes mapping spec documents in YAML and
// JSON. The document shape is the authoring surface; core types stay
// serialization-free.
package specdoc

import (
	"strings"

	"github.com/goliatone/go-transform/core"
)

type Document struct {
	SpecID       string         `json:"spec_id" yaml:"spec_id"`
	Name         string         `json:"name" yaml:"name"`
	Description  string         `json:"description,omitempty" yaml:"description,omitempty"`
	EnvelopeKey  string         `json:"envelope_key,omitempty" yaml:"envelope_key,omitempty"`
	IdentityPath string         `json:"identity_path,omitempty" yaml:"identity_path,omitempty"`
	Version      int            `json:"version,omitempty" yaml:"version,omitempty"`
	Status       string         `json:"status,omitempty" yaml:"status,omitempty"`
	Sections     []Section      `json:"sections" yaml:"sections"`
	Metadata     map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

type Section struct {
	Name      string `json:"name" yaml:"name"`
	Placement string `json:"placement,omitempty" yaml:"placement,omitempty"`
	TargetKey string `json:"target_key,omitempty" yaml:"target_key,omitempty"`
	Rules     []Rule `json:"rules" yaml:"rules"`
}

type Rule struct {
	ID          string         `json:"id,omitempty" yaml:"id,omitempty"`
	Target      string         `json:"target" yaml:"target"`
	SourceField string         `json:"source_field,omitempty" yaml:"source_field,omitempty"`
	Resolver    string         `json:"resolver,omitempty" yaml:"resolver,omitempty"`
	Transform   string         `json:"transform,omitempty" yaml:"transform,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// ToSpec materializes the document into the core spec shape. Documents
// without a status default to draft so authored files can omit lifecycle
// fields.
func (d Document) ToSpec() core.MappingSpec {
	status := core.MappingSpecStatus(strings.TrimSpace(d.Status))
	if status == "" {
		status = core.MappingSpecStatusDraft
	}
	spec := core.MappingSpec{
		SpecID:       d.SpecID,
		Name:         d.Name,
		Description:  d.Description,
		EnvelopeKey:  d.EnvelopeKey,
		IdentityPath: d.IdentityPath,
		Version:      d.Version,
		Status:       status,
		Metadata:     d.Metadata,
	}
	for _, section := range d.Sections {
		converted := core.MappingSection{
			Name:      section.Name,
			Placement: core.Placement(section.Placement),
			TargetKey: section.TargetKey,
		}
		for _, rule := range section.Rules {
			converted.Rules = append(converted.Rules, core.MappingRule{
				ID:          rule.ID,
				Target:      rule.Target,
				SourceField: rule.SourceField,
				Resolver:    rule.Resolver,
				Transform:   rule.Transform,
				Metadata:    rule.Metadata,
			})
		}
		spec.Sections = append(spec.Sections, converted)
	}
	return spec
}

// FromSpec projects a core spec into the document shape.
func FromSpec(spec core.MappingSpec) Document {
	doc := Document{
		SpecID:       spec.SpecID,
		Name:         spec.Name,
		Description:  spec.Description,
		EnvelopeKey:  spec.EnvelopeKey,
		IdentityPath: spec.IdentityPath,
		Version:      spec.Version,
		Status:       string(spec.Status),
		Metadata:     spec.Metadata,
	}
	for _, section := range spec.Sections {
		converted := Section{
			Name:      section.Name,
			Placement: string(section.Placement),
			TargetKey: section.TargetKey,
		}
		for _, rule := range section.Rules {
			converted.Rules = append(converted.Rules, Rule{
				ID:          rule.ID,
				Target:      rule.Target,
				SourceField: rule.SourceField,
				Resolver:    rule.Resolver,
				Transform:   rule.Transform,
				Metadata:    rule.Metadata,
			})
		}
		doc.Sections = append(doc.Sections, converted)
	}
	return doc
}
