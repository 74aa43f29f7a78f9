package sqlstore

import (
	"time"

	"github.com/goliatone/go-transform/core"
	"github.com/uptrace/bun"
)

type mappingSpecRecord struct {
	bun.BaseModel `bun:"table:transform_mapping_specs,alias:tms"`

	ID           string         `bun:"id,pk"`
	SpecID       string         `bun:"spec_id,notnull"`
	Name         string         `bun:"name,notnull"`
	Description  string         `bun:"description"`
	EnvelopeKey  string         `bun:"envelope_key,notnull"`
	IdentityPath string         `bun:"identity_path,notnull"`
	Version      int            `bun:"version,notnull"`
	Status       string         `bun:"status,notnull"`
	Sections     []sectionDoc   `bun:"sections,type:jsonb,notnull"`
	Metadata     map[string]any `bun:"metadata,type:jsonb,notnull"`
	CreatedAt    time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time      `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	PublishedAt  *time.Time     `bun:"published_at,nullzero"`
}

// sectionDoc mirrors core.MappingSection for jsonb storage; the core types
// stay tag-free.
type sectionDoc struct {
	Name      string    `json:"name"`
	Placement string    `json:"placement,omitempty"`
	TargetKey string    `json:"target_key,omitempty"`
	Rules     []ruleDoc `json:"rules"`
}

type ruleDoc struct {
	ID          string         `json:"id,omitempty"`
	Target      string         `json:"target"`
	SourceField string         `json:"source_field,omitempty"`
	Resolver    string         `json:"resolver,omitempty"`
	Transform   string         `json:"transform,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type transformActivityRecord struct {
	bun.BaseModel `bun:"table:transform_activity_entries,alias:tae"`

	ID            string         `bun:"id,pk"`
	SpecID        string         `bun:"spec_id,notnull"`
	SpecVersion   int            `bun:"spec_version,notnull"`
	IdentityValue string         `bun:"identity_value"`
	Status        string         `bun:"status,notnull"`
	Error         string         `bun:"error"`
	DurationMS    int64          `bun:"duration_ms,notnull"`
	Metadata      map[string]any `bun:"metadata,type:jsonb,notnull"`
	CreatedAt     time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func newMappingSpecRecord(spec core.MappingSpec) *mappingSpecRecord {
	return &mappingSpecRecord{
		ID:           spec.ID,
		SpecID:       spec.SpecID,
		Name:         spec.Name,
		Description:  spec.Description,
		EnvelopeKey:  spec.EnvelopeKey,
		IdentityPath: spec.IdentityPath,
		Version:      spec.Version,
		Status:       string(spec.Status),
		Sections:     sectionsToDoc(spec.Sections),
		Metadata:     copyAnyMap(spec.Metadata),
		CreatedAt:    spec.CreatedAt,
		UpdatedAt:    spec.UpdatedAt,
		PublishedAt:  cloneTimePointer(spec.PublishedAt),
	}
}

func (r *mappingSpecRecord) toDomain() core.MappingSpec {
	if r == nil {
		return core.MappingSpec{}
	}
	return core.MappingSpec{
		ID:           r.ID,
		SpecID:       r.SpecID,
		Name:         r.Name,
		Description:  r.Description,
		EnvelopeKey:  r.EnvelopeKey,
		IdentityPath: r.IdentityPath,
		Version:      r.Version,
		Status:       core.MappingSpecStatus(r.Status),
		Sections:     sectionsFromDoc(r.Sections),
		Metadata:     copyAnyMap(r.Metadata),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		PublishedAt:  cloneTimePointer(r.PublishedAt),
	}
}

func sectionsToDoc(sections []core.MappingSection) []sectionDoc {
	out := make([]sectionDoc, 0, len(sections))
	for _, section := range sections {
		doc := sectionDoc{
			Name:      section.Name,
			Placement: string(section.Placement),
			TargetKey: section.TargetKey,
			Rules:     make([]ruleDoc, 0, len(section.Rules)),
		}
		for _, rule := range section.Rules {
			doc.Rules = append(doc.Rules, ruleDoc{
				ID:          rule.ID,
				Target:      rule.Target,
				SourceField: rule.SourceField,
				Resolver:    rule.Resolver,
				Transform:   rule.Transform,
				Metadata:    copyAnyMap(rule.Metadata),
			})
		}
		out = append(out, doc)
	}
	return out
}

func sectionsFromDoc(docs []sectionDoc) []core.MappingSection {
	out := make([]core.MappingSection, 0, len(docs))
	for _, doc := range docs {
		section := core.MappingSection{
			Name:      doc.Name,
			Placement: core.Placement(doc.Placement),
			TargetKey: doc.TargetKey,
			Rules:     make([]core.MappingRule, 0, len(doc.Rules)),
		}
		for _, rule := range doc.Rules {
			section.Rules = append(section.Rules, core.MappingRule{
				ID:          rule.ID,
				Target:      rule.Target,
				SourceField: rule.SourceField,
				Resolver:    rule.Resolver,
				Transform:   rule.Transform,
				Metadata:    copyAnyMap(rule.Metadata),
			})
		}
		out = append(out, section)
	}
	return out
}

func (r *transformActivityRecord) toDomain() core.TransformActivityEntry {
	if r == nil {
		return core.TransformActivityEntry{}
	}
	return core.TransformActivityEntry{
		ID:            r.ID,
		SpecID:        r.SpecID,
		SpecVersion:   r.SpecVersion,
		IdentityValue: r.IdentityValue,
		Status:        r.Status,
		Error:         r.Error,
		DurationMS:    r.DurationMS,
		Metadata:      copyAnyMap(r.Metadata),
		CreatedAt:     r.CreatedAt,
	}
}

func copyAnyMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func cloneTimePointer(input *time.Time) *time.Time {
	if input == nil {
		return nil
	}
	value := input.UTC()
	return &value
}
