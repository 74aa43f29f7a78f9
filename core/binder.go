package core

import (
	"fmt"
)

// BindSpec turns a mapping spec document into an engine configuration by
// resolving named resolver references against the registry. Rules naming
// unknown resolvers fail the binding.
func BindSpec(spec MappingSpec, registry Registry) (EngineConfig, error) {
	spec = normalizeMappingSpec(spec)
	cfg := EngineConfig{
		EnvelopeKey:  spec.EnvelopeKey,
		IdentityPath: spec.IdentityPath,
		Sections:     make([]SectionMapping, 0, len(spec.Sections)),
	}
	for _, section := range spec.Sections {
		mapping := SectionMapping{
			Descriptor: section.Descriptor(),
			Fields:     make([]FieldMapping, 0, len(section.Rules)),
		}
		for _, rule := range section.Rules {
			instruction, err := bindRule(section.Name, rule, registry)
			if err != nil {
				return EngineConfig{}, err
			}
			mapping.Fields = append(mapping.Fields, FieldMapping{
				Target:      rule.Target,
				Instruction: instruction,
			})
		}
		cfg.Sections = append(cfg.Sections, mapping)
	}
	return cfg, nil
}

func bindRule(sectionName string, rule MappingRule, registry Registry) (Instruction, error) {
	if err := rule.Validate(); err != nil {
		return Instruction{}, err
	}
	if rule.SourceField != "" {
		return FromField(rule.SourceField).WithTransform(rule.Transform), nil
	}
	if registry == nil {
		return Instruction{}, fmt.Errorf(
			"core: rule %q in section %q names resolver %q but no registry is configured: %w",
			rule.Target, sectionName, rule.Resolver, ErrResolverNotFound,
		)
	}
	fn, ok := registry.Get(rule.Resolver)
	if !ok {
		return Instruction{}, fmt.Errorf(
			"core: rule %q in section %q names unknown resolver %q: %w",
			rule.Target, sectionName, rule.Resolver, ErrResolverNotFound,
		)
	}
	return NamedResolver(rule.Resolver, fn).WithTransform(rule.Transform), nil
}
