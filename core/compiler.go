package core

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

type ConfigIssueSeverity int

const (
	ConfigIssueError ConfigIssueSeverity = iota + 1
	ConfigIssueWarning
)

func (s ConfigIssueSeverity) String() string {
	switch s {
	case ConfigIssueError:
		return "error"
	case ConfigIssueWarning:
		return "warning"
	default:
		return "unknown"
	}
}

type ConfigIssue struct {
	Code     string              `json:"code"`
	Message  string              `json:"message"`
	Severity ConfigIssueSeverity `json:"severity"`
	Section  string              `json:"section,omitempty"`
	Target   string              `json:"target,omitempty"`
}

// CompiledField is one destination-key -> instruction pair flattened out of
// its section, in the configuration's declared order.
type CompiledField struct {
	Section     SectionDescriptor
	Target      string
	Instruction Instruction
}

// CompiledConfig is the validated, immutable form an Engine runs on. Field
// order preserves the configuration's declared order; the flat attribute
// list ordering guarantee depends on it.
type CompiledConfig struct {
	EnvelopeKey       string
	IdentityPath      string
	Sections          []SectionDescriptor
	Fields            []CompiledField
	DeterministicHash string
}

type ConfigCompiler struct{}

func NewConfigCompiler() *ConfigCompiler {
	return &ConfigCompiler{}
}

// Compile validates an engine configuration and flattens it. Duplicate
// destination keys within a section and nested-path prefix conflicts within
// a placement root are rejected here, before any engine exists, so the
// assembly phase never races two writers on one path.
func (c *ConfigCompiler) Compile(cfg EngineConfig) (CompiledConfig, []ConfigIssue, error) {
	if c == nil {
		return CompiledConfig{}, nil, fmt.Errorf("core: config compiler is required")
	}

	cfg = normalizeEngineConfig(cfg)
	var issues []ConfigIssue

	if err := cfg.Validate(); err != nil {
		issues = append(issues, configIssue("invalid_config", err.Error(), "", "", ConfigIssueError))
	}

	sectionNames := make(map[string]struct{}, len(cfg.Sections))
	// nested targets grouped by placement root; "" is the envelope root
	pathTargets := make(map[string][]sectionTarget)
	sections := make([]SectionDescriptor, 0, len(cfg.Sections))
	fields := make([]CompiledField, 0)

	for _, section := range cfg.Sections {
		descriptor := section.Descriptor
		if _, dup := sectionNames[descriptor.Name]; dup {
			issues = append(issues, configIssue(
				"section_duplicate",
				fmt.Sprintf("core: duplicate section %q", descriptor.Name),
				descriptor.Name,
				"",
				ConfigIssueError,
			))
		} else if descriptor.Name != "" {
			sectionNames[descriptor.Name] = struct{}{}
		}
		sections = append(sections, descriptor)

		seenTargets := make(map[string]struct{}, len(section.Fields))
		for _, field := range section.Fields {
			if field.Target == "" {
				issues = append(issues, configIssue(
					"target_missing",
					fmt.Sprintf("core: section %q has a mapping without a destination key", descriptor.Name),
					descriptor.Name,
					"",
					ConfigIssueError,
				))
				continue
			}
			if _, dup := seenTargets[field.Target]; dup {
				issues = append(issues, configIssue(
					"target_duplicate",
					fmt.Sprintf("core: duplicate destination key %q in section %q", field.Target, descriptor.Name),
					descriptor.Name,
					field.Target,
					ConfigIssueError,
				))
				continue
			}
			seenTargets[field.Target] = struct{}{}

			if err := field.Instruction.Validate(); err != nil {
				issues = append(issues, configIssue(
					"instruction_invalid",
					err.Error(),
					descriptor.Name,
					field.Target,
					ConfigIssueError,
				))
			}
			if descriptor.Keys == KeyKindPath {
				root := ""
				if descriptor.Placement == PlacementNestUnderKey {
					root = descriptor.TargetKey
				}
				pathTargets[root] = append(pathTargets[root], sectionTarget{
					Section: descriptor.Name,
					Target:  field.Target,
					parts:   splitPath(field.Target),
				})
			}
			fields = append(fields, CompiledField{
				Section:     descriptor,
				Target:      field.Target,
				Instruction: field.Instruction,
			})
		}
	}

	issues = append(issues, pathConflictIssues(pathTargets)...)

	if cfg.IdentityPath != "" && !targetsCover(pathTargets[""], cfg.IdentityPath) {
		issues = append(issues, configIssue(
			"identity_path_unmapped",
			fmt.Sprintf("core: no mapping targets the identity path %q", cfg.IdentityPath),
			"",
			cfg.IdentityPath,
			ConfigIssueWarning,
		))
	}

	compiled := CompiledConfig{
		EnvelopeKey:  cfg.EnvelopeKey,
		IdentityPath: cfg.IdentityPath,
		Sections:     sections,
		Fields:       fields,
	}
	hash, err := compiledConfigHash(compiled)
	if err != nil {
		return CompiledConfig{}, nil, err
	}
	compiled.DeterministicHash = hash

	sortConfigIssues(issues)
	return compiled, issues, nil
}

type sectionTarget struct {
	Section string
	Target  string
	parts   []string
}

func pathConflictIssues(pathTargets map[string][]sectionTarget) []ConfigIssue {
	var issues []ConfigIssue
	roots := make([]string, 0, len(pathTargets))
	for root := range pathTargets {
		roots = append(roots, root)
	}
	sort.Strings(roots)
	for _, root := range roots {
		targets := pathTargets[root]
		for i := range targets {
			for j := i + 1; j < len(targets); j++ {
				shorter, longer := targets[i], targets[j]
				if len(shorter.parts) > len(longer.parts) {
					shorter, longer = longer, shorter
				}
				if !pathIsPrefix(shorter.parts, longer.parts) {
					continue
				}
				issues = append(issues, configIssue(
					"target_path_conflict",
					fmt.Sprintf(
						"core: destination key %q (section %q) conflicts with nested key %q (section %q)",
						shorter.Target,
						shorter.Section,
						longer.Target,
						longer.Section,
					),
					shorter.Section,
					shorter.Target,
					ConfigIssueError,
				))
			}
		}
	}
	return issues
}

func targetsCover(targets []sectionTarget, path string) bool {
	for _, target := range targets {
		if target.Target == path {
			return true
		}
	}
	return false
}

func ContainsConfigErrors(issues []ConfigIssue) bool {
	for _, issue := range issues {
		if issue.Severity == ConfigIssueError {
			return true
		}
	}
	return false
}

func sortConfigIssues(issues []ConfigIssue) {
	sort.SliceStable(issues, func(i, j int) bool {
		left := issues[i]
		right := issues[j]
		if left.Severity != right.Severity {
			return left.Severity < right.Severity
		}
		if left.Code != right.Code {
			return left.Code < right.Code
		}
		if left.Section != right.Section {
			return left.Section < right.Section
		}
		if left.Target != right.Target {
			return left.Target < right.Target
		}
		return left.Message < right.Message
	})
}

func configIssue(code, message, section, target string, severity ConfigIssueSeverity) ConfigIssue {
	return ConfigIssue{
		Code:     strings.TrimSpace(strings.ToLower(code)),
		Message:  strings.TrimSpace(message),
		Severity: severity,
		Section:  strings.TrimSpace(section),
		Target:   strings.TrimSpace(target),
	}
}

// compiledConfigHash digests the structural shape of the compiled config:
// resolver functions are represented by their diagnostic names only.
func compiledConfigHash(compiled CompiledConfig) (string, error) {
	type fieldShape struct {
		Section   string `json:"section"`
		Target    string `json:"target"`
		Kind      string `json:"kind"`
		FieldRef  string `json:"field_ref,omitempty"`
		Resolver  string `json:"resolver,omitempty"`
		Transform string `json:"transform,omitempty"`
	}
	shape := struct {
		EnvelopeKey  string              `json:"envelope_key"`
		IdentityPath string              `json:"identity_path"`
		Sections     []SectionDescriptor `json:"sections"`
		Fields       []fieldShape        `json:"fields"`
	}{
		EnvelopeKey:  compiled.EnvelopeKey,
		IdentityPath: compiled.IdentityPath,
		Sections:     compiled.Sections,
	}
	for _, field := range compiled.Fields {
		shape.Fields = append(shape.Fields, fieldShape{
			Section:   field.Section.Name,
			Target:    field.Target,
			Kind:      string(field.Instruction.Kind()),
			FieldRef:  field.Instruction.FieldRef(),
			Resolver:  field.Instruction.ResolverName(),
			Transform: field.Instruction.Transform(),
		})
	}
	payload, err := json.Marshal(shape)
	if err != nil {
		return "", fmt.Errorf("core: marshal compiled config: %w", err)
	}
	digest := sha256.Sum256(payload)
	return hex.EncodeToString(digest[:]), nil
}
