package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type PreviewerOption func(*Previewer)

func WithPreviewerClock(now func() time.Time) PreviewerOption {
	return func(p *Previewer) {
		if p == nil || now == nil {
			return
		}
		p.now = now
	}
}

// Previewer dry-runs a mapping configuration against sample records in
// collect-issues mode: a failing resolver produces a per-field issue
// instead of aborting the run. This is the caller-side partial-success
// surface; Engine.Transform keeps its abort-on-failure contract.
type Previewer struct {
	compiler *ConfigCompiler
	now      func() time.Time
}

func NewPreviewer(compiler *ConfigCompiler, opts ...PreviewerOption) *Previewer {
	if compiler == nil {
		compiler = NewConfigCompiler()
	}
	previewer := &Previewer{
		compiler: compiler,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(previewer)
		}
	}
	return previewer
}

type PreviewRequest struct {
	Config  EngineConfig
	Samples []SourceRecord
	Deps    *ResolverContext
}

type PreviewSpecRequest struct {
	Spec    MappingSpec
	Samples []SourceRecord
	Deps    *ResolverContext
}

type PreviewFieldDiff struct {
	Section     string
	Target      string
	OutputValue any
}

type PreviewRecord struct {
	Input  SourceRecord
	Output map[string]any
	Diff   []PreviewFieldDiff
	Issues []ConfigIssue
}

type PreviewReport struct {
	SampleCount       int
	IssueCount        int
	AppliedFieldCount int
}

type PreviewResult struct {
	Issues            []ConfigIssue
	Records           []PreviewRecord
	Report            PreviewReport
	DeterministicHash string
	GeneratedAt       time.Time
}

func (p *Previewer) Preview(ctx context.Context, req PreviewRequest) (PreviewResult, error) {
	if p == nil || p.compiler == nil {
		return PreviewResult{}, fmt.Errorf("core: previewer compiler is required")
	}

	compiled, issues, err := p.compiler.Compile(req.Config)
	if err != nil {
		return PreviewResult{}, err
	}

	records := make([]PreviewRecord, 0, len(req.Samples))
	totalRecordIssues := 0
	appliedFieldCount := 0

	for _, sample := range req.Samples {
		record := p.previewRecord(ctx, compiled, sample, req.Deps)
		totalRecordIssues += len(record.Issues)
		appliedFieldCount += len(record.Diff)
		records = append(records, record)
	}

	report := PreviewReport{
		SampleCount:       len(req.Samples),
		IssueCount:        len(issues) + totalRecordIssues,
		AppliedFieldCount: appliedFieldCount,
	}
	hash, err := previewDeterministicHash(issues, records, compiled.DeterministicHash, report)
	if err != nil {
		return PreviewResult{}, err
	}

	return PreviewResult{
		Issues:            issues,
		Records:           records,
		Report:            report,
		DeterministicHash: hash,
		GeneratedAt:       p.now(),
	}, nil
}

func (p *Previewer) previewRecord(
	ctx context.Context,
	compiled CompiledConfig,
	sample SourceRecord,
	deps *ResolverContext,
) PreviewRecord {
	output := make(map[string]any)
	lists := make(map[string][]AttributeValue)
	for _, section := range compiled.Sections {
		if section.Placement == PlacementAppendToList {
			lists[section.TargetKey] = make([]AttributeValue, 0)
		}
	}

	diffs := make([]PreviewFieldDiff, 0, len(compiled.Fields))
	recordIssues := make([]ConfigIssue, 0)

	for _, field := range compiled.Fields {
		value, err := field.Instruction.resolve(ctx, sample, deps)
		if err != nil {
			recordIssues = append(recordIssues, configIssue(
				"preview_resolution_failed",
				fmt.Sprintf("core: %s failed: %v", field.Instruction.describe(), err),
				field.Section.Name,
				field.Target,
				ConfigIssueError,
			))
			continue
		}
		if value == nil {
			continue
		}
		if name := field.Instruction.Transform(); name != "" && name != TransformIdentity {
			value, err = ApplyTransform(name, value)
			if err != nil {
				recordIssues = append(recordIssues, configIssue(
					"preview_transform_failed",
					fmt.Sprintf("core: transform %q failed: %v", name, err),
					field.Section.Name,
					field.Target,
					ConfigIssueError,
				))
				continue
			}
		}

		switch field.Section.Placement {
		case PlacementMergeAtRoot:
			if err := writePathValue(output, field.Target, value); err != nil {
				recordIssues = append(recordIssues, configIssue(
					"preview_write_failed", err.Error(), field.Section.Name, field.Target, ConfigIssueError,
				))
				continue
			}
		case PlacementNestUnderKey:
			if err := writePathValue(output, field.Section.TargetKey+"."+field.Target, value); err != nil {
				recordIssues = append(recordIssues, configIssue(
					"preview_write_failed", err.Error(), field.Section.Name, field.Target, ConfigIssueError,
				))
				continue
			}
		case PlacementAppendToList:
			lists[field.Section.TargetKey] = append(lists[field.Section.TargetKey], AttributeValue{
				AttributeCode: field.Target,
				Value:         value,
			})
		}
		diffs = append(diffs, PreviewFieldDiff{
			Section:     field.Section.Name,
			Target:      field.Target,
			OutputValue: value,
		})
	}
	for key, list := range lists {
		output[key] = list
	}

	if value, ok := lookupPathValue(output, compiled.IdentityPath); !ok || isEmptyIdentity(value) {
		recordIssues = append(recordIssues, configIssue(
			"preview_identity_missing",
			fmt.Sprintf("core: required identity field %q is missing or empty", compiled.IdentityPath),
			"",
			compiled.IdentityPath,
			ConfigIssueWarning,
		))
	}

	sortConfigIssues(recordIssues)
	return PreviewRecord{
		Input:  sample,
		Output: output,
		Diff:   diffs,
		Issues: recordIssues,
	}
}

func isEmptyIdentity(value any) bool {
	if value == nil {
		return true
	}
	if text, ok := value.(string); ok {
		return strings.TrimSpace(text) == ""
	}
	return false
}

func previewDeterministicHash(
	issues []ConfigIssue,
	records []PreviewRecord,
	compiledHash string,
	report PreviewReport,
) (string, error) {
	payload, err := json.Marshal(struct {
		CompiledHash string          `json:"compiled_hash"`
		Issues       []ConfigIssue   `json:"issues"`
		Records      []PreviewRecord `json:"records"`
		Report       PreviewReport   `json:"report"`
	}{
		CompiledHash: compiledHash,
		Issues:       issues,
		Records:      records,
		Report:       report,
	})
	if err != nil {
		return "", fmt.Errorf("core: marshal preview payload: %w", err)
	}
	digest := sha256.Sum256(payload)
	return hex.EncodeToString(digest[:]), nil
}
