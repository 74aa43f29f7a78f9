package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPreviewerCollectsIssuesInsteadOfAborting(t *testing.T) {
	cfg := EngineConfig{
		Sections: []SectionMapping{
			{
				Descriptor: CoreSection(),
				Fields: []FieldMapping{
					{Target: "sku", Instruction: FromField("id")},
					{
						Target: "price",
						Instruction: NamedResolver("price_lookup", func(context.Context, SourceRecord, *ResolverContext) (any, error) {
							return nil, errors.New("pricing offline")
						}),
					},
					{Target: "qty", Instruction: FromField("qty").WithTransform(TransformToInt)},
				},
			},
		},
	}

	result, err := NewPreviewer(nil).Preview(context.Background(), PreviewRequest{
		Config: cfg,
		Samples: []SourceRecord{
			{"id": "SKU-1", "qty": "5"},
			{"id": "SKU-2", "qty": "not-a-number"},
			{"qty": "3"},
		},
	})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if result.Report.SampleCount != 3 {
		t.Fatalf("expected 3 samples, got %d", result.Report.SampleCount)
	}
	if len(result.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(result.Records))
	}

	first := result.Records[0]
	if first.Output["sku"] != "SKU-1" || first.Output["qty"] != int64(5) {
		t.Fatalf("expected partial output for first sample, got %#v", first.Output)
	}
	if !hasIssue(first.Issues, "preview_resolution_failed") {
		t.Fatalf("expected resolver issue, got %v", issueCodes(first.Issues))
	}

	second := result.Records[1]
	if !hasIssue(second.Issues, "preview_transform_failed") {
		t.Fatalf("expected transform issue, got %v", issueCodes(second.Issues))
	}
	if _, present := second.Output["qty"]; present {
		t.Fatalf("expected failed transform to contribute nothing, got %v", second.Output["qty"])
	}

	third := result.Records[2]
	if !hasIssue(third.Issues, "preview_identity_missing") {
		t.Fatalf("expected identity warning, got %v", issueCodes(third.Issues))
	}
}

func TestPreviewerDeterministicHash(t *testing.T) {
	now := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
	previewer := NewPreviewer(nil, WithPreviewerClock(fixedClock(now)))
	req := PreviewRequest{
		Config: catalogConfig(),
		Samples: []SourceRecord{
			{"id": "SKU-1", "title": "Shirt", "inventory": 2, "colour": "red"},
			{"id": "SKU-2"},
		},
	}

	first, err := previewer.Preview(context.Background(), req)
	if err != nil {
		t.Fatalf("preview (first): %v", err)
	}
	second, err := previewer.Preview(context.Background(), req)
	if err != nil {
		t.Fatalf("preview (second): %v", err)
	}
	if first.DeterministicHash == "" {
		t.Fatalf("expected deterministic hash")
	}
	if first.DeterministicHash != second.DeterministicHash {
		t.Fatalf("expected stable hash, got %q and %q", first.DeterministicHash, second.DeterministicHash)
	}
	if !first.GeneratedAt.Equal(now) {
		t.Fatalf("expected clock timestamp, got %v", first.GeneratedAt)
	}

	changed := req
	changed.Samples = []SourceRecord{{"id": "SKU-1", "title": "Different"}}
	third, err := previewer.Preview(context.Background(), changed)
	if err != nil {
		t.Fatalf("preview (changed): %v", err)
	}
	if third.DeterministicHash == first.DeterministicHash {
		t.Fatalf("expected hash to change with samples")
	}
}

func TestPreviewerReportsCompileIssues(t *testing.T) {
	result, err := NewPreviewer(nil).Preview(context.Background(), PreviewRequest{
		Config: EngineConfig{
			Sections: []SectionMapping{
				{
					Descriptor: CoreSection(),
					Fields: []FieldMapping{
						{Target: "sku", Instruction: FromField("id")},
						{Target: "sku", Instruction: FromField("other")},
					},
				},
			},
		},
		Samples: []SourceRecord{{"id": "SKU-1"}},
	})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if !hasIssue(result.Issues, "target_duplicate") {
		t.Fatalf("expected compile issue surfaced, got %v", issueCodes(result.Issues))
	}
	if result.Report.IssueCount == 0 {
		t.Fatalf("expected issue count in report")
	}
}

func TestPreviewerCountsAppliedFields(t *testing.T) {
	result, err := NewPreviewer(nil).Preview(context.Background(), PreviewRequest{
		Config: catalogConfig(),
		Samples: []SourceRecord{
			{"id": "SKU-1", "title": "Shirt"},
		},
	})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if result.Report.AppliedFieldCount != 2 {
		t.Fatalf("expected 2 applied fields, got %d", result.Report.AppliedFieldCount)
	}
	record := result.Records[0]
	if len(record.Diff) != 2 {
		t.Fatalf("expected 2 diffs, got %#v", record.Diff)
	}
	if record.Diff[0].Target != "sku" || record.Diff[1].Target != "name" {
		t.Fatalf("expected declared-order diff, got %#v", record.Diff)
	}
}
