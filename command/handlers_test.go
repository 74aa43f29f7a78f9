package command

import (
	"context"
	"testing"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-transform/core"
)

type stubMutatingService struct {
	transformFn    func(ctx context.Context, req core.TransformRequest) (core.TransformResult, error)
	validateFn     func(ctx context.Context, req core.ValidateSpecRequest) (core.ValidateSpecResult, error)
	previewFn      func(ctx context.Context, req core.PreviewSpecRequest) (core.PreviewResult, error)
	createDraftFn  func(ctx context.Context, spec core.MappingSpec) (core.MappingSpec, error)
	updateDraftFn  func(ctx context.Context, spec core.MappingSpec) (core.MappingSpec, error)
	publishSpecFn  func(ctx context.Context, specID string, version int) (core.MappingSpec, error)
	archiveSpecFn  func(ctx context.Context, specID string, version int) (core.MappingSpec, error)
}

func (s stubMutatingService) Transform(ctx context.Context, req core.TransformRequest) (core.TransformResult, error) {
	return s.transformFn(ctx, req)
}

func (s stubMutatingService) ValidateSpec(ctx context.Context, req core.ValidateSpecRequest) (core.ValidateSpecResult, error) {
	return s.validateFn(ctx, req)
}

func (s stubMutatingService) PreviewSpec(ctx context.Context, req core.PreviewSpecRequest) (core.PreviewResult, error) {
	return s.previewFn(ctx, req)
}

func (s stubMutatingService) CreateDraft(ctx context.Context, spec core.MappingSpec) (core.MappingSpec, error) {
	return s.createDraftFn(ctx, spec)
}

func (s stubMutatingService) UpdateDraft(ctx context.Context, spec core.MappingSpec) (core.MappingSpec, error) {
	return s.updateDraftFn(ctx, spec)
}

func (s stubMutatingService) PublishSpec(ctx context.Context, specID string, version int) (core.MappingSpec, error) {
	return s.publishSpecFn(ctx, specID, version)
}

func (s stubMutatingService) ArchiveSpec(ctx context.Context, specID string, version int) (core.MappingSpec, error) {
	return s.archiveSpecFn(ctx, specID, version)
}

func TestTransformCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	expected := core.TransformResult{
		Output:      core.OutputRecord{"product": map[string]any{"sku": "SKU-1"}},
		SpecID:      "catalog",
		SpecVersion: 2,
	}
	called := false
	svc := stubMutatingService{
		transformFn: func(_ context.Context, req core.TransformRequest) (core.TransformResult, error) {
			called = true
			if req.SpecID != "catalog" {
				t.Fatalf("expected spec catalog, got %q", req.SpecID)
			}
			return expected, nil
		},
	}

	cmd := NewTransformCommand(svc)
	collector := gocmd.NewResult[core.TransformResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, TransformMessage{Request: core.TransformRequest{
		SpecID: "catalog",
		Source: core.SourceRecord{"id": "SKU-1"},
	}})
	if err != nil {
		t.Fatalf("execute transform: %v", err)
	}
	if !called {
		t.Fatalf("expected transform service invocation")
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if result.SpecID != expected.SpecID || result.SpecVersion != expected.SpecVersion {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestLifecycleCommands_DelegateToService(t *testing.T) {
	t.Run("publish", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			publishSpecFn: func(_ context.Context, specID string, version int) (core.MappingSpec, error) {
				called = true
				if specID != "catalog" || version != 3 {
					t.Fatalf("unexpected publish payload: %q %d", specID, version)
				}
				return core.MappingSpec{SpecID: specID, Version: version, Status: core.MappingSpecStatusPublished}, nil
			},
		}
		cmd := NewPublishSpecCommand(svc)
		if err := cmd.Execute(context.Background(), PublishSpecMessage{SpecID: "catalog", Version: 3}); err != nil {
			t.Fatalf("execute publish: %v", err)
		}
		if !called {
			t.Fatalf("expected publish invocation")
		}
	})

	t.Run("archive", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			archiveSpecFn: func(_ context.Context, specID string, version int) (core.MappingSpec, error) {
				called = true
				return core.MappingSpec{SpecID: specID, Version: version, Status: core.MappingSpecStatusArchived}, nil
			},
		}
		cmd := NewArchiveSpecCommand(svc)
		if err := cmd.Execute(context.Background(), ArchiveSpecMessage{SpecID: "catalog", Version: 1}); err != nil {
			t.Fatalf("execute archive: %v", err)
		}
		if !called {
			t.Fatalf("expected archive invocation")
		}
	})

	t.Run("create draft stores saved spec", func(t *testing.T) {
		svc := stubMutatingService{
			createDraftFn: func(_ context.Context, spec core.MappingSpec) (core.MappingSpec, error) {
				spec.Version = 1
				spec.Status = core.MappingSpecStatusDraft
				return spec, nil
			},
		}
		cmd := NewCreateDraftCommand(svc)
		collector := gocmd.NewResult[core.MappingSpec]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		err := cmd.Execute(ctx, CreateDraftMessage{Spec: core.MappingSpec{SpecID: "catalog", Name: "catalog"}})
		if err != nil {
			t.Fatalf("execute create draft: %v", err)
		}
		saved, ok := collector.Load()
		if !ok || saved.Version != 1 {
			t.Fatalf("expected stored draft, got %#v (ok=%v)", saved, ok)
		}
	})
}

func TestCommands_RequireService(t *testing.T) {
	if err := (&TransformCommand{}).Execute(context.Background(), TransformMessage{}); err == nil {
		t.Fatalf("expected dependency error for nil service")
	}
	if err := (&PublishSpecCommand{}).Execute(context.Background(), PublishSpecMessage{}); err == nil {
		t.Fatalf("expected dependency error for nil service")
	}
}

func TestCommandMessageValidation(t *testing.T) {
	tests := []struct {
		name    string
		msg     interface{ Validate() error }
		wantErr bool
	}{
		{"transform ok", TransformMessage{Request: core.TransformRequest{SpecID: "catalog", Source: core.SourceRecord{"id": "x"}}}, false},
		{"transform missing spec", TransformMessage{Request: core.TransformRequest{Source: core.SourceRecord{"id": "x"}}}, true},
		{"transform missing source", TransformMessage{Request: core.TransformRequest{SpecID: "catalog"}}, true},
		{"transform negative version", TransformMessage{Request: core.TransformRequest{SpecID: "catalog", Version: -1, Source: core.SourceRecord{"id": "x"}}}, true},
		{"validate missing sections", ValidateSpecMessage{}, true},
		{"preview missing samples", PreviewSpecMessage{Request: core.PreviewSpecRequest{Spec: core.MappingSpec{Sections: []core.MappingSection{{Name: "core"}}}}}, true},
		{"create draft missing name", CreateDraftMessage{Spec: core.MappingSpec{SpecID: "catalog"}}, true},
		{"update draft missing version", UpdateDraftMessage{Spec: core.MappingSpec{SpecID: "catalog"}}, true},
		{"publish ok", PublishSpecMessage{SpecID: "catalog", Version: 1}, false},
		{"publish missing version", PublishSpecMessage{SpecID: "catalog"}, true},
		{"archive missing spec", ArchiveSpecMessage{Version: 1}, true},
	}
	for _, tt := range tests {
		err := tt.msg.Validate()
		if (err != nil) != tt.wantErr {
			t.Fatalf("%s: Validate() error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}
