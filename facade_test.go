package transform

import (
	"context"
	"testing"

	gocmd "github.com/goliatone/go-command"
	transformcommand "github.com/goliatone/go-transform/command"
	"github.com/goliatone/go-transform/core"
	transformquery "github.com/goliatone/go-transform/query"
)

type stubCommandQueryService struct {
	transformed  []core.TransformRequest
	published    []string
	listActivity int
}

func (s *stubCommandQueryService) Transform(_ context.Context, req core.TransformRequest) (core.TransformResult, error) {
	s.transformed = append(s.transformed, req)
	return core.TransformResult{SpecID: req.SpecID, SpecVersion: 1}, nil
}

func (s *stubCommandQueryService) ValidateSpec(context.Context, core.ValidateSpecRequest) (core.ValidateSpecResult, error) {
	return core.ValidateSpecResult{Valid: true}, nil
}

func (s *stubCommandQueryService) PreviewSpec(context.Context, core.PreviewSpecRequest) (core.PreviewResult, error) {
	return core.PreviewResult{}, nil
}

func (s *stubCommandQueryService) CreateDraft(_ context.Context, spec core.MappingSpec) (core.MappingSpec, error) {
	return spec, nil
}

func (s *stubCommandQueryService) UpdateDraft(_ context.Context, spec core.MappingSpec) (core.MappingSpec, error) {
	return spec, nil
}

func (s *stubCommandQueryService) PublishSpec(_ context.Context, specID string, version int) (core.MappingSpec, error) {
	s.published = append(s.published, specID)
	return core.MappingSpec{SpecID: specID, Version: version, Status: core.MappingSpecStatusPublished}, nil
}

func (s *stubCommandQueryService) ArchiveSpec(_ context.Context, specID string, version int) (core.MappingSpec, error) {
	return core.MappingSpec{SpecID: specID, Version: version, Status: core.MappingSpecStatusArchived}, nil
}

func (s *stubCommandQueryService) GetSpec(_ context.Context, specID string, version int) (core.MappingSpec, error) {
	return core.MappingSpec{SpecID: specID, Version: version}, nil
}

func (s *stubCommandQueryService) ListSpecs(context.Context) ([]core.MappingSpec, error) {
	return []core.MappingSpec{{SpecID: "catalog-v1", Version: 1}}, nil
}

func (s *stubCommandQueryService) ListActivity(context.Context, string, int) ([]core.TransformActivityEntry, error) {
	s.listActivity++
	return []core.TransformActivityEntry{{SpecID: "catalog-v1", Status: "ok"}}, nil
}

func TestNewFacadeRequiresService(t *testing.T) {
	if _, err := NewFacade(nil); err == nil {
		t.Fatalf("expected nil service to be rejected")
	}
}

func TestFacadeWiresCommandsAndQueries(t *testing.T) {
	service := &stubCommandQueryService{}
	facade, err := NewFacade(service)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	commands := facade.Commands()
	if commands.Transform == nil || commands.PublishSpec == nil || commands.ArchiveSpec == nil {
		t.Fatalf("expected all commands to be wired, got %+v", commands)
	}
	queries := facade.Queries()
	if queries.GetSpec == nil || queries.ListSpecs == nil || queries.ListActivity == nil {
		t.Fatalf("expected all queries to be wired, got %+v", queries)
	}

	collector := gocmd.NewResult[core.TransformResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)
	err = commands.Transform.Execute(ctx, transformcommand.TransformMessage{
		Request: core.TransformRequest{
			SpecID: "catalog-v1",
			Source: core.SourceRecord{"id": "SKU-1"},
		},
	})
	if err != nil {
		t.Fatalf("execute transform: %v", err)
	}
	if len(service.transformed) != 1 {
		t.Fatalf("expected one transform call, got %d", len(service.transformed))
	}
	result, ok := collector.Load()
	if !ok || result.SpecID != "catalog-v1" {
		t.Fatalf("expected stored transform result, got %+v ok=%v", result, ok)
	}
}

func TestFacadeQueriesDelegate(t *testing.T) {
	service := &stubCommandQueryService{}
	facade, err := NewFacade(service)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	spec, err := facade.Queries().GetSpec.Query(context.Background(), transformquery.GetSpecMessage{SpecID: "catalog-v1", Version: 2})
	if err != nil {
		t.Fatalf("get spec query: %v", err)
	}
	if spec.SpecID != "catalog-v1" || spec.Version != 2 {
		t.Fatalf("expected delegated spec lookup, got %+v", spec)
	}

	entries, err := facade.Queries().ListActivity.Query(context.Background(), transformquery.ListActivityMessage{SpecID: "catalog-v1", Limit: 10})
	if err != nil {
		t.Fatalf("list activity query: %v", err)
	}
	if len(entries) != 1 || service.listActivity != 1 {
		t.Fatalf("expected delegated activity lookup, got %d entries", len(entries))
	}
}
