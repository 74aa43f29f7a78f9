package query

import (
	"context"
	"testing"

	"github.com/goliatone/go-transform/core"
)

type stubSpecReader struct {
	getFn  func(ctx context.Context, specID string, version int) (core.MappingSpec, error)
	listFn func(ctx context.Context) ([]core.MappingSpec, error)
}

func (s stubSpecReader) GetSpec(ctx context.Context, specID string, version int) (core.MappingSpec, error) {
	return s.getFn(ctx, specID, version)
}

func (s stubSpecReader) ListSpecs(ctx context.Context) ([]core.MappingSpec, error) {
	return s.listFn(ctx)
}

type stubActivityReader struct {
	listFn func(ctx context.Context, specID string, limit int) ([]core.TransformActivityEntry, error)
}

func (s stubActivityReader) ListActivity(ctx context.Context, specID string, limit int) ([]core.TransformActivityEntry, error) {
	return s.listFn(ctx, specID, limit)
}

func TestGetSpecQuery_DelegatesToReader(t *testing.T) {
	reader := stubSpecReader{
		getFn: func(_ context.Context, specID string, version int) (core.MappingSpec, error) {
			if specID != "catalog" || version != 2 {
				t.Fatalf("unexpected query payload: %q %d", specID, version)
			}
			return core.MappingSpec{SpecID: specID, Version: version}, nil
		},
	}
	spec, err := NewGetSpecQuery(reader).Query(context.Background(), GetSpecMessage{SpecID: "catalog", Version: 2})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if spec.SpecID != "catalog" || spec.Version != 2 {
		t.Fatalf("unexpected spec %#v", spec)
	}
}

func TestListQueries_DelegateToReaders(t *testing.T) {
	specs, err := NewListSpecsQuery(stubSpecReader{
		listFn: func(context.Context) ([]core.MappingSpec, error) {
			return []core.MappingSpec{{SpecID: "catalog", Version: 1}}, nil
		},
	}).Query(context.Background(), ListSpecsMessage{})
	if err != nil {
		t.Fatalf("list specs: %v", err)
	}
	if len(specs) != 1 {
		t.Fatalf("expected one spec, got %d", len(specs))
	}

	entries, err := NewListActivityQuery(stubActivityReader{
		listFn: func(_ context.Context, specID string, limit int) ([]core.TransformActivityEntry, error) {
			if specID != "catalog" || limit != 5 {
				t.Fatalf("unexpected activity payload: %q %d", specID, limit)
			}
			return []core.TransformActivityEntry{{SpecID: specID, Status: "success"}}, nil
		},
	}).Query(context.Background(), ListActivityMessage{SpecID: "catalog", Limit: 5})
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
}

func TestQueries_RequireReader(t *testing.T) {
	if _, err := (&GetSpecQuery{}).Query(context.Background(), GetSpecMessage{SpecID: "x"}); err == nil {
		t.Fatalf("expected dependency error")
	}
	if _, err := (&ListActivityQuery{}).Query(context.Background(), ListActivityMessage{}); err == nil {
		t.Fatalf("expected dependency error")
	}
}

func TestQueryMessageValidation(t *testing.T) {
	if err := (GetSpecMessage{}).Validate(); err == nil {
		t.Fatalf("expected missing spec id rejection")
	}
	if err := (GetSpecMessage{SpecID: "catalog", Version: -1}).Validate(); err == nil {
		t.Fatalf("expected negative version rejection")
	}
	if err := (GetSpecMessage{SpecID: "catalog"}).Validate(); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}
	if err := (ListActivityMessage{Limit: -1}).Validate(); err == nil {
		t.Fatalf("expected negative limit rejection")
	}
}
