package query

import (
	"context"

	"github.com/goliatone/go-transform/core"
)

type SpecReader interface {
	GetSpec(ctx context.Context, specID string, version int) (core.MappingSpec, error)
	ListSpecs(ctx context.Context) ([]core.MappingSpec, error)
}

type ActivityReader interface {
	ListActivity(ctx context.Context, specID string, limit int) ([]core.TransformActivityEntry, error)
}

type GetSpecQuery struct {
	reader SpecReader
}

func NewGetSpecQuery(reader SpecReader) *GetSpecQuery {
	return &GetSpecQuery{reader: reader}
}

func (q *GetSpecQuery) Query(ctx context.Context, msg GetSpecMessage) (core.MappingSpec, error) {
	if q == nil || q.reader == nil {
		return core.MappingSpec{}, queryDependencyError("query: spec reader is required")
	}
	return q.reader.GetSpec(ctx, msg.SpecID, msg.Version)
}

type ListSpecsQuery struct {
	reader SpecReader
}

func NewListSpecsQuery(reader SpecReader) *ListSpecsQuery {
	return &ListSpecsQuery{reader: reader}
}

func (q *ListSpecsQuery) Query(ctx context.Context, msg ListSpecsMessage) ([]core.MappingSpec, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: spec reader is required")
	}
	return q.reader.ListSpecs(ctx)
}

type ListActivityQuery struct {
	reader ActivityReader
}

func NewListActivityQuery(reader ActivityReader) *ListActivityQuery {
	return &ListActivityQuery{reader: reader}
}

func (q *ListActivityQuery) Query(ctx context.Context, msg ListActivityMessage) ([]core.TransformActivityEntry, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: activity reader is required")
	}
	return q.reader.ListActivity(ctx, msg.SpecID, msg.Limit)
}
