package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-transform/core"
)

var (
	_ gocmd.Querier[GetSpecMessage, core.MappingSpec]                   = (*GetSpecQuery)(nil)
	_ gocmd.Querier[ListSpecsMessage, []core.MappingSpec]               = (*ListSpecsQuery)(nil)
	_ gocmd.Querier[ListActivityMessage, []core.TransformActivityEntry] = (*ListActivityQuery)(nil)
)
