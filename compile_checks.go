package transform

import "github.com/goliatone/go-transform/core"

var _ CommandQueryService = (*core.Service)(nil)
