package sqlstore

import "github.com/goliatone/go-transform/core"

var (
	_ core.MappingSpecStore       = (*SpecStore)(nil)
	_ core.MappingSpecStore       = (*CachedSpecStore)(nil)
	_ core.TransformActivityStore = (*ActivityStore)(nil)
	_ core.StoreProvider          = (*RepositoryFactory)(nil)
	_ core.RepositoryStoreFactory = (*RepositoryFactory)(nil)
)
