package localcache

import "github.com/google/wire"

// ProviderSet 暴露本地缓存构造器。
var ProviderSet = wire.NewSet(NewStore)
