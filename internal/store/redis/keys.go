package redis

const (
	// KeyPrefixKV is the prefix for persisted collections
	KeyPrefixKV = "linktree:kv:"
	// KeyPrefixCache is the prefix for offline cache hashes
	KeyPrefixCache = "linktree:cache:"
	// KeyCacheNames is the set of all offline cache names
	KeyCacheNames = "linktree:caches"
)

// KVKey returns the Redis key for a persisted collection
func KVKey(key string) string {
	return KeyPrefixKV + key
}

// CacheKey returns the Redis hash holding one offline cache
func CacheKey(name string) string {
	return KeyPrefixCache + name
}

// CacheNamesKey returns the key for the set of all cache names
func CacheNamesKey() string {
	return KeyCacheNames
}
