package cache

import "time"

// NoExpiration keeps an item until it is deleted.
const NoExpiration time.Duration = -1

// CacheService is the key/value cache used for attribute schemas and live sessions.
type CacheService interface {
	// Get returns the value and true when the key is present.
	Get(key string) (interface{}, bool)

	Set(key string, value interface{}, ttl time.Duration)

	Delete(key string)
}
