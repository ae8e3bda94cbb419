package cache

import "time"

// Store defines the interface for cache operations
type Store interface {
	Get(key string) (string, bool, error)
	Set(key string, value string, ttl time.Duration) error
	Delete(key string) error
	Exists(key string) (bool, error)
	Close() error
	Health() map[string]interface{}
}
