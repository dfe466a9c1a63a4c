package cache

import "time"

// Options configures cache backends.
type Options struct {
	MaxEntries      int
	CleanupInterval time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
}

// Option mutates Options.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		MaxEntries:      4096,
		CleanupInterval: 5 * time.Minute,
		KeyPrefix:       "hockeyquant",
	}
}

// WithMaxEntries caps the in-memory entry count.
func WithMaxEntries(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxEntries = n
		}
	}
}

// WithCleanupInterval sets how often expired entries are swept.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.CleanupInterval = d
		}
	}
}

// WithRedis points the Redis backend at addr.
func WithRedis(addr, password string, db int) Option {
	return func(o *Options) {
		o.RedisAddr = addr
		o.RedisPassword = password
		o.RedisDB = db
	}
}

// WithKeyPrefix namespaces all keys.
func WithKeyPrefix(prefix string) Option {
	return func(o *Options) {
		o.KeyPrefix = prefix
	}
}
