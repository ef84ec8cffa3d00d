package estatedash

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs     []string
	username  string
	password  string
	keyPrefix string

	cacheCapacity int
	cacheTTL      time.Duration
	workers       int
	fetchTimeout  time.Duration
	imageCapacity int

	logger *zap.Logger
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	}
}

// WithACLUser sets the Redis ACL username.
func WithACLUser(username string) Option {
	return func(c *clientConfig) {
		c.username = username
	}
}

// WithKeyPrefix sets the key namespace shared with the ingestion pipeline.
func WithKeyPrefix(prefix string) Option {
	return func(c *clientConfig) {
		c.keyPrefix = prefix
	}
}

// WithCache bounds the fetch cache per collection.
func WithCache(capacity int, ttl time.Duration) Option {
	return func(c *clientConfig) {
		c.cacheCapacity = capacity
		c.cacheTTL = ttl
	}
}

// WithFetchWorkers bounds concurrent store lookups per batch.
func WithFetchWorkers(n int, timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.workers = n
		c.fetchTimeout = timeout
	}
}

// WithImageCapacity bounds how many properties keep decoded images per session.
func WithImageCapacity(n int) Option {
	return func(c *clientConfig) {
		c.imageCapacity = n
	}
}

// WithLogger sets the logger used by every service.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}
