package docgen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Common errors
var (
	ErrEmptyPrompt       = errors.New("prompt cannot be empty")
	ErrProviderFailed    = errors.New("documentation provider failed")
	ErrNoProviderEnabled = errors.New("no documentation provider configured")
	ErrUnknownProvider   = errors.New("unknown provider")
)

// Request is the output boundary to the documentation collaborator:
// a prompt plus an optional context string carried over from earlier
// sections.
type Request struct {
	Prompt  string
	Context string
}

// Generator produces free-form documentation text for a prompt. The
// response is treated as opaque except by the model-assisted clustering
// strategy, which parses a structured grouping out of it.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)

	// Provider returns the provider name
	Provider() string

	// Model returns the model name
	Model() string

	// Close releases any resources held by the generator
	Close() error
}

// ValidateRequest validates a generation request
func ValidateRequest(req Request) error {
	if req.Prompt == "" {
		return ErrEmptyPrompt
	}
	return nil
}

// Cache provides in-memory LRU caching of responses by request hash
type Cache struct {
	cache *lru.Cache[string, string]
}

// NewCache creates a response cache with LRU eviction
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = 1000
	}
	cache, err := lru.New[string, string](maxLen)
	if err != nil {
		cache, _ = lru.New[string, string](1000)
	}
	return &Cache{cache: cache}
}

// Get retrieves a cached response
func (c *Cache) Get(hash string) (string, bool) {
	return c.cache.Get(hash)
}

// Set stores a response with automatic LRU eviction
func (c *Cache) Set(hash string, response string) {
	c.cache.Add(hash, response)
}

// Size returns the current cache size
func (c *Cache) Size() int {
	return c.cache.Len()
}

// Clear empties the cache
func (c *Cache) Clear() {
	c.cache.Purge()
}

// ComputeHash computes the SHA-256 cache key for a request
func ComputeHash(req Request) string {
	h := sha256.Sum256([]byte(req.Prompt + "\x00" + req.Context))
	return hex.EncodeToString(h[:])
}
