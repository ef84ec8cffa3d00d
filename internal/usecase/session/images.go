package session

import (
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/estatedash/internal/domain/property"
)

// DefaultImageCapacity bounds how many properties keep decoded images.
const DefaultImageCapacity = 12

// Decoder turns one encoded image payload into bytes.
type Decoder func(payload string) ([]byte, error)

// ImageCache holds decoded property images for one session. Each property is
// decoded at most once while it stays cached; the least recently accessed
// property is evicted when capacity is reached. Safe for concurrent use.
type ImageCache struct {
	mu          sync.Mutex
	lru         *simplelru.LRU[string, [][]byte]
	decode      Decoder
	decodeTotal *prometheus.CounterVec
	logger      *zap.Logger
}

// NewImageCache creates an image cache. Non-positive capacity uses the default.
func NewImageCache(capacity int) *ImageCache {
	if capacity <= 0 {
		capacity = DefaultImageCapacity
	}
	l, err := simplelru.NewLRU[string, [][]byte](capacity, nil)
	if err != nil {
		panic(err)
	}
	return &ImageCache{lru: l, decode: property.DecodeImage, logger: zap.NewNop()}
}

// WithDecoder overrides the payload decoder.
func (c *ImageCache) WithDecoder(d Decoder) *ImageCache {
	c.decode = d
	return c
}

// WithLogger sets the logger for decode failures.
func (c *ImageCache) WithLogger(l *zap.Logger) *ImageCache {
	c.logger = l
	return c
}

// WithMetrics counts decode outcomes on decodeTotal (label "result").
func (c *ImageCache) WithMetrics(decodeTotal *prometheus.CounterVec) *ImageCache {
	c.decodeTotal = decodeTotal
	return c
}

// EnsureDecoded decodes the payloads of propertyID unless already cached, in
// which case it only marks the property as recently used. A payload that
// fails to decode leaves its slot empty.
func (c *ImageCache) EnsureDecoded(propertyID string, payloads []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.lru.Get(propertyID); ok {
		return
	}

	images := make([][]byte, len(payloads))
	for i, p := range payloads {
		b, err := c.decode(p)
		if err != nil {
			c.count("error")
			c.logger.Warn("image decode failed",
				zap.String("property_id", propertyID),
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		c.count("ok")
		images[i] = b
	}
	c.lru.Add(propertyID, images)
}

// Decoded returns image index of propertyID, or false when the property is
// not cached, the index is out of range or the image did not decode.
func (c *ImageCache) Decoded(propertyID string, index int) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	images, ok := c.lru.Get(propertyID)
	if !ok || index < 0 || index >= len(images) || images[index] == nil {
		return nil, false
	}
	return images[index], true
}

// Count returns the number of image slots cached for propertyID.
func (c *ImageCache) Count(propertyID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	images, _ := c.lru.Peek(propertyID)
	return len(images)
}

// Contains reports whether propertyID is cached without touching recency.
func (c *ImageCache) Contains(propertyID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Contains(propertyID)
}

// Len returns the number of cached properties.
func (c *ImageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Clear drops every decoded image.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

func (c *ImageCache) count(result string) {
	if c.decodeTotal != nil {
		c.decodeTotal.WithLabelValues(result).Inc()
	}
}
