package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey  = "response_meta"
	requestStartKey  = "request_started_at"
	cacheHitKey      = "cache_hit"
	processingTimeMs = "processing_time_ms"
)

// WithResponseMeta stamps the request start time and an empty meta map that
// handlers fill through SetMeta and SetCacheHit.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requestStartKey, time.Now())
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Next()
	}
}

// SetMeta records a key for the response meta block.
func SetMeta(c *gin.Context, key string, value interface{}) {
	metaMap(c)[key] = value
}

// SetCacheHit records whether the payload came from the cache.
func SetCacheHit(c *gin.Context, hit bool) {
	SetMeta(c, cacheHitKey, hit)
}

// ExtractMeta returns the collected meta with processing_time_ms filled in
// from the request start. Nil when nothing was collected.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	raw, ok := c.Get(responseMetaKey)
	if !ok {
		return nil
	}
	meta, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}
	if _, set := meta[processingTimeMs]; !set {
		if started, ok := c.Get(requestStartKey); ok {
			if t, ok := started.(time.Time); ok {
				meta[processingTimeMs] = time.Since(t).Milliseconds()
			}
		}
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

func metaMap(c *gin.Context) map[string]interface{} {
	if raw, ok := c.Get(responseMetaKey); ok {
		if meta, ok := raw.(map[string]interface{}); ok {
			return meta
		}
	}
	meta := map[string]interface{}{}
	c.Set(responseMetaKey, meta)
	return meta
}
