package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	pkgredis "github.com/ummachristians-netizen/umma-christians/internal/pkg/redis"
)

const (
	defaultHTTPCacheTTL     = 15 * time.Second
	defaultHTTPCacheMaxBody = 4 << 20
	purgeTimeout            = 2 * time.Second
)

type cachedHTTPResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	BodyBase64  string `json:"body_base64"`
	Body        []byte `json:"-"`
}

type cacheBodyWriter struct {
	gin.ResponseWriter
	body         []byte
	maxBodyBytes int
	overflow     bool
}

func (w *cacheBodyWriter) Write(data []byte) (int, error) {
	w.capture(data)
	return w.ResponseWriter.Write(data)
}

func (w *cacheBodyWriter) WriteString(s string) (int, error) {
	w.capture([]byte(s))
	return w.ResponseWriter.WriteString(s)
}

func (w *cacheBodyWriter) capture(data []byte) {
	if w.overflow || len(data) == 0 {
		return
	}
	if len(w.body)+len(data) > w.maxBodyBytes {
		w.overflow = true
		w.body = nil
		return
	}
	w.body = append(w.body, data...)
}

// HTTPCache keeps public GET responses in Redis for a short TTL. It is
// registered on the live-query bus so any write purges it.
type HTTPCache struct {
	rc      *pkgredis.Client
	ttl     time.Duration
	maxBody int
}

func NewHTTPCache(rc *pkgredis.Client, ttl time.Duration) *HTTPCache {
	if ttl <= 0 {
		ttl = defaultHTTPCacheTTL
	}
	return &HTTPCache{rc: rc, ttl: ttl, maxBody: defaultHTTPCacheMaxBody}
}

func (h *HTTPCache) key(uri string) string { return h.rc.Key("api-cache", uri) }

func (h *HTTPCache) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h == nil || h.rc == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := h.key(c.Request.URL.RequestURI())
		if payload, ok := h.read(ctx, cacheKey); ok {
			c.Header("x-church-cache", "hit")
			c.Data(payload.Status, payload.ContentType, payload.Body)
			c.Abort()
			return
		}

		buffer := &cacheBodyWriter{ResponseWriter: c.Writer, maxBodyBytes: h.maxBody}
		c.Writer = buffer
		c.Next()

		status := c.Writer.Status()
		if !isCacheableResponse(status, c.Writer.Header()) || buffer.overflow || len(buffer.body) == 0 {
			return
		}
		raw, err := json.Marshal(cachedHTTPResponse{
			Status:      status,
			ContentType: c.Writer.Header().Get("Content-Type"),
			BodyBase64:  base64.StdEncoding.EncodeToString(buffer.body),
		})
		if err != nil {
			return
		}
		_ = h.rc.Set(ctx, cacheKey, raw, h.ttl)
	}
}

// Purge drops every cached response and returns how many were removed.
func (h *HTTPCache) Purge(ctx context.Context) (int64, error) {
	if h == nil || h.rc == nil {
		return 0, nil
	}
	rdb := h.rc.Raw()
	var (
		cursor  uint64
		deleted int64
	)
	for {
		keys, next, err := rdb.Scan(ctx, cursor, h.key("*"), 200).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			n, err := rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, err
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

// Refresh purges the cache.
func (h *HTTPCache) Refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()
	_, _ = h.Purge(ctx)
}

func (h *HTTPCache) read(ctx context.Context, cacheKey string) (cachedHTTPResponse, bool) {
	raw, err := h.rc.Get(ctx, cacheKey)
	if err != nil || raw == "" {
		return cachedHTTPResponse{}, false
	}
	var payload cachedHTTPResponse
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return cachedHTTPResponse{}, false
	}
	if payload.Status <= 0 {
		payload.Status = http.StatusOK
	}
	if payload.ContentType == "" {
		payload.ContentType = "application/json; charset=utf-8"
	}
	body, err := base64.StdEncoding.DecodeString(payload.BodyBase64)
	if err != nil {
		return cachedHTTPResponse{}, false
	}
	payload.Body = body
	return payload, true
}

func isCacheableResponse(status int, headers http.Header) bool {
	if status != http.StatusOK {
		return false
	}
	cacheControl := strings.ToLower(headers.Get("Cache-Control"))
	return !strings.Contains(cacheControl, "no-cache") &&
		!strings.Contains(cacheControl, "no-store") &&
		!strings.Contains(cacheControl, "private")
}
