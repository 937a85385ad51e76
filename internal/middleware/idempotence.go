package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	pkgredis "github.com/ummachristians-netizen/umma-christians/internal/pkg/redis"
)

const (
	idempotenceHeader = "x-idempotence"
	idempotenceTTL    = 10 * time.Second
)

// Idempotence rejects a repeated office write (same session, method, URL
// and body) while the first one is in flight or shortly after it succeeded,
// so a double-clicked form does not create two records.
func Idempotence(rc *pkgredis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rc == nil || (c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut) {
			c.Next()
			return
		}

		key, err := resolveIdempotenceKey(c)
		if err != nil || key == "" {
			c.Next()
			return
		}

		redisKey := rc.Key("idempotence", key)
		ctx := c.Request.Context()
		rdb := rc.Raw()

		ok, err := rdb.SetNX(ctx, redisKey, "0", idempotenceTTL).Result()
		if err != nil {
			c.Next()
			return
		}
		if !ok {
			msg := "The same change was just saved. Wait a moment before sending it again."
			if val, _ := rdb.Get(ctx, redisKey).Result(); val == "0" {
				msg = "The same change is still being saved..."
			}
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"ok":      0,
				"code":    http.StatusConflict,
				"message": msg,
			})
			return
		}

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			rdb.Set(ctx, redisKey, "1", redis.KeepTTL)
		} else {
			rdb.Del(ctx, redisKey)
		}
	}
}

func resolveIdempotenceKey(c *gin.Context) (string, error) {
	if hdr := c.GetHeader(idempotenceHeader); hdr != "" {
		return hdr, nil
	}
	if c.Request.Body == nil {
		return "", errors.New("empty body")
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if len(body) == 0 {
		return "", nil
	}

	h := sha256.New()
	h.Write([]byte(c.Request.Method + "|" + c.Request.URL.String() + "|"))
	if s := CurrentSession(c); s != nil {
		h.Write([]byte(s.ID + "|"))
	} else {
		h.Write([]byte(c.ClientIP() + "|"))
	}
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil)), nil
}
