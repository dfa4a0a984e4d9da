package cache

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"chatonline-world/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CacheHeader reports whether a response was served from the cache
const CacheHeader = "X-Cache"

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Key identifies a request by path and canonical (sorted) query string
func Key(r *http.Request) string {
	return r.Method + " " + r.URL.Path + "?" + r.URL.Query().Encode()
}

type recordingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Middleware serves repeated requests from store for ttl.
// Only successful (200) responses written by the handler are stored.
func Middleware(store Store, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := Key(c.Request)

		raw, found, err := store.Get(ctx, key)
		if err != nil {
			logger.FromGin(c).Warn("Response cache read failed", "key", key, "error", err.Error())
		}
		if found {
			var cached cachedResponse
			if err := json.Unmarshal(raw, &cached); err == nil {
				c.Header(CacheHeader, "HIT")
				c.Data(cached.Status, cached.ContentType, cached.Body)
				c.Abort()
				return
			}
		}

		c.Header(CacheHeader, "MISS")
		w := &recordingWriter{ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		if !w.Written() || w.Status() != http.StatusOK || len(c.Errors) > 0 {
			return
		}

		payload, err := json.Marshal(cachedResponse{
			Status:      w.Status(),
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.body.Bytes(),
		})
		if err != nil {
			return
		}
		if err := store.Set(ctx, key, payload, ttl); err != nil {
			logger.FromGin(c).Warn("Response cache write failed", "key", key, "error", err.Error())
		}
	}
}
