package cache

import (
	"bytes"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"prolific/auth"
)

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Middleware serves and fills the cache for routes with a :slug param.
// Signed-in visitors bypass it since their navbar differs.
func (s *Store) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		if c.Request.Method != http.MethodGet || slug == "" || auth.SessionUserID(c) != "" {
			c.Next()
			return
		}

		if cached, found := s.Read(slug); found {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "text/html; charset=utf-8", cached)
			c.Abort()
			return
		}

		gen := s.generation(slug)
		c.Header("X-Cache", "MISS")
		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           bytes.NewBuffer(nil),
		}
		c.Writer = writer

		c.Next()

		if c.Writer.Status() == http.StatusOK &&
			strings.HasPrefix(c.Writer.Header().Get("Content-Type"), "text/html") {
			stored, err := s.writeIfCurrent(slug, gen, writer.body.Bytes())
			if err != nil {
				log.Printf("Error writing cache for %s: %v", slug, err)
			} else if !stored {
				log.Printf("Skipping cache for %s: cleared during render", slug)
			}
		}
	}
}
