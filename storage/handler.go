package storage

import (
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

type FilesModule struct {
	store ObjectStore
}

func NewFilesModule(store ObjectStore) *FilesModule {
	return &FilesModule{store: store}
}

func (m *FilesModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/files/:id", m.serveFile)
}

func (m *FilesModule) serveFile(c *gin.Context) {
	f, err := m.store.Open(c.Param("id"))
	if errors.Is(err, ErrFileNotFound) {
		c.Status(http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Error opening file %s: %v", c.Param("id"), err)
		c.Status(http.StatusInternalServerError)
		return
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", mtype.String())
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeContent(c.Writer, c.Request, c.Param("id"), time.Time{}, f)
}
