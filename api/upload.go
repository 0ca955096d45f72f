package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"merchant-kyc-portal/upload"
)

// upload stores one multipart "file" and returns its URL.
func (s *Server) upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "multipart field \"file\" is required"})
		return
	}
	if s.MaxUploadBytes > 0 && header.Size > s.MaxUploadBytes {
		s.fail(c, upload.ErrTooLarge)
		return
	}

	f, err := header.Open()
	if err != nil {
		s.fail(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		s.fail(c, err)
		return
	}

	url, err := s.Uploader.Upload(c.Request.Context(), upload.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
