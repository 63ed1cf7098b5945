package httpapi

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"rollbook/internal/cloudinary"
)

// uploadImage stores a profile image on the CDN and returns the URL
// and public id for the caller to attach to a user or student.
// Accepts a multipart "file" field or a JSON body with a base64 data
// URL.
func (s *Server) uploadImage(c *gin.Context) {
	if s.deps.CDN == nil {
		fail(c, http.StatusServiceUnavailable, "image storage not configured")
		return
	}

	var result *cloudinary.UploadResult
	var err error

	if strings.Contains(c.ContentType(), "multipart/form-data") {
		file, header, ferr := c.Request.FormFile("file")
		if ferr != nil {
			fail(c, http.StatusBadRequest, "file field required")
			return
		}
		defer file.Close()
		data, rerr := io.ReadAll(file)
		if rerr != nil {
			s.failErr(c, rerr)
			return
		}
		result, err = s.deps.CDN.UploadBytes(data, header.Filename)
	} else {
		var body struct {
			Data string `json:"data" binding:"required"`
		}
		if berr := c.ShouldBindJSON(&body); berr != nil {
			failBinding(c, berr)
			return
		}
		result, err = s.deps.CDN.UploadBase64(body.Data)
	}

	if err != nil {
		s.deps.Log.Error().Err(err).Msg("image upload failed")
		fail(c, http.StatusBadGateway, "image upload failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":      result.SecureURL,
		"publicId": result.PublicID,
		"width":    result.Width,
		"height":   result.Height,
		"bytes":    result.Bytes,
	})
}
