package handler

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/bookmeta/models"
)

// Cover returns a handler for GET /api/cover/:isbn that streams the large
// cover image with its upstream content type.
func Cover(finder BookFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		img, err := finder.Cover(c.Request.Context(), c.Param("isbn"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Cache-Control", "public, max-age=86400")
		c.Data(http.StatusOK, img.ContentType, img.Data)
	}
}

// CoverBase64 returns a handler for GET /api/cover-base64/:isbn.
func CoverBase64(finder BookFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		img, err := finder.Cover(c.Request.Context(), c.Param("isbn"))
		if err != nil {
			respondError(c, err)
			return
		}
		data := base64.StdEncoding.EncodeToString(img.Data)
		c.JSON(http.StatusOK, models.CoverBase64Response{
			ISBN:        img.ISBN,
			ContentType: img.ContentType,
			Data:        data,
			DataURI:     "data:" + img.ContentType + ";base64," + data,
		})
	}
}
