package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/bookmeta/models"
)

// Search returns a handler for GET and POST /api/search.
//
// GET reads the "query" URL parameter. POST accepts a JSON or form body
// with a "query" field and falls back to the URL parameter.
func Search(finder BookFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SearchRequest
		if c.Request.Method == http.MethodPost && c.Request.ContentLength != 0 {
			if err := c.ShouldBind(&req); err != nil {
				respondError(c, models.NewLookupError(models.ErrCodeInvalidInput, "malformed request body", err))
				return
			}
		}
		if req.Query == "" {
			req.Query = c.Query("query")
		}
		req.Normalize()

		if req.Query == "" {
			respondError(c, models.InvalidInput("missing query parameter"))
			return
		}

		rec, err := finder.Lookup(c.Request.Context(), req.Query)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}
