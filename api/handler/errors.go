package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/bookmeta/models"
)

// BookFinder is the lookup backend the handlers serve.
type BookFinder interface {
	Lookup(ctx context.Context, query string) (*models.BookRecord, error)
	Cover(ctx context.Context, isbn string) (*models.CoverImage, error)
	FetchMode() string
}

// respondError maps a LookupError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error) {
	var le *models.LookupError
	if !errors.As(err, &le) {
		le = models.NewLookupError(models.ErrCodeInternal, err.Error(), err)
	}
	_ = c.Error(err)
	c.JSON(mapErrorToStatus(le), le.ToResponse())
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.LookupError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeNotFound:
		return http.StatusNotFound // 404
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeFetch:
		return http.StatusBadGateway // 502
	default:
		return http.StatusInternalServerError // 500
	}
}
