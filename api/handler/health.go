package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/bookmeta/models"
)

// ServiceName and Version identify the service in / and /health.
const (
	ServiceName = "bookmeta"
	Version     = "0.1.0"
)

// PoolStatsFunc reports shared browser pool utilisation. Nil when no
// shared browser is running.
type PoolStatsFunc func() models.PoolStats

// Health returns a handler for GET /health. It always answers 200.
func Health(finder BookFinder, stats PoolStatsFunc, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := models.HealthResponse{
			Status:    "healthy",
			Service:   ServiceName,
			Uptime:    time.Since(startTime).Round(time.Second).String(),
			FetchMode: finder.FetchMode(),
			Version:   Version,
		}
		if stats != nil {
			s := stats()
			resp.PoolStats = &s
		}
		c.JSON(http.StatusOK, resp)
	}
}

// Home returns a handler for GET / describing the service.
func Home(finder BookFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.ServiceInfo{
			Service: ServiceName,
			Version: Version,
			Method:  finder.FetchMode(),
			Endpoints: map[string]string{
				"search":       "GET|POST /api/search?query=<title or isbn>",
				"cover":        "GET /api/cover/<isbn>",
				"cover_base64": "GET /api/cover-base64/<isbn>",
				"health":       "GET /health",
			},
		})
	}
}
