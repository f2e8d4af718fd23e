package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthResponse is the liveness probe payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// HealthCheck returns a liveness handler. The verification pipeline has
// no stateful dependencies to probe; reachability is the whole check.
func HealthCheck(serviceName, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:  "healthy",
			Service: serviceName,
			Version: version,
		})
	}
}
