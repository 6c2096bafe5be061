package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireDataset answers 503 for every request behind it while ready
// reports an error, so no partial dashboard is ever served.
func RequireDataset(ready func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ready(c.Request.Context()); err != nil {
			if log := GetLogger(c); log != nil {
				log.Error("Dataset unavailable", err, map[string]interface{}{
					"path": c.Request.URL.Path,
				})
			}
			abortWithError(c, http.StatusServiceUnavailable, "DATASET_UNAVAILABLE", "The dataset could not be loaded")
			return
		}
		c.Next()
	}
}
