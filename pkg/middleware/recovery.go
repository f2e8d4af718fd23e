package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agrolens/claimverify/pkg/common"
	"github.com/agrolens/claimverify/pkg/logger"
)

// Recovery recovers from handler panics and converts them into a
// structured internal error response.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				)
				common.ErrorResponse(c, common.NewInternalError(
					"internal error",
					fmt.Sprintf("%v", r),
				))
				c.Abort()
			}
		}()
		c.Next()
	}
}
