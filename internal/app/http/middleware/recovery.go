package middleware

import (
	"fmt"

	"gallery-api/internal/api/response"
	"gallery-api/internal/apperr"

	"github.com/gin-gonic/gin"
)

// Recovery turns a panic into the 500 envelope. The cause is logged by response.Error.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		response.Error(c, apperr.Internal(fmt.Errorf("panic: %v", recovered)))
	})
}
