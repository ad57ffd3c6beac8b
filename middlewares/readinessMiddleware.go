package middlewares

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var ready atomic.Bool

// MarkReady is flipped once the database and redis connections are up. The
// server starts listening before the backends connect, so early requests get
// a 503 instead of a nil-pointer panic.
func MarkReady() {
	ready.Store(true)
}

func IsReady() bool {
	return ready.Load()
}

func ReadinessMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ready.Load() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service starting"})
			c.Abort()
			return
		}
		c.Next()
	}
}
