package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"hotel-reservation/utils"
)

// Metrics counts handled requests by method, route template and status code.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		utils.HTTPRequests.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}
