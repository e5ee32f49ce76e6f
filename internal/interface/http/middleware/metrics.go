package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/biblioteka/backend/pkg/metrics"
)

// Metrics 指标收集中间件
// path标签使用路由模板（/api/v1/books/:id）而非实际路径，控制基数
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.IncGauge(metrics.HTTPRequestsInProgress)

		c.Next()

		metrics.DecGauge(metrics.HTTPRequestsInProgress)

		path := c.FullPath()
		if path == "" {
			path = "unknown" // 未匹配到路由（404）
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		metrics.IncCounterVec(metrics.HTTPRequestsTotal, map[string]string{
			"method": method,
			"path":   path,
			"status": status,
		})
		metrics.ObserveHistogramVec(metrics.HTTPRequestDuration, map[string]string{
			"method": method,
			"path":   path,
		}, time.Since(start).Seconds())
	}
}
