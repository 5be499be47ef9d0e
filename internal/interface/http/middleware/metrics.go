package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cerbrary/cerbrary/pkg/metrics"
)

// Metrics HTTP请求指标中间件
// 按方法+路由模板(非原始URL,避免/books/1、/books/2打散标签)
// 记录请求计数、时延直方图和在途请求数
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		metrics.IncGauge(metrics.HTTPRequestsInProgress)
		defer metrics.DecGauge(metrics.HTTPRequestsInProgress)

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched" // 404等未命中路由的请求归并到一个标签
		}

		metrics.IncCounterVec(metrics.HTTPRequestsTotal, map[string]string{
			"method": c.Request.Method,
			"path":   path,
			"status": strconv.Itoa(c.Writer.Status()),
		})
		metrics.ObserveHistogramVec(metrics.HTTPRequestDuration, map[string]string{
			"method": c.Request.Method,
			"path":   path,
		}, time.Since(start).Seconds())
	}
}
