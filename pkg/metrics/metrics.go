package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	driveRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "forum_geni",
		Name:      "drive_requests_total",
		Help:      "Drive API requests by operation and outcome.",
	}, []string{"operation", "status"})

	cacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "forum_geni",
		Name:      "cache_requests_total",
		Help:      "Cache lookups by key and result.",
	}, []string{"key", "result"})

	galleryBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "forum_geni",
		Name:      "gallery_build_duration_seconds",
		Help:      "Time spent walking the Drive folder tree.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "forum_geni",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "code"})
)

// ObserveDriveRequest counts one Drive API call
func ObserveDriveRequest(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	driveRequests.WithLabelValues(operation, status).Inc()
}

// ObserveCache counts one cache lookup
func ObserveCache(key string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheRequests.WithLabelValues(key, result).Inc()
}

// ObserveBuild records the duration of a full gallery walk
func ObserveBuild(started time.Time) {
	galleryBuildDuration.Observe(time.Since(started).Seconds())
}

// Middleware counts HTTP requests per matched route
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}
