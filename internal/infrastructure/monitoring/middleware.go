package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		c.Next()

		// Route template keeps label cardinality bounded
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		duration := time.Since(start)
		status := strconv.Itoa(c.Writer.Status())
		respSize := int64(c.Writer.Size())
		if respSize < 0 {
			respSize = 0
		}

		metrics.RecordHTTPRequest(method, path, status, duration, respSize)
	}
}

// Timer measures one render phase
type Timer struct {
	start   time.Time
	metrics *Metrics
	phase   string
}

// NewTimer starts timing phase
func NewTimer(metrics *Metrics, phase string) *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: metrics,
		phase:   phase,
	}
}

// Stop records the elapsed time and returns it
func (t *Timer) Stop() time.Duration {
	duration := time.Since(t.start)
	t.metrics.RecordPhase(t.phase, duration)
	return duration
}
