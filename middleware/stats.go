package middleware

import (
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seo-optimizer/reportview/stats"
)

// Traffic tracks unique visitors and saves the statistics in the background
// every saveEvery requests.
func Traffic(t *stats.Traffic, saveEvery int, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	var (
		count  atomic.Int64
		saving atomic.Bool
	)

	return func(c *gin.Context) {
		t.TrackVisitor(c.ClientIP())
		c.Next()

		if saveEvery <= 0 || count.Add(1)%int64(saveEvery) != 0 {
			return
		}
		if !saving.CompareAndSwap(false, true) {
			return
		}
		go func() {
			defer saving.Store(false)
			if err := t.Save(); err != nil {
				logger.Warn("failed to save traffic statistics", zap.Error(err))
			}
		}()
	}
}
