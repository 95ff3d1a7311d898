package webserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/riddlerbot/riddler/src/riddler/data"
)

// StatusSource exposes the bot's runtime counters.
type StatusSource interface {
	Uptime() time.Duration
	LastPoll() time.Time
	ProcessedCount() int64
	RepliedCount() int64
	SkippedCount() int64
	TrustedSize() int
}

func New(db *gorm.DB, status StatusSource) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery(), cors.Default())
	attachRoutes(g, db, status)
	return g
}

func attachRoutes(g *gin.Engine, db *gorm.DB, status StatusSource) {
	g.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	g.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"uptime":       status.Uptime().Round(time.Second).String(),
			"last_poll":    status.LastPoll(),
			"processed":    status.ProcessedCount(),
			"replied":      status.RepliedCount(),
			"skipped":      status.SkippedCount(),
			"trusted_size": status.TrustedSize(),
			"timestamp":    time.Now().UTC(),
		})
	})

	g.GET("/analyses", func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		rows, err := data.RecentAnalyses(db, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"analyses": rows})
	})
}
