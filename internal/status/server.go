// Package status serves the tiny ops surface: liveness, engine stats, and
// prometheus metrics. It is not a dashboard; anything presentational lives
// outside this process.
package status

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"peekr-automation/internal/replies"
)

// StatsSource exposes the monitor's counters.
type StatsSource interface {
	Snapshot() replies.Snapshot
}

type Server struct {
	srv *http.Server
	log *logrus.Entry
}

func NewServer(port string, stats StatsSource, log *logrus.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, stats.Snapshot())
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &Server{
		srv: &http.Server{Addr: ":" + port, Handler: router},
		log: log.WithField("component", "status"),
	}
}

// Start serves in the background; a listen failure is logged, not fatal,
// because the ops surface is optional.
func (s *Server) Start() {
	go func() {
		s.log.Infof("status server listening on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.WithError(err).Error("status server failed")
		}
	}()
}

func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.srv.Shutdown(ctx)
}
