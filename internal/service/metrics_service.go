package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"spl-token-indexer-sol/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService 暴露 /metrics，挂在 ServiceGroup 中启动和停止
type MetricsService struct {
	server *http.Server
}

func NewMetricsService(addr string, gatherer prometheus.Gatherer) *MetricsService {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &MetricsService{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func (s *MetricsService) Start() {
	logger.Infof("[MetricsService] listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Errorf("[MetricsService] serve failed: %v", err)
	}
}

func (s *MetricsService) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = s.server.Shutdown(ctx)
}

func (s *MetricsService) Handler() http.Handler {
	return s.server.Handler
}
