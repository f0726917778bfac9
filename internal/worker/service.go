package worker

import (
	"context"
	"errors"
	"time"

	"github.com/bistro-next/internal/config"
	"github.com/bistro-next/internal/logger"
	"github.com/bistro-next/internal/queue"

	"github.com/hibiken/asynq"
)

const defaultCleanupInterval = time.Hour

// Service 异步队列服务
type Service struct {
	name            string
	server          *asynq.Server
	mux             *asynq.ServeMux
	consumer        *Consumer
	cleanupInterval time.Duration
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	cleanupInterval := defaultCleanupInterval
	if consumer.Container != nil && consumer.Config != nil && consumer.Config.Order.CleanupIntervalMinutes > 0 {
		cleanupInterval = time.Duration(consumer.Config.Order.CleanupIntervalMinutes) * time.Minute
	}
	return &Service{
		name:            "worker",
		server:          server,
		mux:             mux,
		consumer:        consumer,
		cleanupInterval: cleanupInterval,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.OrderService != nil {
		go s.runOrderCleanupLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runOrderCleanupLoop 周期性把超期终态订单移入历史表
func (s *Service) runOrderCleanupLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.OrderService == nil {
		return
	}
	runOnce := func() {
		archived, err := s.consumer.OrderService.AutoCleanup()
		if err != nil {
			logger.Warnw("worker_order_cleanup_failed", "error", err)
			return
		}
		if archived > 0 {
			logger.Infow("worker_order_cleanup_done", "archived", archived)
		}
	}
	runOnce()

	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
