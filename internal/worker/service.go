package worker

import (
	"context"
	"errors"
	"time"

	"github.com/noormarket/internal/config"
	"github.com/noormarket/internal/logger"
	"github.com/noormarket/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	checkoutExpireSweepInterval = time.Minute
	checkoutExpireSweepLimit    = 100
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
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
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
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
	if s.consumer != nil && s.consumer.CheckoutService != nil {
		go s.runCheckoutExpireSweep(ctx)
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

// runCheckoutExpireSweep 兜底清理到期未支付的结算会话。
// 延迟任务是主要路径，扫描兜底覆盖队列重启丢任务的场景。
func (s *Service) runCheckoutExpireSweep(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.CheckoutService == nil {
		return
	}
	runOnce := func() {
		expired, err := s.consumer.CheckoutService.ExpireSessions(ctx, time.Now(), checkoutExpireSweepLimit)
		if err != nil {
			logger.Warnw("worker_checkout_expire_sweep_failed", "error", err)
			return
		}
		if expired > 0 {
			logger.Infow("worker_checkout_expire_sweep", "expired", expired)
		}
	}
	runOnce()

	ticker := time.NewTicker(checkoutExpireSweepInterval)
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
