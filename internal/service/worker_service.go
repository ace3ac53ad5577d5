package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/verihub/verify-engine/internal/domain"
	"github.com/verihub/verify-engine/internal/observability"
	"github.com/verihub/verify-engine/internal/queue"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const minWorkerConcurrency = 1

// Verifications is the slice of VerificationService the worker needs.
type Verifications interface {
	VerifyEmail(ctx context.Context, email string) (*domain.AggregateVerification, error)
	VerifyWithProvider(ctx context.Context, email string, name domain.Provider) (*domain.VerificationResult, error)
}

// WorkerService drains the async verification queue, running the same
// aggregate path as the synchronous API.
type WorkerService struct {
	verifications Verifications
	consumer      queue.Consumer
	logger        *zap.Logger
	metrics       *observability.Metrics
	concurrency   int
}

func NewWorkerService(
	verifications Verifications,
	consumer queue.Consumer,
	concurrency int,
	logger *zap.Logger,
) (*WorkerService, error) {
	if verifications == nil {
		return nil, fmt.Errorf("verification service is required")
	}
	if consumer == nil {
		return nil, fmt.Errorf("queue consumer is required")
	}
	if concurrency < minWorkerConcurrency {
		concurrency = minWorkerConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &WorkerService{
		verifications: verifications,
		consumer:      consumer,
		logger:        logger,
		concurrency:   concurrency,
	}, nil
}

func (s *WorkerService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// Start consumes the verify queue until context cancellation.
func (s *WorkerService) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	g, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < s.concurrency; i++ {
		workerID := i + 1

		g.Go(func() error {
			s.logger.Info("worker started",
				zap.Int("workerId", workerID),
				zap.String("queue", queue.VerifyQueue),
			)

			err := s.consumer.Consume(groupCtx, queue.VerifyQueue, s.processMessage)
			if err != nil {
				s.logger.Error("worker stopped with error",
					zap.Int("workerId", workerID),
					zap.Error(err),
				)
				return err
			}

			s.logger.Info("worker stopped", zap.Int("workerId", workerID))
			return nil
		})
	}

	return g.Wait()
}

func (s *WorkerService) processMessage(ctx context.Context, msg queue.VerificationMessage) error {
	logger := observability.WithContextLogger(s.logger, ctx).With(
		zap.String("email", msg.Email),
	)

	var err error
	if msg.Provider != "" {
		_, err = s.verifications.VerifyWithProvider(ctx, msg.Email, msg.Provider)
	} else {
		_, err = s.verifications.VerifyEmail(ctx, msg.Email)
	}

	if err != nil {
		// Requeue only on shutdown; validation and unknown-provider errors
		// are permanent and would loop forever.
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return err
		}
		logger.Warn("dropping unprocessable verification message", zap.Error(err))
		return nil
	}

	if s.metrics != nil {
		s.metrics.IncVerification("async")
	}

	logger.Info("async verification completed")
	return nil
}
