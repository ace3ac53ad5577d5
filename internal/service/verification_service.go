package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/verihub/verify-engine/internal/domain"
	"github.com/verihub/verify-engine/internal/observability"
	"github.com/verihub/verify-engine/internal/provider"
	"github.com/verihub/verify-engine/internal/ratelimit"
	"github.com/verihub/verify-engine/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const msgNoServicesConfigured = "no verification services configured"

// VerificationService fans verification requests out across the provider
// fleet and persists every individual result.
type VerificationService struct {
	registry      *provider.Registry
	verifications repository.VerificationRepository
	rateLimiter   ratelimit.RateLimiter
	logger        *zap.Logger
	metrics       *observability.Metrics
	now           func() time.Time
}

func NewVerificationService(
	registry *provider.Registry,
	verifications repository.VerificationRepository,
	rateLimiter ratelimit.RateLimiter,
	logger *zap.Logger,
) (*VerificationService, error) {
	if registry == nil {
		return nil, fmt.Errorf("provider registry is required")
	}
	if verifications == nil {
		return nil, fmt.Errorf("verification repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &VerificationService{
		registry:      registry,
		verifications: verifications,
		rateLimiter:   rateLimiter,
		logger:        logger,
		now:           time.Now,
	}, nil
}

func (s *VerificationService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// AvailableProviders returns enabled provider names in registration order.
func (s *VerificationService) AvailableProviders() []domain.Provider {
	return s.registry.EnabledNames()
}

// VerifyWithProvider routes a verification to a single adapter and returns
// its result without an aggregation wrapper.
func (s *VerificationService) VerifyWithProvider(
	ctx context.Context,
	email string,
	name domain.Provider,
) (*domain.VerificationResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}

	verifier, ok := s.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrServiceNotFound, name)
	}

	result := s.callProvider(ctx, verifier, email)
	s.persist(ctx, &result)

	if s.metrics != nil {
		s.metrics.IncVerification("single")
	}
	return &result, nil
}

// VerifyEmail dispatches one concurrent call per enabled adapter, persists
// each result as it arrives, and aggregates the verdicts. The call is a
// join: it returns only after every dispatched adapter has completed or
// failed. With no enabled adapters it returns a result-shaped error without
// touching the store.
func (s *VerificationService) VerifyEmail(ctx context.Context, email string) (*domain.AggregateVerification, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}

	enabled := s.registry.Enabled()
	aggregate := &domain.AggregateVerification{
		Email:            email,
		Results:          make(map[domain.Provider]domain.VerificationResult, len(enabled)),
		VerificationDate: s.now().UTC(),
	}

	if len(enabled) == 0 {
		msg := msgNoServicesConfigured
		aggregate.Error = &msg
		return aggregate, nil
	}

	// One task per enabled adapter, joined below. Tasks write disjoint slice
	// slots, so no further synchronization is needed.
	results := make([]domain.VerificationResult, len(enabled))
	g, groupCtx := errgroup.WithContext(ctx)
	for i, verifier := range enabled {
		g.Go(func() error {
			results[i] = s.dispatch(groupCtx, verifier, email)
			return nil
		})
	}
	_ = g.Wait()

	validCount := 0
	scoreSum := 0.0
	scoreCount := 0
	for _, result := range results {
		aggregate.Results[result.Provider] = result
		if result.IsValid != nil && *result.IsValid {
			validCount++
		}
		if result.Score != nil {
			scoreSum += *result.Score
			scoreCount++
		}
	}
	aggregate.VerifiedBy = len(results)

	// Majority rule: valid iff validCount >= ceil(n/2), counting erroring
	// providers in the denominator. Below the majority the aggregate stays
	// unknown rather than flipping to invalid.
	if validCount > 0 && validCount*2 >= len(enabled) {
		isValid := true
		aggregate.IsValid = &isValid
	}
	if scoreCount > 0 {
		score := scoreSum / float64(scoreCount)
		aggregate.Score = &score
	}

	if s.metrics != nil {
		s.metrics.IncVerification("aggregate")
	}
	return aggregate, nil
}

// History returns all stored results for an address, newest first.
func (s *VerificationService) History(ctx context.Context, email string) ([]domain.VerificationResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	return s.verifications.HistoryByEmail(ctx, email)
}

// dispatch isolates one adapter call: a panic inside an adapter is converted
// into that adapter's error result and never aborts sibling calls.
func (s *VerificationService) dispatch(
	ctx context.Context,
	verifier provider.Verifier,
	email string,
) (result domain.VerificationResult) {
	name := verifier.Name()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("provider call panicked",
				zap.String("provider", name.String()),
				zap.String("email", email),
				zap.Any("panic", r),
			)
			msg := fmt.Sprintf("panic: %v", r)
			result = domain.VerificationResult{
				Email:            email,
				Provider:         name,
				Error:            &msg,
				VerificationDate: s.now().UTC(),
			}
			s.persist(ctx, &result)
		}
	}()

	result = s.callProvider(ctx, verifier, email)
	s.persist(ctx, &result)
	return result
}

func (s *VerificationService) callProvider(
	ctx context.Context,
	verifier provider.Verifier,
	email string,
) domain.VerificationResult {
	name := verifier.Name().String()

	if s.metrics != nil {
		s.metrics.IncProviderInFlight(name)
		defer s.metrics.DecProviderInFlight(name)
	}

	// Throttle only real outbound calls; a limiter outage must not fail the
	// verification itself.
	if s.rateLimiter != nil && verifier.Enabled() {
		if err := s.rateLimiter.Wait(ctx, name); err != nil {
			s.logger.Warn("rate limiter wait failed, proceeding",
				zap.String("provider", name),
				zap.Error(err),
			)
		}
	}

	callStart := s.now()
	result := verifier.Verify(ctx, email)
	if s.metrics != nil {
		s.metrics.ObserveProviderCallDuration(name, s.now().Sub(callStart))
		s.metrics.IncProviderCall(name, outcomeLabel(result))
	}

	return result
}

// persist stores one immutable result. Storage failures are logged and
// swallowed so a persistence problem never makes a successful verification
// appear failed.
func (s *VerificationService) persist(ctx context.Context, result *domain.VerificationResult) {
	if err := result.Validate(); err != nil {
		s.logger.Error("refusing to store invalid verification result", zap.Error(err))
		return
	}

	if err := s.verifications.Create(ctx, result); err != nil {
		if s.metrics != nil {
			s.metrics.IncStoreFailure()
		}
		s.logger.Error("failed to store verification result",
			zap.String("email", result.Email),
			zap.String("provider", result.Provider.String()),
			zap.Error(err),
		)
	}
}

func outcomeLabel(result domain.VerificationResult) string {
	switch {
	case result.Error != nil:
		return "error"
	case result.IsValid == nil:
		return "unknown"
	case *result.IsValid:
		return "valid"
	default:
		return "invalid"
	}
}
