package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/verihub/verify-engine/internal/domain"
	"github.com/verihub/verify-engine/internal/provider"
)

const maxBulkSize = 1000

// BulkVerify runs an aggregate verification per address, strictly
// sequential and order-preserving. Repeated addresses are verified and
// stored independently.
func (s *VerificationService) BulkVerify(ctx context.Context, emails []string) ([]domain.AggregateVerification, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := validateBulkInput(emails); err != nil {
		return nil, err
	}

	aggregates := make([]domain.AggregateVerification, 0, len(emails))
	for _, email := range emails {
		aggregate, err := s.VerifyEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		aggregates = append(aggregates, *aggregate)
	}

	if s.metrics != nil {
		s.metrics.IncVerification("bulk")
	}
	return aggregates, nil
}

// BulkVerifyWithProvider verifies a batch through a single adapter. The
// adapter's native batch endpoint is used when it has one; otherwise the
// addresses are verified sequentially. Output order matches input order
// either way.
func (s *VerificationService) BulkVerifyWithProvider(
	ctx context.Context,
	emails []string,
	name domain.Provider,
) ([]domain.VerificationResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := validateBulkInput(emails); err != nil {
		return nil, err
	}

	verifier, ok := s.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrServiceNotFound, name)
	}

	if bulkVerifier, ok := verifier.(provider.BulkVerifier); ok && verifier.Enabled() {
		results := bulkVerifier.BulkVerify(ctx, emails)
		for i := range results {
			s.persist(ctx, &results[i])
		}
		if s.metrics != nil {
			s.metrics.IncVerification("bulk")
		}
		return results, nil
	}

	results := make([]domain.VerificationResult, 0, len(emails))
	for _, email := range emails {
		result, err := s.VerifyWithProvider(ctx, email, name)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}

	if s.metrics != nil {
		s.metrics.IncVerification("bulk")
	}
	return results, nil
}

func validateBulkInput(emails []string) error {
	if len(emails) == 0 {
		return fmt.Errorf("%w: at least one email is required", domain.ErrValidation)
	}
	if len(emails) > maxBulkSize {
		return fmt.Errorf("%w: bulk size exceeds %d", domain.ErrValidation, maxBulkSize)
	}
	for i, email := range emails {
		if strings.TrimSpace(email) == "" {
			return fmt.Errorf("%w: email at index %d is empty", domain.ErrValidation, i)
		}
	}
	return nil
}
