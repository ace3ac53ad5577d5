package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/verihub/verify-engine/internal/domain"
	"github.com/verihub/verify-engine/internal/provider"
)

func TestBulkVerifyPreservesOrderAndDuplicates(t *testing.T) {
	t.Parallel()

	repo := &fakeVerificationRepo{}
	registry := provider.NewRegistry(validVerifier(domain.ProviderZeroBounce, 1.0))

	svc, err := NewVerificationService(registry, repo, nil, nil)
	if err != nil {
		t.Fatalf("NewVerificationService() error = %v", err)
	}

	emails := []string{"a@example.com", "b@example.com", "a@example.com"}
	aggregates, err := svc.BulkVerify(context.Background(), emails)
	if err != nil {
		t.Fatalf("BulkVerify() error = %v", err)
	}

	if len(aggregates) != 3 {
		t.Fatalf("aggregates len = %d, want 3", len(aggregates))
	}
	for i, email := range emails {
		if aggregates[i].Email != email {
			t.Fatalf("aggregates[%d].Email = %q, want %q", i, aggregates[i].Email, email)
		}
	}

	// Duplicate addresses are verified independently, one stored row each.
	if repo.createCount() != 3 {
		t.Fatalf("stored results = %d, want 3", repo.createCount())
	}
}

func TestBulkVerifyInputValidation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		emails []string
	}{
		{name: "empty input", emails: nil},
		{name: "blank entry", emails: []string{"a@example.com", "   ", "c@example.com"}},
		{name: "oversize batch", emails: make([]string, maxBulkSize+1)},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc, err := NewVerificationService(
				provider.NewRegistry(validVerifier(domain.ProviderZeroBounce, 1.0)),
				&fakeVerificationRepo{},
				nil,
				nil,
			)
			if err != nil {
				t.Fatalf("NewVerificationService() error = %v", err)
			}

			_, err = svc.BulkVerify(context.Background(), tc.emails)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("BulkVerify() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestBulkVerifyBlankEntryNamesIndex(t *testing.T) {
	t.Parallel()

	svc, err := NewVerificationService(
		provider.NewRegistry(validVerifier(domain.ProviderZeroBounce, 1.0)),
		&fakeVerificationRepo{},
		nil,
		nil,
	)
	if err != nil {
		t.Fatalf("NewVerificationService() error = %v", err)
	}

	_, err = svc.BulkVerify(context.Background(), []string{"a@example.com", ""})
	if err == nil || !strings.Contains(err.Error(), "index 1") {
		t.Fatalf("BulkVerify() error = %v, want index in message", err)
	}
}

func TestBulkVerifyWithProviderUsesNativeBatch(t *testing.T) {
	t.Parallel()

	repo := &fakeVerificationRepo{}
	batchCalls := 0
	verifier := &fakeBulkVerifier{
		fakeVerifier: fakeVerifier{
			name:    domain.ProviderZeroBounce,
			enabled: true,
			verifyFn: func(ctx context.Context, email string) domain.VerificationResult {
				t.Fatal("single Verify should not be called when a batch endpoint exists")
				return domain.VerificationResult{}
			},
		},
		bulkFn: func(ctx context.Context, emails []string) []domain.VerificationResult {
			batchCalls++
			results := make([]domain.VerificationResult, 0, len(emails))
			for _, email := range emails {
				isValid := true
				results = append(results, domain.VerificationResult{
					Email:    email,
					Provider: domain.ProviderZeroBounce,
					IsValid:  &isValid,
				})
			}
			return results
		},
	}

	svc, err := NewVerificationService(provider.NewRegistry(verifier), repo, nil, nil)
	if err != nil {
		t.Fatalf("NewVerificationService() error = %v", err)
	}

	results, err := svc.BulkVerifyWithProvider(
		context.Background(),
		[]string{"a@example.com", "b@example.com"},
		domain.ProviderZeroBounce,
	)
	if err != nil {
		t.Fatalf("BulkVerifyWithProvider() error = %v", err)
	}

	if batchCalls != 1 {
		t.Fatalf("batch calls = %d, want 1", batchCalls)
	}
	if len(results) != 2 {
		t.Fatalf("results len = %d, want 2", len(results))
	}
	if repo.createCount() != 2 {
		t.Fatalf("stored results = %d, want 2", repo.createCount())
	}
}

func TestBulkVerifyWithProviderFallsBackToSequential(t *testing.T) {
	t.Parallel()

	repo := &fakeVerificationRepo{}
	registry := provider.NewRegistry(validVerifier(domain.ProviderHunter, 0.9))

	svc, err := NewVerificationService(registry, repo, nil, nil)
	if err != nil {
		t.Fatalf("NewVerificationService() error = %v", err)
	}

	emails := []string{"a@example.com", "b@example.com", "c@example.com"}
	results, err := svc.BulkVerifyWithProvider(context.Background(), emails, domain.ProviderHunter)
	if err != nil {
		t.Fatalf("BulkVerifyWithProvider() error = %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("results len = %d, want 3", len(results))
	}
	for i, email := range emails {
		if results[i].Email != email {
			t.Fatalf("results[%d].Email = %q, want %q", i, results[i].Email, email)
		}
	}
	if repo.createCount() != 3 {
		t.Fatalf("stored results = %d, want 3", repo.createCount())
	}
}

func TestBulkVerifyWithProviderUnknownProvider(t *testing.T) {
	t.Parallel()

	svc, err := NewVerificationService(
		provider.NewRegistry(validVerifier(domain.ProviderZeroBounce, 1.0)),
		&fakeVerificationRepo{},
		nil,
		nil,
	)
	if err != nil {
		t.Fatalf("NewVerificationService() error = %v", err)
	}

	_, err = svc.BulkVerifyWithProvider(context.Background(), []string{"a@example.com"}, domain.ProviderSpokeo)
	if !errors.Is(err, domain.ErrServiceNotFound) {
		t.Fatalf("BulkVerifyWithProvider() error = %v, want ErrServiceNotFound", err)
	}
}

type fakeBulkVerifier struct {
	fakeVerifier
	bulkFn func(ctx context.Context, emails []string) []domain.VerificationResult
}

func (f *fakeBulkVerifier) BulkVerify(ctx context.Context, emails []string) []domain.VerificationResult {
	if f.bulkFn != nil {
		return f.bulkFn(ctx, emails)
	}
	return nil
}
