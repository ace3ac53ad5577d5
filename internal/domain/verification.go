package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Provider identifies one external email verification service.
type Provider string

const (
	ProviderZeroBounce   Provider = "zerobounce"
	ProviderMailboxLayer Provider = "mailboxlayer"
	ProviderNeutrinoAPI  Provider = "neutrinoapi"
	ProviderSpokeo       Provider = "spokeo"
	ProviderHunter       Provider = "hunter"
)

func (p Provider) String() string { return string(p) }

func (p Provider) IsValid() bool {
	switch p {
	case ProviderZeroBounce, ProviderMailboxLayer, ProviderNeutrinoAPI, ProviderSpokeo, ProviderHunter:
		return true
	}
	return false
}

func ParseProviderFromString(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: invalid provider %q", ErrValidation, s)
	}
	return p, nil
}

// Providers returns all known providers in registration order.
func Providers() []Provider {
	return []Provider{
		ProviderZeroBounce,
		ProviderMailboxLayer,
		ProviderNeutrinoAPI,
		ProviderSpokeo,
		ProviderHunter,
	}
}

// VerificationResult is the immutable outcome of one provider call for one
// address. IsValid is tri-state: nil means the provider produced no
// definitive signal, which is distinct from a confirmed-invalid false.
type VerificationResult struct {
	ID               string
	Email            string
	Provider         Provider
	IsValid          *bool
	Score            *float64
	Details          json.RawMessage
	Error            *string
	VerificationDate time.Time
}

func (r *VerificationResult) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: verification result is required", ErrValidation)
	}
	if strings.TrimSpace(r.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if !r.Provider.IsValid() {
		return fmt.Errorf("%w: invalid provider %q", ErrValidation, r.Provider)
	}
	if r.Score != nil && (*r.Score < 0 || *r.Score > 1) {
		return fmt.Errorf("%w: score %v out of [0,1]", ErrValidation, *r.Score)
	}
	return nil
}

// AggregateVerification is the provider-spanning verdict for one address.
// It is computed fresh per request and never persisted.
type AggregateVerification struct {
	Email            string
	IsValid          *bool
	Score            *float64
	Results          map[Provider]VerificationResult
	VerifiedBy       int
	Error            *string
	VerificationDate time.Time
}
