package provider

import (
	"context"
	"time"

	"github.com/verihub/verify-engine/internal/domain"
)

// Verifier is the outbound email verification port implemented by every
// provider adapter. Verify never returns an error: transport failures,
// non-2xx responses, and malformed payloads are converted into a result
// with a nil IsValid and a populated Error.
type Verifier interface {
	Name() domain.Provider
	Enabled() bool
	Verify(ctx context.Context, email string) domain.VerificationResult
}

// BulkVerifier is implemented by providers exposing a native batch endpoint.
// Callers must treat it as best-effort; it may be no faster than N calls.
type BulkVerifier interface {
	BulkVerify(ctx context.Context, emails []string) []domain.VerificationResult
}

// Config enumerates provider credentials. Adapters receive their credentials
// at construction and never read the process environment.
type Config struct {
	ZeroBounceAPIKey   string
	MailboxLayerAPIKey string
	NeutrinoUserID     string
	NeutrinoAPIKey     string
	SpokeoAPIKey       string
	HunterAPIKey       string
	Timeout            time.Duration
}

// Registry holds verifiers in a fixed order keyed by provider name.
type Registry struct {
	order     []domain.Provider
	verifiers map[domain.Provider]Verifier
}

func NewRegistry(verifiers ...Verifier) *Registry {
	r := &Registry{
		verifiers: make(map[domain.Provider]Verifier, len(verifiers)),
	}
	for _, v := range verifiers {
		if v == nil {
			continue
		}
		name := v.Name()
		if _, exists := r.verifiers[name]; exists {
			continue
		}
		r.order = append(r.order, name)
		r.verifiers[name] = v
	}
	return r
}

// NewRegistryFromConfig builds the full provider fleet. Adapters without
// credentials are still registered; they report Enabled() == false and are
// excluded from aggregate dispatch.
func NewRegistryFromConfig(cfg Config) *Registry {
	client := newClient(cfg.Timeout)
	return NewRegistry(
		NewZeroBounce(cfg.ZeroBounceAPIKey, client),
		NewMailboxLayer(cfg.MailboxLayerAPIKey, client),
		NewNeutrinoAPI(cfg.NeutrinoUserID, cfg.NeutrinoAPIKey, client),
		NewSpokeo(cfg.SpokeoAPIKey, client),
		NewHunter(cfg.HunterAPIKey, client),
	)
}

func (r *Registry) Get(name domain.Provider) (Verifier, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.verifiers[name]
	return v, ok
}

// Enabled returns the verifiers with configured credentials, in
// registration order.
func (r *Registry) Enabled() []Verifier {
	if r == nil {
		return nil
	}
	enabled := make([]Verifier, 0, len(r.order))
	for _, name := range r.order {
		if v := r.verifiers[name]; v.Enabled() {
			enabled = append(enabled, v)
		}
	}
	return enabled
}

// EnabledNames returns the names of enabled providers, in registration order.
func (r *Registry) EnabledNames() []domain.Provider {
	enabled := r.Enabled()
	names := make([]domain.Provider, 0, len(enabled))
	for _, v := range enabled {
		names = append(names, v.Name())
	}
	return names
}

// All returns every registered verifier, in registration order.
func (r *Registry) All() []Verifier {
	if r == nil {
		return nil
	}
	all := make([]Verifier, 0, len(r.order))
	for _, name := range r.order {
		all = append(all, r.verifiers[name])
	}
	return all
}

// BaseURL returns the default API base URL for a provider, used when
// seeding the provider definition table.
func BaseURL(name domain.Provider) string {
	switch name {
	case domain.ProviderZeroBounce:
		return zeroBounceBaseURL
	case domain.ProviderMailboxLayer:
		return mailboxLayerBaseURL
	case domain.ProviderNeutrinoAPI:
		return neutrinoAPIBaseURL
	case domain.ProviderSpokeo:
		return spokeoBaseURL
	case domain.ProviderHunter:
		return hunterBaseURL
	}
	return ""
}
