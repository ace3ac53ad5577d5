package provider

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/verihub/verify-engine/internal/domain"
)

const neutrinoAPIBaseURL = "https://neutrinoapi.net"

// NeutrinoAPI verifies addresses through the NeutrinoAPI email-validate
// endpoint. It is the only adapter requiring a user id alongside the key.
type NeutrinoAPI struct {
	client  *resty.Client
	userID  string
	apiKey  string
	baseURL string
}

type neutrinoAPIRequest struct {
	Email string `json:"email"`
}

type neutrinoAPIResponse struct {
	Valid        bool  `json:"valid"`
	SyntaxValid  bool  `json:"syntax.valid"`
	Disposable   *bool `json:"disposable"`
	DomainExists bool  `json:"domain.exists"`
	DomainHasMX  bool  `json:"domain.has-mx"`
	IsFreemail   *bool `json:"is-freemail"`
}

func NewNeutrinoAPI(userID string, apiKey string, client *resty.Client) *NeutrinoAPI {
	return &NeutrinoAPI{
		client:  prepareClient(client),
		userID:  strings.TrimSpace(userID),
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: neutrinoAPIBaseURL,
	}
}

func (p *NeutrinoAPI) Name() domain.Provider { return domain.ProviderNeutrinoAPI }

func (p *NeutrinoAPI) Enabled() bool { return p != nil && p.userID != "" && p.apiKey != "" }

func (p *NeutrinoAPI) Verify(ctx context.Context, email string) domain.VerificationResult {
	if !p.Enabled() {
		return disabledResult(email, p.Name())
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("User-ID", p.userID).
		SetHeader("API-Key", p.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(neutrinoAPIRequest{Email: email}).
		Post(p.baseURL + "/email-validate")
	if err != nil {
		return errorResult(email, p.Name(), transportFailureMessage(err))
	}
	if !isSuccess(resp) {
		return errorResult(email, p.Name(), httpFailureMessage(resp.StatusCode(), resp.String()))
	}

	var payload neutrinoAPIResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return errorResult(email, p.Name(), decodeFailureMessage(err))
	}

	result := newResult(email, p.Name())

	isValid := payload.Valid

	// Fractional score: passed checks over six considered checks. A missing
	// disposable flag counts against the score; a missing freemail flag
	// does not.
	passed := 0
	if payload.Valid {
		passed++
	}
	if payload.SyntaxValid {
		passed++
	}
	if payload.Disposable != nil && !*payload.Disposable {
		passed++
	}
	if payload.DomainExists {
		passed++
	}
	if payload.DomainHasMX {
		passed++
	}
	if payload.IsFreemail == nil || !*payload.IsFreemail {
		passed++
	}
	score := clampScore(float64(passed) / 6)

	result.IsValid = &isValid
	result.Score = &score
	result.Details = json.RawMessage(append([]byte(nil), resp.Body()...))
	return result
}
