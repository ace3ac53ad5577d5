package provider

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/verihub/verify-engine/internal/domain"
)

const spokeoBaseURL = "https://www.spokeo.com/api"

// Spokeo verifies addresses through the Spokeo email search API. The
// provider reports presence in its people index rather than deliverability.
type Spokeo struct {
	client  *resty.Client
	apiKey  string
	baseURL string
}

type spokeoResponse struct {
	Found bool `json:"found"`
}

func NewSpokeo(apiKey string, client *resty.Client) *Spokeo {
	return &Spokeo{
		client:  prepareClient(client),
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: spokeoBaseURL,
	}
}

func (p *Spokeo) Name() domain.Provider { return domain.ProviderSpokeo }

func (p *Spokeo) Enabled() bool { return p != nil && p.apiKey != "" }

func (p *Spokeo) Verify(ctx context.Context, email string) domain.VerificationResult {
	if !p.Enabled() {
		return disabledResult(email, p.Name())
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+p.apiKey).
		SetQueryParam("email", email).
		Get(p.baseURL + "/search/email")
	if err != nil {
		return errorResult(email, p.Name(), transportFailureMessage(err))
	}
	if !isSuccess(resp) {
		return errorResult(email, p.Name(), httpFailureMessage(resp.StatusCode(), resp.String()))
	}

	var payload spokeoResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return errorResult(email, p.Name(), decodeFailureMessage(err))
	}

	result := newResult(email, p.Name())

	isValid := payload.Found
	score := 0.0
	if isValid {
		score = 1.0
	}

	result.IsValid = &isValid
	result.Score = &score
	result.Details = json.RawMessage(append([]byte(nil), resp.Body()...))
	return result
}
