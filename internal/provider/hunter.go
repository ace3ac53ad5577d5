package provider

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/verihub/verify-engine/internal/domain"
)

const hunterBaseURL = "https://api.hunter.io/v2"

// Hunter verifies addresses through the Hunter.io email-verifier API.
type Hunter struct {
	client  *resty.Client
	apiKey  string
	baseURL string
}

type hunterEnvelope struct {
	Data json.RawMessage `json:"data"`
}

type hunterData struct {
	Status string  `json:"status"`
	Score  float64 `json:"score"`
}

func NewHunter(apiKey string, client *resty.Client) *Hunter {
	return &Hunter{
		client:  prepareClient(client),
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: hunterBaseURL,
	}
}

func (p *Hunter) Name() domain.Provider { return domain.ProviderHunter }

func (p *Hunter) Enabled() bool { return p != nil && p.apiKey != "" }

func (p *Hunter) Verify(ctx context.Context, email string) domain.VerificationResult {
	if !p.Enabled() {
		return disabledResult(email, p.Name())
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"email":   email,
			"api_key": p.apiKey,
		}).
		Get(p.baseURL + "/email-verifier")
	if err != nil {
		return errorResult(email, p.Name(), transportFailureMessage(err))
	}
	if !isSuccess(resp) {
		return errorResult(email, p.Name(), httpFailureMessage(resp.StatusCode(), resp.String()))
	}

	var envelope hunterEnvelope
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return errorResult(email, p.Name(), decodeFailureMessage(err))
	}
	var data hunterData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return errorResult(email, p.Name(), decodeFailureMessage(err))
	}

	result := newResult(email, p.Name())

	isValid := data.Status == "valid" || data.Status == "webmail"
	// Hunter scores 0-100; normalized into [0,1].
	score := clampScore(data.Score / 100)

	result.IsValid = &isValid
	result.Score = &score
	result.Details = json.RawMessage(append([]byte(nil), envelope.Data...))
	return result
}
