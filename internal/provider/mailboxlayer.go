package provider

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/verihub/verify-engine/internal/domain"
)

const mailboxLayerBaseURL = "https://api.mailboxlayer.com"

// MailboxLayer verifies addresses through the MailboxLayer check API.
type MailboxLayer struct {
	client  *resty.Client
	apiKey  string
	baseURL string
}

type mailboxLayerResponse struct {
	FormatValid bool  `json:"format_valid"`
	MXFound     bool  `json:"mx_found"`
	SMTPCheck   bool  `json:"smtp_check"`
	Disposable  *bool `json:"disposable"`
	Free        *bool `json:"free"`
	Error       *struct {
		Info string `json:"info"`
	} `json:"error"`
}

func NewMailboxLayer(apiKey string, client *resty.Client) *MailboxLayer {
	return &MailboxLayer{
		client:  prepareClient(client),
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: mailboxLayerBaseURL,
	}
}

func (p *MailboxLayer) Name() domain.Provider { return domain.ProviderMailboxLayer }

func (p *MailboxLayer) Enabled() bool { return p != nil && p.apiKey != "" }

func (p *MailboxLayer) Verify(ctx context.Context, email string) domain.VerificationResult {
	if !p.Enabled() {
		return disabledResult(email, p.Name())
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"access_key": p.apiKey,
			"email":      email,
			"smtp":       "1",
			"format":     "1",
		}).
		Get(p.baseURL + "/check")
	if err != nil {
		return errorResult(email, p.Name(), transportFailureMessage(err))
	}
	if !isSuccess(resp) {
		return errorResult(email, p.Name(), httpFailureMessage(resp.StatusCode(), resp.String()))
	}

	var payload mailboxLayerResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return errorResult(email, p.Name(), decodeFailureMessage(err))
	}
	// MailboxLayer reports API-level failures with a 200 and an error object.
	if payload.Error != nil {
		return errorResult(email, p.Name(), payload.Error.Info)
	}

	result := newResult(email, p.Name())

	isValid := payload.FormatValid && payload.MXFound && payload.SMTPCheck

	// Fractional score: passed checks over five considered checks. A missing
	// disposable flag counts against the score; a missing free flag does not.
	passed := 0
	if payload.FormatValid {
		passed++
	}
	if payload.MXFound {
		passed++
	}
	if payload.SMTPCheck {
		passed++
	}
	if payload.Disposable != nil && !*payload.Disposable {
		passed++
	}
	if payload.Free == nil || !*payload.Free {
		passed++
	}
	score := clampScore(float64(passed) / 5)

	result.IsValid = &isValid
	result.Score = &score
	result.Details = json.RawMessage(append([]byte(nil), resp.Body()...))
	return result
}
