package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/verihub/verify-engine/internal/domain"
)

const zeroBounceBaseURL = "https://api.zerobounce.net/v2"

// ZeroBounce verifies addresses through the ZeroBounce validate API.
// It is the only adapter with a genuine native batch endpoint.
type ZeroBounce struct {
	client  *resty.Client
	apiKey  string
	baseURL string
}

type zeroBounceResponse struct {
	Status string `json:"status"`
}

type zeroBounceBatchRequest struct {
	APIKey     string                `json:"api_key"`
	EmailBatch []zeroBounceBatchItem `json:"email_batch"`
}

type zeroBounceBatchItem struct {
	EmailAddress string `json:"email_address"`
}

type zeroBounceBatchResponse struct {
	EmailBatch []zeroBounceBatchEntry `json:"email_batch"`
	Errors     []zeroBounceBatchError `json:"errors"`
}

type zeroBounceBatchEntry struct {
	Address string `json:"address"`
	Status  string `json:"status"`
}

type zeroBounceBatchError struct {
	EmailAddress string `json:"email_address"`
	Error        string `json:"error"`
}

func NewZeroBounce(apiKey string, client *resty.Client) *ZeroBounce {
	return &ZeroBounce{
		client:  prepareClient(client),
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: zeroBounceBaseURL,
	}
}

func (p *ZeroBounce) Name() domain.Provider { return domain.ProviderZeroBounce }

func (p *ZeroBounce) Enabled() bool { return p != nil && p.apiKey != "" }

func (p *ZeroBounce) Verify(ctx context.Context, email string) domain.VerificationResult {
	if !p.Enabled() {
		return disabledResult(email, p.Name())
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"api_key":    p.apiKey,
			"email":      email,
			"ip_address": "",
		}).
		Get(p.baseURL + "/validate")
	if err != nil {
		return errorResult(email, p.Name(), transportFailureMessage(err))
	}
	if !isSuccess(resp) {
		return errorResult(email, p.Name(), httpFailureMessage(resp.StatusCode(), resp.String()))
	}

	var payload zeroBounceResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return errorResult(email, p.Name(), decodeFailureMessage(err))
	}

	return p.resultFromStatus(email, payload.Status, resp.Body())
}

// BulkVerify submits one batch request and maps entries back to the input
// order. Addresses missing from the response are reported as errors, so the
// output always has one entry per input.
func (p *ZeroBounce) BulkVerify(ctx context.Context, emails []string) []domain.VerificationResult {
	results := make([]domain.VerificationResult, 0, len(emails))

	if !p.Enabled() {
		for _, email := range emails {
			results = append(results, disabledResult(email, p.Name()))
		}
		return results
	}

	batch := make([]zeroBounceBatchItem, 0, len(emails))
	for _, email := range emails {
		batch = append(batch, zeroBounceBatchItem{EmailAddress: email})
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(zeroBounceBatchRequest{APIKey: p.apiKey, EmailBatch: batch}).
		Post(p.baseURL + "/validatebatch")
	if err != nil {
		msg := transportFailureMessage(err)
		for _, email := range emails {
			results = append(results, errorResult(email, p.Name(), msg))
		}
		return results
	}
	if !isSuccess(resp) {
		msg := httpFailureMessage(resp.StatusCode(), resp.String())
		for _, email := range emails {
			results = append(results, errorResult(email, p.Name(), msg))
		}
		return results
	}

	var payload zeroBounceBatchResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		msg := decodeFailureMessage(err)
		for _, email := range emails {
			results = append(results, errorResult(email, p.Name(), msg))
		}
		return results
	}

	entries := make(map[string]zeroBounceBatchEntry, len(payload.EmailBatch))
	for _, entry := range payload.EmailBatch {
		entries[entry.Address] = entry
	}
	batchErrors := make(map[string]string, len(payload.Errors))
	for _, batchErr := range payload.Errors {
		batchErrors[batchErr.EmailAddress] = batchErr.Error
	}

	for _, email := range emails {
		if entry, ok := entries[email]; ok {
			details, _ := json.Marshal(entry)
			results = append(results, p.resultFromStatus(email, entry.Status, details))
			continue
		}
		if msg, ok := batchErrors[email]; ok {
			results = append(results, errorResult(email, p.Name(), msg))
			continue
		}
		results = append(results, errorResult(email, p.Name(), fmt.Sprintf("no batch result for %q", email)))
	}

	return results
}

func (p *ZeroBounce) resultFromStatus(email string, status string, details []byte) domain.VerificationResult {
	result := newResult(email, p.Name())

	isValid := status == "valid"
	score := 0.0
	if isValid {
		score = 1.0
	}

	result.IsValid = &isValid
	result.Score = &score
	result.Details = json.RawMessage(append([]byte(nil), details...))
	return result
}
