package provider

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/verihub/verify-engine/internal/domain"
)

const defaultProviderTimeout = 10 * time.Second

// msgNoAPIKey is the error reported by disabled adapters. No network call
// is made in that case.
const msgNoAPIKey = "API key not provided"

func newClient(timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}

	client := resty.New()
	client.SetTimeout(timeout)
	// Single attempt per call; failures are terminal for that call.
	client.SetRetryCount(0)
	return client
}

func prepareClient(client *resty.Client) *resty.Client {
	if client == nil {
		return newClient(0)
	}
	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultProviderTimeout)
	}
	client.SetRetryCount(0)
	return client
}

func newResult(email string, name domain.Provider) domain.VerificationResult {
	return domain.VerificationResult{
		Email:            email,
		Provider:         name,
		VerificationDate: time.Now().UTC(),
	}
}

func errorResult(email string, name domain.Provider, msg string) domain.VerificationResult {
	result := newResult(email, name)
	result.Error = &msg
	return result
}

func disabledResult(email string, name domain.Provider) domain.VerificationResult {
	return errorResult(email, name, msgNoAPIKey)
}

func transportFailureMessage(err error) string {
	return fmt.Sprintf("request failed: %v", err)
}

func httpFailureMessage(statusCode int, body string) string {
	base := fmt.Sprintf("provider returned status %d", statusCode)
	body = strings.TrimSpace(body)
	if body == "" {
		return base
	}
	return fmt.Sprintf("%s: %s", base, body)
}

func decodeFailureMessage(err error) string {
	return fmt.Sprintf("failed to decode provider response: %v", err)
}

func isSuccess(resp *resty.Response) bool {
	return resp != nil && resp.StatusCode() >= 200 && resp.StatusCode() < 300
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
