package queue

import (
	"fmt"
	"strings"

	"github.com/verihub/verify-engine/internal/domain"
)

// VerificationMessage is the broker payload for one async verification.
// An empty Provider means aggregate verification across all enabled
// providers.
type VerificationMessage struct {
	Email         string          `json:"email"`
	Provider      domain.Provider `json:"provider,omitempty"`
	CorrelationID string          `json:"correlationId,omitempty"`
}

func (m VerificationMessage) Validate() error {
	if strings.TrimSpace(m.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if m.Provider != "" && !m.Provider.IsValid() {
		return fmt.Errorf("invalid provider %q", m.Provider)
	}
	return nil
}
