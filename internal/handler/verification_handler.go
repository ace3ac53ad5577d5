package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/verihub/verify-engine/internal/domain"
	"github.com/verihub/verify-engine/internal/queue"
)

type VerificationService interface {
	VerifyEmail(ctx context.Context, email string) (*domain.AggregateVerification, error)
	VerifyWithProvider(ctx context.Context, email string, name domain.Provider) (*domain.VerificationResult, error)
	BulkVerify(ctx context.Context, emails []string) ([]domain.AggregateVerification, error)
	BulkVerifyWithProvider(ctx context.Context, emails []string, name domain.Provider) ([]domain.VerificationResult, error)
	History(ctx context.Context, email string) ([]domain.VerificationResult, error)
	AvailableProviders() []domain.Provider
}

type VerificationHandler struct {
	service   VerificationService
	publisher queue.Publisher
}

// NewVerificationHandler wires the verification routes. The publisher is
// optional; without one the async bulk path is rejected.
func NewVerificationHandler(service VerificationService, publisher queue.Publisher) (*VerificationHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("verification service is required")
	}
	return &VerificationHandler{service: service, publisher: publisher}, nil
}

func RegisterVerificationRoutes(router fiber.Router, service VerificationService, publisher queue.Publisher) error {
	h, err := NewVerificationHandler(service, publisher)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/verifications", h.VerifyEmail)
	v1.Post("/verifications/bulk", h.BulkVerify)
	v1.Get("/verifications/history", h.History)
	v1.Get("/providers", h.ListProviders)

	return nil
}

type verifyRequest struct {
	Email    string `json:"email"`
	Provider string `json:"provider,omitempty"`
}

type bulkVerifyRequest struct {
	Emails   []string `json:"emails"`
	Provider string   `json:"provider,omitempty"`
	Async    bool     `json:"async,omitempty"`
}

type resultResponse struct {
	ID               string          `json:"id,omitempty"`
	Email            string          `json:"email"`
	Provider         string          `json:"provider"`
	IsValid          *bool           `json:"isValid,omitempty"`
	Score            *float64        `json:"score,omitempty"`
	Details          json.RawMessage `json:"details,omitempty"`
	Error            *string         `json:"error,omitempty"`
	VerificationDate time.Time       `json:"verificationDate"`
}

type aggregateResponse struct {
	Email            string                    `json:"email"`
	IsValid          *bool                     `json:"isValid,omitempty"`
	Score            *float64                  `json:"score,omitempty"`
	Results          map[string]resultResponse `json:"results"`
	VerifiedBy       int                       `json:"verifiedBy"`
	Error            *string                   `json:"error,omitempty"`
	VerificationDate time.Time                 `json:"verificationDate"`
}

type bulkAggregateResponse struct {
	Results []aggregateResponse `json:"results"`
}

type bulkResultResponse struct {
	Results []resultResponse `json:"results"`
}

type bulkAsyncResponse struct {
	CorrelationID string `json:"correlationId"`
	Queued        int    `json:"queued"`
}

type historyResponse struct {
	Email   string           `json:"email"`
	History []resultResponse `json:"history"`
}

type providersResponse struct {
	Providers []string `json:"providers"`
}

func (h *VerificationHandler) VerifyEmail(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(req.Provider) != "" {
		name, err := domain.ParseProviderFromString(req.Provider)
		if err != nil {
			return toHTTPError(err)
		}
		result, err := h.service.VerifyWithProvider(c.Context(), req.Email, name)
		if err != nil {
			return toHTTPError(err)
		}
		return c.Status(fiber.StatusOK).JSON(toResultResponse(result))
	}

	aggregate, err := h.service.VerifyEmail(c.Context(), req.Email)
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(toAggregateResponse(aggregate))
}

func (h *VerificationHandler) BulkVerify(c *fiber.Ctx) error {
	var req bulkVerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Async {
		return h.enqueueBulk(c, req)
	}

	if strings.TrimSpace(req.Provider) != "" {
		name, err := domain.ParseProviderFromString(req.Provider)
		if err != nil {
			return toHTTPError(err)
		}
		results, err := h.service.BulkVerifyWithProvider(c.Context(), req.Emails, name)
		if err != nil {
			return toHTTPError(err)
		}
		return c.Status(fiber.StatusOK).JSON(bulkResultResponse{Results: toResultResponses(results)})
	}

	aggregates, err := h.service.BulkVerify(c.Context(), req.Emails)
	if err != nil {
		return toHTTPError(err)
	}

	items := make([]aggregateResponse, 0, len(aggregates))
	for i := range aggregates {
		items = append(items, toAggregateResponse(&aggregates[i]))
	}
	return c.Status(fiber.StatusOK).JSON(bulkAggregateResponse{Results: items})
}

func (h *VerificationHandler) enqueueBulk(c *fiber.Ctx, req bulkVerifyRequest) error {
	if h.publisher == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "async verification is not configured")
	}
	if len(req.Emails) == 0 {
		return toHTTPError(fmt.Errorf("%w: at least one email is required", domain.ErrValidation))
	}

	var name domain.Provider
	if strings.TrimSpace(req.Provider) != "" {
		parsed, err := domain.ParseProviderFromString(req.Provider)
		if err != nil {
			return toHTTPError(err)
		}
		name = parsed
	}

	correlationID := requestCorrelationID(c)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	for i, email := range req.Emails {
		msg := queue.VerificationMessage{
			Email:         email,
			Provider:      name,
			CorrelationID: correlationID,
		}
		if err := h.publisher.Publish(c.Context(), queue.VerifyQueue, msg); err != nil {
			return fiber.NewError(
				fiber.StatusServiceUnavailable,
				fmt.Sprintf("failed to enqueue verification %d of %d: %v", i+1, len(req.Emails), err),
			)
		}
	}

	return c.Status(fiber.StatusAccepted).JSON(bulkAsyncResponse{
		CorrelationID: correlationID,
		Queued:        len(req.Emails),
	})
}

func (h *VerificationHandler) History(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.Query("email"))
	history, err := h.service.History(c.Context(), email)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(historyResponse{
		Email:   email,
		History: toResultResponses(history),
	})
}

func (h *VerificationHandler) ListProviders(c *fiber.Ctx) error {
	names := h.service.AvailableProviders()
	providers := make([]string, 0, len(names))
	for _, name := range names {
		providers = append(providers, name.String())
	}

	return c.Status(fiber.StatusOK).JSON(providersResponse{Providers: providers})
}

func requestCorrelationID(c *fiber.Ctx) string {
	if value := strings.TrimSpace(c.Get(fiber.HeaderXRequestID)); value != "" {
		return value
	}
	if value, ok := c.Locals("requestid").(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func toResultResponse(r *domain.VerificationResult) resultResponse {
	if r == nil {
		return resultResponse{}
	}

	return resultResponse{
		ID:               r.ID,
		Email:            r.Email,
		Provider:         r.Provider.String(),
		IsValid:          r.IsValid,
		Score:            r.Score,
		Details:          r.Details,
		Error:            r.Error,
		VerificationDate: r.VerificationDate,
	}
}

func toResultResponses(results []domain.VerificationResult) []resultResponse {
	responses := make([]resultResponse, 0, len(results))
	for i := range results {
		responses = append(responses, toResultResponse(&results[i]))
	}
	return responses
}

func toAggregateResponse(a *domain.AggregateVerification) aggregateResponse {
	if a == nil {
		return aggregateResponse{}
	}

	results := make(map[string]resultResponse, len(a.Results))
	for name, result := range a.Results {
		r := result
		results[name.String()] = toResultResponse(&r)
	}

	return aggregateResponse{
		Email:            a.Email,
		IsValid:          a.IsValid,
		Score:            a.Score,
		Results:          results,
		VerifiedBy:       a.VerifiedBy,
		Error:            a.Error,
		VerificationDate: a.VerificationDate,
	}
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrServiceNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return err
	}
}
