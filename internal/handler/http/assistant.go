package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/apexplus/storefront/internal/assistant"
	"github.com/apexplus/storefront/internal/domain"
	"github.com/apexplus/storefront/internal/service"
	"github.com/apexplus/storefront/pkg/httputil"
	"github.com/apexplus/storefront/pkg/validator"
)

// AssistantHandler handles HTTP requests for the AI assistant endpoints.
// These endpoints always respond 200; the assistant degrades to canned text
// rather than erroring.
type AssistantHandler struct {
	assistant *assistant.Client
	catalog   *service.CatalogService
	logger    *slog.Logger
}

// NewAssistantHandler creates a new assistant HTTP handler.
func NewAssistantHandler(client *assistant.Client, catalog *service.CatalogService, logger *slog.Logger) *AssistantHandler {
	return &AssistantHandler{
		assistant: client,
		catalog:   catalog,
		logger:    logger,
	}
}

// DescriptionRequest is the JSON request body for generating a product
// description.
type DescriptionRequest struct {
	Name     string   `json:"name" validate:"required"`
	Features []string `json:"features"`
}

// AdviceRequest is the JSON request body for shopping advice.
type AdviceRequest struct {
	Question string `json:"question" validate:"required"`
}

// GenerateDescription handles POST /api/v1/assistant/description
func (h *AssistantHandler) GenerateDescription(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req DescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	text := h.assistant.ProductDescription(r.Context(), req.Name, req.Features)

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"description": text}})
}

// GetAdvice handles POST /api/v1/assistant/advice
func (h *AssistantHandler) GetAdvice(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req AdviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	text := h.assistant.ShoppingAdvice(r.Context(), req.Question, h.catalogContext(r))

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"advice": text}})
}

// catalogContext summarizes the current catalog for the advice prompt.
// Advice must still be served when the catalog is unavailable, so a list
// failure just means an empty context.
func (h *AssistantHandler) catalogContext(r *http.Request) string {
	products, err := h.catalog.ListProducts(r.Context(), domain.ProductFilter{})
	if err != nil {
		h.logger.WarnContext(r.Context(), "failed to load catalog context for advice",
			slog.String("error", err.Error()),
		)
		return ""
	}

	lines := make([]string, 0, len(products))
	for _, p := range products {
		lines = append(lines, fmt.Sprintf("%s by %s at %d BDT", p.Name, p.Brand, p.EffectivePrice()))
	}
	return strings.Join(lines, "; ")
}
