package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/apexplus/storefront/internal/domain"
	"github.com/apexplus/storefront/internal/service"
	"github.com/apexplus/storefront/pkg/httputil"
	"github.com/apexplus/storefront/pkg/validator"
)

// SessionIDHeader carries the shopper's anonymous session identifier.
const SessionIDHeader = "X-Session-ID"

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// CartResponse decorates the stored cart with the totals derived from its
// line items at read time.
type CartResponse struct {
	*domain.Cart
	TotalAmount int64 `json:"total_amount"`
	ItemCount   int   `json:"item_count"`
}

func cartView(cart *domain.Cart) CartResponse {
	return CartResponse{
		Cart:        cart,
		TotalAmount: cart.TotalAmount(),
		ItemCount:   cart.ItemCount(),
	}
}

// sessionID extracts the session identifier from the request headers. The
// second return value is false when the header is missing, in which case a
// 400 has already been written.
func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get(SessionIDHeader)
	if id == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "MISSING_SESSION", Message: SessionIDHeader + " header is required"},
		})
		return "", false
	}
	return id, true
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	cart, err := h.service.GetCart(r.Context(), sid)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartView(cart)})
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req service.AddItemInput
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

	cart, err := h.service.AddItem(r.Context(), sid, req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartView(cart)})
}

// RemoveItem handles DELETE /api/v1/cart/items/{index}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "index must be an integer"},
		})
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), sid, index)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartView(cart)})
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	if err := h.service.ClearCart(r.Context(), sid); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
