package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
	"github.com/utafrali/EcommerceGo/pkg/httputil"
	"github.com/utafrali/EcommerceGo/pkg/validator"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/region"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/service"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/session"
)

// CartHandler handles HTTP requests for the shopper's carts.
type CartHandler struct {
	service *service.CartService
	regions region.Resolver
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, regions region.Resolver, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		regions: regions,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateCartRequest is the JSON request body for creating a cart.
type CreateCartRequest struct {
	ProductID string         `json:"product_id" validate:"required,max=255"`
	Quantity  int            `json:"quantity" validate:"gte=0"`
	Settings  map[string]any `json:"settings"`
}

// UpdateQuantityRequest is the JSON request body for changing an item's quantity.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// SwitchRegionResponse reports the outcome of a region switch.
type SwitchRegionResponse struct {
	Switched     bool   `json:"switched"`
	ActiveCartID string `json:"active_cart_id,omitempty"`
}

type switchRegionParams struct {
	Region string `validate:"alphanum,min=2,max=8"`
}

// --- Handlers ---

// GetCart handles GET /api/v1/storefront/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	reg, ok := h.registry(w, r)
	if !ok {
		return
	}

	code := h.regions.ActiveRegion(r.Context())
	snap, err := reg.GetActiveCart(r.Context(), code)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if snap == nil {
		httputil.WriteError(w, r, apperrors.NotFound("cart", code), h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: snap})
}

// CreateCart handles POST /api/v1/storefront/cart
func (h *CartHandler) CreateCart(w http.ResponseWriter, r *http.Request) {
	reg, ok := h.registry(w, r)
	if !ok {
		return
	}

	var req CreateCartRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, err := h.service.Create(r.Context(), reg, req.ProductID, req.Settings, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: cart})
}

// UpdateItemQuantity handles PATCH /api/v1/storefront/cart/items/{productId}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	reg, ok := h.registry(w, r)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "productId")
	if productID == "" {
		httputil.WriteError(w, r, apperrors.InvalidInput("productId is required"), h.logger)
		return
	}

	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, err := h.service.ChangeItemQuantity(r.Context(), reg, productID, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// DeleteCart handles DELETE /api/v1/storefront/cart/{cartId}
func (h *CartHandler) DeleteCart(w http.ResponseWriter, r *http.Request) {
	reg, ok := h.registry(w, r)
	if !ok {
		return
	}

	cartID := chi.URLParam(r, "cartId")
	deleted, err := reg.DeleteCart(r.Context(), cartID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if !deleted {
		httputil.WriteError(w, r, apperrors.NotFound("cart", cartID), h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SwitchRegion handles POST /api/v1/storefront/cart/switch/{region}
func (h *CartHandler) SwitchRegion(w http.ResponseWriter, r *http.Request) {
	reg, ok := h.registry(w, r)
	if !ok {
		return
	}

	params := switchRegionParams{Region: region.Normalize(chi.URLParam(r, "region"))}
	if err := validator.Validate(params); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	switched, err := reg.SwitchActiveRegion(r.Context(), params.Region)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	active, err := reg.ActiveCartID(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: SwitchRegionResponse{Switched: switched, ActiveCartID: active},
	})
}

func (h *CartHandler) registry(w http.ResponseWriter, r *http.Request) (*session.Registry, bool) {
	return requireRegistry(w, r, h.logger)
}

func requireRegistry(w http.ResponseWriter, r *http.Request, l *slog.Logger) (*session.Registry, bool) {
	reg, ok := registryFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Internal(errNoSession), l)
		return nil, false
	}
	return reg, true
}
