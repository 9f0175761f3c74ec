package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/utafrali/EcommerceGo/pkg/httputil"
	"github.com/utafrali/EcommerceGo/pkg/validator"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/region"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/service"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/session"
)

var errNoSession = errors.New("session registry missing from request context")

// CheckoutHandler exposes the checkout handshake for the active cart.
type CheckoutHandler struct {
	service *service.CheckoutService
	regions region.Resolver
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, regions region.Resolver, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: svc,
		regions: regions,
		logger:  logger,
	}
}

// CheckoutRequest carries a processor-specific checkout body.
type CheckoutRequest struct {
	Config map[string]any `json:"config" validate:"required"`
}

// PaypalCheckoutRequest starts a PayPal checkout.
type PaypalCheckoutRequest struct {
	SuccessURL  string `json:"success_url" validate:"required,http_url"`
	FailureURL  string `json:"failure_url" validate:"required,http_url"`
	Preapproval bool   `json:"preapproval"`
	Mode        string `json:"mode" validate:"omitempty,oneof=adaptive express"`
}

// CompletePaypalRequest finalizes a PayPal checkout. A missing preapproval
// falls back to service.DefaultPreapproval.
type CompletePaypalRequest struct {
	Preapproval *bool  `json:"preapproval"`
	Mode        string `json:"mode" validate:"omitempty,oneof=adaptive express"`
}

// CheckoutResponse relays the commerce API reply and the resulting cart.
type CheckoutResponse struct {
	StatusCode int            `json:"status_code"`
	Body       map[string]any `json:"body,omitempty"`
	Cart       *domain.Cart   `json:"cart"`
}

// Checkout handles POST /api/v1/storefront/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	reg, ok := requireRegistry(w, r, h.logger)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, ok := h.activeCart(w, r, reg)
	if !ok {
		return
	}

	res, err := h.service.Checkout(r.Context(), reg, cart, domain.CheckoutConfig(req.Config))
	h.respond(w, r, cart, res, err)
}

// CheckoutWithPaypal handles POST /api/v1/storefront/checkout/paypal
func (h *CheckoutHandler) CheckoutWithPaypal(w http.ResponseWriter, r *http.Request) {
	reg, ok := requireRegistry(w, r, h.logger)
	if !ok {
		return
	}

	var req PaypalCheckoutRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, ok := h.activeCart(w, r, reg)
	if !ok {
		return
	}

	res, err := h.service.CheckoutWithPaypal(r.Context(), reg, cart, req.SuccessURL, req.FailureURL, req.Preapproval, req.Mode)
	h.respond(w, r, cart, res, err)
}

// CompleteCheckoutWithPaypal handles POST /api/v1/storefront/checkout/paypal/complete
func (h *CheckoutHandler) CompleteCheckoutWithPaypal(w http.ResponseWriter, r *http.Request) {
	reg, ok := requireRegistry(w, r, h.logger)
	if !ok {
		return
	}

	var req CompletePaypalRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	preapproval := service.DefaultPreapproval
	if req.Preapproval != nil {
		preapproval = *req.Preapproval
	}

	cart, ok := h.activeCart(w, r, reg)
	if !ok {
		return
	}

	res, err := h.service.CompleteCheckoutWithPaypal(r.Context(), reg, cart, preapproval, req.Mode)
	h.respond(w, r, cart, res, err)
}

// activeCart loads the cart for the caller's region. With no cart on record an
// empty one is returned so the service rejects it like any unsaved cart.
func (h *CheckoutHandler) activeCart(w http.ResponseWriter, r *http.Request, reg *session.Registry) (*domain.Cart, bool) {
	snap, err := reg.GetActiveCart(r.Context(), h.regions.ActiveRegion(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return nil, false
	}
	if snap == nil {
		return &domain.Cart{}, true
	}
	return snap.Cart(), true
}

func (h *CheckoutHandler) respond(w http.ResponseWriter, r *http.Request, cart *domain.Cart, res *service.CheckoutResult, err error) {
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: CheckoutResponse{StatusCode: res.StatusCode, Body: res.Body, Cart: cart},
	})
}
