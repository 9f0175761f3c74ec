package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/region"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/session"
)

// DefaultPreapproval is the preapproval flag used to finalize a PayPal checkout
// when the caller has no preference.
const DefaultPreapproval = true

// CheckoutResult is a successful checkout reply.
type CheckoutResult struct {
	StatusCode int
	Body       map[string]any
	Data       json.RawMessage
}

// CheckoutService drives the checkout handshake against the commerce API.
type CheckoutService struct {
	api      CommerceAPI
	regions  region.Resolver
	producer EventPublisher
	logger   *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(api CommerceAPI, regions region.Resolver, producer EventPublisher, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{
		api:      api,
		regions:  regions,
		producer: producer,
		logger:   logger,
	}
}

// Checkout submits cfg for cart. When the reply carries data it is applied
// onto cart and the cart is stored for the caller's region. Every failure,
// including an unpersisted cart, yields ErrRequestRejected with cart and
// session untouched.
func (s *CheckoutService) Checkout(ctx context.Context, reg *session.Registry, cart *domain.Cart, cfg domain.CheckoutConfig) (*CheckoutResult, error) {
	return s.checkout(ctx, reg, cart, cfg, opCheckout)
}

// CheckoutWithPaypal starts a PayPal checkout. With preapproval the reply may
// carry a redirect intent instead of an updated cart. An empty mode means adaptive.
func (s *CheckoutService) CheckoutWithPaypal(ctx context.Context, reg *session.Registry, cart *domain.Cart, successURL, failureURL string, preapproval bool, mode string) (*CheckoutResult, error) {
	cfg := domain.PaypalCheckoutConfig(successURL, failureURL, preapproval, mode)
	return s.checkout(ctx, reg, cart, cfg, opPaypal)
}

// CompleteCheckoutWithPaypal finalizes a PayPal checkout once the user is back
// from authorizing it. Only a CART_PAYING cart may be finalized; otherwise
// ErrRequestRejected is returned without calling the API.
func (s *CheckoutService) CompleteCheckoutWithPaypal(ctx context.Context, reg *session.Registry, cart *domain.Cart, preapproval bool, mode string) (*CheckoutResult, error) {
	if !cart.CanCompleteCheckout() {
		checkoutTotal.WithLabelValues(opPaypalComplete, outcomeRejected).Inc()
		status := ""
		if cart != nil {
			status = cart.Status
		}
		return nil, apperrors.RequestRejected(
			fmt.Sprintf("complete checkout: cart status %q is not %s", status, domain.StatusPaying), nil)
	}

	cfg := domain.PaypalCheckoutConfig("", "", preapproval, mode)
	return s.checkout(ctx, reg, cart, cfg, opPaypalComplete)
}

func (s *CheckoutService) checkout(ctx context.Context, reg *session.Registry, cart *domain.Cart, cfg domain.CheckoutConfig, op string) (*CheckoutResult, error) {
	if !cart.IsPersisted() {
		checkoutTotal.WithLabelValues(op, outcomeRejected).Inc()
		return nil, apperrors.RequestRejected("checkout: cart id is not defined", nil)
	}

	resp, err := s.api.Checkout(ctx, cart.ID, cfg)
	if err != nil {
		checkoutTotal.WithLabelValues(op, outcomeRejected).Inc()
		s.logger.WarnContext(ctx, "checkout rejected",
			slog.String("cart_id", cart.ID),
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.RequestRejected("checkout", err)
	}

	code := s.regions.ActiveRegion(ctx)
	if resp.Data != nil {
		if err := cart.Apply(resp.Data); err != nil {
			checkoutTotal.WithLabelValues(op, outcomeRejected).Inc()
			return nil, apperrors.RequestRejected("checkout", err)
		}
		if err := reg.StoreCart(ctx, cart, code); err != nil {
			checkoutTotal.WithLabelValues(op, outcomeStoreFailed).Inc()
			return nil, fmt.Errorf("store checked out cart: %w", err)
		}
	}
	checkoutTotal.WithLabelValues(op, outcomeSuccess).Inc()

	paymentService, _ := cfg["paymentService"].(string)
	if err := s.producer.PublishCheckoutSubmitted(ctx, cart, code, paymentService, resp.StatusCode); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish checkout submitted event",
			slog.String("cart_id", cart.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "checkout submitted",
		slog.String("cart_id", cart.ID),
		slog.String("operation", op),
		slog.String("status", cart.Status),
		slog.Int("http_status", resp.StatusCode),
	)

	return &CheckoutResult{
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
		Data:       resp.Data,
	}, nil
}
