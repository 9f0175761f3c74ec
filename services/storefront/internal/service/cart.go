package service

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/region"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/session"
)

// CartService creates carts and edits the active one, keeping the session
// registry in step with the commerce API.
type CartService struct {
	api      CommerceAPI
	regions  region.Resolver
	producer EventPublisher
	logger   *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(api CommerceAPI, regions region.Resolver, producer EventPublisher, logger *slog.Logger) *CartService {
	return &CartService{
		api:      api,
		regions:  regions,
		producer: producer,
		logger:   logger,
	}
}

// Create persists a new cart holding quantity units of productID and stores it
// for the caller's region. A quantity below 1 is treated as 1. Any API failure,
// or a reply without an id, yields ErrRequestRejected.
func (s *CartService) Create(ctx context.Context, reg *session.Registry, productID string, settings map[string]any, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		quantity = 1
	}

	created, err := s.api.CreateCart(ctx, domain.NewCart(productID, quantity, settings))
	if err != nil {
		return nil, apperrors.RequestRejected("create cart", err)
	}
	if !created.IsPersisted() {
		return nil, apperrors.RequestRejected("create cart: no id assigned", nil)
	}

	code := s.regions.ActiveRegion(ctx)
	if err := reg.StoreCart(ctx, created, code); err != nil {
		return nil, fmt.Errorf("store created cart: %w", err)
	}
	s.publishStored(ctx, created, code)

	s.logger.InfoContext(ctx, "cart created",
		slog.String("cart_id", created.ID),
		slog.String("product_id", productID),
		slog.String("region", code),
	)

	return created, nil
}

// ChangeItemQuantity sets productID's quantity on the cart stored for the
// caller's region and replaces that snapshot with the API's reply.
// ErrInvalidState is returned when the region has no persisted cart.
func (s *CartService) ChangeItemQuantity(ctx context.Context, reg *session.Registry, productID string, quantity int) (*domain.Cart, error) {
	code := s.regions.ActiveRegion(ctx)

	snap, err := reg.GetActiveCart(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get active cart: %w", err)
	}
	if snap == nil || snap.ID == "" {
		return nil, apperrors.InvalidState(fmt.Sprintf("no persisted cart for region %q", code))
	}

	updated, err := s.api.UpdateItem(ctx, snap.ID, productID, quantity)
	if err != nil {
		return nil, apperrors.RequestRejected("change item quantity", err)
	}

	if err := reg.StoreCart(ctx, updated, code); err != nil {
		return nil, fmt.Errorf("store updated cart: %w", err)
	}
	s.publishStored(ctx, updated, code)

	s.logger.InfoContext(ctx, "cart item quantity changed",
		slog.String("cart_id", snap.ID),
		slog.String("product_id", productID),
		slog.Int("quantity", quantity),
	)

	return updated, nil
}

// SetShippingAddress is reserved for address management. It only checks that
// the cart is persisted.
func (s *CartService) SetShippingAddress(_ context.Context, cart *domain.Cart) error {
	return requirePersisted(cart)
}

// SetBillingAddress is reserved for address management. It only checks that
// the cart is persisted.
func (s *CartService) SetBillingAddress(_ context.Context, cart *domain.Cart) error {
	return requirePersisted(cart)
}

func requirePersisted(cart *domain.Cart) error {
	if !cart.IsPersisted() {
		return apperrors.InvalidState("cart id is not defined")
	}
	return nil
}

func (s *CartService) publishStored(ctx context.Context, cart *domain.Cart, code string) {
	if err := s.producer.PublishCartStored(ctx, cart, code); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart stored event",
			slog.String("cart_id", cart.ID),
			slog.String("error", err.Error()),
		)
	}
}
