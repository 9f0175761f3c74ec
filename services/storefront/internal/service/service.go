package service

import (
	"context"

	"github.com/utafrali/EcommerceGo/services/storefront/internal/commerce"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
)

// CommerceAPI is the subset of the remote commerce API the storefront drives.
type CommerceAPI interface {
	CreateCart(ctx context.Context, cart *domain.Cart) (*domain.Cart, error)
	UpdateItem(ctx context.Context, cartID, productID string, quantity int) (*domain.Cart, error)
	Checkout(ctx context.Context, cartID string, cfg domain.CheckoutConfig) (*commerce.CheckoutResponse, error)
}

// EventPublisher announces carts written to the session and successful checkouts.
type EventPublisher interface {
	PublishCartStored(ctx context.Context, cart *domain.Cart, region string) error
	PublishCheckoutSubmitted(ctx context.Context, cart *domain.Cart, region, paymentService string, httpStatus int) error
}
