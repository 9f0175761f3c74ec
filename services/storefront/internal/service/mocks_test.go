package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/EcommerceGo/services/storefront/internal/commerce"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/repository/memory"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/session"
)

// --- Mock CommerceAPI ---

type mockCommerceAPI struct {
	mock.Mock
}

func (m *mockCommerceAPI) CreateCart(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	args := m.Called(ctx, cart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockCommerceAPI) UpdateItem(ctx context.Context, cartID, productID string, quantity int) (*domain.Cart, error) {
	args := m.Called(ctx, cartID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockCommerceAPI) Checkout(ctx context.Context, cartID string, cfg domain.CheckoutConfig) (*commerce.CheckoutResponse, error) {
	args := m.Called(ctx, cartID, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commerce.CheckoutResponse), args.Error(1)
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishCartStored(ctx context.Context, cart *domain.Cart, region string) error {
	args := m.Called(ctx, cart, region)
	return args.Error(0)
}

func (m *mockPublisher) PublishCheckoutSubmitted(ctx context.Context, cart *domain.Cart, region, paymentService string, httpStatus int) error {
	args := m.Called(ctx, cart, region, paymentService, httpStatus)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testSession struct {
	sessions *memory.SessionStore
	tokens   *memory.TokenStore
	registry *session.Registry
}

func newTestSession(t *testing.T) *testSession {
	t.Helper()
	sessions := memory.NewSessionStore()
	tokens := memory.NewTokenStore()
	return &testSession{
		sessions: sessions,
		tokens:   tokens,
		registry: session.NewRegistry(sessions, tokens, 30*time.Minute, newTestLogger()),
	}
}

func (s *testSession) activeID(t *testing.T) string {
	t.Helper()
	id, err := s.registry.ActiveCartID(context.Background())
	if err != nil {
		t.Fatalf("active cart id: %v", err)
	}
	return id
}

func (s *testSession) snapshot(t *testing.T, region string) *domain.Snapshot {
	t.Helper()
	snaps, err := s.registry.Snapshots(context.Background())
	if err != nil {
		t.Fatalf("snapshots: %v", err)
	}
	snap, ok := snaps[region]
	if !ok {
		return nil
	}
	return &snap
}

func persistedCart(id, status string) *domain.Cart {
	c := domain.NewCart("p1", 1, nil)
	c.ID = id
	c.Status = status
	return c
}
