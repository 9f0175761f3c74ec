package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/utafrali/EcommerceGo/pkg/kafka"
	"github.com/utafrali/EcommerceGo/pkg/logger"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
)

// Kafka topic constants for storefront events.
const (
	TopicCartStored        = "storefront.cart.stored"
	TopicCheckoutSubmitted = "storefront.checkout.submitted"
)

// AggregateTypeCart is the aggregate type of every storefront event.
const AggregateTypeCart = "cart"

// SourceStorefront identifies events originating from the storefront.
const SourceStorefront = "storefront"

// Publisher sends an event envelope to a topic. *pkgkafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// CartStoredData is the payload of a storefront.cart.stored event.
type CartStoredData struct {
	CartID       string            `json:"cart_id"`
	Region       string            `json:"region"`
	Status       string            `json:"status,omitempty"`
	ItemQuantity int               `json:"item_quantity"`
	Items        []domain.CartItem `json:"items"`
	Currency     string            `json:"currency,omitempty"`
}

// CheckoutSubmittedData is the payload of a storefront.checkout.submitted event.
// It is sent for every accepted checkout call; Status CART_PAYING means payment is still pending.
type CheckoutSubmittedData struct {
	CartID         string `json:"cart_id"`
	Region         string `json:"region"`
	Status         string `json:"status,omitempty"`
	PaymentService string `json:"payment_service,omitempty"`
	HTTPStatus     int    `json:"http_status"`
}

// Producer publishes storefront events.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a new storefront event producer.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		logger:    logger,
	}
}

// PublishCartStored publishes a storefront.cart.stored event.
func (p *Producer) PublishCartStored(ctx context.Context, cart *domain.Cart, region string) error {
	data := CartStoredData{
		CartID:       cart.ID,
		Region:       region,
		Status:       cart.Status,
		ItemQuantity: cart.ItemQuantity,
		Items:        cart.ProductCartList,
		Currency:     cart.Currency,
	}
	return p.publish(ctx, TopicCartStored, cart.ID, data)
}

// PublishCheckoutSubmitted publishes a storefront.checkout.submitted event.
func (p *Producer) PublishCheckoutSubmitted(ctx context.Context, cart *domain.Cart, region, paymentService string, httpStatus int) error {
	data := CheckoutSubmittedData{
		CartID:         cart.ID,
		Region:         region,
		Status:         cart.Status,
		PaymentService: paymentService,
		HTTPStatus:     httpStatus,
	}
	return p.publish(ctx, TopicCheckoutSubmitted, cart.ID, data)
}

func (p *Producer) publish(ctx context.Context, topic, cartID string, data any) error {
	event, err := pkgkafka.NewEvent(topic, cartID, AggregateTypeCart, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}
	if id := logger.SessionIDFromContext(ctx); id != "" {
		event.WithMetadata("session_id", id)
	}

	if err := p.publisher.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published storefront event",
		slog.String("topic", topic),
		slog.String("cart_id", cartID),
	)
	return nil
}

// Noop discards every event. Used when EVENTS_ENABLED is false.
type Noop struct{}

// PublishCartStored implements the service event publisher.
func (Noop) PublishCartStored(context.Context, *domain.Cart, string) error { return nil }

// PublishCheckoutSubmitted implements the service event publisher.
func (Noop) PublishCheckoutSubmitted(context.Context, *domain.Cart, string, string, int) error {
	return nil
}
