package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/EcommerceGo/pkg/httpclient"
	"github.com/utafrali/EcommerceGo/pkg/tracing"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
)

const (
	serviceName  = "commerce"
	resourceCart = "carts"
	maxBodyBytes = 4 << 20
)

// ErrUnexpectedStatus is returned for a 2xx status the operation does not accept.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Client talks to the remote commerce API's cart resource.
type Client struct {
	http    httpclient.Doer
	baseURL string
	token   string
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewClient creates a commerce API client. token, when set, is sent as a bearer credential.
func NewClient(doer httpclient.Doer, baseURL, token string, logger *slog.Logger) *Client {
	return &Client{
		http:    doer,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		logger:  logger,
		tracer:  tracing.Tracer("storefront/commerce"),
	}
}

// CheckoutResponse is a decoded 200/201 checkout reply.
type CheckoutResponse struct {
	StatusCode int
	// Body is the full decoded JSON object. Its extra keys (redirect intents and
	// the like) are processor specific and left to the caller.
	Body map[string]any
	// Data is the raw "data" member, nil when the reply carried none.
	Data json.RawMessage
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// CreateCart sends POST /carts and returns cart updated with the API's representation.
func (c *Client) CreateCart(ctx context.Context, cart *domain.Cart) (_ *domain.Cart, err error) {
	ctx, span := c.tracer.Start(ctx, "commerce.CreateCart")
	defer func() { tracing.EndSpan(span, err) }()

	resp, err := c.send(ctx, http.MethodPost, c.cartsURL(), cart)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if !isSuccess(resp.StatusCode) {
		return nil, httpclient.ParseResponseError(resp, serviceName)
	}

	payload, err := readCartPayload(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode create cart response: %w", err)
	}

	created := cart.Clone()
	if err := created.Apply(payload); err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateItem sends PATCH /carts/{cartID} setting productID's requested quantity
// and returns a cart built only from the response.
func (c *Client) UpdateItem(ctx context.Context, cartID, productID string, quantity int) (_ *domain.Cart, err error) {
	ctx, span := c.tracer.Start(ctx, "commerce.UpdateItem", trace.WithAttributes(
		attribute.String("cart.id", cartID),
		attribute.String("product.id", productID),
	))
	defer func() { tracing.EndSpan(span, err) }()

	body := domain.CartItem{ProductID: productID, RequestedQuantity: quantity}
	resp, err := c.send(ctx, http.MethodPatch, c.cartURL(cartID), body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if !isSuccess(resp.StatusCode) {
		return nil, httpclient.ParseResponseError(resp, serviceName)
	}

	payload, err := readCartPayload(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode update cart response: %w", err)
	}

	cart := &domain.Cart{}
	if err := cart.Apply(payload); err != nil {
		return nil, err
	}
	return cart, nil
}

// Checkout sends POST /carts/{cartID}/checkout with cfg as the body. Only 200
// and 201 count as success.
func (c *Client) Checkout(ctx context.Context, cartID string, cfg domain.CheckoutConfig) (_ *CheckoutResponse, err error) {
	ctx, span := c.tracer.Start(ctx, "commerce.Checkout", trace.WithAttributes(
		attribute.String("cart.id", cartID),
	))
	defer func() { tracing.EndSpan(span, err) }()

	resp, err := c.send(ctx, http.MethodPost, c.cartURL(cartID)+"/checkout", cfg)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	switch {
	case resp.StatusCode == http.StatusOK, resp.StatusCode == http.StatusCreated:
	case isSuccess(resp.StatusCode):
		return nil, fmt.Errorf("%s checkout: %w %d", serviceName, ErrUnexpectedStatus, resp.StatusCode)
	default:
		return nil, httpclient.ParseResponseError(resp, serviceName)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read checkout response: %w", err)
	}

	out := &CheckoutResponse{StatusCode: resp.StatusCode}
	if len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out.Body); err != nil {
		return nil, fmt.Errorf("decode checkout response: %w", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && hasValue(env.Data) {
		out.Data = env.Data
	}
	return out, nil
}

func (c *Client) send(ctx context.Context, method, target string, body any) (*http.Response, error) {
	req, err := httpclient.NewJSONRequest(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		c.logger.WarnContext(ctx, "commerce request failed",
			slog.String("method", method),
			slog.String("url", target),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("call %s %s: %w", serviceName, method, err)
	}
	return resp, nil
}

func (c *Client) cartsURL() string {
	return c.baseURL + "/" + resourceCart
}

func (c *Client) cartURL(id string) string {
	return c.cartsURL() + "/" + url.PathEscape(id)
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// readCartPayload returns the cart object of a reply that is either the
// envelope {"data":{...}} or the bare cart. An empty body yields "{}".
func readCartPayload(r io.Reader) (json.RawMessage, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage(`{}`), nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	if hasValue(env.Data) {
		return env.Data, nil
	}
	return raw, nil
}

func hasValue(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
