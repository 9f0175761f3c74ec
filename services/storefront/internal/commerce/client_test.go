package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
	"github.com/utafrali/EcommerceGo/pkg/httpclient"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(httpclient.New(httpclient.DefaultConfig()), srv.URL+"/", "secret", logger)
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func TestCreateCart_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/carts", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body := decodeBody(t, r)
		assert.NotContains(t, body, "id")
		assert.Equal(t, map[string]any{"giftWrap": true}, body["settings"])
		items := body["productCartList"].([]any)
		require.Len(t, items, 1)
		assert.Equal(t, map[string]any{"id": "p1", "requestedQuantity": float64(2)}, items[0])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"c1","status":"CART_ACTIVE","currency":"EUR"}}`))
	})

	cart := domain.NewCart("p1", 2, map[string]any{"giftWrap": true})
	got, err := client.CreateCart(context.Background(), cart)
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ID)
	assert.Equal(t, "CART_ACTIVE", got.Status)
	assert.Equal(t, "EUR", got.Currency)
	require.Len(t, got.ProductCartList, 1)
	assert.Equal(t, "p1", got.ProductCartList[0].ProductID)
	assert.Empty(t, cart.ID, "input cart must not be mutated")
}

func TestCreateCart_BareBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"c9","productCartList":[{"id":"p1","requestedQuantity":1}]}`))
	})

	got, err := client.CreateCart(context.Background(), domain.NewCart("p1", 1, nil))
	require.NoError(t, err)
	assert.Equal(t, "c9", got.ID)
}

func TestCreateCart_Rejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"unknown product"}`))
	})

	got, err := client.CreateCart(context.Background(), domain.NewCart("nope", 1, nil))
	assert.Nil(t, got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	assert.Contains(t, err.Error(), "unknown product")
}

func TestUpdateItem_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/carts/c1", r.URL.Path)
		assert.Equal(t, map[string]any{"id": "p1", "requestedQuantity": float64(5)}, decodeBody(t, r))

		_, _ = w.Write([]byte(`{"id":"c1","itemQuantity":5,"productCartList":[{"id":"p1","requestedQuantity":5}]}`))
	})

	got, err := client.UpdateItem(context.Background(), "c1", "p1", 5)
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ID)
	assert.Equal(t, 5, got.ItemQuantity)
	require.Len(t, got.ProductCartList, 1)
	assert.Equal(t, 5, got.ProductCartList[0].RequestedQuantity)
}

func TestUpdateItem_EscapesID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/carts/a%2Fb", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{"id":"a/b"}`))
	})

	_, err := client.UpdateItem(context.Background(), "a/b", "p1", 1)
	require.NoError(t, err)
}

func TestUpdateItem_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"cart c1"}}`))
	})

	_, err := client.UpdateItem(context.Background(), "c1", "p1", 1)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestCheckout_SuccessWithData(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusCreated} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/carts/c1/checkout", r.URL.Path)
				body := decodeBody(t, r)
				assert.Equal(t, "paypal", body["paymentService"])

				w.WriteHeader(status)
				_, _ = w.Write([]byte(`{"data":{"status":"CART_PAYING"},"redirectUrl":"https://pay.example/x"}`))
			})

			cfg := domain.PaypalCheckoutConfig("https://shop/ok", "https://shop/ko", true, "")
			got, err := client.Checkout(context.Background(), "c1", cfg)
			require.NoError(t, err)
			assert.Equal(t, status, got.StatusCode)
			assert.JSONEq(t, `{"status":"CART_PAYING"}`, string(got.Data))
			assert.Equal(t, "https://pay.example/x", got.Body["redirectUrl"])
		})
	}
}

func TestCheckout_SuccessWithoutData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"intent":"redirect","data":null}`))
	})

	got, err := client.Checkout(context.Background(), "c1", domain.CheckoutConfig{})
	require.NoError(t, err)
	assert.Nil(t, got.Data)
	assert.Equal(t, "redirect", got.Body["intent"])
}

func TestCheckout_OtherSuccessStatusRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	_, err := client.Checkout(context.Background(), "c1", domain.CheckoutConfig{})
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestCheckout_ClientError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"invalid payment service"}`))
	})

	got, err := client.Checkout(context.Background(), "c1", domain.CheckoutConfig{})
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestCheckout_NoRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Checkout(context.Background(), "c1", domain.CheckoutConfig{})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCheckout_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := NewClient(httpclient.New(httpclient.DefaultConfig()), srv.URL, "", logger)

	_, err := client.Checkout(context.Background(), "c1", domain.CheckoutConfig{})
	assert.Error(t, err)
}

func TestReadCartPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "envelope", body: `{"data":{"id":"c1"}}`, want: `{"id":"c1"}`},
		{name: "bare", body: `{"id":"c1"}`, want: `{"id":"c1"}`},
		{name: "null data", body: `{"id":"c1","data":null}`, want: `{"id":"c1","data":null}`},
		{name: "empty", body: ``, want: `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readCartPayload(strings.NewReader(tt.body))
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}
