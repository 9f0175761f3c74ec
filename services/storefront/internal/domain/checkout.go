package domain

// Cart statuses the storefront acts on. Every other value is owned by the
// commerce API and treated as opaque.
const (
	// StatusPaying means the first checkout call left the cart awaiting
	// finalization, typically after a PayPal preapproval redirect.
	StatusPaying = "CART_PAYING"
)

// CanCompleteCheckout reports whether the finalize call of the checkout
// handshake is allowed from the cart's current status.
func (c *Cart) CanCompleteCheckout() bool {
	return c != nil && c.Status == StatusPaying
}

// Payment processor settings.
const (
	PaymentServicePaypal = "paypal"

	PaypalModeAdaptive = "adaptive"
	PaypalModeExpress  = "express"
)

// CheckoutConfig is the JSON body of a checkout request. Its shape depends on
// the payment processor and is passed through to the commerce API as is.
type CheckoutConfig map[string]any

// PaypalCheckoutConfig builds the PayPal checkout body. An empty mode means adaptive.
// The finalize call passes empty URLs since no redirect follows it.
func PaypalCheckoutConfig(successURL, failureURL string, preapproval bool, mode string) CheckoutConfig {
	if mode == "" {
		mode = PaypalModeAdaptive
	}
	return CheckoutConfig{
		"paymentService":    PaymentServicePaypal,
		"paypalMode":        mode,
		"paypalCancelUrl":   failureURL,
		"paypalReturnUrl":   successURL,
		"paypalPreapproval": preapproval,
	}
}
