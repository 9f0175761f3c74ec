package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Checkout operation labels.
const (
	opCheckout         = "checkout"
	opPaypal           = "paypal"
	opPaypalComplete   = "paypal_complete"
	outcomeSuccess     = "success"
	outcomeRejected    = "rejected"
	outcomeStoreFailed = "store_failed"
)

var checkoutTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_checkout_total",
		Help: "Checkout calls by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)
