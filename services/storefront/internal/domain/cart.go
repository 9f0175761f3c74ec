package domain

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Cart is the storefront's working copy of a commerce API cart. JSON names
// follow the commerce API representation.
type Cart struct {
	ID              string          `json:"id,omitempty"`
	ProductCartList []CartItem      `json:"productCartList"`
	ItemQuantity    int             `json:"itemQuantity,omitempty"`
	Totals          json.RawMessage `json:"totals,omitempty"`
	Currency        string          `json:"currency,omitempty"`
	CurrencySymbol  string          `json:"currencySymbol,omitempty"`
	Country         string          `json:"country,omitempty"`
	Status          string          `json:"status,omitempty"`
	Settings        map[string]any  `json:"settings,omitempty"`
	Message         string          `json:"message,omitempty"`
}

// CartItem is one line of a cart. Uniqueness of product IDs is enforced by the API, not here.
type CartItem struct {
	ProductID         string `json:"id"`
	RequestedQuantity int    `json:"requestedQuantity"`
}

// NewCart returns an unsaved cart holding a single line item.
// settings are attached only when non-empty.
func NewCart(productID string, quantity int, settings map[string]any) *Cart {
	c := &Cart{
		ProductCartList: []CartItem{{ProductID: productID, RequestedQuantity: quantity}},
	}
	if len(settings) > 0 {
		c.Settings = maps.Clone(settings)
	}
	return c
}

// IsPersisted reports whether the commerce API has assigned the cart an id.
func (c *Cart) IsPersisted() bool {
	return c != nil && c.ID != ""
}

// Clone returns a deep copy of the cart.
func (c *Cart) Clone() *Cart {
	cp := *c
	cp.ProductCartList = slices.Clone(c.ProductCartList)
	cp.Totals = slices.Clone(c.Totals)
	cp.Settings = maps.Clone(c.Settings)
	return &cp
}

// Apply overwrites the fields present in the JSON object data. Fields absent
// from data keep their values. On a decode error the cart is left untouched.
func (c *Cart) Apply(data json.RawMessage) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("apply cart data: %w", err)
	}
	next := c.Clone()
	// Collections present in data replace the old ones rather than merge.
	if _, ok := fields["settings"]; ok {
		next.Settings = nil
	}
	if _, ok := fields["productCartList"]; ok {
		next.ProductCartList = nil
	}
	if err := json.Unmarshal(data, next); err != nil {
		return fmt.Errorf("apply cart data: %w", err)
	}
	*c = *next
	return nil
}

// Snapshot returns the plain-data copy stored in the session registry.
func (c *Cart) Snapshot() Snapshot {
	cp := c.Clone()
	return Snapshot{
		ID:              cp.ID,
		ProductCartList: cp.ProductCartList,
		ItemQuantity:    cp.ItemQuantity,
		Totals:          cp.Totals,
		Currency:        cp.Currency,
		CurrencySymbol:  cp.CurrencySymbol,
		Country:         cp.Country,
		Status:          cp.Status,
		Settings:        cp.Settings,
		Message:         cp.Message,
	}
}

// Snapshot is the serialized form of a cart kept in the user's session, one per region.
type Snapshot struct {
	ID              string          `json:"id"`
	ProductCartList []CartItem      `json:"productCartList"`
	ItemQuantity    int             `json:"itemQuantity"`
	Totals          json.RawMessage `json:"totals,omitempty"`
	Currency        string          `json:"currency"`
	CurrencySymbol  string          `json:"currencySymbol"`
	Country         string          `json:"country"`
	Status          string          `json:"status"`
	Settings        map[string]any  `json:"settings,omitempty"`
	Message         string          `json:"message,omitempty"`
}

// Cart rehydrates a live cart from the snapshot.
func (s Snapshot) Cart() *Cart {
	c := &Cart{
		ID:              s.ID,
		ProductCartList: s.ProductCartList,
		ItemQuantity:    s.ItemQuantity,
		Totals:          s.Totals,
		Currency:        s.Currency,
		CurrencySymbol:  s.CurrencySymbol,
		Country:         s.Country,
		Status:          s.Status,
		Settings:        s.Settings,
		Message:         s.Message,
	}
	return c.Clone()
}
