package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/utafrali/EcommerceGo/services/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/repository"
)

const (
	// CartsKey is the session key holding the region -> snapshot mapping.
	CartsKey = "carts"
	// ActiveCartToken names the token pointing at the cart being transacted.
	ActiveCartToken = "cart_id"

	tokenPath = "/"
)

// Registry keeps one cart snapshot per region in the user's session plus a
// single active-cart pointer in a longer-lived token. It is built per request
// around that request's stores.
//
// The mapping and the pointer are written independently; the pointer may
// reference a snapshot that was overwritten since. Only DeleteCart reconciles them.
type Registry struct {
	sessions repository.SessionStore
	tokens   repository.TokenStore
	tokenTTL time.Duration
	logger   *slog.Logger
}

// NewRegistry creates a registry. tokenTTL is the lifetime given to the
// active-cart token each time it is set.
func NewRegistry(sessions repository.SessionStore, tokens repository.TokenStore, tokenTTL time.Duration, logger *slog.Logger) *Registry {
	return &Registry{
		sessions: sessions,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// GetActiveCart returns the snapshot stored for region, or nil when there is
// none. A hit re-marks the snapshot's cart as active, refreshing the token expiry.
func (r *Registry) GetActiveCart(ctx context.Context, region string) (*domain.Snapshot, error) {
	carts, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	snap, ok := carts[region]
	if !ok {
		return nil, nil
	}

	if err := r.activate(ctx, snap.ID); err != nil {
		return nil, err
	}
	return &snap, nil
}

// DeleteCart removes the first region entry whose snapshot has cartID and
// clears the active pointer if it referenced that cart. Regions are scanned
// in ascending code order. Returns false when no entry matched.
func (r *Registry) DeleteCart(ctx context.Context, cartID string) (bool, error) {
	carts, err := r.load(ctx)
	if err != nil {
		return false, err
	}

	for _, region := range slices.Sorted(maps.Keys(carts)) {
		if carts[region].ID != cartID {
			continue
		}

		delete(carts, region)
		if err := r.save(ctx, carts); err != nil {
			return false, err
		}

		active, err := r.ActiveCartID(ctx)
		if err != nil {
			return true, err
		}
		if active == cartID {
			if err := r.ResetActiveCart(ctx); err != nil {
				return true, err
			}
		}

		r.logger.DebugContext(ctx, "cart removed from session",
			slog.String("cart_id", cartID),
			slog.String("region", region),
		)
		return true, nil
	}

	return false, nil
}

// StoreCart writes the cart's snapshot for region, replacing any previous
// one, and marks the cart active. A cart without an id is stored as is.
func (r *Registry) StoreCart(ctx context.Context, cart *domain.Cart, region string) error {
	carts, err := r.load(ctx)
	if err != nil {
		return err
	}

	carts[region] = cart.Snapshot()
	if err := r.save(ctx, carts); err != nil {
		return err
	}

	return r.activate(ctx, cart.ID)
}

// SwitchActiveRegion points the active token at region's snapshot and returns
// true. When region has no snapshot the token is cleared and false is returned.
func (r *Registry) SwitchActiveRegion(ctx context.Context, region string) (bool, error) {
	carts, err := r.load(ctx)
	if err != nil {
		return false, err
	}

	if snap, ok := carts[region]; ok {
		if err := r.activate(ctx, snap.ID); err != nil {
			return false, err
		}
		return true, nil
	}

	if err := r.ResetActiveCart(ctx); err != nil {
		return false, err
	}
	return false, nil
}

// ActiveCartID reads the active-cart token. It does not consult the session.
func (r *Registry) ActiveCartID(ctx context.Context) (string, error) {
	id, err := r.tokens.Get(ctx, ActiveCartToken)
	if err != nil {
		return "", fmt.Errorf("read active cart token: %w", err)
	}
	return id, nil
}

// ResetActiveCart expires the active-cart token.
func (r *Registry) ResetActiveCart(ctx context.Context) error {
	if err := r.tokens.Clear(ctx, ActiveCartToken); err != nil {
		return fmt.Errorf("clear active cart token: %w", err)
	}
	return nil
}

// Snapshots returns a copy of the whole region -> snapshot mapping.
func (r *Registry) Snapshots(ctx context.Context) (map[string]domain.Snapshot, error) {
	return r.load(ctx)
}

func (r *Registry) activate(ctx context.Context, cartID string) error {
	if err := r.tokens.Set(ctx, ActiveCartToken, cartID, r.tokenTTL, tokenPath); err != nil {
		return fmt.Errorf("set active cart token: %w", err)
	}
	return nil
}

// load reads the mapping. A missing or undecodable value yields an empty mapping.
func (r *Registry) load(ctx context.Context) (map[string]domain.Snapshot, error) {
	raw, err := r.sessions.Get(ctx, CartsKey)
	if err != nil {
		return nil, fmt.Errorf("read session carts: %w", err)
	}

	carts := make(map[string]domain.Snapshot)
	if len(raw) == 0 {
		return carts, nil
	}
	if err := json.Unmarshal(raw, &carts); err != nil {
		r.logger.WarnContext(ctx, "discarding undecodable session carts",
			slog.String("error", err.Error()),
		)
		return make(map[string]domain.Snapshot), nil
	}
	if carts == nil {
		carts = make(map[string]domain.Snapshot)
	}
	return carts, nil
}

func (r *Registry) save(ctx context.Context, carts map[string]domain.Snapshot) error {
	data, err := json.Marshal(carts)
	if err != nil {
		return fmt.Errorf("marshal session carts: %w", err)
	}
	if err := r.sessions.Put(ctx, CartsKey, data); err != nil {
		return fmt.Errorf("write session carts: %w", err)
	}
	return nil
}
