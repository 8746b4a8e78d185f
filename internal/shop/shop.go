package shop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MiguelL1304/aquascape/internal/profile"
	"github.com/MiguelL1304/aquascape/internal/shared/clock"
)

// Item is something a user can buy with seashells.
type Item struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Kind      profile.ItemKind `json:"kind"`
	Price     int              `json:"price"`
	AssetPath string           `json:"asset_path"`
	AssetURL  string           `json:"asset_url,omitempty"`
	Owned     bool             `json:"owned"`
}

// ErrUnknownItem indicates the item id is not in the catalog.
var ErrUnknownItem = errors.New("unknown shop item")

// ProfileStore is the slice of the profile repository the shop needs.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (profile.Profile, error)
	Purchase(ctx context.Context, userID string, item profile.Purchase, now time.Time) (profile.Profile, error)
}

// AssetSigner turns an object path into a fetchable URL.
type AssetSigner interface {
	SignedURL(ctx context.Context, objectPath string) (string, error)
}

// Service lists the catalog and runs purchases.
type Service struct {
	profiles ProfileStore
	signer   AssetSigner
	clock    clock.Clock
	logger   *slog.Logger
	catalog  []Item
	byID     map[string]Item
}

// NewService constructs a Service. signer may be nil when no asset bucket is configured.
func NewService(profiles ProfileStore, signer AssetSigner, clk clock.Clock, logger *slog.Logger) (*Service, error) {
	if profiles == nil {
		return nil, errors.New("profile store is required")
	}
	if clk == nil {
		return nil, errors.New("clock is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	catalog := Catalog()
	byID := make(map[string]Item, len(catalog))
	for _, item := range catalog {
		byID[item.ID] = item
	}
	return &Service{profiles: profiles, signer: signer, clock: clk, logger: logger, catalog: catalog, byID: byID}, nil
}

// Items returns the catalog marked with what userID already owns. Asset URLs are signed
// concurrently; an item whose URL cannot be signed is returned without one.
func (s *Service) Items(ctx context.Context, userID string) ([]Item, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]Item, len(s.catalog))
	copy(items, s.catalog)
	for i := range items {
		items[i].Owned = p.Inventory.Owns(items[i].ID)
	}
	if s.signer == nil {
		return items, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range items {
		g.Go(func() error {
			url, err := s.signer.SignedURL(gctx, items[i].AssetPath)
			if err != nil {
				s.logger.Warn("sign asset url failed", "itemId", items[i].ID, "error", err)
				return nil
			}
			items[i].AssetURL = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// Purchase buys itemID for userID and returns the updated profile.
func (s *Service) Purchase(ctx context.Context, userID, itemID string) (profile.Profile, error) {
	if userID == "" {
		return profile.Profile{}, profile.ErrNotFound
	}
	item, ok := s.byID[strings.TrimSpace(itemID)]
	if !ok {
		return profile.Profile{}, fmt.Errorf("%w: %s", ErrUnknownItem, itemID)
	}
	return s.profiles.Purchase(ctx, userID, profile.Purchase{
		ItemID: item.ID,
		Kind:   item.Kind,
		Price:  item.Price,
	}, s.clock.Now().UTC())
}
