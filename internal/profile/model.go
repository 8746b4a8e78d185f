package profile

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Profile is the persisted user document.
type Profile struct {
	UserID      string        `json:"user_id" firestore:"user_id"`
	DisplayName string        `json:"display_name" firestore:"display_name"`
	Avatar      string        `json:"avatar" firestore:"avatar"`
	Seashells   int           `json:"seashells" firestore:"seashells"`
	Inventory   Inventory     `json:"inventory" firestore:"inventory"`
	Badges      []EarnedBadge `json:"badges" firestore:"badges"`
	CreatedAt   time.Time     `json:"created_at" firestore:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" firestore:"updated_at"`
}

// Inventory holds the collectible item ids a user owns.
type Inventory struct {
	Fish        []string `json:"fish" firestore:"fish"`
	Decorations []string `json:"decorations" firestore:"decorations"`
}

// Owns reports whether itemID is already in the inventory.
func (i Inventory) Owns(itemID string) bool {
	for _, id := range i.Fish {
		if id == itemID {
			return true
		}
	}
	for _, id := range i.Decorations {
		if id == itemID {
			return true
		}
	}
	return false
}

// EarnedBadge records when a badge was unlocked.
type EarnedBadge struct {
	ID       string    `json:"id" firestore:"id"`
	EarnedAt time.Time `json:"earned_at" firestore:"earned_at"`
}

// HasBadge reports whether badgeID was already earned.
func (p Profile) HasBadge(badgeID string) bool {
	for _, b := range p.Badges {
		if b.ID == badgeID {
			return true
		}
	}
	return false
}

// ItemKind separates fish from decorations in the inventory.
type ItemKind string

const (
	KindFish       ItemKind = "fish"
	KindDecoration ItemKind = "decoration"
)

// Purchase describes an item being bought with seashells.
type Purchase struct {
	ItemID string
	Kind   ItemKind
	Price  int
}

// CreateInput captures signup data.
type CreateInput struct {
	UserID      string `validate:"required"`
	DisplayName string `validate:"max=60"`
	Avatar      string
}

// Avatars is the selectable avatar catalog; the first entry is the default.
var Avatars = []string{
	"clownfish",
	"octopus",
	"sea_turtle",
	"seahorse",
	"jellyfish",
	"pufferfish",
}

// DefaultAvatar is assigned at signup when none is chosen.
var DefaultAvatar = Avatars[0]

// AvatarLabel renders an avatar id for display, e.g. "sea_turtle" -> "Sea Turtle".
func AvatarLabel(avatar string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(avatar, "_", " "))
}

var (
	// ErrNotFound indicates the profile does not exist.
	ErrNotFound = errors.New("profile not found")
	// ErrConflict indicates the profile already exists.
	ErrConflict = errors.New("profile already exists")
	// ErrInvalidInput indicates the provided data failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInsufficientSeashells indicates the balance cannot cover a purchase.
	ErrInsufficientSeashells = errors.New("insufficient seashells")
	// ErrAlreadyOwned indicates the item is already in the inventory.
	ErrAlreadyOwned = errors.New("item already owned")
)

// Repository persists profiles.
type Repository interface {
	Create(ctx context.Context, p Profile) error
	Get(ctx context.Context, userID string) (Profile, error)
	SetAvatar(ctx context.Context, userID, avatar string, now time.Time) (Profile, error)
	// AwardBadges stores the badges not yet earned and returns only those.
	AwardBadges(ctx context.Context, userID string, badges []EarnedBadge) ([]EarnedBadge, error)
	AddSeashells(ctx context.Context, userID string, amount int, now time.Time) (Profile, error)
	// Purchase atomically checks the balance, deducts the price and stores the item.
	Purchase(ctx context.Context, userID string, item Purchase, now time.Time) (Profile, error)
}

// Materializer expands a user's recurrence templates up to a date.
type Materializer interface {
	Materialize(ctx context.Context, userID string, through time.Time) (int, error)
}
