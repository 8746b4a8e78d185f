package profile

import (
	"fmt"
	"time"
)

// applyPurchase mutates p for a successful purchase; shared by both repositories so the
// balance and ownership rules cannot diverge.
func applyPurchase(p *Profile, item Purchase, now time.Time) error {
	if p.Inventory.Owns(item.ItemID) {
		return ErrAlreadyOwned
	}
	if item.Price < 0 {
		return fmt.Errorf("%w: negative price", ErrInvalidInput)
	}
	if p.Seashells < item.Price {
		return fmt.Errorf("%w: balance %d, price %d", ErrInsufficientSeashells, p.Seashells, item.Price)
	}

	p.Seashells -= item.Price
	switch item.Kind {
	case KindFish:
		p.Inventory.Fish = append(p.Inventory.Fish, item.ItemID)
	case KindDecoration:
		p.Inventory.Decorations = append(p.Inventory.Decorations, item.ItemID)
	default:
		return fmt.Errorf("%w: unknown item kind %q", ErrInvalidInput, item.Kind)
	}
	p.UpdatedAt = now
	return nil
}
