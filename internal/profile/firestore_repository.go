package profile

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Collection is the Firestore collection holding profile documents keyed by user id.
const Collection = "profiles"

// Field names shared with repositories that touch the profile inside their own transactions.
const (
	FieldSeashells = "seashells"
	FieldUpdatedAt = "updated_at"
)

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository creates a new Firestore repository.
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

func (r *firestoreRepository) doc(userID string) *firestore.DocumentRef {
	return r.client.Collection(Collection).Doc(userID)
}

func (r *firestoreRepository) Create(ctx context.Context, p Profile) error {
	_, err := r.doc(p.UserID).Create(ctx, p)
	if status.Code(err) == codes.AlreadyExists {
		return ErrConflict
	}
	return err
}

func (r *firestoreRepository) Get(ctx context.Context, userID string) (Profile, error) {
	doc, err := r.doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	return decode(userID, doc)
}

func (r *firestoreRepository) SetAvatar(ctx context.Context, userID, avatar string, now time.Time) (Profile, error) {
	_, err := r.doc(userID).Update(ctx, []firestore.Update{
		{Path: "avatar", Value: avatar},
		{Path: FieldUpdatedAt, Value: now},
	})
	if status.Code(err) == codes.NotFound {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	return r.Get(ctx, userID)
}

func (r *firestoreRepository) AddSeashells(ctx context.Context, userID string, amount int, now time.Time) (Profile, error) {
	_, err := r.doc(userID).Update(ctx, []firestore.Update{
		{Path: FieldSeashells, Value: firestore.Increment(amount)},
		{Path: FieldUpdatedAt, Value: now},
	})
	if status.Code(err) == codes.NotFound {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	return r.Get(ctx, userID)
}

func (r *firestoreRepository) AwardBadges(ctx context.Context, userID string, badges []EarnedBadge) ([]EarnedBadge, error) {
	var awarded []EarnedBadge
	ref := r.doc(userID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		awarded = nil

		doc, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		p, err := decode(userID, doc)
		if err != nil {
			return err
		}

		var union []any
		for _, b := range badges {
			if p.HasBadge(b.ID) {
				continue
			}
			awarded = append(awarded, b)
			union = append(union, map[string]any{"id": b.ID, "earned_at": b.EarnedAt})
		}
		if len(union) == 0 {
			return nil
		}
		return tx.Update(ref, []firestore.Update{{Path: "badges", Value: firestore.ArrayUnion(union...)}})
	})
	if err != nil {
		return nil, err
	}
	return awarded, nil
}

func (r *firestoreRepository) Purchase(ctx context.Context, userID string, item Purchase, now time.Time) (Profile, error) {
	var updated Profile
	ref := r.doc(userID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		p, err := decode(userID, doc)
		if err != nil {
			return err
		}
		if err := applyPurchase(&p, item, now); err != nil {
			return err
		}

		inventoryField := "inventory.fish"
		if item.Kind == KindDecoration {
			inventoryField = "inventory.decorations"
		}
		updated = p
		return tx.Update(ref, []firestore.Update{
			{Path: FieldSeashells, Value: firestore.Increment(-item.Price)},
			{Path: inventoryField, Value: firestore.ArrayUnion(item.ItemID)},
			{Path: FieldUpdatedAt, Value: now},
		})
	})
	if err != nil {
		return Profile{}, err
	}
	return updated, nil
}

func decode(userID string, doc *firestore.DocumentSnapshot) (Profile, error) {
	var p Profile
	if err := doc.DataTo(&p); err != nil {
		return Profile{}, fmt.Errorf("unmarshal profile: %w", err)
	}
	p.UserID = userID
	return p, nil
}
