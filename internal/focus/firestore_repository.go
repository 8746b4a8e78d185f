package focus

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/MiguelL1304/aquascape/internal/profile"
)

const sessionsCollection = "focus_sessions"

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository instantiates a Firestore-backed repository.
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

func (r *firestoreRepository) userCollection(userID string) *firestore.CollectionRef {
	return r.client.Collection("users").Doc(userID).Collection(sessionsCollection)
}

func (r *firestoreRepository) Record(ctx context.Context, s Session) (int, error) {
	profileRef := r.client.Collection(profile.Collection).Doc(s.UserID)
	sessionRef := r.userCollection(s.UserID).Doc(s.ID)

	var balance int
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(profileRef)
		if status.Code(err) == codes.NotFound {
			return profile.ErrNotFound
		}
		if err != nil {
			return err
		}
		current, err := doc.DataAt(profile.FieldSeashells)
		if err != nil {
			return fmt.Errorf("read seashells: %w", err)
		}
		balance = int(asInt64(current)) + s.Seashells

		if err := tx.Create(sessionRef, s); err != nil {
			return err
		}
		return tx.Update(profileRef, []firestore.Update{
			{Path: profile.FieldSeashells, Value: firestore.Increment(s.Seashells)},
			{Path: profile.FieldUpdatedAt, Value: s.CreatedAt},
		})
	})
	if status.Code(err) == codes.AlreadyExists {
		return 0, ErrConflict
	}
	if err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *firestoreRepository) ListByRange(ctx context.Context, userID string, from, to time.Time) ([]Session, error) {
	iter := r.userCollection(userID).
		Where("started_at", ">=", from).
		Where("started_at", "<", to).
		OrderBy("started_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	out := make([]Session, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var s Session
		if err := doc.DataTo(&s); err != nil {
			return nil, fmt.Errorf("unmarshal focus session: %w", err)
		}
		s.ID = doc.Ref.ID
		s.UserID = userID
		out = append(out, s)
	}
	return out, nil
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}
