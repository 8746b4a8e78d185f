package recurrence

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const recurrencesCollection = "recurrences"

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository instantiates a Firestore-backed repository.
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

func (r *firestoreRepository) userCollection(userID string) *firestore.CollectionRef {
	return r.client.Collection("users").Doc(userID).Collection(recurrencesCollection)
}

func (r *firestoreRepository) Create(ctx context.Context, t Template) error {
	_, err := r.userCollection(t.UserID).Doc(t.ID).Create(ctx, t)
	if status.Code(err) == codes.AlreadyExists {
		return ErrConflict
	}
	return err
}

func (r *firestoreRepository) Get(ctx context.Context, userID, templateID string) (Template, error) {
	doc, err := r.userCollection(userID).Doc(templateID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Template{}, ErrNotFound
	}
	if err != nil {
		return Template{}, err
	}
	return decode(userID, doc)
}

func (r *firestoreRepository) List(ctx context.Context, userID string) ([]Template, error) {
	iter := r.userCollection(userID).OrderBy("created_at", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	out := make([]Template, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		t, err := decode(userID, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Each streams the "recurrences" collection group, covering every user's subcollection.
func (r *firestoreRepository) Each(ctx context.Context, fn func(Template) error) error {
	iter := r.client.CollectionGroup(recurrencesCollection).Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return err
		}
		userID := ""
		if owner := doc.Ref.Parent.Parent; owner != nil {
			userID = owner.ID
		}
		t, err := decode(userID, doc)
		if err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}
	}
}

func (r *firestoreRepository) Update(ctx context.Context, t Template) error {
	ref := r.userCollection(t.UserID).Doc(t.ID)
	_, err := ref.Update(ctx, []firestore.Update{
		{Path: "title", Value: t.Title},
		{Path: "category", Value: t.Category},
		{Path: "weekdays", Value: t.Weekdays},
		{Path: "duration_minutes", Value: t.DurationMinutes},
		{Path: "materialized_through", Value: t.MaterializedThrough},
		{Path: "updated_at", Value: t.UpdatedAt},
	})
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}

func (r *firestoreRepository) Delete(ctx context.Context, userID, templateID string) error {
	ref := r.userCollection(userID).Doc(templateID)
	if _, err := ref.Get(ctx); status.Code(err) == codes.NotFound {
		return ErrNotFound
	} else if err != nil {
		return err
	}
	_, err := ref.Delete(ctx)
	return err
}

func decode(userID string, doc *firestore.DocumentSnapshot) (Template, error) {
	var t Template
	if err := doc.DataTo(&t); err != nil {
		return Template{}, fmt.Errorf("unmarshal recurrence: %w", err)
	}
	t.ID = doc.Ref.ID
	if userID != "" {
		t.UserID = userID
	}
	return t, nil
}
