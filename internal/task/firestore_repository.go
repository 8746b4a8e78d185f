package task

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"cloud.google.com/go/firestore"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/MiguelL1304/aquascape/internal/stats"
)

const (
	tasksCollection = "tasks"
	// deleteChunk bounds the documents touched by one transaction, leaving room under
	// Firestore's write limit for the stats bucket documents.
	deleteChunk       = 200
	createParallelism = 8
)

type firestoreRepository struct {
	client *firestore.Client
	now    func() time.Time
}

// NewFirestoreRepository instantiates a Firestore-backed repository.
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client, now: time.Now}
}

func (r *firestoreRepository) userCollection(userID string) *firestore.CollectionRef {
	return r.client.Collection("users").Doc(userID).Collection(tasksCollection)
}

func (r *firestoreRepository) Create(ctx context.Context, t Task, muts []stats.Mutation) error {
	ref := r.userCollection(t.UserID).Doc(t.ID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(ref, t); err != nil {
			return err
		}
		return stats.StageIncrements(tx, r.client, t.UserID, muts, r.now().UTC())
	})
	if status.Code(err) == codes.AlreadyExists {
		return ErrConflict
	}
	return err
}

func (r *firestoreRepository) CreateMany(ctx context.Context, userID string, tasks []Task) (int, error) {
	var created atomic.Int64
	col := r.userCollection(userID)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(createParallelism)
	for _, t := range tasks {
		g.Go(func() error {
			_, err := col.Doc(t.ID).Create(ctx, t)
			if status.Code(err) == codes.AlreadyExists {
				return nil
			}
			if err != nil {
				return fmt.Errorf("create task %s: %w", t.ID, err)
			}
			created.Add(1)
			return nil
		})
	}
	err := g.Wait()
	return int(created.Load()), err
}

func (r *firestoreRepository) Get(ctx context.Context, userID, taskID string) (Task, error) {
	doc, err := r.userCollection(userID).Doc(taskID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, err
	}
	return decode(userID, doc)
}

func (r *firestoreRepository) ListByDateRange(ctx context.Context, userID, from, to string) ([]Task, error) {
	query := r.userCollection(userID).
		Where("date", ">=", from).
		Where("date", "<=", to).
		OrderBy("date", firestore.Asc)
	return r.collect(ctx, userID, query)
}

func (r *firestoreRepository) ListByRecurrence(ctx context.Context, userID, recurrenceID string) ([]Task, error) {
	if recurrenceID == "" {
		return []Task{}, nil
	}
	query := r.userCollection(userID).Where("recurrence_id", "==", recurrenceID)
	return r.collect(ctx, userID, query)
}

func (r *firestoreRepository) collect(ctx context.Context, userID string, query firestore.Query) ([]Task, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	out := make([]Task, 0)
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
	sortTasks(out)
	return out, nil
}

func (r *firestoreRepository) Update(ctx context.Context, userID, taskID string, fn Mutator) (Task, error) {
	var updated Task
	ref := r.userCollection(userID).Doc(taskID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		current, err := decode(userID, doc)
		if err != nil {
			return err
		}

		next, muts, err := fn(current)
		if err != nil {
			return err
		}
		next.ID = current.ID
		next.UserID = current.UserID
		updated = next

		if err := tx.Set(ref, next); err != nil {
			return err
		}
		return stats.StageIncrements(tx, r.client, userID, muts, r.now().UTC())
	})
	if err != nil {
		return Task{}, err
	}
	return updated, nil
}

func (r *firestoreRepository) Delete(ctx context.Context, userID, taskID string, fn Revert) (Task, error) {
	var removed Task
	ref := r.userCollection(userID).Doc(taskID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		current, err := decode(userID, doc)
		if err != nil {
			return err
		}
		removed = current

		if err := tx.Delete(ref); err != nil {
			return err
		}
		if fn == nil {
			return nil
		}
		return stats.StageIncrements(tx, r.client, userID, fn(current), r.now().UTC())
	})
	if err != nil {
		return Task{}, err
	}
	return removed, nil
}

func (r *firestoreRepository) DeleteMany(ctx context.Context, userID string, taskIDs []string, fn Revert) (int, error) {
	col := r.userCollection(userID)
	total := 0

	for start := 0; start < len(taskIDs); start += deleteChunk {
		end := min(start+deleteChunk, len(taskIDs))
		refs := make([]*firestore.DocumentRef, 0, end-start)
		for _, id := range taskIDs[start:end] {
			refs = append(refs, col.Doc(id))
		}

		var deleted int
		err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
			deleted = 0
			docs, err := tx.GetAll(refs)
			if err != nil {
				return err
			}

			var muts []stats.Mutation
			for _, doc := range docs {
				if !doc.Exists() {
					continue
				}
				current, err := decode(userID, doc)
				if err != nil {
					return err
				}
				if fn != nil {
					muts = append(muts, fn(current)...)
				}
				if err := tx.Delete(doc.Ref); err != nil {
					return err
				}
				deleted++
			}
			return stats.StageIncrements(tx, r.client, userID, muts, r.now().UTC())
		})
		if err != nil {
			return total, fmt.Errorf("delete tasks: %w", err)
		}
		total += deleted
	}
	return total, nil
}

func decode(userID string, doc *firestore.DocumentSnapshot) (Task, error) {
	var t Task
	if err := doc.DataTo(&t); err != nil {
		return Task{}, fmt.Errorf("unmarshal task: %w", err)
	}
	t.ID = doc.Ref.ID
	t.UserID = userID
	return t, nil
}
