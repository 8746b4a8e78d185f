package stats

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	usersCollection = "users"
	statsCollection = "stats"
)

type firestoreRepository struct {
	client *firestore.Client
	now    func() time.Time
}

// NewFirestoreRepository creates a Firestore-backed stats repository.
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client, now: time.Now}
}

// BucketRef is the document holding every period of bucket for userID.
func BucketRef(client *firestore.Client, userID string, bucket Bucket) *firestore.DocumentRef {
	return client.Collection(usersCollection).Doc(userID).Collection(statsCollection).Doc(string(bucket))
}

// StageIncrements queues the bucket writes for muts on tx. It performs no reads, so it can
// run after the caller's own transactional reads.
func StageIncrements(tx *firestore.Transaction, client *firestore.Client, userID string, muts []Mutation, now time.Time) error {
	for bucket, periods := range Coalesce(muts) {
		if err := tx.Set(BucketRef(client, userID, bucket), incrementData(periods, now), firestore.MergeAll); err != nil {
			return fmt.Errorf("stage %s increments: %w", bucket, err)
		}
	}
	return nil
}

func incrementData(periods map[string]Counters, now time.Time) map[string]any {
	data := make(map[string]any, len(periods))
	for key, inc := range periods {
		period := map[string]any{
			"task_count":  firestore.Increment(inc.TaskCount),
			"time_logged": firestore.Increment(inc.TimeLogged),
		}
		if len(inc.Categories) > 0 {
			categories := make(map[string]any, len(inc.Categories))
			for cat, n := range inc.Categories {
				categories[cat] = firestore.Increment(n)
			}
			period["categories"] = categories
		}
		data[key] = period
	}
	return map[string]any{
		"periods":    data,
		"updated_at": now,
	}
}

func (r *firestoreRepository) Apply(ctx context.Context, userID string, muts []Mutation) error {
	if userID == "" {
		return ErrMissingUserID
	}
	if len(muts) == 0 {
		return nil
	}
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return StageIncrements(tx, r.client, userID, muts, r.now().UTC())
	})
}

func (r *firestoreRepository) Period(ctx context.Context, userID string, bucket Bucket, key string) (Counters, error) {
	periods, err := r.Bucket(ctx, userID, bucket)
	if err != nil {
		return Counters{}, err
	}
	return periods[key], nil
}

func (r *firestoreRepository) Bucket(ctx context.Context, userID string, bucket Bucket) (map[string]Counters, error) {
	doc, err := BucketRef(r.client, userID, bucket).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return map[string]Counters{}, nil
	}
	if err != nil {
		return nil, err
	}

	var payload struct {
		Periods map[string]Counters `firestore:"periods"`
	}
	if err := doc.DataTo(&payload); err != nil {
		return nil, fmt.Errorf("unmarshal %s stats: %w", bucket, err)
	}
	if payload.Periods == nil {
		payload.Periods = map[string]Counters{}
	}
	return payload.Periods, nil
}
