package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/m-mizutani/ghtask/pkg/domain/model"
)

const defaultCollection = "ghtask_items"

// Store keeps tracked items as documents of a Firestore collection
type Store struct {
	client     *firestore.Client
	collection string
}

type config struct {
	databaseID      string
	collection      string
	credentialsFile string
}

// Option is a functional option for Store
type Option func(*config)

// WithDatabaseID selects a non-default Firestore database
func WithDatabaseID(id string) Option {
	return func(c *config) {
		c.databaseID = id
	}
}

// WithCollection overrides the collection name
func WithCollection(name string) Option {
	return func(c *config) {
		c.collection = name
	}
}

// WithCredentialsFile uses a service account key instead of default credentials
func WithCredentialsFile(path string) Option {
	return func(c *config) {
		c.credentialsFile = path
	}
}

// New connects to Firestore in projectID
func New(ctx context.Context, projectID string, opts ...Option) (*Store, error) {
	if projectID == "" {
		return nil, goerr.New("firestore project ID is required", goerr.T(model.ErrTagConfig))
	}

	cfg := &config{
		databaseID: firestore.DefaultDatabaseID,
		collection: defaultCollection,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var clientOpts []option.ClientOption
	if cfg.credentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.credentialsFile))
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, cfg.databaseID, clientOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project_id", projectID),
			goerr.V("database_id", cfg.databaseID),
		)
	}

	return &Store{client: client, collection: cfg.collection}, nil
}

// Shutdown releases the Firestore client
func (s *Store) Shutdown() error {
	return s.client.Close()
}

type document struct {
	IdentityKey string    `firestore:"identity_key"`
	Description string    `firestore:"description"`
	Project     string    `firestore:"project"`
	Status      string    `firestore:"status"`
	Priority    string    `firestore:"priority"`
	Tags        []string  `firestore:"tags"`
	UpstreamRef string    `firestore:"upstream_ref"`
	CreatedAt   time.Time `firestore:"created_at"`
	UpdatedAt   time.Time `firestore:"updated_at"`
}

func (d *document) toItem(id string) *model.TrackedItem {
	return &model.TrackedItem{
		ID:          id,
		IdentityKey: d.IdentityKey,
		Description: d.Description,
		Project:     d.Project,
		Status:      model.TaskStatus(d.Status),
		Priority:    model.Priority(d.Priority),
		Tags:        d.Tags,
		UpstreamRef: d.UpstreamRef,
	}
}

// query runs q and keeps documents carrying every tag. Firestore allows a
// single array-contains filter per query, so tags are matched here.
func (s *Store) query(ctx context.Context, q firestore.Query, tags []string) ([]*model.TrackedItem, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var items []*model.TrackedItem
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate documents", goerr.V("collection", s.collection))
		}

		var doc document
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode document", goerr.V("id", snap.Ref.ID))
		}
		item := doc.toItem(snap.Ref.ID)
		if item.HasTags(tags) {
			items = append(items, item)
		}
	}
	return items, nil
}

func (s *Store) pending() firestore.Query {
	return s.client.Collection(s.collection).Where("status", "==", string(model.TaskStatusPending))
}

func (s *Store) Exists(ctx context.Context, identityKey string, tags []string) (bool, error) {
	items, err := s.query(ctx, s.pending().Where("identity_key", "==", identityKey), tags)
	if err != nil {
		return false, err
	}
	return len(items) > 0, nil
}

func (s *Store) Create(ctx context.Context, spec *model.TaskSpec) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	doc := &document{
		IdentityKey: spec.IdentityKey,
		Description: spec.Description,
		Project:     spec.Project,
		Status:      string(model.TaskStatusPending),
		Priority:    string(spec.Priority),
		Tags:        spec.Tags,
		UpstreamRef: spec.UpstreamRef,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.client.Collection(s.collection).Doc(id).Create(ctx, doc); err != nil {
		return "", goerr.Wrap(err, "failed to create document",
			goerr.V("id", id),
			goerr.V("identity_key", spec.IdentityKey),
		)
	}
	return id, nil
}

func (s *Store) ListPending(ctx context.Context, tags []string) ([]*model.TrackedItem, error) {
	return s.query(ctx, s.pending(), tags)
}

func (s *Store) Close(ctx context.Context, id string) error {
	_, err := s.client.Collection(s.collection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(model.TaskStatusDone)},
		{Path: "updated_at", Value: time.Now().UTC()},
	})
	if status.Code(err) == codes.NotFound {
		return goerr.Wrap(err, "item not found", goerr.V("id", id))
	}
	if err != nil {
		return goerr.Wrap(err, "failed to close item", goerr.V("id", id))
	}
	return nil
}
