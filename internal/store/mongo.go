// Package store reads the local MongoDB mirror of upstream entities. The
// mirror is a possibly-stale copy of the system of record: it is never
// written by this service, and an empty or unreachable mirror only means
// "this path could not answer", never "no data exists".
package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"steve-mcp/internal/config"
	"steve-mcp/internal/logging"
	"steve-mcp/internal/steveapi"
)

const productsCollection = "products"

// productDoc is the mirror's native shape for a product
type productDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	WorkspaceID primitive.ObjectID `bson:"workspace_id"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	CreatedAt   time.Time          `bson:"created_at"`
}

// MongoMirror is a read-only handle on the mirror database. Safe for
// concurrent use; long-lived for the process lifetime.
type MongoMirror struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
	logger  logging.Logger
}

// Connect opens the mirror connection. The connection is verified lazily; a
// mirror that is down at startup still lets the server come up, with reads
// falling back to the API until it recovers.
func Connect(ctx context.Context, cfg config.MongoConfig, logger logging.Logger) (*MongoMirror, error) {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	return &MongoMirror{
		client:  client,
		db:      client.Database(cfg.Database),
		timeout: timeout,
		logger:  logger,
	}, nil
}

// ListProducts looks up the mirror's products for a workspace. Store-level
// faults (bad identifier, connection loss, decode mismatch) are folded into a
// Miss rather than propagated; the caller decides whether to fall back.
func (m *MongoMirror) ListProducts(ctx context.Context, workspaceID string) ProductLookup {
	workspaceOID, err := primitive.ObjectIDFromHex(workspaceID)
	if err != nil {
		return ProductLookup{Miss: MissError, Err: fmt.Errorf("workspace id %q is not a valid object id: %w", workspaceID, err)}
	}

	queryCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	cursor, err := m.db.Collection(productsCollection).Find(queryCtx, bson.M{"workspace_id": workspaceOID})
	if err != nil {
		return ProductLookup{Miss: MissError, Err: fmt.Errorf("querying products: %w", err)}
	}

	var docs []productDoc
	if err := cursor.All(queryCtx, &docs); err != nil {
		return ProductLookup{Miss: MissError, Err: fmt.Errorf("decoding products: %w", err)}
	}

	if len(docs) == 0 {
		return ProductLookup{Miss: MissEmpty}
	}

	products := make([]steveapi.Product, 0, len(docs))
	for i := range docs {
		products = append(products, docs[i].toProduct())
	}
	return ProductLookup{Products: products}
}

func (d *productDoc) toProduct() steveapi.Product {
	var createdAt string
	if !d.CreatedAt.IsZero() {
		createdAt = d.CreatedAt.UTC().Format(time.RFC3339)
	}
	return steveapi.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   createdAt,
	}
}

// Ping checks mirror liveness for the health probe
func (m *MongoMirror) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.client.Ping(pingCtx, readpref.Primary())
}

// Close tears down the mirror connection
func (m *MongoMirror) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
