package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfarm/internal/domain/models"
)

const (
	animalsCollection    = "animals"
	productionCollection = "production_records"
	salesCollection      = "sales_records"
	summariesCollection  = "production_summaries"
)

// MongoDBRepository implements every ledger store on MongoDB.
type MongoDBRepository struct {
	client     *mongo.Client
	animals    *mongo.Collection
	production *mongo.Collection
	sales      *mongo.Collection
	summaries  *mongo.Collection
	logger     *zap.Logger
}

// NewMongoDBRepository connects, verifies the connection and ensures indexes.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(dbName)
	repo := &MongoDBRepository{
		client:     client,
		animals:    db.Collection(animalsCollection),
		production: db.Collection(productionCollection),
		sales:      db.Collection(salesCollection),
		summaries:  db.Collection(summariesCollection),
		logger:     logger,
	}

	if err := repo.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return repo, nil
}

// EnsureIndexes creates the unique and lookup indexes the ledger relies on.
// Summaries are keyed by day through _id.
func (r *MongoDBRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.production.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "animal_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_animal_day"),
		},
		{
			Keys:    bson.D{{Key: "date", Value: -1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("date_desc"),
		},
	})
	if err != nil {
		return fmt.Errorf("create production indexes: %w", err)
	}

	_, err = r.sales.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: 1}, {Key: "time_recorded", Value: 1}},
		Options: options.Index().SetName("date_time"),
	})
	if err != nil {
		return fmt.Errorf("create sales indexes: %w", err)
	}

	_, err = r.summaries.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: -1}},
		Options: options.Index().SetUnique(true).SetName("uniq_date"),
	})
	if err != nil {
		return fmt.Errorf("create summary indexes: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (r *MongoDBRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx, nil); err != nil {
		return models.Transient("ping mongodb", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// translate maps driver errors onto the domain taxonomy.
func translate(op string, err error, duplicate error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	case duplicate != nil && mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, duplicate)
	default:
		return models.Transient(op, err)
	}
}
