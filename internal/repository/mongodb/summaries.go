package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfarm/internal/domain/models"
)

// CreateSummary stores the close snapshot of a day. The day is the _id, so a
// second close of the same day fails on the primary key.
func (r *MongoDBRepository) CreateSummary(ctx context.Context, summary models.ProductionSummary) error {
	summary.Date = models.Normalize(summary.Date)
	summary.ID = models.FormatDay(summary.Date)
	_, err := r.summaries.InsertOne(ctx, summary)
	if err != nil {
		return translate("insert summary", err, models.ErrAlreadyClosed)
	}
	r.logger.Debug("summary stored", zap.String("date", summary.ID))
	return nil
}

// GetSummary returns the summary of day.
func (r *MongoDBRepository) GetSummary(ctx context.Context, day time.Time) (models.ProductionSummary, error) {
	var summary models.ProductionSummary
	err := r.summaries.FindOne(ctx, bson.M{"_id": models.FormatDay(day)}).Decode(&summary)
	if err != nil {
		return models.ProductionSummary{}, translate("find summary", err, nil)
	}
	return summary, nil
}

// LatestSummary returns the summary with the greatest date.
func (r *MongoDBRepository) LatestSummary(ctx context.Context) (models.ProductionSummary, error) {
	var summary models.ProductionSummary
	opts := options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}})
	if err := r.summaries.FindOne(ctx, bson.M{}, opts).Decode(&summary); err != nil {
		return models.ProductionSummary{}, translate("find latest summary", err, nil)
	}
	return summary, nil
}

// ListSummaries returns summaries between from and to inclusive, oldest first.
func (r *MongoDBRepository) ListSummaries(ctx context.Context, from, to time.Time) ([]models.ProductionSummary, error) {
	query := bson.M{"date": bson.M{"$gte": models.Normalize(from), "$lte": models.Normalize(to)}}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.summaries.Find(ctx, query, opts)
	if err != nil {
		return nil, translate("list summaries", err, nil)
	}
	out := make([]models.ProductionSummary, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, translate("decode summaries", err, nil)
	}
	return out, nil
}
