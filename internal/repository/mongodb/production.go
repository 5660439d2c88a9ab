package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/dairyfarm/internal/domain/models"
)

// CreateProduction inserts a record. The unique (animal_id, date) index
// rejects a second record for the same animal and day.
func (r *MongoDBRepository) CreateProduction(ctx context.Context, rec models.ProductionRecord) error {
	rec.Date = models.Normalize(rec.Date)
	_, err := r.production.InsertOne(ctx, rec)
	return translate("insert production record", err, models.ErrDuplicateProduction)
}

// GetProduction returns a record by id.
func (r *MongoDBRepository) GetProduction(ctx context.Context, id string) (models.ProductionRecord, error) {
	var rec models.ProductionRecord
	err := r.production.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err != nil {
		return models.ProductionRecord{}, translate("find production record", err, nil)
	}
	return rec, nil
}

// UpdateProduction rewrites quantities, notes and derived fields.
func (r *MongoDBRepository) UpdateProduction(ctx context.Context, rec models.ProductionRecord) error {
	rec.Recalculate()
	res, err := r.production.UpdateByID(ctx, rec.ID, bson.M{"$set": bson.M{
		"morning_quantity":    rec.MorningQuantity,
		"evening_quantity":    rec.EveningQuantity,
		"calf_quantity":       rec.CalfQuantity,
		"posho_quantity":      rec.PoshoQuantity,
		"total_quantity":      rec.TotalQuantity,
		"available_for_sales": rec.AvailableForSales,
		"notes":               rec.Notes,
		"updated_at":          rec.UpdatedAt,
	}})
	if err != nil {
		return translate("update production record", err, nil)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteProduction removes a record.
func (r *MongoDBRepository) DeleteProduction(ctx context.Context, id string) error {
	res, err := r.production.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate("delete production record", err, nil)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListProduction pages records matching filter, newest day first.
func (r *MongoDBRepository) ListProduction(ctx context.Context, filter models.ProductionFilter) (models.ProductionPage, error) {
	filter.Normalize()
	query := productionQuery(filter)

	total, err := r.production.CountDocuments(ctx, query)
	if err != nil {
		return models.ProductionPage{}, translate("count production records", err, nil)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "created_at", Value: -1}}).
		SetSkip(int64(filter.Offset())).
		SetLimit(int64(filter.Limit))
	cursor, err := r.production.Find(ctx, query, opts)
	if err != nil {
		return models.ProductionPage{}, translate("list production records", err, nil)
	}

	items := make([]models.ProductionRecord, 0, filter.Limit)
	if err := cursor.All(ctx, &items); err != nil {
		return models.ProductionPage{}, translate("decode production records", err, nil)
	}
	return models.ProductionPage{Items: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ProductionByDay returns every record of one calendar day.
func (r *MongoDBRepository) ProductionByDay(ctx context.Context, day time.Time) ([]models.ProductionRecord, error) {
	cursor, err := r.production.Find(ctx, bson.M{"date": models.Normalize(day)})
	if err != nil {
		return nil, translate("find day production", err, nil)
	}
	out := make([]models.ProductionRecord, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, translate("decode day production", err, nil)
	}
	return out, nil
}

func productionQuery(filter models.ProductionFilter) bson.M {
	query := bson.M{}
	if filter.AnimalID != "" {
		query["animal_id"] = filter.AnimalID
	}
	if filter.Date != nil {
		query["date"] = models.Normalize(*filter.Date)
		return query
	}
	rng := bson.M{}
	if filter.From != nil {
		rng["$gte"] = models.Normalize(*filter.From)
	}
	if filter.To != nil {
		rng["$lte"] = models.Normalize(*filter.To)
	}
	if len(rng) > 0 {
		query["date"] = rng
	}
	return query
}
