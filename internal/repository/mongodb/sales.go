package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/dairyfarm/internal/domain/models"
)

// CreateSale appends a sale.
func (r *MongoDBRepository) CreateSale(ctx context.Context, sale models.SalesRecord) error {
	sale.Date = models.Normalize(sale.Date)
	_, err := r.sales.InsertOne(ctx, sale)
	return translate("insert sale", err, models.ErrConflict)
}

// SalesByDay returns the sales of one calendar day in recording order.
func (r *MongoDBRepository) SalesByDay(ctx context.Context, day time.Time) ([]models.SalesRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "time_recorded", Value: 1}})
	cursor, err := r.sales.Find(ctx, bson.M{"date": models.Normalize(day)}, opts)
	if err != nil {
		return nil, translate("find day sales", err, nil)
	}
	out := make([]models.SalesRecord, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, translate("decode day sales", err, nil)
	}
	return out, nil
}
