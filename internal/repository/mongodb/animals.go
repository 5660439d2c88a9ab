package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/dairyfarm/internal/domain/models"
)

// GetAnimal reads the herd directory maintained by the animal records module.
func (r *MongoDBRepository) GetAnimal(ctx context.Context, id string) (models.Animal, error) {
	var animal models.Animal
	if err := r.animals.FindOne(ctx, bson.M{"_id": id}).Decode(&animal); err != nil {
		return models.Animal{}, translate("find animal", err, nil)
	}
	return animal, nil
}

// PutAnimal upserts a directory entry. Used for seeding and local setups.
func (r *MongoDBRepository) PutAnimal(ctx context.Context, animal models.Animal) error {
	_, err := r.animals.ReplaceOne(ctx, bson.M{"_id": animal.ID}, animal, options.Replace().SetUpsert(true))
	return translate("upsert animal", err, nil)
}
