// Package seed loads the animal directory from a JSON file into a store.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfarm/internal/domain/models"
)

// AnimalWriter upserts directory entries.
type AnimalWriter interface {
	PutAnimal(ctx context.Context, animal models.Animal) error
}

// LoadAnimals decodes a JSON array of animals and validates every entry.
func LoadAnimals(r io.Reader) ([]models.Animal, error) {
	var animals []models.Animal
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&animals); err != nil {
		return nil, models.Validationf("decode animals: %v", err)
	}

	seen := make(map[string]struct{}, len(animals))
	for i := range animals {
		a := &animals[i]
		a.ID = strings.TrimSpace(a.ID)
		a.Type = models.AnimalType(strings.ToUpper(string(a.Type)))
		switch {
		case a.ID == "":
			return nil, models.Validationf("animal %d: id is required", i)
		case !a.Type.Valid():
			return nil, models.Validationf("animal %s: unknown type %q", a.ID, a.Type)
		}
		if _, dup := seen[a.ID]; dup {
			return nil, models.Validationf("animal %s listed twice", a.ID)
		}
		seen[a.ID] = struct{}{}
	}
	return animals, nil
}

// Animals upserts every animal, stopping at the first failure.
func Animals(ctx context.Context, w AnimalWriter, animals []models.Animal) error {
	for _, a := range animals {
		if err := w.PutAnimal(ctx, a); err != nil {
			return fmt.Errorf("seed animal %s: %w", a.ID, err)
		}
	}
	return nil
}

// AnimalsFromFile loads path and upserts its animals. It returns how many
// were written.
func AnimalsFromFile(ctx context.Context, path string, w AnimalWriter, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open animals seed: %w", err)
	}
	defer f.Close()

	animals, err := LoadAnimals(f)
	if err != nil {
		return 0, err
	}
	if err := Animals(ctx, w, animals); err != nil {
		return 0, err
	}
	logger.Info("animal directory seeded", zap.String("path", path), zap.Int("animals", len(animals)))
	return len(animals), nil
}
