package models

// AnimalType enumerates herd categories.
type AnimalType string

const (
	AnimalCow    AnimalType = "COW"
	AnimalHeifer AnimalType = "HEIFER"
	AnimalBull   AnimalType = "BULL"
	AnimalCalf   AnimalType = "CALF"
)

// Animal is the slice of the animal directory the ledger needs.
type Animal struct {
	ID                   string     `bson:"_id" json:"id"`
	TagNumber            string     `bson:"tag_number" json:"tagNumber"`
	Name                 string     `bson:"name" json:"name"`
	Type                 AnimalType `bson:"type" json:"type"`
	IsReadyForProduction bool       `bson:"is_ready_for_production" json:"isReadyForProduction"`
}

// Valid reports whether t is a known herd category.
func (t AnimalType) Valid() bool {
	switch t {
	case AnimalCow, AnimalHeifer, AnimalBull, AnimalCalf:
		return true
	}
	return false
}
