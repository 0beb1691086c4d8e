// internal/cats/model.go

// Package cats implements the cats resource: the stored model, the direct
// and cached repositories over MongoDB, the HTTP handlers, and the module
// wiring that composes them.
package cats

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CollectionName is the MongoDB collection holding cats.
const CollectionName = "cats"

// Cat is the stored cat document.
type Cat struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrgID     primitive.ObjectID `bson:"orgId" json:"orgId"`
	Name      string             `bson:"name" json:"name"`
	Breed     string             `bson:"breed,omitempty" json:"breed,omitempty"`
	Age       int                `bson:"age" json:"age"`
	AdoptedBy string             `bson:"adoptedBy,omitempty" json:"adoptedBy,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Update carries the mutable fields of a cat. Nil fields are left unchanged.
type Update struct {
	Name      *string `json:"name,omitempty"`
	Breed     *string `json:"breed,omitempty"`
	Age       *int    `json:"age,omitempty"`
	AdoptedBy *string `json:"adoptedBy,omitempty"`
}
