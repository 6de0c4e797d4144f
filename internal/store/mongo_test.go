package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestProductDoc_ToProduct(t *testing.T) {
	oid := primitive.NewObjectID()
	doc := productDoc{
		ID:          oid,
		WorkspaceID: primitive.NewObjectID(),
		Name:        "Alpha",
		Description: "first product",
		CreatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	p := doc.toProduct()
	assert.Equal(t, oid.Hex(), p.ID)
	assert.Equal(t, "Alpha", p.Name)
	assert.Equal(t, "first product", p.Description)
	assert.Equal(t, "2024-01-01T00:00:00Z", p.CreatedAt)
}

func TestProductDoc_ToProduct_ZeroCreatedAt(t *testing.T) {
	doc := productDoc{ID: primitive.NewObjectID(), Name: "Beta"}
	p := doc.toProduct()
	assert.Empty(t, p.CreatedAt)
}
