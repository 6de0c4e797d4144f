package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"steve-mcp/internal/steveapi"
)

func TestProductLookup_Hit(t *testing.T) {
	hit := ProductLookup{Products: []steveapi.Product{{ID: "p1"}}}
	assert.True(t, hit.Hit())

	empty := ProductLookup{Miss: MissEmpty}
	assert.False(t, empty.Hit())

	faulted := ProductLookup{Miss: MissError, Err: errors.New("connection reset")}
	assert.False(t, faulted.Hit())

	unconfigured := ProductLookup{Miss: MissUnconfigured}
	assert.False(t, unconfigured.Hit())
}
