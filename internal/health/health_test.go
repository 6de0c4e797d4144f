package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (f *fakePinger) Ping(_ context.Context) error { return f.err }

type fakeAPI struct{ err error }

func (f *fakeAPI) Health(_ context.Context) error { return f.err }

func TestCheck(t *testing.T) {
	tests := []struct {
		name        string
		store       StorePinger
		apiErr      error
		wantHealthy bool
		wantMongo   bool
		wantAPI     bool
	}{
		{
			name:        "both healthy",
			store:       &fakePinger{},
			wantHealthy: true,
			wantMongo:   true,
			wantAPI:     true,
		},
		{
			name:        "store down, API up",
			store:       &fakePinger{err: errors.New("no reachable servers")},
			wantHealthy: false,
			wantMongo:   false,
			wantAPI:     true,
		},
		{
			name:        "store up, API down",
			store:       &fakePinger{},
			apiErr:      errors.New("connection refused"),
			wantHealthy: false,
			wantMongo:   true,
			wantAPI:     false,
		},
		{
			name:        "no mirror configured",
			store:       nil,
			wantHealthy: false,
			wantMongo:   false,
			wantAPI:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker(tt.store, &fakeAPI{err: tt.apiErr}, nil)
			status := c.Check(context.Background())
			assert.Equal(t, tt.wantHealthy, status.Healthy())
			assert.Equal(t, tt.wantMongo, status.MongoDB)
			assert.Equal(t, tt.wantAPI, status.API)
			assert.NotEmpty(t, status.Timestamp)
		})
	}
}

func TestHandler_StatusCodes(t *testing.T) {
	t.Run("healthy returns 200", func(t *testing.T) {
		c := NewChecker(&fakePinger{}, &fakeAPI{}, nil)
		rec := httptest.NewRecorder()
		c.Handler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var status Status
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		assert.Equal(t, "healthy", status.Status)
	})

	t.Run("unhealthy returns 503", func(t *testing.T) {
		c := NewChecker(&fakePinger{err: errors.New("down")}, &fakeAPI{}, nil)
		rec := httptest.NewRecorder()
		c.Handler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var status Status
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		assert.Equal(t, "unhealthy", status.Status)
		assert.False(t, status.MongoDB)
		assert.True(t, status.API)
	})
}
