package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recallkit/recall-api/internal/domain"
	"github.com/recallkit/recall-api/internal/service/scheduler"
)

func TestGetStats(t *testing.T) {
	t.Parallel() // Enable parallel execution

	ownerID := uuid.New()
	lastStudy := time.Date(2026, 7, 31, 20, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mockService := &mockSchedulerService{
			computeStatsFn: func(ctx context.Context, gotOwner uuid.UUID, now time.Time) (*domain.Stats, error) {
				assert.Equal(t, ownerID, gotOwner)
				return &domain.Stats{
					TotalItems:    12,
					ItemsDue:      3,
					ItemsMastered: 2,
					AvgStability:  14.5,
					AvgDifficulty: 0.31,
					LastStudy:     &lastStudy,
					StreakDays:    4,
				}, nil
			},
		}
		handler := NewStatsHandler(mockService, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
		req = withOwnerID(req, ownerID)

		rr := httptest.NewRecorder()
		handler.GetStats(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp domain.Stats
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, 12, resp.TotalItems)
		assert.Equal(t, 3, resp.ItemsDue)
		assert.Equal(t, 4, resp.StreakDays)
		require.NotNil(t, resp.LastStudy)
		assert.Equal(t, lastStudy.Unix(), resp.LastStudy.Unix())
	})

	t.Run("missing owner", func(t *testing.T) {
		t.Parallel()
		handler := NewStatsHandler(&mockSchedulerService{}, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)

		rr := httptest.NewRecorder()
		handler.GetStats(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("store unavailable", func(t *testing.T) {
		t.Parallel()
		mockService := &mockSchedulerService{
			computeStatsFn: func(ctx context.Context, gotOwner uuid.UUID, now time.Time) (*domain.Stats, error) {
				return nil, scheduler.ErrStoreUnavailable
			},
		}
		handler := NewStatsHandler(mockService, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
		req = withOwnerID(req, ownerID)

		rr := httptest.NewRecorder()
		handler.GetStats(rr, req)

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}

func TestGetRetention(t *testing.T) {
	t.Parallel() // Enable parallel execution

	ownerID := uuid.New()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mockService := &mockSchedulerService{
			predictedRetentionFn: func(ctx context.Context, gotOwner uuid.UUID, now time.Time) (float64, error) {
				assert.Equal(t, ownerID, gotOwner)
				return 0.87, nil
			},
		}
		handler := NewStatsHandler(mockService, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/stats/retention", nil)
		req = withOwnerID(req, ownerID)

		rr := httptest.NewRecorder()
		handler.GetRetention(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp RetentionResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.InDelta(t, 0.87, resp.Retention, 1e-9)
		assert.False(t, resp.ComputedAt.IsZero())
	})

	t.Run("no items yields zero", func(t *testing.T) {
		t.Parallel()
		mockService := &mockSchedulerService{
			predictedRetentionFn: func(ctx context.Context, gotOwner uuid.UUID, now time.Time) (float64, error) {
				return 0.0, nil
			},
		}
		handler := NewStatsHandler(mockService, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/api/stats/retention", nil)
		req = withOwnerID(req, ownerID)

		rr := httptest.NewRecorder()
		handler.GetRetention(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp RetentionResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Zero(t, resp.Retention)
	})
}
