package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantumshop/internal/domain"
)

func TestMemoryPredictionRepositoryRoundTrip(t *testing.T) {
	repo := NewMemoryPredictionRepository()
	ctx := context.Background()

	p := samplePrediction()
	p.ID = ""
	id, err := repo.Store(ctx, p)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, p.Quality, got.Quality)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryPredictionRepositoryStoreHonoursCancelledContext(t *testing.T) {
	repo := NewMemoryPredictionRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Store(ctx, samplePrediction())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryPredictionRepositoryListByUserNewestFirst(t *testing.T) {
	repo := NewMemoryPredictionRepository()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		p := samplePrediction()
		p.ID = id
		p.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		_, err := repo.Store(ctx, p)
		require.NoError(t, err)
	}
	other := samplePrediction()
	other.ID = "other"
	other.UserID = "user-2"
	_, err := repo.Store(ctx, other)
	require.NoError(t, err)

	got, err := repo.ListByUser(ctx, "user-1", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}

func TestMemoryPredictionRepositoryFeedbackAndStats(t *testing.T) {
	repo := NewMemoryPredictionRepository()
	ctx := context.Background()

	low := samplePrediction()
	low.ID = "low"
	low.ConfidenceScore = 0.6
	_, err := repo.Store(ctx, low)
	require.NoError(t, err)
	_, err = repo.Store(ctx, samplePrediction())
	require.NoError(t, err)

	require.NoError(t, repo.AttachFeedback(ctx, "pred-1", domain.Feedback{AccuracyRating: 9, HelpfulRating: 8}))
	assert.ErrorIs(t, repo.AttachFeedback(ctx, "missing", domain.Feedback{}), ErrNotFound)
	assert.ErrorIs(t, repo.AttachFollowUp(ctx, "missing", domain.FollowUp{}), ErrNotFound)

	stats, err := repo.CategoryStats(ctx, "furniture", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalPredictions)
	assert.Equal(t, int64(1), stats.RatedPredictions)
	assert.InDelta(t, 9, stats.AvgAccuracyRating, 1e-9)
	assert.InDelta(t, 0.7, stats.AvgConfidence, 1e-9)

	stats, err = repo.CategoryStats(ctx, "furniture", 0.75)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalPredictions)
}

func TestMemoryPredictionRepositoryFindSimilar(t *testing.T) {
	repo := NewMemoryPredictionRepository()
	ctx := context.Background()

	ref := samplePrediction()
	_, err := repo.Store(ctx, ref)
	require.NoError(t, err)

	near := samplePrediction()
	near.ID = "near"
	near.Cheap.Health += 1
	_, err = repo.Store(ctx, near)
	require.NoError(t, err)

	far := samplePrediction()
	far.ID = "far"
	far.Quality = domain.VariantOutcome{Health: 15, Financial: 15, Social: 15, Career: 15, Wellbeing: 15, Productivity: 15}
	_, err = repo.Store(ctx, far)
	require.NoError(t, err)

	got, err := repo.FindSimilar(ctx, "pred-1", 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "near", got[0].Prediction.ID)
	assert.InDelta(t, 1, got[0].Distance, 1e-6)
	assert.Equal(t, "far", got[1].Prediction.ID)

	none, err := repo.FindSimilar(ctx, "missing", 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}
