package repository

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"quantumshop/internal/domain"
)

// MemoryPredictionRepository guarda predicciones en memoria. Se usa en la CLI y en tests.
type MemoryPredictionRepository struct {
	mu    sync.RWMutex
	items map[string]domain.PredictionResult
}

func NewMemoryPredictionRepository() *MemoryPredictionRepository {
	return &MemoryPredictionRepository{items: make(map[string]domain.PredictionResult)}
}

func (r *MemoryPredictionRepository) Store(ctx context.Context, p domain.PredictionResult) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	r.items[p.ID] = p
	return p.ID, nil
}

func (r *MemoryPredictionRepository) GetByID(_ context.Context, id string) (domain.PredictionResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return domain.PredictionResult{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryPredictionRepository) ListByUser(_ context.Context, userID string, limit int) ([]domain.PredictionResult, error) {
	return r.filter(limit, func(p domain.PredictionResult) bool {
		return p.UserID == userID
	}), nil
}

func (r *MemoryPredictionRepository) ListByCategory(_ context.Context, category string, since time.Time, limit int) ([]domain.PredictionResult, error) {
	return r.filter(limit, func(p domain.PredictionResult) bool {
		return p.Decision.Category == category && !p.CreatedAt.Before(since)
	}), nil
}

func (r *MemoryPredictionRepository) AttachFeedback(_ context.Context, id string, feedback domain.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	p.Feedback = &feedback
	r.items[id] = p
	return nil
}

func (r *MemoryPredictionRepository) AttachFollowUp(_ context.Context, id string, followUp domain.FollowUp) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	p.FollowUp = &followUp
	r.items[id] = p
	return nil
}

func (r *MemoryPredictionRepository) CategoryStats(_ context.Context, category string, minConfidence float64) (domain.CategoryStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := domain.CategoryStats{Category: category}
	var accuracySum, confidenceSum float64
	for _, p := range r.items {
		if p.Decision.Category != category || p.ConfidenceScore < minConfidence {
			continue
		}
		stats.TotalPredictions++
		confidenceSum += p.ConfidenceScore
		if p.Feedback != nil {
			stats.RatedPredictions++
			accuracySum += float64(p.Feedback.AccuracyRating)
		}
	}
	if stats.TotalPredictions > 0 {
		stats.AvgConfidence = confidenceSum / float64(stats.TotalPredictions)
	}
	if stats.RatedPredictions > 0 {
		stats.AvgAccuracyRating = accuracySum / float64(stats.RatedPredictions)
	}
	return stats, nil
}

func (r *MemoryPredictionRepository) FindSimilar(_ context.Context, id string, k int) ([]domain.SimilarPrediction, error) {
	if k <= 0 {
		k = 5
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ref, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	refVec := ref.ImpactVector()
	var out []domain.SimilarPrediction
	for otherID, p := range r.items {
		if otherID == id {
			continue
		}
		out = append(out, domain.SimilarPrediction{Prediction: p, Distance: l2(refVec, p.ImpactVector())})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func (r *MemoryPredictionRepository) filter(limit int, keep func(domain.PredictionResult) bool) []domain.PredictionResult {
	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.PredictionResult
	for _, p := range r.items {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func l2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		if i >= len(b) {
			break
		}
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
