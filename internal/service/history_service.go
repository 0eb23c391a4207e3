package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quantumshop/internal/domain"
	"quantumshop/internal/repository"
)

const (
	defaultSimilarK     = 5
	maxSimilarK         = 20
	insightsWindow      = 30 * 24 * time.Hour
	insightsRecentLimit = 20
)

// CategoryInsight combina el agregado de una categoria con sus predicciones recientes.
type CategoryInsight struct {
	Stats  domain.CategoryStats      `json:"stats"`
	Recent []domain.PredictionResult `json:"recent"`
}

// HistoryService expone las lecturas sobre predicciones ya persistidas.
type HistoryService struct {
	repo         repository.PredictionRepository
	historyLimit int
	now          func() time.Time
	logger       *zap.Logger
}

func NewHistoryService(repo repository.PredictionRepository, historyLimit int, logger *zap.Logger) *HistoryService {
	if historyLimit <= 0 || historyLimit > repository.DefaultHistoryLimit {
		historyLimit = repository.DefaultHistoryLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryService{repo: repo, historyLimit: historyLimit, now: time.Now, logger: logger}
}

// History devuelve las predicciones del usuario, mas recientes primero.
// limit <= 0 o mayor al maximo usa el maximo configurado.
func (s *HistoryService) History(ctx context.Context, userID string, limit int) ([]domain.PredictionResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, &ValidationError{Fields: []string{"user_id"}}
	}
	if limit <= 0 || limit > s.historyLimit {
		limit = s.historyLimit
	}
	predictions, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	if predictions == nil {
		predictions = []domain.PredictionResult{}
	}
	return predictions, nil
}

func (s *HistoryService) Get(ctx context.Context, predictionID string) (domain.PredictionResult, error) {
	predictionID = strings.TrimSpace(predictionID)
	if predictionID == "" {
		return domain.PredictionResult{}, &ValidationError{Fields: []string{"prediction_id"}}
	}
	key, ok := predictionKey(predictionID)
	if !ok {
		return domain.PredictionResult{}, ErrPredictionNotFound
	}
	p, err := s.repo.GetByID(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.PredictionResult{}, ErrPredictionNotFound
	}
	if err != nil {
		return domain.PredictionResult{}, fmt.Errorf("get prediction: %w", err)
	}
	return p, nil
}

// predictionKey normaliza el id; los ids de prediccion son UUID, cualquier otro valor no existe.
func predictionKey(id string) (string, bool) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

// Similar busca las k predicciones mas cercanas en el espacio de impacto.
func (s *HistoryService) Similar(ctx context.Context, predictionID string, k int) ([]domain.SimilarPrediction, error) {
	ref, err := s.Get(ctx, predictionID)
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		k = defaultSimilarK
	}
	if k > maxSimilarK {
		k = maxSimilarK
	}
	similar, err := s.repo.FindSimilar(ctx, ref.ID, k)
	if err != nil {
		return nil, fmt.Errorf("find similar predictions: %w", err)
	}
	if similar == nil {
		similar = []domain.SimilarPrediction{}
	}
	return similar, nil
}

// CategoryInsights agrega las predicciones de una categoria del catalogo con
// confianza >= minConfidence y adjunta las de los ultimos 30 dias.
func (s *HistoryService) CategoryInsights(ctx context.Context, category string, minConfidence float64) (CategoryInsight, error) {
	category = domain.NormalizeCategory(category)
	var fields []string
	if !domain.IsKnownCategory(category) {
		fields = append(fields, "category")
	}
	if math.IsNaN(minConfidence) || minConfidence < 0 || minConfidence > 1 {
		fields = append(fields, "min_confidence")
	}
	if len(fields) > 0 {
		return CategoryInsight{}, &ValidationError{Fields: fields}
	}

	stats, err := s.repo.CategoryStats(ctx, category, minConfidence)
	if err != nil {
		return CategoryInsight{}, fmt.Errorf("category stats: %w", err)
	}
	recent, err := s.repo.ListByCategory(ctx, category, s.now().Add(-insightsWindow), insightsRecentLimit)
	if err != nil {
		return CategoryInsight{}, fmt.Errorf("recent predictions by category: %w", err)
	}
	if recent == nil {
		recent = []domain.PredictionResult{}
	}
	s.logger.Debug("category insights",
		zap.String("category", category),
		zap.Int64("total", stats.TotalPredictions),
	)
	return CategoryInsight{Stats: stats, Recent: recent}, nil
}
