package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/rotisserie/eris"

	"quantumshop/internal/db"
	"quantumshop/internal/domain"
)

// ErrNotFound se devuelve cuando la prediccion pedida no existe.
var ErrNotFound = errors.New("record not found")

// DefaultHistoryLimit es el tope de predicciones devueltas por usuario.
const DefaultHistoryLimit = 50

// PredictionRepository es el puerto de persistencia de predicciones.
//
// Esquema esperado:
//
//	CREATE TABLE purchase_predictions (
//	    id                  UUID PRIMARY KEY,
//	    user_id             TEXT,
//	    item_name           TEXT NOT NULL,
//	    category            TEXT NOT NULL,
//	    cheap_price         DOUBLE PRECISION NOT NULL,
//	    quality_price       DOUBLE PRECISION NOT NULL,
//	    cheap_outcomes      JSONB NOT NULL,
//	    quality_outcomes    JSONB NOT NULL,
//	    confidence_score    DOUBLE PRECISION NOT NULL,
//	    ai_insight          TEXT NOT NULL,
//	    recommendation      JSONB NOT NULL,
//	    key_differentiators JSONB NOT NULL,
//	    processing_time_ms  BIGINT NOT NULL,
//	    impact_vector       VECTOR(12) NOT NULL,
//	    user_feedback       JSONB,
//	    followup_data       JSONB,
//	    created_at          TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX ON purchase_predictions (user_id, created_at DESC);
//	CREATE INDEX ON purchase_predictions (category, created_at DESC);
type PredictionRepository interface {
	Store(ctx context.Context, p domain.PredictionResult) (string, error)
	GetByID(ctx context.Context, id string) (domain.PredictionResult, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.PredictionResult, error)
	ListByCategory(ctx context.Context, category string, since time.Time, limit int) ([]domain.PredictionResult, error)
	AttachFeedback(ctx context.Context, id string, feedback domain.Feedback) error
	AttachFollowUp(ctx context.Context, id string, followUp domain.FollowUp) error
	CategoryStats(ctx context.Context, category string, minConfidence float64) (domain.CategoryStats, error)
	FindSimilar(ctx context.Context, id string, k int) ([]domain.SimilarPrediction, error)
}

// PgPredictionRepository implementa PredictionRepository sobre Postgres con pgvector.
type PgPredictionRepository struct {
	pool db.Pool
}

func NewPgPredictionRepository(pool db.Pool) *PgPredictionRepository {
	return &PgPredictionRepository{pool: pool}
}

const predictionColumns = `id, COALESCE(user_id, ''), item_name, category, cheap_price, quality_price,
		cheap_outcomes, quality_outcomes, confidence_score, ai_insight, recommendation, key_differentiators,
		processing_time_ms, COALESCE(user_feedback, 'null'::jsonb), COALESCE(followup_data, 'null'::jsonb), created_at`

const prefixedPredictionColumns = `p.id, COALESCE(p.user_id, ''), p.item_name, p.category, p.cheap_price, p.quality_price,
		p.cheap_outcomes, p.quality_outcomes, p.confidence_score, p.ai_insight, p.recommendation, p.key_differentiators,
		p.processing_time_ms, COALESCE(p.user_feedback, 'null'::jsonb), COALESCE(p.followup_data, 'null'::jsonb), p.created_at`

func (r *PgPredictionRepository) Store(ctx context.Context, p domain.PredictionResult) (string, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	cheap, err := json.Marshal(p.Cheap)
	if err != nil {
		return "", eris.Wrap(err, "predictions: marshal cheap outcomes")
	}
	quality, err := json.Marshal(p.Quality)
	if err != nil {
		return "", eris.Wrap(err, "predictions: marshal quality outcomes")
	}
	rec, err := json.Marshal(p.Recommendation)
	if err != nil {
		return "", eris.Wrap(err, "predictions: marshal recommendation")
	}
	diffs, err := json.Marshal(p.KeyDifferentiators)
	if err != nil {
		return "", eris.Wrap(err, "predictions: marshal differentiators")
	}

	var userID interface{}
	if p.UserID != "" {
		userID = p.UserID
	}

	const query = `
		INSERT INTO purchase_predictions (
			id, user_id, item_name, category, cheap_price, quality_price, cheap_outcomes, quality_outcomes,
			confidence_score, ai_insight, recommendation, key_differentiators, processing_time_ms, impact_vector, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err = r.pool.Exec(ctx, query,
		p.ID,
		userID,
		p.Decision.ItemName,
		p.Decision.Category,
		p.Decision.CheapPrice,
		p.Decision.QualityPrice,
		cheap,
		quality,
		p.ConfidenceScore,
		p.AIInsight,
		rec,
		diffs,
		p.ProcessingTimeMs,
		pgvector.NewVector(p.ImpactVector()),
		p.CreatedAt,
	)
	if err != nil {
		return "", eris.Wrap(err, "predictions: insert")
	}
	return p.ID, nil
}

func (r *PgPredictionRepository) GetByID(ctx context.Context, id string) (domain.PredictionResult, error) {
	const query = `SELECT ` + predictionColumns + ` FROM purchase_predictions WHERE id = $1`
	p, err := scanPrediction(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PredictionResult{}, ErrNotFound
	}
	if err != nil {
		return domain.PredictionResult{}, eris.Wrapf(err, "predictions: get %s", id)
	}
	return p, nil
}

func (r *PgPredictionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.PredictionResult, error) {
	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}
	const query = `SELECT ` + predictionColumns + `
		FROM purchase_predictions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, eris.Wrap(err, "predictions: list by user")
	}
	defer rows.Close()

	return collectPredictions(rows)
}

func (r *PgPredictionRepository) ListByCategory(ctx context.Context, category string, since time.Time, limit int) ([]domain.PredictionResult, error) {
	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}
	const query = `SELECT ` + predictionColumns + `
		FROM purchase_predictions
		WHERE category = $1 AND created_at >= $2
		ORDER BY created_at DESC
		LIMIT $3`
	rows, err := r.pool.Query(ctx, query, category, since, limit)
	if err != nil {
		return nil, eris.Wrap(err, "predictions: list by category")
	}
	defer rows.Close()

	return collectPredictions(rows)
}

func (r *PgPredictionRepository) AttachFeedback(ctx context.Context, id string, feedback domain.Feedback) error {
	raw, err := json.Marshal(feedback)
	if err != nil {
		return eris.Wrap(err, "predictions: marshal feedback")
	}
	const query = `UPDATE purchase_predictions SET user_feedback = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, raw)
	if err != nil {
		return eris.Wrap(err, "predictions: attach feedback")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgPredictionRepository) AttachFollowUp(ctx context.Context, id string, followUp domain.FollowUp) error {
	raw, err := json.Marshal(followUp)
	if err != nil {
		return eris.Wrap(err, "predictions: marshal follow-up")
	}
	const query = `UPDATE purchase_predictions SET followup_data = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, raw)
	if err != nil {
		return eris.Wrap(err, "predictions: attach follow-up")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgPredictionRepository) CategoryStats(ctx context.Context, category string, minConfidence float64) (domain.CategoryStats, error) {
	const query = `
		SELECT COUNT(*),
			COUNT(user_feedback),
			COALESCE(AVG((user_feedback->>'accuracy_rating')::double precision), 0),
			COALESCE(AVG(confidence_score), 0)
		FROM purchase_predictions
		WHERE category = $1 AND confidence_score >= $2
	`
	stats := domain.CategoryStats{Category: category}
	err := r.pool.QueryRow(ctx, query, category, minConfidence).Scan(
		&stats.TotalPredictions,
		&stats.RatedPredictions,
		&stats.AvgAccuracyRating,
		&stats.AvgConfidence,
	)
	if err != nil {
		return domain.CategoryStats{}, eris.Wrap(err, "predictions: category stats")
	}
	return stats, nil
}

// FindSimilar ordena por distancia L2 del vector de impacto respecto de la prediccion de referencia.
func (r *PgPredictionRepository) FindSimilar(ctx context.Context, id string, k int) ([]domain.SimilarPrediction, error) {
	if k <= 0 {
		k = 5
	}
	const query = `SELECT ` + prefixedPredictionColumns + `, p.impact_vector <-> ref.impact_vector AS distance
		FROM purchase_predictions p,
			(SELECT impact_vector FROM purchase_predictions WHERE id = $1) ref
		WHERE p.id <> $1
		ORDER BY distance
		LIMIT $2`
	rows, err := r.pool.Query(ctx, query, id, k)
	if err != nil {
		return nil, eris.Wrap(err, "predictions: find similar")
	}
	defer rows.Close()

	var out []domain.SimilarPrediction
	for rows.Next() {
		var distance float64
		p, err := scanPrediction(rows, &distance)
		if err != nil {
			return nil, eris.Wrap(err, "predictions: scan similar")
		}
		out = append(out, domain.SimilarPrediction{Prediction: p, Distance: distance})
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "predictions: iterate similar")
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func collectPredictions(rows pgx.Rows) ([]domain.PredictionResult, error) {
	var out []domain.PredictionResult
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, eris.Wrap(err, "predictions: scan")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "predictions: iterate")
	}
	return out, nil
}

// scanPrediction lee las columnas de predictionColumns y, opcionalmente, columnas extra al final.
func scanPrediction(row rowScanner, extra ...any) (domain.PredictionResult, error) {
	var (
		p                                   domain.PredictionResult
		cheap, quality, rec, diffs, fb, fup []byte
	)
	dest := []any{
		&p.ID,
		&p.UserID,
		&p.Decision.ItemName,
		&p.Decision.Category,
		&p.Decision.CheapPrice,
		&p.Decision.QualityPrice,
		&cheap,
		&quality,
		&p.ConfidenceScore,
		&p.AIInsight,
		&rec,
		&diffs,
		&p.ProcessingTimeMs,
		&fb,
		&fup,
		&p.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return domain.PredictionResult{}, err
	}

	if err := json.Unmarshal(cheap, &p.Cheap); err != nil {
		return domain.PredictionResult{}, err
	}
	if err := json.Unmarshal(quality, &p.Quality); err != nil {
		return domain.PredictionResult{}, err
	}
	if err := json.Unmarshal(rec, &p.Recommendation); err != nil {
		return domain.PredictionResult{}, err
	}
	if err := json.Unmarshal(diffs, &p.KeyDifferentiators); err != nil {
		return domain.PredictionResult{}, err
	}
	if len(fb) > 0 {
		if err := json.Unmarshal(fb, &p.Feedback); err != nil {
			return domain.PredictionResult{}, err
		}
	}
	if len(fup) > 0 {
		if err := json.Unmarshal(fup, &p.FollowUp); err != nil {
			return domain.PredictionResult{}, err
		}
	}
	return p, nil
}
