package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"quantumshop/internal/domain"
	"quantumshop/internal/repository"
)

const maxItemNameLength = 200

// AnalysisNotifier entrega los eventos de inicio y fin de analisis a un suscriptor.
// La entrega es best-effort: el orquestador registra los errores pero no falla por ellos.
type AnalysisNotifier interface {
	AnalysisStarted(ctx context.Context, subscriberID string, event domain.AnalysisStartedEvent) error
	AnalysisComplete(ctx context.Context, subscriberID string, event domain.AnalysisCompleteEvent) error
}

// PredictInput agrupa lo que necesita una corrida del pipeline.
type PredictInput struct {
	Decision     domain.PurchaseDecision
	Profile      domain.UserProfile
	UserID       string
	SubscriberID string
}

// PredictionService orquesta scoring, confianza, insight, persistencia y notificaciones.
type PredictionService struct {
	engine   ImpactEngine
	repo     repository.PredictionRepository
	profiles repository.ProfileRepository
	notifier AnalysisNotifier
	rnd      RandomSource
	timeout  time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewPredictionService crea el orquestador. timeout se aplica cuando el contexto del
// llamador no trae deadline; notifier y profiles pueden ser nil.
func NewPredictionService(
	repo repository.PredictionRepository,
	profiles repository.ProfileRepository,
	notifier AnalysisNotifier,
	rnd RandomSource,
	timeout time.Duration,
	logger *zap.Logger,
) *PredictionService {
	if rnd == nil {
		rnd = NewRandomSource(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PredictionService{
		engine:   DefaultImpactEngine,
		repo:     repo,
		profiles: profiles,
		notifier: notifier,
		rnd:      rnd,
		timeout:  timeout,
		now:      time.Now,
		logger:   logger,
	}
}

// ResolveProfile busca el perfil del usuario; si no hay usuario, no existe o la lectura falla,
// devuelve el perfil por defecto. Nunca corta el pipeline.
func (s *PredictionService) ResolveProfile(ctx context.Context, userID string) domain.UserProfile {
	userID = strings.TrimSpace(userID)
	if userID == "" || s.profiles == nil {
		return domain.DefaultUserProfile()
	}
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("profile lookup failed, using defaults", zap.Error(err), zap.String("user_id", userID))
		}
		return domain.DefaultUserProfile()
	}
	return profile
}

// Predict corre el pipeline completo para las dos variantes.
//
// Errores: *ValidationError (sin escritura ni notificaciones), *ComputationError,
// *PersistenceError y *TimeoutError. En los dos ultimos el resultado calculado se devuelve
// igual, sin ID, para que el llamador decida si lo acepta sin persistir.
func (s *PredictionService) Predict(ctx context.Context, in PredictInput) (domain.PredictionResult, error) {
	decision, err := ValidateDecision(in.Decision)
	if err != nil {
		return domain.PredictionResult{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := s.now()
	subscriberID := strings.TrimSpace(in.SubscriberID)
	if subscriberID != "" {
		s.notifyStarted(ctx, subscriberID, start)
	}

	result, err := s.compute(decision, in.Profile)
	if err != nil {
		s.logger.Error("impact computation failed", zap.Error(err), zap.String("item", decision.ItemName))
		return domain.PredictionResult{}, err
	}

	elapsed := s.now().Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}
	result.UserID = strings.TrimSpace(in.UserID)
	result.ProcessingTimeMs = elapsed.Milliseconds()
	result.CreatedAt = s.now().UTC()

	id, err := s.persist(ctx, result)
	if err != nil {
		s.logger.Error("prediction not persisted", zap.Error(err), zap.String("item", decision.ItemName))
		return result, err
	}
	result.ID = id

	if subscriberID != "" {
		s.notifyComplete(ctx, subscriberID, result)
	}

	s.logger.Info("prediction completed",
		zap.String("prediction_id", id),
		zap.String("category", decision.Category),
		zap.Float64("confidence", result.ConfidenceScore),
		zap.Duration("elapsed", elapsed),
	)
	return result, nil
}

// compute evalua ambas variantes con la misma funcion y arma el resultado sin persistir.
func (s *PredictionService) compute(decision domain.PurchaseDecision, profile domain.UserProfile) (result domain.PredictionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ComputationError{Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	outcomes := make(map[domain.Variant]domain.VariantOutcome, len(domain.Variants))
	for _, v := range domain.Variants {
		outcome := s.engine.ScoreVariant(decision, profile, v, s.rnd)
		for _, d := range domain.Dimensions {
			if score := outcome.Get(d); math.IsNaN(score) || math.IsInf(score, 0) {
				return domain.PredictionResult{}, &ComputationError{Err: fmt.Errorf("%s %s score is not finite", v, d)}
			}
		}
		outcomes[v] = outcome
	}
	cheap, quality := outcomes[domain.VariantCheap], outcomes[domain.VariantQuality]

	confidence := EstimateConfidence(cheap, quality, s.rnd)
	advantage := QualityAdvantage(cheap, quality)

	return domain.PredictionResult{
		Decision:           decision,
		Cheap:              cheap,
		Quality:            quality,
		ConfidenceScore:    confidence,
		AIInsight:          GenerateInsight(decision, cheap, quality),
		Recommendation:     BuildRecommendation(advantage, confidence),
		KeyDifferentiators: KeyDifferentiators(cheap, quality),
	}, nil
}

func (s *PredictionService) persist(ctx context.Context, result domain.PredictionResult) (string, error) {
	const op = "store prediction"
	if s.repo == nil {
		return "", &PersistenceError{Op: op, Err: errors.New("prediction repository not configured")}
	}
	// No se emite la escritura si el plazo ya vencio.
	if err := ctx.Err(); err != nil {
		return "", contextError(op, err)
	}
	id, err := s.repo.Store(ctx, result)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", &TimeoutError{Op: op, Err: err}
		}
		return "", &PersistenceError{Op: op, Err: err}
	}
	return id, nil
}

func (s *PredictionService) notifyStarted(ctx context.Context, subscriberID string, at time.Time) {
	if s.notifier == nil {
		return
	}
	event := domain.AnalysisStartedEvent{
		Message:   "Life impact analysis started",
		Timestamp: at.UTC(),
	}
	if err := s.notifier.AnalysisStarted(ctx, subscriberID, event); err != nil {
		s.logger.Warn("analysis-started notification failed", zap.Error(err), zap.String("subscriber_id", subscriberID))
	}
}

func (s *PredictionService) notifyComplete(ctx context.Context, subscriberID string, result domain.PredictionResult) {
	if s.notifier == nil {
		return
	}
	event := domain.AnalysisCompleteEvent{
		PredictionID:     result.ID,
		Confidence:       result.ConfidenceScore,
		ProcessingTimeMs: result.ProcessingTimeMs,
	}
	if err := s.notifier.AnalysisComplete(ctx, subscriberID, event); err != nil {
		s.logger.Warn("analysis-complete notification failed", zap.Error(err), zap.String("subscriber_id", subscriberID))
	}
}

func (s *PredictionService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func contextError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Op: op, Err: err}
	}
	return &PersistenceError{Op: op, Err: err}
}

// ValidateDecision normaliza la decision y devuelve *ValidationError con todos los campos invalidos.
func ValidateDecision(d domain.PurchaseDecision) (domain.PurchaseDecision, error) {
	d.ItemName = strings.TrimSpace(d.ItemName)
	d.Category = domain.NormalizeCategory(d.Category)

	var fields []string
	if d.ItemName == "" || utf8.RuneCountInString(d.ItemName) > maxItemNameLength {
		fields = append(fields, "itemName")
	}
	if d.Category == "" {
		fields = append(fields, "category")
	}
	if !validPrice(d.CheapPrice) {
		fields = append(fields, "cheapPrice")
	}
	if !validPrice(d.QualityPrice) {
		fields = append(fields, "qualityPrice")
	}
	if len(fields) > 0 {
		return domain.PurchaseDecision{}, &ValidationError{Fields: fields}
	}
	return d, nil
}

func validPrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}
