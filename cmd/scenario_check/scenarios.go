package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"quantumshop/internal/domain"
	"quantumshop/internal/repository"
	"quantumshop/internal/service"
)

// Scenario es una decision de compra con las expectativas que debe cumplir en toda semilla.
type Scenario struct {
	Name                    string
	Decision                domain.PurchaseDecision
	Profile                 domain.UserProfile
	ExpectQualityHealthier  bool
	ExpectValidationFailure string
}

type violation struct {
	Seed   uint64
	Detail string
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func defaultScenarios() []Scenario {
	return []Scenario{
		{
			Name:                   "Office Chair, perfil neutro",
			Decision:               domain.PurchaseDecision{ItemName: "Office Chair", Category: "furniture", CheapPrice: 50, QualityPrice: 400},
			Profile:                domain.DefaultUserProfile(),
			ExpectQualityHealthier: true,
		},
		{
			Name:     "Precios iguales",
			Decision: domain.PurchaseDecision{ItemName: "Kettle", Category: "appliances", CheapPrice: 80, QualityPrice: 80},
		},
		{
			Name:     "Barato mas caro que calidad",
			Decision: domain.PurchaseDecision{ItemName: "Sneakers", Category: "clothing", CheapPrice: 300, QualityPrice: 120},
		},
		{
			Name:     "Ingreso minimo, precio extremo",
			Decision: domain.PurchaseDecision{ItemName: "Car", Category: "automotive", CheapPrice: 9000, QualityPrice: 60000},
			Profile:  domain.UserProfile{Age: intPtr(67), CurrentIncome: floatPtr(900)},
		},
		{
			Name:     "Categoria desconocida",
			Decision: domain.PurchaseDecision{ItemName: "Telescope", Category: "astronomy", CheapPrice: 200, QualityPrice: 1500},
		},
		{
			Name:                    "Sin categoria",
			Decision:                domain.PurchaseDecision{ItemName: "Lamp", CheapPrice: 20, QualityPrice: 90},
			ExpectValidationFailure: "category",
		},
	}
}

func runScenario(ctx context.Context, sc Scenario, seeds uint64, logger *zap.Logger) []violation {
	var out []violation
	for seed := uint64(1); seed <= seeds; seed++ {
		repo := repository.NewMemoryPredictionRepository()
		svc := service.NewPredictionService(repo, nil, nil, service.NewRandomSource(seed), time.Second, logger)
		result, err := svc.Predict(ctx, service.PredictInput{Decision: sc.Decision, Profile: sc.Profile})
		for _, detail := range checkRun(sc, result, err) {
			out = append(out, violation{Seed: seed, Detail: detail})
		}
	}
	return out
}

// checkRun devuelve una descripcion por cada expectativa incumplida.
func checkRun(sc Scenario, result domain.PredictionResult, err error) []string {
	if sc.ExpectValidationFailure != "" {
		var vErr *service.ValidationError
		if !errors.As(err, &vErr) || !vErr.HasField(sc.ExpectValidationFailure) {
			return []string{fmt.Sprintf("expected validation error on %s, got %v", sc.ExpectValidationFailure, err)}
		}
		return nil
	}
	if err != nil {
		return []string{fmt.Sprintf("unexpected error: %v", err)}
	}

	var problems []string
	for _, v := range domain.Variants {
		outcome := result.Outcome(v)
		for _, d := range domain.Dimensions {
			lo, hi := service.DimensionBounds(d)
			if score := outcome.Get(d); math.IsNaN(score) || score < lo || score > hi {
				problems = append(problems, fmt.Sprintf("%s %s=%.2f outside [%.0f,%.0f]", v, d, score, lo, hi))
			}
		}
	}
	if result.ConfidenceScore < 0.65 || result.ConfidenceScore > 0.95 {
		problems = append(problems, fmt.Sprintf("confidence %.3f outside [0.65,0.95]", result.ConfidenceScore))
	}
	if n := utf8.RuneCountInString(result.AIInsight); n == 0 || n > service.MaxInsightLength {
		problems = append(problems, fmt.Sprintf("insight length %d", n))
	}

	tier := service.ClassifyAdvantage(service.QualityAdvantage(result.Cheap, result.Quality))
	wantChoice := domain.VariantCheap
	if tier != service.TierParity {
		wantChoice = domain.VariantQuality
	}
	if result.Recommendation.SuggestedChoice != wantChoice {
		problems = append(problems, fmt.Sprintf("tier %s suggested %s", tier, result.Recommendation.SuggestedChoice))
	}
	if sc.ExpectQualityHealthier && result.Quality.Health <= result.Cheap.Health {
		problems = append(problems, fmt.Sprintf("quality health %.2f <= cheap health %.2f", result.Quality.Health, result.Cheap.Health))
	}
	return problems
}
