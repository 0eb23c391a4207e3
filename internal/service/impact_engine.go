package service

import (
	"math"

	"quantumshop/internal/domain"
)

// ImpactEngine encapsula los modelos deterministas de impacto vital por dimension.
// No guarda estado: todas las tablas son constantes de paquete.
type ImpactEngine struct{}

// DefaultImpactEngine permite uso directo sin instanciar.
var DefaultImpactEngine = ImpactEngine{}

type scoreBounds struct {
	min float64
	max float64
}

// Financiero tiene piso 20; el resto 15. El techo es 95 para todas.
var dimensionBounds = map[domain.Dimension]scoreBounds{
	domain.DimensionHealth:       {min: 15, max: 95},
	domain.DimensionFinancial:    {min: 20, max: 95},
	domain.DimensionSocial:       {min: 15, max: 95},
	domain.DimensionCareer:       {min: 15, max: 95},
	domain.DimensionWellbeing:    {min: 15, max: 95},
	domain.DimensionProductivity: {min: 15, max: 95},
}

type variantBase struct {
	cheap   float64
	quality float64
}

func (b variantBase) For(v domain.Variant) float64 {
	if v == domain.VariantQuality {
		return b.quality
	}
	return b.cheap
}

// Financiero es la unica dimension donde barato arranca mas alto: modela asequibilidad inmediata.
var baseScores = map[domain.Dimension]variantBase{
	domain.DimensionHealth:       {cheap: 45, quality: 75},
	domain.DimensionFinancial:    {cheap: 85, quality: 70},
	domain.DimensionSocial:       {cheap: 50, quality: 80},
	domain.DimensionCareer:       {cheap: 55, quality: 85},
	domain.DimensionWellbeing:    {cheap: 45, quality: 80},
	domain.DimensionProductivity: {cheap: 60, quality: 85},
}

var healthMultipliers = map[string]float64{
	domain.CategoryFitness:     1.3,
	domain.CategoryFurniture:   1.1,
	domain.CategoryElectronics: 0.9,
	domain.CategoryClothing:    1.0,
	domain.CategoryAppliances:  1.0,
}

var socialMultipliers = map[string]float64{
	domain.CategoryClothing:    1.2,
	domain.CategoryElectronics: 1.1,
	domain.CategoryFurniture:   1.0,
	domain.CategoryFitness:     0.9,
	domain.CategoryAppliances:  0.8,
}

var careerMultipliers = map[string]float64{
	domain.CategoryElectronics: 1.3,
	domain.CategoryFurniture:   1.2,
	domain.CategoryClothing:    1.1,
	domain.CategoryFitness:     1.0,
	domain.CategoryAppliances:  0.8,
}

var productivityMultipliers = map[string]float64{
	domain.CategoryElectronics: 1.4,
	domain.CategoryFurniture:   1.3,
	domain.CategoryAppliances:  1.1,
	domain.CategoryFitness:     1.0,
	domain.CategoryClothing:    0.9,
}

const (
	ageBonusThreshold = 40
	ageBonus          = 10.0
	pricePressureK    = 1000.0
	incomeBonusK      = 10.0
	stressReliefDelta = 15.0
	stressCostDelta   = -10.0
)

// CategoryMultiplier devuelve el multiplicador de la categoria para la dimension.
// Categorias desconocidas (y dimensiones sin tabla) devuelven 1.0.
func (ImpactEngine) CategoryMultiplier(dim domain.Dimension, category string) float64 {
	var table map[string]float64
	switch dim {
	case domain.DimensionHealth:
		table = healthMultipliers
	case domain.DimensionSocial:
		table = socialMultipliers
	case domain.DimensionCareer:
		table = careerMultipliers
	case domain.DimensionProductivity:
		table = productivityMultipliers
	default:
		return 1.0
	}
	if m, ok := table[domain.NormalizeCategory(category)]; ok {
		return m
	}
	return 1.0
}

// Score calcula el puntaje acotado de una dimension para una variante, sin jitter.
// Es una funcion pura; una dimension desconocida devuelve NaN.
func (e ImpactEngine) Score(dim domain.Dimension, decision domain.PurchaseDecision, profile domain.UserProfile, variant domain.Variant) float64 {
	base, ok := baseScores[dim]
	if !ok {
		return math.NaN()
	}
	score := base.For(variant)

	switch dim {
	case domain.DimensionHealth:
		score *= e.CategoryMultiplier(dim, decision.Category)
		if profile.AgeOrZero() > ageBonusThreshold {
			score += ageBonus
		}
	case domain.DimensionFinancial:
		income := profile.IncomeOrDefault()
		pricePressure := decision.Price(variant) / income * pricePressureK
		incomeRatio := income / domain.DefaultIncome
		score = score - pricePressure + incomeRatio*incomeBonusK
	case domain.DimensionWellbeing:
		if variant == domain.VariantQuality {
			score += stressReliefDelta
		} else {
			score += stressCostDelta
		}
	default:
		score *= e.CategoryMultiplier(dim, decision.Category)
	}

	return clampDimension(dim, score)
}

// ScoreVariant calcula las seis dimensiones de una variante. Sortea un unico jitter en
// [-0.05,+0.05) que se aplica multiplicativamente a todas y vuelve a acotar cada puntaje.
func (e ImpactEngine) ScoreVariant(decision domain.PurchaseDecision, profile domain.UserProfile, variant domain.Variant, rnd RandomSource) domain.VariantOutcome {
	adjustment := variance(rnd)

	var outcome domain.VariantOutcome
	for _, dim := range domain.Dimensions {
		score := e.Score(dim, decision, profile, variant)
		outcome = outcome.With(dim, clampDimension(dim, score*(1+adjustment)))
	}
	return outcome
}

// DimensionBounds expone el rango valido de una dimension.
func DimensionBounds(dim domain.Dimension) (min, max float64) {
	b, ok := dimensionBounds[dim]
	if !ok {
		return 15, 95
	}
	return b.min, b.max
}

func clampDimension(dim domain.Dimension, v float64) float64 {
	lo, hi := DimensionBounds(dim)
	return clamp(v, lo, hi)
}

// clamp deja pasar NaN para que el orquestador lo detecte como falla de computo.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.Min(hi, math.Max(lo, v))
}
