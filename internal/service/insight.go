package service

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"quantumshop/internal/domain"
)

// MaxInsightLength es el largo maximo (en runas) del texto generado.
const MaxInsightLength = 1000

// InsightTier clasifica la ventaja promedio de la opcion de calidad.
type InsightTier string

const (
	TierStrong   InsightTier = "strong"
	TierModerate InsightTier = "moderate"
	TierParity   InsightTier = "parity"
)

const (
	strongAdvantageThreshold   = 25.0
	moderateAdvantageThreshold = 15.0
)

// QualityAdvantage es el promedio de quality[d] - cheap[d] sobre las seis dimensiones.
func QualityAdvantage(cheap, quality domain.VariantOutcome) float64 {
	var sum float64
	for _, d := range domain.Dimensions {
		sum += quality.Get(d) - cheap.Get(d)
	}
	return sum / float64(len(domain.Dimensions))
}

// ClassifyAdvantage aplica los cortes estrictos: >25 fuerte, >15 moderado, resto paridad.
func ClassifyAdvantage(advantage float64) InsightTier {
	switch {
	case advantage > strongAdvantageThreshold:
		return TierStrong
	case advantage > moderateAdvantageThreshold:
		return TierModerate
	default:
		return TierParity
	}
}

// RoundAdvantage redondea al entero mas cercano, mitades lejos de cero.
func RoundAdvantage(advantage float64) int {
	return int(math.Round(advantage))
}

// GenerateInsight arma el parrafo de la recomendacion segun el tier de la ventaja.
func GenerateInsight(decision domain.PurchaseDecision, cheap, quality domain.VariantOutcome) string {
	advantage := QualityAdvantage(cheap, quality)
	item := strings.TrimSpace(decision.ItemName)
	pct := RoundAdvantage(advantage)

	var text string
	switch ClassifyAdvantage(advantage) {
	case TierStrong:
		text = fmt.Sprintf(
			"Given your profile, a quality %s could meaningfully change where you end up. "+
				"The premium option projects a %d%% improvement across the life areas we track, "+
				"led by productivity and long-term wellbeing. Those gains compound over the years "+
				"and are likely to outweigh the upfront price difference.",
			item, pct)
	case TierModerate:
		text = fmt.Sprintf(
			"A quality %s looks like a worthwhile upgrade for your situation. "+
				"The budget option covers the basics, but the premium one makes day-to-day use better "+
				"and adds momentum to your career and personal growth, with a %d%% average improvement "+
				"across life metrics.",
			item, pct)
	default:
		text = fmt.Sprintf(
			"For this %s, both options lead to similar outcomes in your current situation. "+
				"The budget choice gets you the most value now without hurting your long-term trajectory. "+
				"Consider putting the savings toward a purchase where quality makes a bigger difference.",
			item)
	}
	return truncateRunes(text, MaxInsightLength)
}

// BuildRecommendation sugiere calidad para los tiers fuerte y moderado, y barato en paridad.
func BuildRecommendation(advantage, confidence float64) domain.Recommendation {
	rec := domain.Recommendation{
		SuggestedChoice: domain.VariantCheap,
		ConfidenceLevel: ConfidenceLevel(confidence),
	}
	pct := RoundAdvantage(advantage)
	switch ClassifyAdvantage(advantage) {
	case TierStrong:
		rec.SuggestedChoice = domain.VariantQuality
		rec.Reasoning = fmt.Sprintf("quality option leads by %d points on average; long-term benefits dominate", pct)
	case TierModerate:
		rec.SuggestedChoice = domain.VariantQuality
		rec.Reasoning = fmt.Sprintf("quality option leads by %d points on average; cheap option still meets basic needs", pct)
	default:
		rec.Reasoning = fmt.Sprintf("average difference of %d points does not justify the premium", pct)
	}
	return rec
}

// KeyDifferentiators devuelve la diferencia por dimension ordenada por magnitud descendente.
func KeyDifferentiators(cheap, quality domain.VariantOutcome) []domain.KeyDifferentiator {
	out := make([]domain.KeyDifferentiator, 0, len(domain.Dimensions))
	for _, d := range domain.Dimensions {
		delta := quality.Get(d) - cheap.Get(d)
		out = append(out, domain.KeyDifferentiator{
			Dimension:    d,
			CheapScore:   cheap.Get(d),
			QualityScore: quality.Get(d),
			Delta:        delta,
			Significance: significance(delta),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Delta) > math.Abs(out[j].Delta)
	})
	return out
}

func significance(delta float64) string {
	abs := math.Abs(delta)
	switch {
	case abs >= 30:
		return "critical"
	case abs >= 20:
		return "high"
	case abs >= 10:
		return "medium"
	default:
		return "low"
	}
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
