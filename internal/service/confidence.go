package service

import "quantumshop/internal/domain"

const (
	baselineConfidence = 0.78
	confidenceFloor    = 0.65
	confidenceCeiling  = 0.95
)

// EstimateConfidence devuelve la confianza del analisis en [0.65,0.95].
// Es ruido acotado alrededor de 0.78; los puntajes no intervienen en el calculo.
func EstimateConfidence(_, _ domain.VariantOutcome, rnd RandomSource) float64 {
	return clamp(baselineConfidence+variance(rnd), confidenceFloor, confidenceCeiling)
}

// ConfidenceLevel traduce la confianza numerica a la escala cualitativa del reporte.
func ConfidenceLevel(confidence float64) string {
	switch {
	case confidence >= 0.85:
		return "high"
	case confidence >= 0.75:
		return "medium"
	default:
		return "low"
	}
}
