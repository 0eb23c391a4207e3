package domain

import "time"

// Eventos en tiempo real emitidos durante un analisis.
const (
	EventAnalysisStarted  = "analysis-started"
	EventAnalysisComplete = "analysis-complete"
)

// AnalysisChannel devuelve el canal de un suscriptor.
func AnalysisChannel(subscriberID string) string {
	return "analysis-" + subscriberID
}

type AnalysisStartedEvent struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type AnalysisCompleteEvent struct {
	PredictionID     string  `json:"predictionId"`
	Confidence       float64 `json:"confidence"`
	ProcessingTimeMs int64   `json:"processingTime"`
}
