package domain

import "time"

// Dimension es uno de los seis ejes de impacto vital.
type Dimension string

const (
	DimensionHealth       Dimension = "health"
	DimensionFinancial    Dimension = "financial"
	DimensionSocial       Dimension = "social"
	DimensionCareer       Dimension = "career"
	DimensionWellbeing    Dimension = "wellbeing"
	DimensionProductivity Dimension = "productivity"
)

// Dimensions en orden canonico (el mismo que usa la respuesta HTTP).
var Dimensions = []Dimension{
	DimensionHealth,
	DimensionFinancial,
	DimensionSocial,
	DimensionCareer,
	DimensionWellbeing,
	DimensionProductivity,
}

// VariantOutcome guarda los seis puntajes de una variante. Se crea una vez por request y no se muta.
type VariantOutcome struct {
	Health       float64 `json:"health_impact"`
	Financial    float64 `json:"financial_impact"`
	Social       float64 `json:"social_impact"`
	Career       float64 `json:"career_impact"`
	Wellbeing    float64 `json:"wellbeing_impact"`
	Productivity float64 `json:"productivity_impact"`
}

// Get devuelve el puntaje de una dimension.
func (o VariantOutcome) Get(d Dimension) float64 {
	switch d {
	case DimensionHealth:
		return o.Health
	case DimensionFinancial:
		return o.Financial
	case DimensionSocial:
		return o.Social
	case DimensionCareer:
		return o.Career
	case DimensionWellbeing:
		return o.Wellbeing
	case DimensionProductivity:
		return o.Productivity
	}
	return 0
}

// With devuelve una copia con la dimension reemplazada.
func (o VariantOutcome) With(d Dimension, v float64) VariantOutcome {
	switch d {
	case DimensionHealth:
		o.Health = v
	case DimensionFinancial:
		o.Financial = v
	case DimensionSocial:
		o.Social = v
	case DimensionCareer:
		o.Career = v
	case DimensionWellbeing:
		o.Wellbeing = v
	case DimensionProductivity:
		o.Productivity = v
	}
	return o
}

// Recommendation resume que opcion sugerimos y con que seguridad.
type Recommendation struct {
	SuggestedChoice Variant `json:"suggested_choice"`
	ConfidenceLevel string  `json:"confidence_level"` // low, medium, high
	Reasoning       string  `json:"reasoning"`
}

// KeyDifferentiator es la diferencia de una dimension entre calidad y barato.
type KeyDifferentiator struct {
	Dimension    Dimension `json:"category"`
	CheapScore   float64   `json:"cheap_outcome"`
	QualityScore float64   `json:"quality_outcome"`
	Delta        float64   `json:"delta"`
	Significance string    `json:"significance"` // low, medium, high, critical
}

// PredictionResult es el agregado que produce una corrida del orquestador.
// Despues de persistido solo cambia via Feedback o FollowUp.
type PredictionResult struct {
	ID                 string              `json:"id"`
	UserID             string              `json:"user_id,omitempty"`
	Decision           PurchaseDecision    `json:"decision"`
	Cheap              VariantOutcome      `json:"cheap_choice"`
	Quality            VariantOutcome      `json:"quality_choice"`
	ConfidenceScore    float64             `json:"confidence_score"`
	AIInsight          string              `json:"ai_insight"`
	Recommendation     Recommendation      `json:"recommendation"`
	KeyDifferentiators []KeyDifferentiator `json:"key_differentiators"`
	ProcessingTimeMs   int64               `json:"processing_time_ms"`
	Feedback           *Feedback           `json:"user_feedback,omitempty"`
	FollowUp           *FollowUp           `json:"followup_data,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
}

// Outcome devuelve los puntajes de la variante pedida.
func (p PredictionResult) Outcome(v Variant) VariantOutcome {
	if v == VariantQuality {
		return p.Quality
	}
	return p.Cheap
}

// ImpactVector aplana los doce puntajes (barato y luego calidad) para busqueda por similitud.
func (p PredictionResult) ImpactVector() []float32 {
	vec := make([]float32, 0, len(Dimensions)*2)
	for _, v := range Variants {
		outcome := p.Outcome(v)
		for _, d := range Dimensions {
			vec = append(vec, float32(outcome.Get(d)))
		}
	}
	return vec
}

// FutureSelfState etiqueta cualitativamente el yo futuro de cada escenario.
type FutureSelfState struct {
	CheapScenario   string `json:"cheap_scenario"`
	QualityScenario string `json:"quality_scenario"`
}

// FutureSelf deriva el estado a partir del bienestar de cada variante.
func (p PredictionResult) FutureSelf() FutureSelfState {
	state := FutureSelfState{CheapScenario: "regretful", QualityScenario: "satisfied"}
	if p.Cheap.Wellbeing > 60 {
		state.CheapScenario = "satisfied"
	}
	if p.Quality.Wellbeing > 75 {
		state.QualityScenario = "fulfilled"
	}
	return state
}

// Valores posibles de ActualChoiceMade.
const (
	ChoiceCheap           = "cheap"
	ChoiceQuality         = "quality"
	ChoiceNeither         = "neither"
	ChoiceDifferentOption = "different_option"
)

// Feedback es la valoracion del usuario sobre una prediccion. No dispara recalculo.
type Feedback struct {
	AccuracyRating   int       `json:"accuracy_rating"`
	HelpfulRating    int       `json:"helpful_rating"`
	Comments         string    `json:"comments,omitempty"`
	ActualChoiceMade string    `json:"actual_choice_made,omitempty"`
	FeedbackDate     time.Time `json:"feedback_date"`
}

// FollowUp guarda muestras longitudinales de satisfaccion y arrepentimiento.
type FollowUp struct {
	SatisfactionAfter1Month  *int      `json:"satisfaction_after_1_month,omitempty"`
	SatisfactionAfter6Months *int      `json:"satisfaction_after_6_months,omitempty"`
	SatisfactionAfter1Year   *int      `json:"satisfaction_after_1_year,omitempty"`
	ActualRegretLevel        *int      `json:"actual_regret_level,omitempty"`
	WouldChooseDifferently   *bool     `json:"would_choose_differently,omitempty"`
	LessonsLearned           string    `json:"lessons_learned,omitempty"`
	RecordedAt               time.Time `json:"recorded_at"`
}

// CategoryStats agrega predicciones de una categoria (insumo para recalibrar los modelos).
type CategoryStats struct {
	Category          string  `json:"category"`
	TotalPredictions  int64   `json:"total_predictions"`
	RatedPredictions  int64   `json:"rated_predictions"`
	AvgAccuracyRating float64 `json:"avg_accuracy_rating"`
	AvgConfidence     float64 `json:"avg_confidence"`
}

// SimilarPrediction es una prediccion previa cercana en el espacio de impacto.
type SimilarPrediction struct {
	Prediction PredictionResult `json:"prediction"`
	Distance   float64          `json:"distance"`
}
