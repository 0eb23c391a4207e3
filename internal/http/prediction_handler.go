package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"quantumshop/internal/domain"
	"quantumshop/internal/service"
)

// PredictionHandler mantiene dependencias para los endpoints de prediccion e historial.
type PredictionHandler struct {
	logger      *zap.Logger
	predictions *service.PredictionService
	history     *service.HistoryService
}

func NewPredictionHandler(logger *zap.Logger, predictions *service.PredictionService, history *service.HistoryService) *PredictionHandler {
	return &PredictionHandler{
		logger:      logger,
		predictions: predictions,
		history:     history,
	}
}

// predictRequest acepta tanto snake_case como camelCase; snake_case tiene prioridad.
type predictRequest struct {
	ItemName          string   `json:"item_name"`
	ItemNameCamel     string   `json:"itemName"`
	Category          string   `json:"category"`
	CheapPrice        *float64 `json:"cheap_price"`
	CheapPriceCamel   *float64 `json:"cheapPrice"`
	QualityPrice      *float64 `json:"quality_price"`
	QualityPriceCamel *float64 `json:"qualityPrice"`
	UserID            string   `json:"user_id"`
	UserIDCamel       string   `json:"userId"`
	SubscriberID      string   `json:"subscriber_id"`
	SubscriberIDCamel string   `json:"subscriberId"`
}

func (r predictRequest) decision() domain.PurchaseDecision {
	return domain.PurchaseDecision{
		ItemName:     firstNonEmpty(r.ItemName, r.ItemNameCamel),
		Category:     r.Category,
		CheapPrice:   firstPrice(r.CheapPrice, r.CheapPriceCamel),
		QualityPrice: firstPrice(r.QualityPrice, r.QualityPriceCamel),
	}
}

// canonicalFields unifica las variantes snake_case y camelCase del body.
var canonicalFields = map[string]string{
	"item_name":     "itemName",
	"itemName":      "itemName",
	"category":      "category",
	"cheap_price":   "cheapPrice",
	"cheapPrice":    "cheapPrice",
	"quality_price": "qualityPrice",
	"qualityPrice":  "qualityPrice",
	"user_id":       "userId",
	"userId":        "userId",
	"subscriber_id": "subscriberId",
	"subscriberId":  "subscriberId",
}

// bindErrorFields devuelve los campos con tipo JSON incorrecto. Un body vacio no nombra
// campos pero se valida igual; ok=false significa JSON ilegible.
func bindErrorFields(err error) ([]string, bool) {
	if errors.Is(err, io.EOF) {
		return nil, true
	}
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) || typeErr.Field == "" {
		return nil, false
	}
	name := typeErr.Field
	if canonical, ok := canonicalFields[name]; ok {
		name = canonical
	}
	return []string{name}, true
}

// decisionErrors junta los campos faltantes de la decision con los de tipo incorrecto.
func decisionErrors(req predictRequest, typed []string) *service.ValidationError {
	vErr := &service.ValidationError{}
	if _, err := service.ValidateDecision(req.decision()); err != nil {
		errors.As(err, &vErr)
	}
	for _, f := range typed {
		if !vErr.HasField(f) {
			vErr.Fields = append(vErr.Fields, f)
		}
	}
	return vErr
}

// PredictFuture maneja POST /api/predict-future.
func (h *PredictionHandler) PredictFuture(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fields, ok := bindErrorFields(err)
		if !ok {
			h.logger.Warn("invalid predict request", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request"})
			return
		}
		writeServiceError(c, h.logger, "predict", decisionErrors(req, fields))
		return
	}

	userID := firstNonEmpty(req.UserID, req.UserIDCamel)
	if claims, ok := GetAuthClaims(c); ok {
		userID = claims.UserID
	}
	subscriberID := firstNonEmpty(req.SubscriberID, req.SubscriberIDCamel, userID)

	ctx := c.Request.Context()
	decision := req.decision()
	if _, err := service.ValidateDecision(decision); err != nil {
		writeServiceError(c, h.logger, "predict", err)
		return
	}

	result, err := h.predictions.Predict(ctx, service.PredictInput{
		Decision:     decision,
		Profile:      h.predictions.ResolveProfile(ctx, userID),
		UserID:       userID,
		SubscriberID: subscriberID,
	})
	persisted := true
	if err != nil {
		if !errors.Is(err, service.ErrPersistence) {
			writeServiceError(c, h.logger, "predict", err)
			return
		}
		// El resultado calculado se entrega igual; el cliente ve persisted=false.
		h.logger.Warn("returning unpersisted prediction", zap.Error(err))
		persisted = false
	}

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"prediction_id":       result.ID,
		"persisted":           persisted,
		"life_impact_data":    lifeImpactData(result),
		"ai_insight":          result.AIInsight,
		"confidence_score":    result.ConfidenceScore,
		"processing_time_ms":  result.ProcessingTimeMs,
		"future_self_state":   result.FutureSelf(),
		"recommendation":      result.Recommendation,
		"key_differentiators": result.KeyDifferentiators,
	})
}

// ListByUser maneja GET /api/predictions/:userId.
func (h *PredictionHandler) ListByUser(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("userId"))
	if claims, ok := GetAuthClaims(c); ok && claims.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "forbidden"})
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid limit", "fields": []string{"limit"}})
		return
	}

	predictions, err := h.history.History(c.Request.Context(), userID, limit)
	if err != nil {
		writeServiceError(c, h.logger, "list predictions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "predictions": predictions})
}

// GetPrediction maneja GET /api/prediction/:predictionId.
func (h *PredictionHandler) GetPrediction(c *gin.Context) {
	prediction, err := h.history.Get(c.Request.Context(), c.Param("predictionId"))
	if err != nil {
		writeServiceError(c, h.logger, "get prediction", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "prediction": prediction})
}

// Similar maneja GET /api/prediction/:predictionId/similar.
func (h *PredictionHandler) Similar(c *gin.Context) {
	k, ok := queryInt(c, "k")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid k", "fields": []string{"k"}})
		return
	}
	similar, err := h.history.Similar(c.Request.Context(), c.Param("predictionId"), k)
	if err != nil {
		writeServiceError(c, h.logger, "similar predictions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "similar": similar})
}

// CategoryInsights maneja GET /api/insights/:category.
func (h *PredictionHandler) CategoryInsights(c *gin.Context) {
	minConfidence := 0.0
	if raw := strings.TrimSpace(c.Query("min_confidence")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid min_confidence", "fields": []string{"min_confidence"}})
			return
		}
		minConfidence = v
	}

	insight, err := h.history.CategoryInsights(c.Request.Context(), c.Param("category"), minConfidence)
	if err != nil {
		writeServiceError(c, h.logger, "category insights", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "insights": insight})
}

func lifeImpactData(result domain.PredictionResult) gin.H {
	data := gin.H{}
	for _, d := range domain.Dimensions {
		data[string(d)] = gin.H{
			"cheap":   result.Cheap.Get(d),
			"quality": result.Quality.Get(d),
		}
	}
	return data
}

// queryInt devuelve 0 si el parametro no viene y false si no es un entero.
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func firstPrice(values ...*float64) float64 {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}
