package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"quantumshop/internal/domain"
	"quantumshop/internal/repository"
)

const (
	minRating         = 1
	maxRating         = 10
	maxCommentsLength = 500
	maxLessonsLength  = 1000
)

// FeedbackInput es la valoracion enviada por el usuario.
type FeedbackInput struct {
	AccuracyRating   int    `json:"accuracy_rating"`
	HelpfulRating    int    `json:"helpful_rating"`
	Comments         string `json:"comments"`
	ActualChoiceMade string `json:"actual_choice_made"`
}

// FollowUpInput agrupa las muestras de seguimiento; los campos nil no se informan.
type FollowUpInput struct {
	SatisfactionAfter1Month  *int   `json:"satisfaction_after_1_month"`
	SatisfactionAfter6Months *int   `json:"satisfaction_after_6_months"`
	SatisfactionAfter1Year   *int   `json:"satisfaction_after_1_year"`
	ActualRegretLevel        *int   `json:"actual_regret_level"`
	WouldChooseDifferently   *bool  `json:"would_choose_differently"`
	LessonsLearned           string `json:"lessons_learned"`
}

// FeedbackService adjunta feedback y seguimiento a predicciones existentes.
// Nunca recalcula la prediccion.
type FeedbackService struct {
	repo   repository.PredictionRepository
	now    func() time.Time
	logger *zap.Logger
}

func NewFeedbackService(repo repository.PredictionRepository, logger *zap.Logger) *FeedbackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{repo: repo, now: time.Now, logger: logger}
}

func (s *FeedbackService) SubmitFeedback(ctx context.Context, predictionID string, in FeedbackInput) (domain.Feedback, error) {
	predictionID = strings.TrimSpace(predictionID)
	if predictionID == "" {
		return domain.Feedback{}, &ValidationError{Fields: []string{"prediction_id"}}
	}
	feedback, err := validateFeedback(in)
	if err != nil {
		return domain.Feedback{}, err
	}
	feedback.FeedbackDate = s.now().UTC()
	key, ok := predictionKey(predictionID)
	if !ok {
		return domain.Feedback{}, ErrPredictionNotFound
	}

	if err := s.repo.AttachFeedback(ctx, key, feedback); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Feedback{}, ErrPredictionNotFound
		}
		return domain.Feedback{}, &PersistenceError{Op: "attach feedback", Err: err}
	}
	s.logger.Info("feedback recorded",
		zap.String("prediction_id", key),
		zap.Int("accuracy_rating", feedback.AccuracyRating),
	)
	return feedback, nil
}

func (s *FeedbackService) SubmitFollowUp(ctx context.Context, predictionID string, in FollowUpInput) (domain.FollowUp, error) {
	predictionID = strings.TrimSpace(predictionID)
	if predictionID == "" {
		return domain.FollowUp{}, &ValidationError{Fields: []string{"prediction_id"}}
	}
	followUp, err := validateFollowUp(in)
	if err != nil {
		return domain.FollowUp{}, err
	}
	followUp.RecordedAt = s.now().UTC()
	key, ok := predictionKey(predictionID)
	if !ok {
		return domain.FollowUp{}, ErrPredictionNotFound
	}

	if err := s.repo.AttachFollowUp(ctx, key, followUp); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.FollowUp{}, ErrPredictionNotFound
		}
		return domain.FollowUp{}, &PersistenceError{Op: "attach follow-up", Err: err}
	}
	s.logger.Info("follow-up recorded", zap.String("prediction_id", key))
	return followUp, nil
}

func validateFeedback(in FeedbackInput) (domain.Feedback, error) {
	var fields []string
	if !validRating(in.AccuracyRating) {
		fields = append(fields, "accuracy_rating")
	}
	if !validRating(in.HelpfulRating) {
		fields = append(fields, "helpful_rating")
	}
	comments := strings.TrimSpace(in.Comments)
	if utf8.RuneCountInString(comments) > maxCommentsLength {
		fields = append(fields, "comments")
	}
	choice := strings.ToLower(strings.TrimSpace(in.ActualChoiceMade))
	switch choice {
	case "", domain.ChoiceCheap, domain.ChoiceQuality, domain.ChoiceNeither, domain.ChoiceDifferentOption:
	default:
		fields = append(fields, "actual_choice_made")
	}
	if len(fields) > 0 {
		return domain.Feedback{}, &ValidationError{Fields: fields}
	}
	return domain.Feedback{
		AccuracyRating:   in.AccuracyRating,
		HelpfulRating:    in.HelpfulRating,
		Comments:         comments,
		ActualChoiceMade: choice,
	}, nil
}

func validateFollowUp(in FollowUpInput) (domain.FollowUp, error) {
	var fields []string
	checks := []struct {
		name  string
		value *int
	}{
		{"satisfaction_after_1_month", in.SatisfactionAfter1Month},
		{"satisfaction_after_6_months", in.SatisfactionAfter6Months},
		{"satisfaction_after_1_year", in.SatisfactionAfter1Year},
		{"actual_regret_level", in.ActualRegretLevel},
	}
	reported := in.WouldChooseDifferently != nil
	for _, c := range checks {
		if c.value == nil {
			continue
		}
		reported = true
		if !validRating(*c.value) {
			fields = append(fields, c.name)
		}
	}
	lessons := strings.TrimSpace(in.LessonsLearned)
	if lessons != "" {
		reported = true
	}
	if utf8.RuneCountInString(lessons) > maxLessonsLength {
		fields = append(fields, "lessons_learned")
	}
	if !reported {
		return domain.FollowUp{}, &ValidationError{Fields: []string{"followup"}}
	}
	if len(fields) > 0 {
		return domain.FollowUp{}, &ValidationError{Fields: fields}
	}
	return domain.FollowUp{
		SatisfactionAfter1Month:  in.SatisfactionAfter1Month,
		SatisfactionAfter6Months: in.SatisfactionAfter6Months,
		SatisfactionAfter1Year:   in.SatisfactionAfter1Year,
		ActualRegretLevel:        in.ActualRegretLevel,
		WouldChooseDifferently:   in.WouldChooseDifferently,
		LessonsLearned:           lessons,
	}, nil
}

func validRating(v int) bool {
	return v >= minRating && v <= maxRating
}
