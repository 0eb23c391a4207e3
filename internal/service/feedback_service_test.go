package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"quantumshop/internal/domain"
	"quantumshop/internal/repository"
)

func seedPrediction(t *testing.T, repo *repository.MemoryPredictionRepository, p domain.PredictionResult) string {
	t.Helper()
	id, err := repo.Store(context.Background(), p)
	if err != nil {
		t.Fatalf("seed prediction: %v", err)
	}
	return id
}

func TestFeedbackService_SubmitFeedback(t *testing.T) {
	repo := repository.NewMemoryPredictionRepository()
	id := seedPrediction(t, repo, domain.PredictionResult{Decision: officeChair()})
	svc := NewFeedbackService(repo, zap.NewNop())
	fixed := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	feedback, err := svc.SubmitFeedback(context.Background(), id, FeedbackInput{
		AccuracyRating:   8,
		HelpfulRating:    9,
		Comments:         "  spot on  ",
		ActualChoiceMade: "Quality",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if feedback.Comments != "spot on" || feedback.ActualChoiceMade != domain.ChoiceQuality || !feedback.FeedbackDate.Equal(fixed) {
		t.Fatalf("unexpected feedback %+v", feedback)
	}

	stored, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Feedback == nil || stored.Feedback.AccuracyRating != 8 {
		t.Fatalf("expected feedback attached, got %+v", stored.Feedback)
	}
	if stored.ConfidenceScore != 0 || stored.Decision.ItemName != "Office Chair" {
		t.Fatalf("feedback must not alter the prediction")
	}
}

func TestFeedbackService_Validation(t *testing.T) {
	svc := NewFeedbackService(repository.NewMemoryPredictionRepository(), nil)

	_, err := svc.SubmitFeedback(context.Background(), "pred-1", FeedbackInput{
		AccuracyRating:   0,
		HelpfulRating:    11,
		Comments:         strings.Repeat("a", 501),
		ActualChoiceMade: "both",
	})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, f := range []string{"accuracy_rating", "helpful_rating", "comments", "actual_choice_made"} {
		if !vErr.HasField(f) {
			t.Fatalf("expected field %s in %v", f, vErr.Fields)
		}
	}
}

func TestFeedbackService_UnknownPrediction(t *testing.T) {
	svc := NewFeedbackService(repository.NewMemoryPredictionRepository(), nil)

	_, err := svc.SubmitFeedback(context.Background(), "missing", FeedbackInput{AccuracyRating: 5, HelpfulRating: 5})
	if !errors.Is(err, ErrPredictionNotFound) {
		t.Fatalf("expected ErrPredictionNotFound, got %v", err)
	}
	_, err = svc.SubmitFollowUp(context.Background(), "missing", FollowUpInput{ActualRegretLevel: intPtr(2)})
	if !errors.Is(err, ErrPredictionNotFound) {
		t.Fatalf("expected ErrPredictionNotFound for follow-up, got %v", err)
	}
}

func TestFeedbackService_SubmitFollowUp(t *testing.T) {
	repo := repository.NewMemoryPredictionRepository()
	id := seedPrediction(t, repo, domain.PredictionResult{Decision: officeChair()})
	svc := NewFeedbackService(repo, nil)
	changed := true

	followUp, err := svc.SubmitFollowUp(context.Background(), id, FollowUpInput{
		SatisfactionAfter1Month: intPtr(7),
		WouldChooseDifferently:  &changed,
		LessonsLearned:          "should have bought the better one",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if followUp.RecordedAt.IsZero() || *followUp.SatisfactionAfter1Month != 7 {
		t.Fatalf("unexpected follow-up %+v", followUp)
	}

	stored, _ := repo.GetByID(context.Background(), id)
	if stored.FollowUp == nil || stored.FollowUp.WouldChooseDifferently == nil || !*stored.FollowUp.WouldChooseDifferently {
		t.Fatalf("expected follow-up attached, got %+v", stored.FollowUp)
	}
}

func TestFeedbackService_FollowUpValidation(t *testing.T) {
	svc := NewFeedbackService(repository.NewMemoryPredictionRepository(), nil)

	_, err := svc.SubmitFollowUp(context.Background(), "pred-1", FollowUpInput{})
	var vErr *ValidationError
	if !errors.As(err, &vErr) || !vErr.HasField("followup") {
		t.Fatalf("expected empty follow-up to be rejected, got %v", err)
	}

	_, err = svc.SubmitFollowUp(context.Background(), "pred-1", FollowUpInput{
		SatisfactionAfter1Year: intPtr(12),
		LessonsLearned:         strings.Repeat("x", 1001),
	})
	if !errors.As(err, &vErr) || !vErr.HasField("satisfaction_after_1_year") || !vErr.HasField("lessons_learned") {
		t.Fatalf("expected range and length errors, got %v", err)
	}
}
