package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"quantumshop/internal/domain"
	"quantumshop/internal/repository"
)

func TestHistoryService_NewestFirstWithLimit(t *testing.T) {
	repo := repository.NewMemoryPredictionRepository()
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedPrediction(t, repo, domain.PredictionResult{
			UserID:    "user-1",
			Decision:  officeChair(),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	seedPrediction(t, repo, domain.PredictionResult{UserID: "user-2", CreatedAt: base})

	svc := NewHistoryService(repo, 3, nil)
	got, err := svc.History(context.Background(), "user-1", 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected configured limit 3, got %d", len(got))
	}
	if !got[0].CreatedAt.Equal(base.Add(4 * time.Hour)) {
		t.Fatalf("expected newest first, got %v", got[0].CreatedAt)
	}

	empty, err := svc.History(context.Background(), "nobody", 10)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v %v", empty, err)
	}
	if _, err := svc.History(context.Background(), " ", 10); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for empty user, got %v", err)
	}
}

func TestHistoryService_GetAndSimilar(t *testing.T) {
	repo := repository.NewMemoryPredictionRepository()
	ref := seedPrediction(t, repo, domain.PredictionResult{Cheap: uniformOutcome(40), Quality: uniformOutcome(70)})
	near := seedPrediction(t, repo, domain.PredictionResult{Cheap: uniformOutcome(41), Quality: uniformOutcome(70)})
	seedPrediction(t, repo, domain.PredictionResult{Cheap: uniformOutcome(90), Quality: uniformOutcome(20)})

	svc := NewHistoryService(repo, 50, nil)
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrPredictionNotFound) {
		t.Fatalf("expected ErrPredictionNotFound, got %v", err)
	}

	similar, err := svc.Similar(context.Background(), ref, 1)
	if err != nil {
		t.Fatalf("similar: %v", err)
	}
	if len(similar) != 1 || similar[0].Prediction.ID != near {
		t.Fatalf("expected nearest prediction %s, got %+v", near, similar)
	}
	if _, err := svc.Similar(context.Background(), "missing", 3); !errors.Is(err, ErrPredictionNotFound) {
		t.Fatalf("expected ErrPredictionNotFound, got %v", err)
	}
}

func TestHistoryService_CategoryInsights(t *testing.T) {
	repo := repository.NewMemoryPredictionRepository()
	now := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	rated := seedPrediction(t, repo, domain.PredictionResult{Decision: officeChair(), ConfidenceScore: 0.8, CreatedAt: now.Add(-time.Hour)})
	seedPrediction(t, repo, domain.PredictionResult{Decision: officeChair(), ConfidenceScore: 0.7, CreatedAt: now.Add(-60 * 24 * time.Hour)})
	if err := repo.AttachFeedback(context.Background(), rated, domain.Feedback{AccuracyRating: 6}); err != nil {
		t.Fatalf("attach: %v", err)
	}

	svc := NewHistoryService(repo, 50, nil)
	svc.now = func() time.Time { return now }

	insight, err := svc.CategoryInsights(context.Background(), "Furniture", 0.75)
	if err != nil {
		t.Fatalf("insights: %v", err)
	}
	if insight.Stats.TotalPredictions != 1 || insight.Stats.RatedPredictions != 1 || insight.Stats.AvgAccuracyRating != 6 {
		t.Fatalf("unexpected stats %+v", insight.Stats)
	}
	if len(insight.Recent) != 1 || insight.Recent[0].ID != rated {
		t.Fatalf("expected only the prediction inside the window, got %d", len(insight.Recent))
	}

	_, err = svc.CategoryInsights(context.Background(), "spaceships", 2)
	var vErr *ValidationError
	if !errors.As(err, &vErr) || !vErr.HasField("category") || !vErr.HasField("min_confidence") {
		t.Fatalf("expected validation errors, got %v", err)
	}
}

// uuidColumnRepo falla como Postgres cuando el id no es un UUID valido.
type uuidColumnRepo struct {
	repository.PredictionRepository
	calls int
}

func (r *uuidColumnRepo) GetByID(context.Context, string) (domain.PredictionResult, error) {
	r.calls++
	return domain.PredictionResult{}, errors.New(`invalid input syntax for type uuid: "abc"`)
}

func (r *uuidColumnRepo) AttachFeedback(context.Context, string, domain.Feedback) error {
	r.calls++
	return errors.New(`invalid input syntax for type uuid: "abc"`)
}

func (r *uuidColumnRepo) AttachFollowUp(context.Context, string, domain.FollowUp) error {
	r.calls++
	return errors.New(`invalid input syntax for type uuid: "abc"`)
}

func TestMalformedPredictionIDIsNotFound(t *testing.T) {
	repo := &uuidColumnRepo{}
	history := NewHistoryService(repo, 50, nil)
	feedback := NewFeedbackService(repo, nil)
	ctx := context.Background()

	if _, err := history.Get(ctx, "abc"); !errors.Is(err, ErrPredictionNotFound) {
		t.Fatalf("Get: expected ErrPredictionNotFound, got %v", err)
	}
	if _, err := history.Similar(ctx, "abc", 3); !errors.Is(err, ErrPredictionNotFound) {
		t.Fatalf("Similar: expected ErrPredictionNotFound, got %v", err)
	}
	if _, err := feedback.SubmitFeedback(ctx, "abc", FeedbackInput{AccuracyRating: 5, HelpfulRating: 5}); !errors.Is(err, ErrPredictionNotFound) {
		t.Fatalf("SubmitFeedback: expected ErrPredictionNotFound, got %v", err)
	}
	if _, err := feedback.SubmitFollowUp(ctx, "abc", FollowUpInput{ActualRegretLevel: intPtr(3)}); !errors.Is(err, ErrPredictionNotFound) {
		t.Fatalf("SubmitFollowUp: expected ErrPredictionNotFound, got %v", err)
	}
	if repo.calls != 0 {
		t.Fatalf("expected no repository calls for malformed ids, got %d", repo.calls)
	}
}

func TestPredictionKeyCanonicalizes(t *testing.T) {
	key, ok := predictionKey("  6F9619FF-8B86-D011-B42D-00C04FC964FF ")
	if !ok || key != "6f9619ff-8b86-d011-b42d-00c04fc964ff" {
		t.Fatalf("predictionKey() = %q, %v", key, ok)
	}
	if _, ok := predictionKey("pred-1"); ok {
		t.Fatalf("expected non-uuid id to be rejected")
	}
}
