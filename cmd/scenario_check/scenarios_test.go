package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"quantumshop/internal/domain"
	"quantumshop/internal/service"
)

func TestDefaultScenariosHaveNoViolations(t *testing.T) {
	for _, sc := range defaultScenarios() {
		if v := runScenario(context.Background(), sc, 25, zap.NewNop()); len(v) > 0 {
			t.Fatalf("%s: %d violations, first: seed=%d %s", sc.Name, len(v), v[0].Seed, v[0].Detail)
		}
	}
}

func TestCheckRunFlagsOutOfRangeScores(t *testing.T) {
	sc := Scenario{Name: "broken", ExpectQualityHealthier: true}
	result := domain.PredictionResult{
		Cheap:           domain.VariantOutcome{Health: 99, Financial: 50, Social: 50, Career: 50, Wellbeing: 50, Productivity: 50},
		Quality:         domain.VariantOutcome{Health: 50, Financial: 50, Social: 50, Career: 50, Wellbeing: 50, Productivity: 50},
		ConfidenceScore: 0.5,
		AIInsight:       "ok",
		Recommendation:  domain.Recommendation{SuggestedChoice: domain.VariantQuality},
	}

	problems := strings.Join(checkRun(sc, result, nil), "\n")
	for _, want := range []string{"cheap health=99.00", "confidence 0.500", "tier parity suggested quality", "quality health"} {
		if !strings.Contains(problems, want) {
			t.Fatalf("expected %q in problems:\n%s", want, problems)
		}
	}
}

func TestCheckRunValidationExpectation(t *testing.T) {
	sc := Scenario{ExpectValidationFailure: "category"}
	if p := checkRun(sc, domain.PredictionResult{}, &service.ValidationError{Fields: []string{"category"}}); len(p) != 0 {
		t.Fatalf("expected no problems, got %v", p)
	}
	if p := checkRun(sc, domain.PredictionResult{}, errors.New("boom")); len(p) != 1 {
		t.Fatalf("expected one problem, got %v", p)
	}
}
