package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"quantumshop/internal/domain"
)

func uniformOutcome(v float64) domain.VariantOutcome {
	var o domain.VariantOutcome
	for _, d := range domain.Dimensions {
		o = o.With(d, v)
	}
	return o
}

func TestClassifyAdvantageBoundaries(t *testing.T) {
	cases := []struct {
		advantage float64
		want      InsightTier
	}{
		{25.001, TierStrong},
		{25, TierModerate},
		{24.999, TierModerate},
		{15.001, TierModerate},
		{15, TierParity},
		{0, TierParity},
		{-30, TierParity},
	}
	for _, tc := range cases {
		if got := ClassifyAdvantage(tc.advantage); got != tc.want {
			t.Fatalf("ClassifyAdvantage(%v) = %s, want %s", tc.advantage, got, tc.want)
		}
	}
}

func TestRoundAdvantageHalfAwayFromZero(t *testing.T) {
	if got := RoundAdvantage(24.5); got != 25 {
		t.Fatalf("RoundAdvantage(24.5) = %d, want 25", got)
	}
	if got := RoundAdvantage(-0.5); got != -1 {
		t.Fatalf("RoundAdvantage(-0.5) = %d, want -1", got)
	}
	if got := RoundAdvantage(15.49); got != 15 {
		t.Fatalf("RoundAdvantage(15.49) = %d, want 15", got)
	}
}

func TestGenerateInsightTemplates(t *testing.T) {
	decision := domain.PurchaseDecision{ItemName: "Office Chair"}

	strong := GenerateInsight(decision, uniformOutcome(40), uniformOutcome(70))
	if !strings.Contains(strong, "Office Chair") || !strings.Contains(strong, "30%") {
		t.Fatalf("unexpected strong insight: %q", strong)
	}

	moderate := GenerateInsight(decision, uniformOutcome(40), uniformOutcome(60))
	if !strings.Contains(moderate, "20%") || moderate == strong {
		t.Fatalf("unexpected moderate insight: %q", moderate)
	}

	parity := GenerateInsight(decision, uniformOutcome(50), uniformOutcome(55))
	if strings.Contains(parity, "%") || !strings.Contains(parity, "Office Chair") {
		t.Fatalf("unexpected parity insight: %q", parity)
	}
}

func TestGenerateInsightTruncates(t *testing.T) {
	decision := domain.PurchaseDecision{ItemName: strings.Repeat("é", 2000)}
	got := GenerateInsight(decision, uniformOutcome(40), uniformOutcome(80))
	if n := utf8.RuneCountInString(got); n != MaxInsightLength {
		t.Fatalf("expected %d runes, got %d", MaxInsightLength, n)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("expected valid utf8 after truncation")
	}
}

func TestBuildRecommendation(t *testing.T) {
	rec := BuildRecommendation(30, 0.9)
	if rec.SuggestedChoice != domain.VariantQuality || rec.ConfidenceLevel != "high" {
		t.Fatalf("unexpected strong recommendation: %+v", rec)
	}
	rec = BuildRecommendation(20, 0.8)
	if rec.SuggestedChoice != domain.VariantQuality || rec.ConfidenceLevel != "medium" {
		t.Fatalf("unexpected moderate recommendation: %+v", rec)
	}
	rec = BuildRecommendation(10, 0.7)
	if rec.SuggestedChoice != domain.VariantCheap || rec.ConfidenceLevel != "low" {
		t.Fatalf("unexpected parity recommendation: %+v", rec)
	}
	if rec.Reasoning == "" {
		t.Fatalf("expected reasoning")
	}
}

func TestKeyDifferentiatorsSortedByMagnitude(t *testing.T) {
	cheap := domain.VariantOutcome{Health: 50, Financial: 90, Social: 50, Career: 50, Wellbeing: 40, Productivity: 60}
	quality := domain.VariantOutcome{Health: 55, Financial: 70, Social: 62, Career: 50, Wellbeing: 80, Productivity: 85}

	diffs := KeyDifferentiators(cheap, quality)
	if len(diffs) != len(domain.Dimensions) {
		t.Fatalf("expected %d differentiators, got %d", len(domain.Dimensions), len(diffs))
	}
	wantOrder := []domain.Dimension{
		domain.DimensionWellbeing,
		domain.DimensionProductivity,
		domain.DimensionFinancial,
		domain.DimensionSocial,
		domain.DimensionHealth,
		domain.DimensionCareer,
	}
	wantSignificance := []string{"critical", "high", "high", "medium", "low", "low"}
	for i, d := range wantOrder {
		if diffs[i].Dimension != d {
			t.Fatalf("position %d = %s, want %s", i, diffs[i].Dimension, d)
		}
		if diffs[i].Significance != wantSignificance[i] {
			t.Fatalf("%s significance = %s, want %s", d, diffs[i].Significance, wantSignificance[i])
		}
	}
	if diffs[2].Delta != -20 {
		t.Fatalf("expected signed financial delta -20, got %v", diffs[2].Delta)
	}
}

func TestEstimateConfidenceBounds(t *testing.T) {
	for _, sample := range []float64{0, 0.25, 0.5, 0.999999} {
		got := EstimateConfidence(domain.VariantOutcome{}, domain.VariantOutcome{}, fixedRandom(sample))
		if got < 0.65 || got > 0.95 {
			t.Fatalf("confidence %v out of range for sample %v", got, sample)
		}
	}
	rnd := NewSeededRandom(9)
	for i := 0; i < 1000; i++ {
		got := EstimateConfidence(domain.VariantOutcome{}, domain.VariantOutcome{}, rnd)
		if got < 0.7299 || got > 0.8301 {
			t.Fatalf("confidence %v outside baseline +/- 0.05", got)
		}
	}
	if got := EstimateConfidence(uniformOutcome(15), uniformOutcome(95), fixedRandom(0.5)); !approxEqual(got, 0.78) {
		t.Fatalf("expected outcomes to be ignored, got %v", got)
	}
}
