package calculator

import (
	"math"
	"testing"

	"RoboAdvisor/internal/model"
)

func TestCorpusGrowth_ZeroReturnIsLinear(t *testing.T) {
	tests := []struct {
		corpus, sip float64
		years       int
	}{
		{0, 5000, 10},
		{100000, 0, 3},
		{250000, 12000, 25},
		{1, 1, 1},
	}
	for _, tt := range tests {
		got := CorpusGrowth(tt.corpus, tt.sip, tt.years, 0)
		want := tt.corpus + tt.sip*12*float64(tt.years)
		if got != want {
			t.Errorf("CorpusGrowth(%.0f, %.0f, %d, 0) = %.2f, want %.2f", tt.corpus, tt.sip, tt.years, got, want)
		}
	}
}

func TestCorpusGrowth_LumpSum(t *testing.T) {
	got := CorpusGrowth(100000, 0, 5, 10.0)
	want := 100000 * math.Pow(1+10.0/12/100, 60)
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("expected %.6f, got %.6f", want, got)
	}
}

func TestCorpusGrowth_SIPOnly(t *testing.T) {
	r := 12.0 / 12 / 100
	want := 10000 * (math.Pow(1+r, 120) - 1) / r
	got := CorpusGrowth(0, 10000, 10, 12.0)
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("expected %.2f, got %.2f", want, got)
	}
	if got <= 10000*120 {
		t.Errorf("compounded SIP %.2f should exceed contributions", got)
	}
}

func TestCorpusGrowth_NonPositiveYears(t *testing.T) {
	if got := CorpusGrowth(50000, 1000, 0, 9.0); got != 50000 {
		t.Errorf("zero years: expected 50000, got %.2f", got)
	}
	// Negative years are a documented linear degenerate case.
	if got := CorpusGrowth(50000, 1000, -2, 9.0); got != 26000 {
		t.Errorf("negative years: expected 26000, got %.2f", got)
	}
}

func TestApplyMeanReversion(t *testing.T) {
	tests := []struct {
		base, recent, want float64
	}{
		{9.0, 14.0, 9.0}, // boundary is not strictly greater
		{9.0, 14.1, 8.0},
		{9.0, 30.0, 8.0}, // fixed cut regardless of overshoot
		{9.0, 2.0, 9.0},  // never upward
		{12.0, 18.2, 11.0},
		{6.0, 6.2, 6.0},
	}
	for _, tt := range tests {
		if got := ApplyMeanReversion(tt.base, tt.recent); got != tt.want {
			t.Errorf("ApplyMeanReversion(%.1f, %.1f) = %.1f, want %.1f", tt.base, tt.recent, got, tt.want)
		}
	}
}

func TestConfidenceScore(t *testing.T) {
	tests := []struct {
		vol  float64
		age  int
		want string
	}{
		{3.5, 10, model.ConfidenceHigh},
		{7.5, 10, model.ConfidenceMedium},
		{15.0, 2, model.ConfidenceLow},
		{15.0, 10, model.ConfidenceMedium},
		{5.0, 5, model.ConfidenceHigh},
		{10.0, 1, model.ConfidenceMedium},
		{5.0, 1, model.ConfidenceMedium},
		{13.5, 5, model.ConfidenceLow},
	}
	for _, tt := range tests {
		if got := ConfidenceScore(tt.vol, tt.age); got != tt.want {
			t.Errorf("ConfidenceScore(%.1f, %d) = %q (combined %.2f), want %q",
				tt.vol, tt.age, got, CombinedScore(tt.vol, tt.age), tt.want)
		}
	}
}

func TestConfidencePercentage(t *testing.T) {
	tests := map[string]int{
		model.ConfidenceHigh:   70,
		model.ConfidenceMedium: 50,
		model.ConfidenceLow:    25,
		"Unknown":              50,
		"":                     50,
	}
	for label, want := range tests {
		if got := ConfidencePercentage(label); got != want {
			t.Errorf("ConfidencePercentage(%q) = %d, want %d", label, got, want)
		}
	}
}
