package rules

import (
	"testing"
	"time"
)

func TestRecencyScoreSteps(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		elapsed time.Duration
		want    float64
	}{
		{30 * time.Minute, 100},
		{time.Hour, 100},
		{5 * time.Hour, 90},
		{3 * 24 * time.Hour, 70},
		{20 * 24 * time.Hour, 40},
		{90 * 24 * time.Hour, 10},
	}
	for _, tc := range cases {
		at := now.Add(-tc.elapsed)
		if got := RecencyScore(&at, now); got != tc.want {
			t.Fatalf("recency for %s: got %v want %v", tc.elapsed, got, tc.want)
		}
	}

	if got := RecencyScore(nil, now); got != 10 {
		t.Fatalf("recency for unknown activity: got %v want 10", got)
	}
}

func TestPopularityScoreSteps(t *testing.T) {
	cases := []struct {
		likes int
		want  float64
	}{
		{120, 100},
		{50, 100},
		{25, 80},
		{10, 60},
		{3, 40},
		{1, 20},
		{0, 10},
	}
	for _, tc := range cases {
		if got := PopularityScore(tc.likes); got != tc.want {
			t.Fatalf("popularity for %d likes: got %v want %v", tc.likes, got, tc.want)
		}
	}
}

func TestClampScoreBounds(t *testing.T) {
	if got := ClampScore(-5); got != 0 {
		t.Fatalf("clamp below zero: got %v", got)
	}
	if got := ClampScore(140); got != 100 {
		t.Fatalf("clamp above hundred: got %v", got)
	}
	if got := ClampScore(42.5); got != 42.5 {
		t.Fatalf("clamp in range: got %v", got)
	}
}
