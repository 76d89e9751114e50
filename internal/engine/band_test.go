package engine

import (
	"testing"

	"exam_prep_backend/internal/model"
)

func TestBandFor(t *testing.T) {
	tests := []struct {
		numeric float64
		want    model.DifficultyLevel
	}{
		{0, model.LevelEasy},
		{3, model.LevelEasy},
		{3.9, model.LevelEasy},
		{4, model.LevelMedium},
		{5.5, model.LevelMedium},
		{6.9, model.LevelMedium},
		{7, model.LevelHard},
		{10, model.LevelHard},
	}
	for _, tt := range tests {
		if got := BandFor(tt.numeric); got != tt.want {
			t.Errorf("BandFor(%v) = %v, want %v", tt.numeric, got, tt.want)
		}
	}
}

func TestClampDifficulty(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-1, 0},
		{0, 0},
		{5.5, 5.5},
		{10, 10},
		{10.5, 10},
	}
	for _, tt := range tests {
		if got := ClampDifficulty(tt.in); got != tt.want {
			t.Errorf("ClampDifficulty(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
