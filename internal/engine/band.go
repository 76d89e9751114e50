package engine

import "exam_prep_backend/internal/model"

// 数值难度区间：0–3 Easy，4–6 Medium，7–10 Hard
func BandFor(numeric float64) model.DifficultyLevel {
	switch {
	case numeric < 4:
		return model.LevelEasy
	case numeric < 7:
		return model.LevelMedium
	default:
		return model.LevelHard
	}
}

// ClampDifficulty 数值难度始终限制在 [0,10]
func ClampDifficulty(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
