package engine

import (
	"testing"

	"exam_prep_backend/internal/model"
)

func TestCalibrationBandThirds(t *testing.T) {
	tests := []struct {
		answered int
		max      int
		want     model.DifficultyLevel
	}{
		{0, 9, model.LevelEasy},
		{2, 9, model.LevelEasy},
		{3, 9, model.LevelMedium},
		{5, 9, model.LevelMedium},
		{6, 9, model.LevelHard},
		{8, 9, model.LevelHard},
		// 上限缺失时固定 Medium
		{5, 0, model.LevelMedium},
	}
	for _, tt := range tests {
		if got := CalibrationBand(tt.answered, tt.max); got != tt.want {
			t.Errorf("CalibrationBand(%d, %d) = %v, want %v", tt.answered, tt.max, got, tt.want)
		}
	}
}

func TestRampBand(t *testing.T) {
	// easy_to_hard 随进度爬升
	if got := RampBand(StrategyEasyToHard, 0, 9); got != model.LevelEasy {
		t.Errorf("easy_to_hard start = %v, want Easy", got)
	}
	if got := RampBand(StrategyEasyToHard, 8, 9); got != model.LevelHard {
		t.Errorf("easy_to_hard end = %v, want Hard", got)
	}

	// hard_to_easy 镜像反转
	if got := RampBand(StrategyHardToEasy, 0, 9); got != model.LevelHard {
		t.Errorf("hard_to_easy start = %v, want Hard", got)
	}
	if got := RampBand(StrategyHardToEasy, 4, 9); got != model.LevelMedium {
		t.Errorf("hard_to_easy middle = %v, want Medium", got)
	}
	if got := RampBand(StrategyHardToEasy, 8, 9); got != model.LevelEasy {
		t.Errorf("hard_to_easy end = %v, want Easy", got)
	}
}

func TestNextBandRampIgnoresMissingLastAnswer(t *testing.T) {
	// 定向策略开局就按坡道走：hard_to_easy 首题必须是 Hard，
	// 不能因为还没有上一题作答就退回 Easy 起步的冷启动坡道
	if got := NextBand(StrategyHardToEasy, false, 0, 9, "", false, false); got != model.LevelHard {
		t.Errorf("hard_to_easy first question = %v, want Hard", got)
	}
	if got := NextBand(StrategyEasyToHard, false, 0, 9, "", false, false); got != model.LevelEasy {
		t.Errorf("easy_to_hard first question = %v, want Easy", got)
	}
	if got := NextBand(StrategyHardToEasy, false, 8, 9, model.LevelMedium, true, true); got != model.LevelEasy {
		t.Errorf("hard_to_easy last question = %v, want Easy", got)
	}
}

func TestNextBandUserCalibrationOverridesStrategy(t *testing.T) {
	// 冷启动用户先走三段坡道，策略暂不生效
	if got := NextBand(StrategyHardToEasy, true, 0, 9, "", false, false); got != model.LevelEasy {
		t.Errorf("calibrating first question = %v, want Easy", got)
	}
	if got := NextBand(StrategyAdaptive, true, 6, 9, model.LevelEasy, true, true); got != model.LevelHard {
		t.Errorf("calibrating final third = %v, want Hard", got)
	}
}

func TestNextBandAdaptive(t *testing.T) {
	// 首题无历史走冷启动坡道，之后按上一题对错升降档
	if got := NextBand(StrategyAdaptive, false, 0, 9, "", false, false); got != model.LevelEasy {
		t.Errorf("adaptive first question = %v, want Easy", got)
	}
	if got := NextBand(StrategyAdaptive, false, 3, 9, model.LevelMedium, true, true); got != model.LevelHard {
		t.Errorf("adaptive after correct = %v, want Hard", got)
	}
	if got := NextBand(StrategyAdaptive, false, 3, 9, model.LevelMedium, true, false); got != model.LevelEasy {
		t.Errorf("adaptive after wrong = %v, want Easy", got)
	}
}

func TestNextBandRandomHasNoTarget(t *testing.T) {
	if got := NextBand(StrategyRandom, false, 3, 9, model.LevelHard, true, true); got != "" {
		t.Errorf("random target = %v, want empty", got)
	}
}

func TestEscalateBand(t *testing.T) {
	tests := []struct {
		band    model.DifficultyLevel
		correct bool
		want    model.DifficultyLevel
	}{
		{model.LevelEasy, true, model.LevelMedium},
		{model.LevelMedium, true, model.LevelHard},
		{model.LevelHard, true, model.LevelHard}, // 顶端封顶
		{model.LevelHard, false, model.LevelMedium},
		{model.LevelMedium, false, model.LevelEasy},
		{model.LevelEasy, false, model.LevelEasy}, // 底端封顶
	}
	for _, tt := range tests {
		if got := EscalateBand(tt.band, tt.correct); got != tt.want {
			t.Errorf("EscalateBand(%v, %v) = %v, want %v", tt.band, tt.correct, got, tt.want)
		}
	}
}
