package engine

import (
	"math"
	"testing"
	"time"

	"exam_prep_backend/internal/model"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNewRecord(t *testing.T) {
	rec := NewRecord(1, 2, 7.5)
	if rec.UserID != 1 || rec.QuestionID != 2 {
		t.Fatalf("unexpected keys: user=%d question=%d", rec.UserID, rec.QuestionID)
	}
	if rec.NumericDifficulty != 7.5 {
		t.Errorf("NumericDifficulty = %v, want 7.5", rec.NumericDifficulty)
	}
	if rec.DifficultyLevel != model.LevelHard {
		t.Errorf("DifficultyLevel = %v, want Hard", rec.DifficultyLevel)
	}
	if !rec.IsCalibrating {
		t.Error("new record must start in calibration")
	}
	if rec.Confidence != 0.1 {
		t.Errorf("Confidence = %v, want 0.1", rec.Confidence)
	}

	// 全局难度越界时初始值也要被钳制
	if rec := NewRecord(1, 2, 12); rec.NumericDifficulty != 10 {
		t.Errorf("NumericDifficulty = %v, want clamped to 10", rec.NumericDifficulty)
	}
}

func TestApplyAnswerSteps(t *testing.T) {
	now := time.Now()

	rec := NewRecord(1, 1, 5)
	ApplyAnswer(rec, false, 30, now)
	if rec.NumericDifficulty != 6 {
		t.Errorf("incorrect answer: difficulty = %v, want 6", rec.NumericDifficulty)
	}

	rec = NewRecord(1, 1, 5)
	ApplyAnswer(rec, true, 30, now)
	if rec.NumericDifficulty != 4.5 {
		t.Errorf("correct answer: difficulty = %v, want 4.5", rec.NumericDifficulty)
	}
}

func TestApplyAnswerClampsAtBounds(t *testing.T) {
	now := time.Now()

	rec := NewRecord(1, 1, 10)
	ApplyAnswer(rec, false, 30, now)
	if rec.NumericDifficulty != 10 {
		t.Errorf("difficulty = %v, want clamped at 10", rec.NumericDifficulty)
	}

	rec = NewRecord(1, 1, 0)
	ApplyAnswer(rec, true, 30, now)
	if rec.NumericDifficulty != 0 {
		t.Errorf("difficulty = %v, want clamped at 0", rec.NumericDifficulty)
	}
}

func TestApplyAnswerBandTransition(t *testing.T) {
	// 答错把 6.5 推到 7.5，档位必须同步迁移到 Hard
	rec := NewRecord(1, 1, 6.5)
	ApplyAnswer(rec, false, 30, time.Now())
	if rec.DifficultyLevel != model.LevelHard {
		t.Errorf("DifficultyLevel = %v, want Hard after crossing 7", rec.DifficultyLevel)
	}
}

func TestApplyAnswerCalibrationExit(t *testing.T) {
	now := time.Now()
	rec := NewRecord(1, 1, 5)

	for i := 1; i <= 4; i++ {
		nudge := ApplyAnswer(rec, false, 30, now)
		wantCalibrating := i < 3
		if rec.IsCalibrating != wantCalibrating {
			t.Errorf("attempt %d: IsCalibrating = %v, want %v", i, rec.IsCalibrating, wantCalibrating)
		}
		// 校准期内不贡献全局漂移
		if wantCalibrating && nudge != 0 {
			t.Errorf("attempt %d: nudge = %v, want 0 while calibrating", i, nudge)
		}
		if !wantCalibrating && nudge != 0.2 {
			t.Errorf("attempt %d: nudge = %v, want 0.2 after calibration", i, nudge)
		}
	}
}

func TestApplyAnswerNudgeSign(t *testing.T) {
	now := time.Now()
	rec := NewRecord(1, 1, 5)
	ApplyAnswer(rec, false, 30, now)
	ApplyAnswer(rec, false, 30, now)
	ApplyAnswer(rec, false, 30, now) // 退出校准

	if nudge := ApplyAnswer(rec, true, 30, now); nudge != -0.1 {
		t.Errorf("correct nudge = %v, want -0.1", nudge)
	}
	if nudge := ApplyAnswer(rec, false, 30, now); nudge != 0.2 {
		t.Errorf("incorrect nudge = %v, want 0.2", nudge)
	}
}

func TestApplyAnswerConfidence(t *testing.T) {
	now := time.Now()
	rec := NewRecord(1, 1, 5)

	ApplyAnswer(rec, true, 30, now)
	if !almostEqual(rec.Confidence, 0.15) {
		t.Errorf("Confidence = %v, want 0.15", rec.Confidence)
	}

	// 0.1 + 18*0.05 = 1.0，再往后封顶
	for i := 0; i < 20; i++ {
		ApplyAnswer(rec, true, 30, now)
	}
	if rec.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want capped at 1.0", rec.Confidence)
	}
}

func TestApplyAnswerAvgTimeSmoothing(t *testing.T) {
	now := time.Now()
	rec := NewRecord(1, 1, 5)

	// 首次观测直接设定均值
	ApplyAnswer(rec, true, 60, now)
	if !almostEqual(rec.AvgTimeSeconds, 60) {
		t.Errorf("AvgTimeSeconds = %v, want 60", rec.AvgTimeSeconds)
	}

	// 第二次权重 1/2：60 + (30-60)/2 = 45
	ApplyAnswer(rec, true, 30, now)
	if !almostEqual(rec.AvgTimeSeconds, 45) {
		t.Errorf("AvgTimeSeconds = %v, want 45", rec.AvgTimeSeconds)
	}

	// 第三次权重 1/3：45 + (90-45)/3 = 60
	ApplyAnswer(rec, true, 90, now)
	if !almostEqual(rec.AvgTimeSeconds, 60) {
		t.Errorf("AvgTimeSeconds = %v, want 60", rec.AvgTimeSeconds)
	}
}

func TestApplyAnswerCounters(t *testing.T) {
	now := time.Now()
	rec := NewRecord(1, 1, 5)
	ApplyAnswer(rec, true, 30, now)
	ApplyAnswer(rec, false, 30, now)
	ApplyAnswer(rec, true, 30, now)

	if rec.Attempts != 3 || rec.CorrectAnswers != 2 {
		t.Errorf("attempts=%d correct=%d, want 3/2", rec.Attempts, rec.CorrectAnswers)
	}
	if rec.LastAttemptedAt == nil || !rec.LastAttemptedAt.Equal(now) {
		t.Error("LastAttemptedAt not recorded")
	}
}

func TestUserInCalibration(t *testing.T) {
	tests := []struct {
		count int64
		want  bool
	}{
		{0, true},
		{9, true},
		{10, false},
		{100, false},
	}
	for _, tt := range tests {
		if got := UserInCalibration(tt.count); got != tt.want {
			t.Errorf("UserInCalibration(%d) = %v, want %v", tt.count, got, tt.want)
		}
	}
}
