package engine

import (
	"testing"

	"exam_prep_backend/internal/model"
)

func obs(selected int, correctOption int) AnswerObservation {
	return AnswerObservation{Selected: &selected, CorrectOption: correctOption, Marks: 1}
}

func unanswered() AnswerObservation {
	return AnswerObservation{CorrectOption: 0, Marks: 1}
}

func TestScoreMockCountsUnanswered(t *testing.T) {
	// 模考分母是总题数：10 题答对 6、未答 2 → 60 分
	answers := []AnswerObservation{
		obs(0, 0), obs(1, 1), obs(2, 2), obs(0, 0), obs(1, 1), obs(2, 2),
		obs(0, 1), obs(1, 2),
		unanswered(), unanswered(),
	}
	score, known := Score(model.TestMock, answers)
	if !known {
		t.Error("mock must be a known test type")
	}
	if score != 60 {
		t.Errorf("score = %v, want 60", score)
	}
}

func TestScoreAdaptiveCountsAttemptedOnly(t *testing.T) {
	// 自适应分母是已作答题数：同样的作答记录 6/8 → 75 分
	answers := []AnswerObservation{
		obs(0, 0), obs(1, 1), obs(2, 2), obs(0, 0), obs(1, 1), obs(2, 2),
		obs(0, 1), obs(1, 2),
		unanswered(), unanswered(),
	}
	score, known := Score(model.TestAdaptive, answers)
	if !known {
		t.Error("adaptive must be a known test type")
	}
	if score != 75 {
		t.Errorf("score = %v, want 75", score)
	}
}

func TestScoreDenominatorByType(t *testing.T) {
	answers := []AnswerObservation{obs(0, 0), unanswered()}
	tests := []struct {
		testType model.TestType
		want     float64
		known    bool
	}{
		{model.TestMock, 50, true},
		{model.TestRegular, 50, true},
		{model.TestPractice, 100, true},
		{model.TestAdaptive, 100, true},
		{model.TestType("surprise"), 100, false},
	}
	for _, tt := range tests {
		score, known := Score(tt.testType, answers)
		if score != tt.want || known != tt.known {
			t.Errorf("Score(%q) = (%v, %v), want (%v, %v)", tt.testType, score, known, tt.want, tt.known)
		}
	}
}

func TestScoreEmptyDenominator(t *testing.T) {
	if score, _ := Score(model.TestMock, nil); score != 0 {
		t.Errorf("empty test: score = %v, want 0", score)
	}
	// 全部未作答的自适应测试分母为 0
	if score, _ := Score(model.TestAdaptive, []AnswerObservation{unanswered()}); score != 0 {
		t.Errorf("all unanswered adaptive: score = %v, want 0", score)
	}
}

func TestScoreZeroMarksNotCounted(t *testing.T) {
	selected := 0
	answers := []AnswerObservation{
		{Selected: &selected, CorrectOption: 0, Marks: 0},
		obs(1, 1),
	}
	score, _ := Score(model.TestAdaptive, answers)
	if score != 50 {
		t.Errorf("score = %v, want 50 (zero-mark question not credited)", score)
	}
}

func TestScoreIdempotent(t *testing.T) {
	answers := []AnswerObservation{obs(0, 0), obs(1, 2), unanswered()}
	first, _ := Score(model.TestMock, answers)
	second, _ := Score(model.TestMock, answers)
	if first != second {
		t.Errorf("rescoring changed result: %v vs %v", first, second)
	}
}
