package engine

import (
	"testing"

	"exam_prep_backend/internal/model"
)

func q(id uint) model.Question {
	question := model.Question{}
	question.ID = id
	return question
}

func rec(attempts, correct int, level model.DifficultyLevel) *model.UserQuestionDifficulty {
	return &model.UserQuestionDifficulty{
		Attempts:        attempts,
		CorrectAnswers:  correct,
		DifficultyLevel: level,
	}
}

func ids(qs []model.Question) []uint {
	out := make([]uint, len(qs))
	for i, question := range qs {
		out[i] = question.ID
	}
	return out
}

func equalIDs(a []uint, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func leveledQ(id uint, level model.DifficultyLevel) model.Question {
	question := q(id)
	question.DifficultyLevel = level
	return question
}

func TestFilterByBandPrefersUserRecords(t *testing.T) {
	candidates := []model.Question{
		leveledQ(1, model.LevelEasy),
		leveledQ(2, model.LevelHard),
		leveledQ(3, model.LevelMedium),
	}
	// 题目 1 全局是 Easy，但该用户的校准档位已是 Hard
	records := map[uint]*model.UserQuestionDifficulty{
		1: rec(5, 1, model.LevelHard),
	}

	got := FilterByBand(candidates, records, model.LevelHard)
	if want := []uint{1}; !equalIDs(ids(got), want) {
		t.Errorf("FilterByBand = %v, want %v", ids(got), want)
	}
}

func TestFilterByBandFallsBackToGlobalBand(t *testing.T) {
	candidates := []model.Question{
		leveledQ(1, model.LevelEasy),
		leveledQ(2, model.LevelHard),
	}

	got := FilterByBand(candidates, nil, model.LevelHard)
	if want := []uint{2}; !equalIDs(ids(got), want) {
		t.Errorf("FilterByBand = %v, want %v", ids(got), want)
	}
}

func TestFilterByBandExhaustedFallsBackToAll(t *testing.T) {
	// 目标档位在个人档和全局档都没有候选时整池兜底，
	// 宁可出不对档的题也不把会话卡死
	candidates := []model.Question{
		leveledQ(1, model.LevelEasy),
		leveledQ(2, model.LevelMedium),
	}
	records := map[uint]*model.UserQuestionDifficulty{
		1: rec(3, 3, model.LevelEasy),
	}

	got := FilterByBand(candidates, records, model.LevelHard)
	if want := []uint{1, 2}; !equalIDs(ids(got), want) {
		t.Errorf("FilterByBand = %v, want %v", ids(got), want)
	}
}

func TestFilterByBandNoTarget(t *testing.T) {
	candidates := []model.Question{leveledQ(1, model.LevelEasy), leveledQ(2, model.LevelHard)}
	got := FilterByBand(candidates, nil, "")
	if want := []uint{1, 2}; !equalIDs(ids(got), want) {
		t.Errorf("FilterByBand without target = %v, want all candidates", ids(got))
	}
}

func TestCategorize(t *testing.T) {
	candidates := []model.Question{q(1), q(2), q(3), q(4), q(5), q(6)}
	records := map[uint]*model.UserQuestionDifficulty{
		// 正确率 0.5 < 0.6 → 难题
		2: rec(4, 2, model.LevelMedium),
		// 正确率高但档位 Hard → 难题
		3: rec(5, 5, model.LevelHard),
		// 正确率 0.8 且非 Hard → 易题
		4: rec(5, 4, model.LevelEasy),
		// 有记录但从未作答 → 新题
		6: rec(0, 0, model.LevelMedium),
	}

	b := Categorize(candidates, records)

	if want := []uint{2, 3}; !equalIDs(ids(b.Difficult), want) {
		t.Errorf("Difficult = %v, want %v", ids(b.Difficult), want)
	}
	if want := []uint{1, 5, 6}; !equalIDs(ids(b.New), want) {
		t.Errorf("New = %v, want %v", ids(b.New), want)
	}
	if want := []uint{4}; !equalIDs(ids(b.Easy), want) {
		t.Errorf("Easy = %v, want %v", ids(b.Easy), want)
	}
}

func TestCategorizeAccuracyBoundary(t *testing.T) {
	// 正确率恰好 0.6 不算难题
	records := map[uint]*model.UserQuestionDifficulty{
		1: rec(5, 3, model.LevelMedium),
	}
	b := Categorize([]model.Question{q(1)}, records)
	if len(b.Easy) != 1 {
		t.Errorf("accuracy 0.6 should bucket as easy, got difficult=%d new=%d easy=%d",
			len(b.Difficult), len(b.New), len(b.Easy))
	}
}

func TestCategorizeDeterministic(t *testing.T) {
	candidates := []model.Question{q(3), q(1), q(2)}
	first := Categorize(candidates, nil)
	second := Categorize(candidates, nil)
	if !equalIDs(ids(first.New), ids(second.New)) {
		t.Error("Categorize should be deterministic")
	}
	if want := []uint{3, 1, 2}; !equalIDs(ids(first.New), want) {
		t.Errorf("New should preserve input order, got %v", ids(first.New))
	}
}
