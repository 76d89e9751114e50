package engine

import (
	"math/rand"
	"testing"

	"exam_prep_backend/internal/model"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func questionRange(lo, hi uint) []model.Question {
	var out []model.Question
	for id := lo; id <= hi; id++ {
		out = append(out, q(id))
	}
	return out
}

func countByID(qs []model.Question) map[uint]int {
	counts := make(map[uint]int)
	for _, question := range qs {
		counts[question.ID]++
	}
	return counts
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		name  string
		want  Strategy
		known bool
	}{
		{"balanced", StrategyBalanced, true},
		{"hard_to_easy", StrategyHardToEasy, true},
		{"easy_to_hard", StrategyEasyToHard, true},
		{"random", StrategyRandom, true},
		{"adaptive", StrategyAdaptive, true},
		{"", StrategyBalanced, false},
		{"bogus", StrategyBalanced, false},
	}
	for _, tt := range tests {
		got, known := ParseStrategy(tt.name)
		if got != tt.want || known != tt.known {
			t.Errorf("ParseStrategy(%q) = (%v, %v), want (%v, %v)", tt.name, got, known, tt.want, tt.known)
		}
	}
}

func TestStrategyStringRoundTrip(t *testing.T) {
	for _, s := range []Strategy{StrategyBalanced, StrategyHardToEasy, StrategyEasyToHard, StrategyRandom, StrategyAdaptive} {
		parsed, known := ParseStrategy(s.String())
		if !known || parsed != s {
			t.Errorf("ParseStrategy(%q) = (%v, %v), want (%v, true)", s.String(), parsed, known, s)
		}
	}
}

func TestSelectBalancedQuotas(t *testing.T) {
	// 难题和新题不足配额时从完整候选集回填，总数仍为 n
	buckets := Buckets{
		Difficult: questionRange(1, 3),
		New:       questionRange(4, 5),
		Easy:      questionRange(6, 20),
	}
	all := questionRange(1, 20)

	selected := Select(buckets, all, 10, StrategyBalanced, testRNG())

	if len(selected) != 10 {
		t.Fatalf("len = %d, want 10", len(selected))
	}
	counts := countByID(selected)
	for id := uint(1); id <= 3; id++ {
		if counts[id] != 1 {
			t.Errorf("difficult question %d missing from balanced selection", id)
		}
	}
	for id := uint(4); id <= 5; id++ {
		if counts[id] != 1 {
			t.Errorf("new question %d missing from balanced selection", id)
		}
	}
	// 候选充足时不应有重复
	for id, c := range counts {
		if c > 1 {
			t.Errorf("question %d repeated %d times with sufficient pool", id, c)
		}
	}
}

func TestSelectExactCount(t *testing.T) {
	buckets := Buckets{New: questionRange(1, 30)}
	all := questionRange(1, 30)
	for _, strat := range []Strategy{StrategyBalanced, StrategyHardToEasy, StrategyEasyToHard, StrategyRandom} {
		selected := Select(buckets, all, 12, strat, testRNG())
		if len(selected) != 12 {
			t.Errorf("strategy %v: len = %d, want 12", strat, len(selected))
		}
	}
}

func TestSelectShortfallRepeats(t *testing.T) {
	// 题库只有 4 道题要出 10 道：用重复补齐而不是缩短考试
	buckets := Buckets{New: questionRange(1, 4)}
	all := questionRange(1, 4)

	selected := Select(buckets, all, 10, StrategyBalanced, testRNG())

	if len(selected) != 10 {
		t.Fatalf("len = %d, want 10", len(selected))
	}
	counts := countByID(selected)
	for id := uint(1); id <= 4; id++ {
		if counts[id] == 0 {
			t.Errorf("question %d absent despite full-pool repetition", id)
		}
	}
}

func TestSelectShortfallPrefersDifficult(t *testing.T) {
	// 难题桶非空时，补齐只从难题桶复用
	buckets := Buckets{
		Difficult: questionRange(1, 2),
		Easy:      questionRange(3, 4),
	}
	all := questionRange(1, 4)

	selected := Select(buckets, all, 10, StrategyHardToEasy, testRNG())

	if len(selected) != 10 {
		t.Fatalf("len = %d, want 10", len(selected))
	}
	counts := countByID(selected)
	// 4 道原题 + 6 个补位，补位全部来自难题桶
	if counts[1]+counts[2] != 8 {
		t.Errorf("difficult repeats = %d, want 8 (counts=%v)", counts[1]+counts[2], counts)
	}
	if counts[3] != 1 || counts[4] != 1 {
		t.Errorf("easy questions should appear exactly once, counts=%v", counts)
	}
}

func TestSelectEmptyPool(t *testing.T) {
	if got := Select(Buckets{}, nil, 10, StrategyBalanced, testRNG()); got != nil {
		t.Errorf("empty pool should select nothing, got %d", len(got))
	}
	if got := Select(Buckets{New: questionRange(1, 5)}, questionRange(1, 5), 0, StrategyBalanced, testRNG()); got != nil {
		t.Errorf("n=0 should select nothing, got %d", len(got))
	}
}

func TestSelectRandomNoRepeatsWhenSufficient(t *testing.T) {
	all := questionRange(1, 20)
	selected := Select(Buckets{New: all}, all, 10, StrategyRandom, testRNG())
	if len(selected) != 10 {
		t.Fatalf("len = %d, want 10", len(selected))
	}
	for id, c := range countByID(selected) {
		if c > 1 {
			t.Errorf("question %d repeated %d times in random sample", id, c)
		}
	}
}

func TestSelectDirectionalStrategiesCoverPriorityBucket(t *testing.T) {
	buckets := Buckets{
		Difficult: questionRange(1, 5),
		New:       questionRange(6, 10),
		Easy:      questionRange(11, 15),
	}
	all := questionRange(1, 15)

	// hard_to_easy 出 5 道必然全部来自难题桶（结果顺序已被洗牌）
	selected := Select(buckets, all, 5, StrategyHardToEasy, testRNG())
	for _, question := range selected {
		if question.ID > 5 {
			t.Errorf("hard_to_easy picked non-difficult question %d", question.ID)
		}
	}

	selected = Select(buckets, all, 5, StrategyEasyToHard, testRNG())
	for _, question := range selected {
		if question.ID < 11 {
			t.Errorf("easy_to_hard picked non-easy question %d", question.ID)
		}
	}
}
