package engine

import (
	"math/rand"

	"exam_prep_backend/internal/model"
)

// Strategy 选题策略。封闭枚举，未知字符串在解析层退化为默认策略，
// 选题逻辑本身不做字符串回退。
type Strategy int

const (
	StrategyBalanced Strategy = iota
	StrategyHardToEasy
	StrategyEasyToHard
	StrategyRandom
	StrategyAdaptive // 仅自适应会话的逐题流程使用
)

func (s Strategy) String() string {
	switch s {
	case StrategyBalanced:
		return "balanced"
	case StrategyHardToEasy:
		return "hard_to_easy"
	case StrategyEasyToHard:
		return "easy_to_hard"
	case StrategyRandom:
		return "random"
	case StrategyAdaptive:
		return "adaptive"
	}
	return "balanced"
}

// ParseStrategy 解析策略名。未知名字返回默认策略和 false，由调用方记日志。
func ParseStrategy(name string) (Strategy, bool) {
	switch name {
	case "balanced", "":
		return StrategyBalanced, name == "balanced"
	case "hard_to_easy":
		return StrategyHardToEasy, true
	case "easy_to_hard":
		return StrategyEasyToHard, true
	case "random":
		return StrategyRandom, true
	case "adaptive":
		return StrategyAdaptive, true
	}
	return StrategyBalanced, false
}

// Select 按策略从分桶中构造恰好 n 道题的列表。
// 候选集为空时返回空列表；不足 n 时用受控重复补齐（小题库允许重复出题）。
// 最后一步对整个结果做一次洗牌，让考生看不出分桶来源——
// 该洗牌无论是否发生补齐都会执行。
func Select(buckets Buckets, all []model.Question, n int, strat Strategy, rng *rand.Rand) []model.Question {
	if n <= 0 || len(all) == 0 {
		return nil
	}

	var selected []model.Question
	switch strat {
	case StrategyHardToEasy:
		selected = takeFirst(concat(buckets.Difficult, buckets.New, buckets.Easy), n)
	case StrategyEasyToHard:
		selected = takeFirst(concat(buckets.Easy, buckets.New, buckets.Difficult), n)
	case StrategyRandom:
		selected = sample(all, n, rng)
	case StrategyBalanced, StrategyAdaptive:
		selected = selectBalanced(buckets, all, n)
	default:
		selected = selectBalanced(buckets, all, n)
	}

	if len(selected) < n {
		selected = fillShortfallWithRepeats(selected, buckets.Difficult, all, n, rng)
	}
	if len(selected) > n {
		selected = selected[:n]
	}

	shuffle(selected, rng)
	return selected
}

// selectBalanced 难:新:易 ≈ 5:3:2，不足的配额从完整候选集按原顺序回填
func selectBalanced(buckets Buckets, all []model.Question, n int) []model.Question {
	targetDifficult := n * 5 / 10
	targetNew := n * 3 / 10
	targetEasy := n - targetDifficult - targetNew

	selected := takeFirst(buckets.Difficult, targetDifficult)
	selected = append(selected, takeFirst(buckets.New, targetNew)...)
	selected = append(selected, takeFirst(buckets.Easy, targetEasy)...)

	if len(selected) < n {
		seen := make(map[uint]bool, len(selected))
		for _, q := range selected {
			seen[q.ID] = true
		}
		for _, q := range all {
			if len(selected) >= n {
				break
			}
			if !seen[q.ID] {
				selected = append(selected, q)
				seen[q.ID] = true
			}
		}
	}
	return selected
}

// fillShortfallWithRepeats 受控重复补齐：优先复用难题桶，难题桶为空则
// 复用全部候选。反复洗牌追加直到凑够 n，再截断。重复出题是业务上
// 允许的行为，小题库下一场考试可以出现同一道题两次。
func fillShortfallWithRepeats(selected, difficult, all []model.Question, n int, rng *rand.Rand) []model.Question {
	pool := difficult
	if len(pool) == 0 {
		pool = all
	}
	if len(pool) == 0 {
		return selected
	}

	for len(selected) < n {
		batch := make([]model.Question, len(pool))
		copy(batch, pool)
		shuffle(batch, rng)
		selected = append(selected, batch...)
	}
	return selected[:n]
}

func concat(lists ...[]model.Question) []model.Question {
	var out []model.Question
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

func takeFirst(qs []model.Question, n int) []model.Question {
	if n <= 0 {
		return nil
	}
	if len(qs) > n {
		qs = qs[:n]
	}
	out := make([]model.Question, len(qs))
	copy(out, qs)
	return out
}

// sample 无放回均匀抽样 min(n, len(qs)) 道题
func sample(qs []model.Question, n int, rng *rand.Rand) []model.Question {
	if n > len(qs) {
		n = len(qs)
	}
	perm := rng.Perm(len(qs))
	out := make([]model.Question, 0, n)
	for _, idx := range perm[:n] {
		out = append(out, qs[idx])
	}
	return out
}

func shuffle(qs []model.Question, rng *rand.Rand) {
	rng.Shuffle(len(qs), func(i, j int) {
		qs[i], qs[j] = qs[j], qs[i]
	})
}
