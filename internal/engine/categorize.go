package engine

import "exam_prep_backend/internal/model"

// 正确率低于该阈值的题目视为难题
const difficultAccuracyThreshold = 0.6

// Buckets 候选题目按用户表现划分的三个互斥分组，保持输入顺序。
type Buckets struct {
	Difficult []model.Question
	New       []model.Question
	Easy      []model.Question
}

// FilterByBand 自适应候选池的档位过滤降级链：优先用户专属档位
// 匹配的题，其次题目全局档位匹配的题，两者都为空时放弃档位要求
// 返回全部候选。空目标档（random 策略）不过滤。
func FilterByBand(candidates []model.Question, records map[uint]*model.UserQuestionDifficulty, target model.DifficultyLevel) []model.Question {
	if target == "" || len(candidates) == 0 {
		return candidates
	}

	var byUserBand, byGlobalBand []model.Question
	for _, q := range candidates {
		if rec, ok := records[q.ID]; ok && rec.DifficultyLevel == target {
			byUserBand = append(byUserBand, q)
		}
		if q.DifficultyLevel == target {
			byGlobalBand = append(byGlobalBand, q)
		}
	}

	if len(byUserBand) > 0 {
		return byUserBand
	}
	if len(byGlobalBand) > 0 {
		return byGlobalBand
	}
	return candidates
}

// Categorize 依据用户的难度校准记录给候选题分桶。
// 这里不引入任何随机性，随机性统一留给后续的选题策略。
func Categorize(candidates []model.Question, records map[uint]*model.UserQuestionDifficulty) Buckets {
	var b Buckets
	for _, q := range candidates {
		rec, ok := records[q.ID]
		if !ok || rec.Attempts == 0 {
			b.New = append(b.New, q)
			continue
		}
		if rec.Accuracy() < difficultAccuracyThreshold || rec.DifficultyLevel == model.LevelHard {
			b.Difficult = append(b.Difficult, q)
			continue
		}
		b.Easy = append(b.Easy, q)
	}
	return b
}
