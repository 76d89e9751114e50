package engine

import "exam_prep_backend/internal/model"

// CalibrationBand 用户级校准期的轮转目标：按测试进度三等分，
// 依次 Easy → Medium → Hard，快速覆盖全部难度档建立基线。
func CalibrationBand(answered, maxQuestions int) model.DifficultyLevel {
	return rampThirds(answered, maxQuestions, false)
}

// RampBand easy_to_hard / hard_to_easy 策略的目标档位：
// 只由测试进度决定的单调爬坡，不看对错。
func RampBand(s Strategy, answered, maxQuestions int) model.DifficultyLevel {
	return rampThirds(answered, maxQuestions, s == StrategyHardToEasy)
}

func rampThirds(answered, maxQuestions int, descending bool) model.DifficultyLevel {
	if maxQuestions <= 0 {
		return model.LevelMedium
	}
	progress := float64(answered) / float64(maxQuestions)
	var band model.DifficultyLevel
	switch {
	case progress < 1.0/3.0:
		band = model.LevelEasy
	case progress < 2.0/3.0:
		band = model.LevelMedium
	default:
		band = model.LevelHard
	}
	if descending {
		switch band {
		case model.LevelEasy:
			return model.LevelHard
		case model.LevelHard:
			return model.LevelEasy
		}
	}
	return band
}

// NextBand 自适应会话下一题的目标难度档。用户级校准期覆盖一切
// 策略；爬坡策略只看测试进度，首题也按进度取档而不退回校准轮转；
// adaptive 策略没有上一题时用校准轮转起步，有则按对错升降档；
// random 不定档，返回空档位表示候选池不做难度过滤。
func NextBand(strat Strategy, userCalibrating bool, answered, maxQuestions int, lastBand model.DifficultyLevel, hasLast, lastCorrect bool) model.DifficultyLevel {
	if userCalibrating {
		return CalibrationBand(answered, maxQuestions)
	}
	switch strat {
	case StrategyEasyToHard, StrategyHardToEasy:
		return RampBand(strat, answered, maxQuestions)
	case StrategyAdaptive:
		if !hasLast {
			return CalibrationBand(answered, maxQuestions)
		}
		return EscalateBand(lastBand, lastCorrect)
	case StrategyRandom:
		return ""
	}
	return CalibrationBand(answered, maxQuestions)
}

// EscalateBand adaptive 策略的档位迁移：答对升一档、答错降一档，
// 两端封顶。
func EscalateBand(band model.DifficultyLevel, correct bool) model.DifficultyLevel {
	if correct {
		switch band {
		case model.LevelEasy:
			return model.LevelMedium
		default:
			return model.LevelHard
		}
	}
	switch band {
	case model.LevelHard:
		return model.LevelMedium
	default:
		return model.LevelEasy
	}
}
