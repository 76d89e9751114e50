package engine

import (
	"time"

	"exam_prep_backend/internal/model"
)

const (
	// 难度调整步长不对称：答错上调得比答对下调快，让系统偏向保守
	incorrectStep = 1.0
	correctStep   = 0.5

	// 跨用户共识对题目全局难度的慢漂移，幅度小于个人记录的调整
	incorrectNudge = 0.2
	correctNudge   = -0.1

	// 三次观测即可退出单题校准，有意把门槛压低，可用性优先于精度
	calibrationExitAttempts = 3

	initialConfidence    = 0.1
	confidencePerAttempt = 0.05

	// 用户全局校准期：校准记录总数低于该值时仍在热身阶段
	userCalibrationRecordCount = 10
)

// NewRecord 用户首次作答某题时惰性创建校准记录，
// 初始数值难度取题目的全局难度。
func NewRecord(userID, questionID uint, globalDifficulty float64) *model.UserQuestionDifficulty {
	d := ClampDifficulty(globalDifficulty)
	return &model.UserQuestionDifficulty{
		UserID:            userID,
		QuestionID:        questionID,
		NumericDifficulty: d,
		DifficultyLevel:   BandFor(d),
		Confidence:        initialConfidence,
		IsCalibrating:     true,
	}
}

// ApplyAnswer 把一次作答观测并入校准记录，并返回应施加到题目
// 全局数值难度上的漂移量。还在校准期的记录不贡献全局信号，
// 避免早期噪声污染跨用户共识，此时返回 0。
func ApplyAnswer(rec *model.UserQuestionDifficulty, correct bool, timeTakenSeconds float64, now time.Time) float64 {
	rec.Attempts++
	if correct {
		rec.CorrectAnswers++
	}

	// 指数平滑，权重 1/attempts：首次观测直接设定均值，
	// 前期接近普通均值，后期偏向近因
	w := 1.0 / float64(rec.Attempts)
	rec.AvgTimeSeconds += w * (timeTakenSeconds - rec.AvgTimeSeconds)

	if correct {
		rec.NumericDifficulty = ClampDifficulty(rec.NumericDifficulty - correctStep)
	} else {
		rec.NumericDifficulty = ClampDifficulty(rec.NumericDifficulty + incorrectStep)
	}
	rec.DifficultyLevel = BandFor(rec.NumericDifficulty)

	rec.Confidence = initialConfidence + float64(rec.Attempts)*confidencePerAttempt
	if rec.Confidence > 1.0 {
		rec.Confidence = 1.0
	}

	rec.IsCalibrating = rec.Attempts < calibrationExitAttempts
	rec.LastAttemptedAt = &now

	if rec.IsCalibrating {
		return 0
	}
	if correct {
		return correctNudge
	}
	return incorrectNudge
}

// UserInCalibration 用户级校准期（与单题校准独立）：
// 校准记录总数不足时，自适应会话忽略策略，按 Easy→Medium→Hard
// 轮转出题以快速建立基线。
func UserInCalibration(recordCount int64) bool {
	return recordCount < userCalibrationRecordCount
}
