package model

import "time"

// UserQuestionDifficulty 用户-题目维度的难度校准记录。
// 用户第一次作答某题时惰性创建；除显式重置校准外从不删除。
// 不变式：DifficultyLevel 必须始终等于 NumericDifficulty 所在区间，
// 每次写入重新推导，不允许出现不一致的持久化状态。
type UserQuestionDifficulty struct {
	BaseModel
	UserID     uint `gorm:"uniqueIndex:idx_user_question;type:bigint unsigned;not null" json:"userId"`
	QuestionID uint `gorm:"uniqueIndex:idx_user_question;type:bigint unsigned;not null" json:"questionId"`

	NumericDifficulty float64         `gorm:"default:5" json:"numericDifficulty"` // [0,10]
	DifficultyLevel   DifficultyLevel `gorm:"size:10;default:'Medium'" json:"difficultyLevel"`
	Confidence        float64         `gorm:"default:0.1" json:"confidence"` // [0,1]

	Attempts       int     `gorm:"default:0" json:"attempts"`
	CorrectAnswers int     `gorm:"default:0" json:"correctAnswers"`
	AvgTimeSeconds float64 `gorm:"default:0" json:"avgTimeSeconds"`

	IsCalibrating   bool       `gorm:"default:true" json:"isCalibrating"`
	LastAttemptedAt *time.Time `json:"lastAttemptedAt,omitempty"`
}

func (UserQuestionDifficulty) TableName() string {
	return "user_question_difficulties"
}

// Accuracy 正确率，无作答时为 0
func (d *UserQuestionDifficulty) Accuracy() float64 {
	if d.Attempts == 0 {
		return 0
	}
	return float64(d.CorrectAnswers) / float64(d.Attempts)
}
