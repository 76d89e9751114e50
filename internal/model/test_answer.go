package model

// TestAnswer 一次会话内某道题的作答。出题时创建，作答时更新；
// 每个 (attempt, question) 恰好一条，重复提交做幂等覆盖。
type TestAnswer struct {
	BaseModel
	AttemptID  string `gorm:"uniqueIndex:idx_attempt_question;type:varchar(36);not null" json:"attemptId"`
	QuestionID uint   `gorm:"uniqueIndex:idx_attempt_question;type:bigint unsigned;not null" json:"questionId"`

	SelectedOption   *int    `json:"selectedOption,omitempty"` // null = 出题后未作答
	TimeTakenSeconds int     `gorm:"default:0" json:"timeTakenSeconds"`
	Marks            float64 `gorm:"default:1" json:"marks"`
	// 对错只在交卷结果里体现，过程接口不回传，防止边提交边试答案
	IsCorrect bool `gorm:"default:false" json:"-"`
}

func (TestAnswer) TableName() string {
	return "test_answers"
}

// Attempted 是否已作答
func (a *TestAnswer) Attempted() bool {
	return a.SelectedOption != nil
}
