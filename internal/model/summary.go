package model

import "time"

// TopicSummary 用户在某试卷/章节维度的聚合统计，
// 每次测试完成后由聚合通知器更新一次（下游消费者，引擎只负责触发）。
type TopicSummary struct {
	BaseModel
	UserID    uint `gorm:"uniqueIndex:idx_user_topic;type:bigint unsigned;not null" json:"userId"`
	PaperID   uint `gorm:"uniqueIndex:idx_user_topic;type:bigint unsigned;not null" json:"paperId"`
	SectionID uint `gorm:"uniqueIndex:idx_user_topic;type:bigint unsigned" json:"sectionId"`

	Attempts       int        `gorm:"default:0" json:"attempts"`
	TotalQuestions int        `gorm:"default:0" json:"totalQuestions"`
	CorrectAnswers int        `gorm:"default:0" json:"correctAnswers"`
	AvgScore       float64    `gorm:"default:0" json:"avgScore"`
	LastAttemptAt  *time.Time `json:"lastAttemptAt,omitempty"`
}

func (TopicSummary) TableName() string {
	return "topic_summaries"
}

// OverallSummary 用户全局聚合统计
type OverallSummary struct {
	BaseModel
	UserID uint `gorm:"uniqueIndex;type:bigint unsigned;not null" json:"userId"`

	TotalAttempts  int        `gorm:"default:0" json:"totalAttempts"`
	TotalQuestions int        `gorm:"default:0" json:"totalQuestions"`
	TotalCorrect   int        `gorm:"default:0" json:"totalCorrect"`
	AvgScore       float64    `gorm:"default:0" json:"avgScore"`
	BestScore      float64    `gorm:"default:0" json:"bestScore"`
	LastAttemptAt  *time.Time `json:"lastAttemptAt,omitempty"`
}

func (OverallSummary) TableName() string {
	return "overall_summaries"
}
