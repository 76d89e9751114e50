package model

import "time"

type TestType string

const (
	TestMock     TestType = "mock"
	TestPractice TestType = "practice"
	TestRegular  TestType = "regular"
	TestAdaptive TestType = "adaptive"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
	AttemptAbandoned  AttemptStatus = "abandoned"
)

// Terminal 终态（完成/放弃）不再接受任何状态迁移
func (s AttemptStatus) Terminal() bool {
	return s == AttemptCompleted || s == AttemptAbandoned
}

// TestAttempt 一次考试会话。只能由创建它的会话流程修改。
// swagger:model TestAttempt
type TestAttempt struct {
	UUIDBase
	UserID       uint  `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	PaperID      uint  `gorm:"index;type:bigint unsigned;not null" json:"paperId"`
	SectionID    *uint `gorm:"type:bigint unsigned" json:"sectionId,omitempty"`
	SubsectionID *uint `gorm:"type:bigint unsigned" json:"subsectionId,omitempty"`

	TestType TestType      `gorm:"size:20;not null" json:"testType"`
	Status   AttemptStatus `gorm:"size:20;default:'in_progress';index" json:"status"`

	// 仅自适应测试使用
	AdaptiveStrategy  string `gorm:"size:20" json:"adaptiveStrategy,omitempty"`
	MaxQuestions      int    `gorm:"default:0" json:"maxQuestions"`
	QuestionsAnswered int    `gorm:"default:0" json:"questionsAnswered"`

	Score       float64    `gorm:"default:0" json:"score"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (TestAttempt) TableName() string {
	return "test_attempts"
}
