package model

import "time"

// DifficultyLevel 难度档位，由数值难度按固定区间推导
type DifficultyLevel string

const (
	LevelEasy   DifficultyLevel = "Easy"
	LevelMedium DifficultyLevel = "Medium"
	LevelHard   DifficultyLevel = "Hard"
)

// Question 选择题。题面/选项由内容管理维护，引擎只读。
// swagger:model Question
type Question struct {
	BaseModel
	PaperID      uint  `gorm:"index;type:bigint unsigned" json:"paperId"`
	SectionID    uint  `gorm:"index;type:bigint unsigned" json:"sectionId"`
	SubsectionID *uint `gorm:"index;type:bigint unsigned" json:"subsectionId,omitempty"`

	Text          string `gorm:"type:text;not null" json:"text"`
	Options       string `gorm:"type:json" json:"options"` // JSON array of option texts
	CorrectOption int    `gorm:"not null" json:"-"`        // 正确选项下标，不下发给考生
	Explanation   string `gorm:"type:text" json:"explanation,omitempty"`
	ImageURL      string `gorm:"size:255" json:"imageUrl,omitempty"`

	// 全局难度：跨用户共识，出卷时的初始估计
	DifficultyLevel   DifficultyLevel `gorm:"size:10;default:'Medium'" json:"difficultyLevel"`
	NumericDifficulty float64         `gorm:"default:5" json:"numericDifficulty"`

	ValidUntil *time.Time `gorm:"index" json:"validUntil,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}
