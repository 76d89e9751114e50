package model

// Paper 试卷（顶层内容单元）
// swagger:model Paper
type Paper struct {
	BaseModel
	Name        string `gorm:"size:200;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	IsActive    bool   `gorm:"default:true" json:"isActive"`
	Order       int    `gorm:"default:0" json:"order"`
}

func (Paper) TableName() string {
	return "papers"
}

// swagger:model Section
type Section struct {
	BaseModel
	PaperID     uint   `gorm:"index;type:bigint unsigned" json:"paperId"`
	Name        string `gorm:"size:200;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Order       int    `gorm:"default:0" json:"order"`
}

func (Section) TableName() string {
	return "sections"
}

// swagger:model Subsection
type Subsection struct {
	BaseModel
	SectionID   uint   `gorm:"index;type:bigint unsigned" json:"sectionId"`
	Name        string `gorm:"size:200;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Order       int    `gorm:"default:0" json:"order"`
}

func (Subsection) TableName() string {
	return "subsections"
}
