package repository

import (
	"exam_prep_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) Update(q *model.Question) error {
	return r.DB.Save(q).Error
}

func (r *QuestionRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Question{}, id).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var q model.Question
	if err := r.DB.First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuestionRepository) FindByIDs(ids []uint) ([]model.Question, error) {
	var questions []model.Question
	if len(ids) == 0 {
		return questions, nil
	}
	err := r.DB.Where("id IN ?", ids).Find(&questions).Error
	return questions, err
}

// FindValid 返回指定范围内未过期的题目（valid_until 为空视为长期有效）。
// 过期过滤在这里做掉，选题引擎拿到的候选集不再关心有效期。
func (r *QuestionRepository) FindValid(paperID uint, sectionID, subsectionID *uint, asOf time.Time) ([]model.Question, error) {
	query := r.DB.Where("paper_id = ?", paperID).
		Where("valid_until IS NULL OR valid_until >= ?", asOf)
	if sectionID != nil {
		query = query.Where("section_id = ?", *sectionID)
	}
	if subsectionID != nil {
		query = query.Where("subsection_id = ?", *subsectionID)
	}
	var questions []model.Question
	err := query.Order("id ASC").Find(&questions).Error
	return questions, err
}

func (r *QuestionRepository) ListByPaper(paperID uint, page, limit int) ([]model.Question, int64, error) {
	var questions []model.Question
	var total int64
	base := r.DB.Model(&model.Question{}).Where("paper_id = ?", paperID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := base.Order("id ASC").Offset((page - 1) * limit).Limit(limit).Find(&questions).Error
	return questions, total, err
}

// AdjustGlobalDifficulty 对题目全局数值难度施加漂移并重推档位，
// 始终夹在 [0,10] 内。单独的 UPDATE，不依赖调用方先读出题目。
func (r *QuestionRepository) AdjustGlobalDifficulty(tx *gorm.DB, questionID uint, delta float64) error {
	if tx == nil {
		tx = r.DB
	}
	// MySQL 的 SET 从左到右生效，difficulty_level 的 CASE 里读到的
	// 已经是更新后的 numeric_difficulty
	return tx.Exec(
		`UPDATE questions SET
			numeric_difficulty = LEAST(10, GREATEST(0, numeric_difficulty + ?)),
			difficulty_level = CASE
				WHEN numeric_difficulty < 4 THEN 'Easy'
				WHEN numeric_difficulty < 7 THEN 'Medium'
				ELSE 'Hard'
			END
		WHERE id = ?`,
		delta, questionID,
	).Error
}
