package repository

import (
	"exam_prep_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DifficultyRepository struct {
	DB *gorm.DB
}

func NewDifficultyRepository(db *gorm.DB) *DifficultyRepository {
	return &DifficultyRepository{DB: db}
}

// FindForUpdate 行锁读取校准记录，同一 (user, question) 键上的并发
// 写入借此串行化。必须在事务内调用。
func (r *DifficultyRepository) FindForUpdate(tx *gorm.DB, userID, questionID uint) (*model.UserQuestionDifficulty, error) {
	var rec model.UserQuestionDifficulty
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *DifficultyRepository) Create(tx *gorm.DB, rec *model.UserQuestionDifficulty) error {
	if tx == nil {
		tx = r.DB
	}
	return tx.Create(rec).Error
}

func (r *DifficultyRepository) Save(tx *gorm.DB, rec *model.UserQuestionDifficulty) error {
	if tx == nil {
		tx = r.DB
	}
	return tx.Save(rec).Error
}

// FindByUserAndQuestions 一次拉取用户在候选题集上的全部校准记录
func (r *DifficultyRepository) FindByUserAndQuestions(userID uint, questionIDs []uint) (map[uint]*model.UserQuestionDifficulty, error) {
	result := make(map[uint]*model.UserQuestionDifficulty, len(questionIDs))
	if len(questionIDs) == 0 {
		return result, nil
	}
	var records []model.UserQuestionDifficulty
	err := r.DB.Where("user_id = ? AND question_id IN ?", userID, questionIDs).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	for i := range records {
		result[records[i].QuestionID] = &records[i]
	}
	return result, nil
}

func (r *DifficultyRepository) FindByUserAndQuestion(userID, questionID uint) (*model.UserQuestionDifficulty, error) {
	var rec model.UserQuestionDifficulty
	err := r.DB.Where("user_id = ? AND question_id = ?", userID, questionID).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *DifficultyRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.UserQuestionDifficulty{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// ResetCalibration 用户主动重置校准：全部记录回到校准态、置信度回到
// 初始值，计数器保留
func (r *DifficultyRepository) ResetCalibration(userID uint) error {
	return r.DB.Model(&model.UserQuestionDifficulty{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"is_calibrating": true,
			"confidence":     0.1,
		}).Error
}
