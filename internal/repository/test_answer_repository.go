package repository

import (
	"errors"

	"exam_prep_backend/internal/model"

	"gorm.io/gorm"
)

type TestAnswerRepository struct {
	DB *gorm.DB
}

func NewTestAnswerRepository(db *gorm.DB) *TestAnswerRepository {
	return &TestAnswerRepository{DB: db}
}

// CreateBatch 出题时批量创建未作答记录
func (r *TestAnswerRepository) CreateBatch(tx *gorm.DB, answers []model.TestAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	if tx == nil {
		tx = r.DB
	}
	return tx.Create(&answers).Error
}

// Upsert 幂等写入作答：同一 (attempt, question) 重复提交覆盖旧值，
// 不产生第二条记录。查-插之间并发撞上唯一索引时重读一次改走更新
func (r *TestAnswerRepository) Upsert(tx *gorm.DB, answer *model.TestAnswer) error {
	if tx == nil {
		tx = r.DB
	}
	var existing model.TestAnswer
	err := tx.Where("attempt_id = ? AND question_id = ?", answer.AttemptID, answer.QuestionID).
		First(&existing).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}
	if existing.ID == 0 {
		createErr := tx.Create(answer).Error
		if !errors.Is(createErr, gorm.ErrDuplicatedKey) {
			return createErr
		}
		// 并发请求刚插入了同一条，重读后落到更新分支
		if err := tx.Where("attempt_id = ? AND question_id = ?", answer.AttemptID, answer.QuestionID).
			First(&existing).Error; err != nil {
			return err
		}
	}
	existing.SelectedOption = answer.SelectedOption
	existing.TimeTakenSeconds = answer.TimeTakenSeconds
	existing.Marks = answer.Marks
	existing.IsCorrect = answer.IsCorrect
	*answer = existing
	return tx.Save(&existing).Error
}

func (r *TestAnswerRepository) FindByAttempt(attemptID string) ([]model.TestAnswer, error) {
	var answers []model.TestAnswer
	err := r.DB.Where("attempt_id = ?", attemptID).Order("id ASC").Find(&answers).Error
	return answers, err
}

func (r *TestAnswerRepository) FindByAttemptAndQuestion(attemptID string, questionID uint) (*model.TestAnswer, error) {
	var answer model.TestAnswer
	err := r.DB.Where("attempt_id = ? AND question_id = ?", attemptID, questionID).First(&answer).Error
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

// CountAnswered 统计已作答题数（selected_option 非空）
func (r *TestAnswerRepository) CountAnswered(tx *gorm.DB, attemptID string) (int64, error) {
	if tx == nil {
		tx = r.DB
	}
	var count int64
	err := tx.Model(&model.TestAnswer{}).
		Where("attempt_id = ? AND selected_option IS NOT NULL", attemptID).
		Count(&count).Error
	return count, err
}

// AnsweredQuestionIDs 返回会话中已出过的题目 ID（含未作答的）
func (r *TestAnswerRepository) AnsweredQuestionIDs(attemptID string) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.TestAnswer{}).
		Where("attempt_id = ?", attemptID).
		Pluck("question_id", &ids).Error
	return ids, err
}
