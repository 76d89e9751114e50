package repository

import (
	"exam_prep_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TestAttemptRepository struct {
	DB *gorm.DB
}

func NewTestAttemptRepository(db *gorm.DB) *TestAttemptRepository {
	return &TestAttemptRepository{DB: db}
}

func (r *TestAttemptRepository) Create(attempt *model.TestAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *TestAttemptRepository) Update(tx *gorm.DB, attempt *model.TestAttempt) error {
	if tx == nil {
		tx = r.DB
	}
	return tx.Save(attempt).Error
}

func (r *TestAttemptRepository) FindByID(id string) (*model.TestAttempt, error) {
	var a model.TestAttempt
	if err := r.DB.Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// FindForUpdate 行锁读取会话，状态迁移和游标更新借此串行化。
// 必须在事务内调用。
func (r *TestAttemptRepository) FindForUpdate(tx *gorm.DB, id string) (*model.TestAttempt, error) {
	var a model.TestAttempt
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *TestAttemptRepository) ListByUser(userID uint, page, limit int) ([]model.TestAttempt, int64, error) {
	var attempts []model.TestAttempt
	var total int64
	base := r.DB.Model(&model.TestAttempt{}).Where("user_id = ?", userID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := base.Order("started_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&attempts).Error
	return attempts, total, err
}

// AbandonStale 把超时未完成的会话标记为放弃（后台定时触发）
func (r *TestAttemptRepository) AbandonStale(olderThan time.Time) (int64, error) {
	res := r.DB.Model(&model.TestAttempt{}).
		Where("status = ? AND started_at < ?", model.AttemptInProgress, olderThan).
		Update("status", model.AttemptAbandoned)
	return res.RowsAffected, res.Error
}
