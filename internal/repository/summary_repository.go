package repository

import (
	"exam_prep_backend/internal/model"

	"gorm.io/gorm"
)

type SummaryRepository struct {
	DB *gorm.DB
}

func NewSummaryRepository(db *gorm.DB) *SummaryRepository {
	return &SummaryRepository{DB: db}
}

func (r *SummaryRepository) GetOrCreateTopic(tx *gorm.DB, userID, paperID, sectionID uint) (*model.TopicSummary, error) {
	if tx == nil {
		tx = r.DB
	}
	var summary model.TopicSummary
	err := tx.Where("user_id = ? AND paper_id = ? AND section_id = ?", userID, paperID, sectionID).
		First(&summary).Error
	if err == gorm.ErrRecordNotFound {
		summary = model.TopicSummary{UserID: userID, PaperID: paperID, SectionID: sectionID}
		if err := tx.Create(&summary).Error; err != nil {
			return nil, err
		}
		return &summary, nil
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *SummaryRepository) GetOrCreateOverall(tx *gorm.DB, userID uint) (*model.OverallSummary, error) {
	if tx == nil {
		tx = r.DB
	}
	var summary model.OverallSummary
	err := tx.Where("user_id = ?", userID).First(&summary).Error
	if err == gorm.ErrRecordNotFound {
		summary = model.OverallSummary{UserID: userID}
		if err := tx.Create(&summary).Error; err != nil {
			return nil, err
		}
		return &summary, nil
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *SummaryRepository) SaveTopic(tx *gorm.DB, summary *model.TopicSummary) error {
	if tx == nil {
		tx = r.DB
	}
	return tx.Save(summary).Error
}

func (r *SummaryRepository) SaveOverall(tx *gorm.DB, summary *model.OverallSummary) error {
	if tx == nil {
		tx = r.DB
	}
	return tx.Save(summary).Error
}

func (r *SummaryRepository) FindTopicsByUser(userID uint) ([]model.TopicSummary, error) {
	var summaries []model.TopicSummary
	err := r.DB.Where("user_id = ?", userID).Order("paper_id ASC, section_id ASC").Find(&summaries).Error
	return summaries, err
}

func (r *SummaryRepository) FindOverallByUser(userID uint) (*model.OverallSummary, error) {
	var summary model.OverallSummary
	err := r.DB.Where("user_id = ?", userID).First(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
