package repository

import (
	"exam_prep_backend/internal/model"

	"gorm.io/gorm"
)

type PaperRepository struct {
	DB *gorm.DB
}

func NewPaperRepository(db *gorm.DB) *PaperRepository {
	return &PaperRepository{DB: db}
}

func (r *PaperRepository) Create(paper *model.Paper) error {
	return r.DB.Create(paper).Error
}

func (r *PaperRepository) Update(paper *model.Paper) error {
	return r.DB.Save(paper).Error
}

func (r *PaperRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Paper{}, id).Error
}

func (r *PaperRepository) FindByID(id uint) (*model.Paper, error) {
	var p model.Paper
	if err := r.DB.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaperRepository) ListActive() ([]model.Paper, error) {
	var papers []model.Paper
	err := r.DB.Where("is_active = ?", true).Order("`order` ASC, id ASC").Find(&papers).Error
	return papers, err
}

func (r *PaperRepository) CreateSection(section *model.Section) error {
	return r.DB.Create(section).Error
}

func (r *PaperRepository) FindSectionByID(id uint) (*model.Section, error) {
	var s model.Section
	if err := r.DB.First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PaperRepository) ListSections(paperID uint) ([]model.Section, error) {
	var sections []model.Section
	err := r.DB.Where("paper_id = ?", paperID).Order("`order` ASC, id ASC").Find(&sections).Error
	return sections, err
}

func (r *PaperRepository) CreateSubsection(sub *model.Subsection) error {
	return r.DB.Create(sub).Error
}

func (r *PaperRepository) ListSubsections(sectionID uint) ([]model.Subsection, error) {
	var subs []model.Subsection
	err := r.DB.Where("section_id = ?", sectionID).Order("`order` ASC, id ASC").Find(&subs).Error
	return subs, err
}
