package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"exam_prep_backend/internal/engine"
	"exam_prep_backend/internal/model"
	"exam_prep_backend/internal/repository"
	"exam_prep_backend/internal/util"

	"github.com/google/uuid"
)

// ContentService 试卷/章节/题目的内容管理，同时充当选题引擎的
// 内容提供方（ValidQuestions）。引擎视角下内容是只读的。
type ContentService struct {
	PaperRepo    *repository.PaperRepository
	QuestionRepo *repository.QuestionRepository
	Storage      *StorageService
}

func NewContentService(paperRepo *repository.PaperRepository, questionRepo *repository.QuestionRepository, storage *StorageService) *ContentService {
	return &ContentService{
		PaperRepo:    paperRepo,
		QuestionRepo: questionRepo,
		Storage:      storage,
	}
}

// ValidQuestions 返回指定范围内未过期的候选题。有效期过滤发生在
// 这一层，选题引擎不再关心 valid_until。
func (s *ContentService) ValidQuestions(paperID uint, sectionID, subsectionID *uint, asOf time.Time) ([]model.Question, error) {
	return s.QuestionRepo.FindValid(paperID, sectionID, subsectionID, asOf)
}

type PaperRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
	Order       int    `json:"order"`
}

func (s *ContentService) CreatePaper(req PaperRequest) (*model.Paper, error) {
	paper := &model.Paper{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
		Order:       req.Order,
	}
	if req.IsActive != nil {
		paper.IsActive = *req.IsActive
	}
	if err := s.PaperRepo.Create(paper); err != nil {
		return nil, err
	}
	return paper, nil
}

func (s *ContentService) UpdatePaper(paperID uint, req PaperRequest) (*model.Paper, error) {
	paper, err := s.PaperRepo.FindByID(paperID)
	if err != nil {
		return nil, util.ErrPaperNotFound
	}
	paper.Name = req.Name
	paper.Description = req.Description
	paper.Order = req.Order
	if req.IsActive != nil {
		paper.IsActive = *req.IsActive
	}
	if err := s.PaperRepo.Update(paper); err != nil {
		return nil, err
	}
	return paper, nil
}

func (s *ContentService) ListPapers() ([]model.Paper, error) {
	return s.PaperRepo.ListActive()
}

type SectionRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

func (s *ContentService) CreateSection(paperID uint, req SectionRequest) (*model.Section, error) {
	if _, err := s.PaperRepo.FindByID(paperID); err != nil {
		return nil, util.ErrPaperNotFound
	}
	section := &model.Section{
		PaperID:     paperID,
		Name:        req.Name,
		Description: req.Description,
		Order:       req.Order,
	}
	if err := s.PaperRepo.CreateSection(section); err != nil {
		return nil, err
	}
	return section, nil
}

func (s *ContentService) ListSections(paperID uint) ([]model.Section, error) {
	return s.PaperRepo.ListSections(paperID)
}

func (s *ContentService) CreateSubsection(sectionID uint, req SectionRequest) (*model.Subsection, error) {
	if _, err := s.PaperRepo.FindSectionByID(sectionID); err != nil {
		return nil, errors.New("section not found")
	}
	sub := &model.Subsection{
		SectionID:   sectionID,
		Name:        req.Name,
		Description: req.Description,
		Order:       req.Order,
	}
	if err := s.PaperRepo.CreateSubsection(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *ContentService) ListSubsections(sectionID uint) ([]model.Subsection, error) {
	return s.PaperRepo.ListSubsections(sectionID)
}

type QuestionRequest struct {
	PaperID           uint       `json:"paperId" binding:"required"`
	SectionID         uint       `json:"sectionId" binding:"required"`
	SubsectionID      *uint      `json:"subsectionId"`
	Text              string     `json:"text" binding:"required"`
	Options           []string   `json:"options" binding:"required"`
	CorrectOption     int        `json:"correctOption"`
	Explanation       string     `json:"explanation"`
	NumericDifficulty *float64   `json:"numericDifficulty"`
	ValidUntil        *time.Time `json:"validUntil"`
}

func (s *ContentService) CreateQuestion(req QuestionRequest) (*model.Question, error) {
	if len(req.Options) < 2 {
		return nil, errors.New("at least two options required")
	}
	if req.CorrectOption < 0 || req.CorrectOption >= len(req.Options) {
		return nil, errors.New("correctOption out of range")
	}

	optionBytes, _ := json.Marshal(req.Options)

	difficulty := 5.0
	if req.NumericDifficulty != nil {
		difficulty = engine.ClampDifficulty(*req.NumericDifficulty)
	}

	q := &model.Question{
		PaperID:           req.PaperID,
		SectionID:         req.SectionID,
		SubsectionID:      req.SubsectionID,
		Text:              req.Text,
		Options:           string(optionBytes),
		CorrectOption:     req.CorrectOption,
		Explanation:       req.Explanation,
		NumericDifficulty: difficulty,
		DifficultyLevel:   engine.BandFor(difficulty),
		ValidUntil:        req.ValidUntil,
	}
	if err := s.QuestionRepo.Create(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *ContentService) UpdateQuestion(questionID uint, req QuestionRequest) (*model.Question, error) {
	q, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		return nil, util.ErrQuestionNotFound
	}
	if len(req.Options) < 2 {
		return nil, errors.New("at least two options required")
	}
	if req.CorrectOption < 0 || req.CorrectOption >= len(req.Options) {
		return nil, errors.New("correctOption out of range")
	}

	optionBytes, _ := json.Marshal(req.Options)
	q.Text = req.Text
	q.Options = string(optionBytes)
	q.CorrectOption = req.CorrectOption
	q.Explanation = req.Explanation
	q.ValidUntil = req.ValidUntil
	if req.NumericDifficulty != nil {
		q.NumericDifficulty = engine.ClampDifficulty(*req.NumericDifficulty)
		q.DifficultyLevel = engine.BandFor(q.NumericDifficulty)
	}
	if err := s.QuestionRepo.Update(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *ContentService) DeleteQuestion(questionID uint) error {
	if _, err := s.QuestionRepo.FindByID(questionID); err != nil {
		return util.ErrQuestionNotFound
	}
	return s.QuestionRepo.Delete(questionID)
}

func (s *ContentService) ListQuestions(paperID uint, page, limit int) ([]model.Question, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.QuestionRepo.ListByPaper(paperID, page, limit)
}

// UploadQuestionImage 上传题目配图，返回可访问的 URL
func (s *ContentService) UploadQuestionImage(ctx context.Context, questionID uint, originalName string, reader io.Reader, size int64, contentType string) (string, error) {
	q, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		return "", util.ErrQuestionNotFound
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	allowed := false
	for _, e := range util.AllowedImageExtensions {
		if e == ext {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", errors.New("unsupported image type")
	}

	filename := fmt.Sprintf("questions/%d/%s%s", questionID, uuid.New().String(), ext)
	url, err := s.Storage.Upload(ctx, filename, reader, size, contentType)
	if err != nil {
		return "", err
	}

	q.ImageURL = url
	if err := s.QuestionRepo.Update(q); err != nil {
		return "", err
	}
	return url, nil
}
