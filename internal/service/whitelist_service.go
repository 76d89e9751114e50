package service

import (
	"exam_prep_backend/internal/model"
	"exam_prep_backend/internal/repository"
	"errors"
	"strings"
)

type WhitelistService struct {
	WhitelistRepo *repository.WhitelistRepository
}

func NewWhitelistService(whitelistRepo *repository.WhitelistRepository) *WhitelistService {
	return &WhitelistService{WhitelistRepo: whitelistRepo}
}

func (s *WhitelistService) Add(adminID uint, email, note string) (*model.WhitelistEmail, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.New("invalid email")
	}

	exists, err := s.WhitelistRepo.Contains(email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.New("email already whitelisted")
	}

	entry := &model.WhitelistEmail{
		Email:   email,
		AddedBy: adminID,
		Note:    note,
	}
	if err := s.WhitelistRepo.Create(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *WhitelistService) Remove(email string) error {
	return s.WhitelistRepo.DeleteByEmail(strings.ToLower(strings.TrimSpace(email)))
}

func (s *WhitelistService) List(page, limit int) ([]model.WhitelistEmail, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.WhitelistRepo.List(page, limit)
}
