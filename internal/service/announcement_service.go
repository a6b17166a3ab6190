package service

import (
	"fmt"

	"github.com/yourusername/rent-api/internal/domain/entity"
	"github.com/yourusername/rent-api/internal/domain/repository"
	apperrors "github.com/yourusername/rent-api/internal/pkg/errors"
)

// AnnouncementPatch описывает частичное обновление объявления
type AnnouncementPatch struct {
	Title    *string `json:"title"`
	Body     *string `json:"body"`
	IsActive *bool   `json:"is_active"`
}

// AnnouncementService отвечает за объявления администрации
type AnnouncementService struct {
	announcementRepo repository.AnnouncementRepository
}

// NewAnnouncementService создает новый сервис объявлений
func NewAnnouncementService(announcementRepo repository.AnnouncementRepository) (*AnnouncementService, error) {
	if announcementRepo == nil {
		return nil, fmt.Errorf("announcement repository is required")
	}
	return &AnnouncementService{announcementRepo: announcementRepo}, nil
}

// ListActive возвращает активные объявления (публичный эндпоинт)
func (s *AnnouncementService) ListActive() ([]entity.Announcement, error) {
	return s.announcementRepo.ListActive()
}

// ListAll возвращает все объявления (админ-панель)
func (s *AnnouncementService) ListAll() ([]entity.Announcement, error) {
	return s.announcementRepo.ListAll()
}

// Create публикует новое объявление
func (s *AnnouncementService) Create(title, body string) (*entity.Announcement, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	announcement := &entity.Announcement{
		Title:    title,
		Body:     body,
		IsActive: true,
	}
	if err := s.announcementRepo.Create(announcement); err != nil {
		return nil, fmt.Errorf("failed to create announcement: %w", err)
	}
	return announcement, nil
}

// Update применяет частичное обновление объявления
func (s *AnnouncementService) Update(id uint, patch AnnouncementPatch) (*entity.Announcement, error) {
	announcement, err := s.announcementRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		if *patch.Title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", apperrors.ErrValidation)
		}
		announcement.Title = *patch.Title
	}
	if patch.Body != nil {
		announcement.Body = *patch.Body
	}
	if patch.IsActive != nil {
		announcement.IsActive = *patch.IsActive
	}

	if err := s.announcementRepo.Update(announcement); err != nil {
		return nil, fmt.Errorf("failed to update announcement: %w", err)
	}
	return announcement, nil
}

// Toggle переключает видимость объявления
func (s *AnnouncementService) Toggle(id uint) (*entity.Announcement, error) {
	announcement, err := s.announcementRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	announcement.IsActive = !announcement.IsActive
	if err := s.announcementRepo.Update(announcement); err != nil {
		return nil, fmt.Errorf("failed to toggle announcement: %w", err)
	}
	return announcement, nil
}

// Delete удаляет объявление
func (s *AnnouncementService) Delete(id uint) error {
	return s.announcementRepo.Delete(id)
}
