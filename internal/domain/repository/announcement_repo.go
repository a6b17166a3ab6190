package repository

import (
	"github.com/yourusername/rent-api/internal/domain/entity"
)

// AnnouncementRepository определяет методы для работы с объявлениями
type AnnouncementRepository interface {
	Create(announcement *entity.Announcement) error
	GetByID(id uint) (*entity.Announcement, error)
	ListAll() ([]entity.Announcement, error)
	ListActive() ([]entity.Announcement, error)
	Update(announcement *entity.Announcement) error
	Delete(id uint) error
}
