package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/rent-api/internal/domain/entity"
	apperrors "github.com/yourusername/rent-api/internal/pkg/errors"
)

// AnnouncementRepo реализует repository.AnnouncementRepository
type AnnouncementRepo struct {
	db *gorm.DB
}

// NewAnnouncementRepo создает новый репозиторий объявлений
func NewAnnouncementRepo(db *gorm.DB) *AnnouncementRepo {
	return &AnnouncementRepo{db: db}
}

// Create создает новое объявление
func (r *AnnouncementRepo) Create(announcement *entity.Announcement) error {
	return r.db.Create(announcement).Error
}

// GetByID возвращает объявление по ID
func (r *AnnouncementRepo) GetByID(id uint) (*entity.Announcement, error) {
	var announcement entity.Announcement
	err := r.db.First(&announcement, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &announcement, nil
}

// ListAll возвращает все объявления, новые первыми
func (r *AnnouncementRepo) ListAll() ([]entity.Announcement, error) {
	var announcements []entity.Announcement
	if err := r.db.Order("created_at DESC").Find(&announcements).Error; err != nil {
		return nil, err
	}
	return announcements, nil
}

// ListActive возвращает только активные объявления, новые первыми
func (r *AnnouncementRepo) ListActive() ([]entity.Announcement, error) {
	var announcements []entity.Announcement
	err := r.db.Where("is_active = true").Order("created_at DESC").Find(&announcements).Error
	if err != nil {
		return nil, err
	}
	return announcements, nil
}

// Update сохраняет изменения объявления
func (r *AnnouncementRepo) Update(announcement *entity.Announcement) error {
	return r.db.Save(announcement).Error
}

// Delete безвозвратно удаляет объявление
func (r *AnnouncementRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.Announcement{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
