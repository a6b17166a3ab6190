package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/rent-api/internal/domain/entity"
	apperrors "github.com/yourusername/rent-api/internal/pkg/errors"
)

// ============================================================================
// Моки для тестирования AnnouncementService
// ============================================================================

// MockAnnouncementRepository реализует repository.AnnouncementRepository
type MockAnnouncementRepository struct {
	mock.Mock
}

func (m *MockAnnouncementRepository) Create(announcement *entity.Announcement) error {
	args := m.Called(announcement)
	return args.Error(0)
}

func (m *MockAnnouncementRepository) GetByID(id uint) (*entity.Announcement, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Announcement), args.Error(1)
}

func (m *MockAnnouncementRepository) ListAll() ([]entity.Announcement, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Announcement), args.Error(1)
}

func (m *MockAnnouncementRepository) ListActive() ([]entity.Announcement, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Announcement), args.Error(1)
}

func (m *MockAnnouncementRepository) Update(announcement *entity.Announcement) error {
	args := m.Called(announcement)
	return args.Error(0)
}

func (m *MockAnnouncementRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// ============================================================================
// Тесты для AnnouncementService
// ============================================================================

func TestAnnouncementService_Create_Success(t *testing.T) {
	// Arrange
	mockRepo := new(MockAnnouncementRepository)
	mockRepo.On("Create", mock.AnythingOfType("*entity.Announcement")).Return(nil)

	announcementService := &AnnouncementService{announcementRepo: mockRepo}

	// Act
	announcement, err := announcementService.Create("Новые аккаунты", "Пополнение каталога")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Новые аккаунты", announcement.Title)
	assert.True(t, announcement.IsActive, "Новое объявление публикуется активным")
	mockRepo.AssertExpectations(t)
}

func TestAnnouncementService_Create_EmptyTitle(t *testing.T) {
	// Arrange
	mockRepo := new(MockAnnouncementRepository)
	announcementService := &AnnouncementService{announcementRepo: mockRepo}

	// Act
	_, err := announcementService.Create("", "body")

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestAnnouncementService_Update_PartialPatch(t *testing.T) {
	// Arrange
	mockRepo := new(MockAnnouncementRepository)
	existing := &entity.Announcement{ID: 1, Title: "Старый заголовок", Body: "Текст", IsActive: true}
	mockRepo.On("GetByID", uint(1)).Return(existing, nil)
	mockRepo.On("Update", mock.AnythingOfType("*entity.Announcement")).Return(nil)

	announcementService := &AnnouncementService{announcementRepo: mockRepo}
	newTitle := "Новый заголовок"

	// Act
	updated, err := announcementService.Update(1, AnnouncementPatch{Title: &newTitle})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Новый заголовок", updated.Title)
	assert.Equal(t, "Текст", updated.Body, "Непереданные поля не должны меняться")
	mockRepo.AssertExpectations(t)
}

func TestAnnouncementService_Update_EmptyTitle(t *testing.T) {
	// Arrange
	mockRepo := new(MockAnnouncementRepository)
	existing := &entity.Announcement{ID: 1, Title: "Заголовок"}
	mockRepo.On("GetByID", uint(1)).Return(existing, nil)

	announcementService := &AnnouncementService{announcementRepo: mockRepo}
	empty := ""

	// Act
	_, err := announcementService.Update(1, AnnouncementPatch{Title: &empty})

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	mockRepo.AssertNotCalled(t, "Update")
}

func TestAnnouncementService_Toggle(t *testing.T) {
	// Arrange
	mockRepo := new(MockAnnouncementRepository)
	existing := &entity.Announcement{ID: 1, Title: "Заголовок", IsActive: true}
	mockRepo.On("GetByID", uint(1)).Return(existing, nil)
	mockRepo.On("Update", mock.AnythingOfType("*entity.Announcement")).Return(nil)

	announcementService := &AnnouncementService{announcementRepo: mockRepo}

	// Act
	toggled, err := announcementService.Toggle(1)

	// Assert
	require.NoError(t, err)
	assert.False(t, toggled.IsActive, "Toggle должен скрыть активное объявление")
	mockRepo.AssertExpectations(t)
}

func TestAnnouncementService_Delete(t *testing.T) {
	// Arrange
	mockRepo := new(MockAnnouncementRepository)
	mockRepo.On("Delete", uint(1)).Return(nil)

	announcementService := &AnnouncementService{announcementRepo: mockRepo}

	// Act & Assert
	assert.NoError(t, announcementService.Delete(1))
	mockRepo.AssertExpectations(t)
}
