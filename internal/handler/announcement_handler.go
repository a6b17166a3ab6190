package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/rent-api/internal/service"
)

// AnnouncementHandler обрабатывает запросы объявлений
type AnnouncementHandler struct {
	announcementService *service.AnnouncementService
}

// NewAnnouncementHandler создает новый обработчик объявлений
func NewAnnouncementHandler(announcementService *service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementService: announcementService}
}

// CreateAnnouncementRequest представляет запрос на публикацию объявления
type CreateAnnouncementRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body"`
}

// ListActive возвращает активные объявления (публичный эндпоинт)
func (h *AnnouncementHandler) ListActive(c *gin.Context) {
	announcements, err := h.announcementService.ListActive()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, announcements)
}

// ListAll возвращает все объявления (админ)
func (h *AnnouncementHandler) ListAll(c *gin.Context) {
	announcements, err := h.announcementService.ListAll()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, announcements)
}

// Create публикует новое объявление (админ)
func (h *AnnouncementHandler) Create(c *gin.Context) {
	var req CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	announcement, err := h.announcementService.Create(req.Title, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, announcement)
}

// Update применяет частичное обновление объявления (админ)
func (h *AnnouncementHandler) Update(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid announcement id"})
		return
	}

	var patch service.AnnouncementPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	announcement, err := h.announcementService.Update(id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, announcement)
}

// Toggle переключает видимость объявления (админ)
func (h *AnnouncementHandler) Toggle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid announcement id"})
		return
	}

	announcement, err := h.announcementService.Toggle(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, announcement)
}

// Delete удаляет объявление (админ)
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid announcement id"})
		return
	}

	if err := h.announcementService.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Announcement deleted"})
}
