package postgres

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/rent-api/internal/domain/entity"
	apperrors "github.com/yourusername/rent-api/internal/pkg/errors"
)

// ProductRepo реализует repository.ProductRepository
type ProductRepo struct {
	db *gorm.DB
}

// NewProductRepo создает новый репозиторий товаров
func NewProductRepo(db *gorm.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// Create создает новый товар
func (r *ProductRepo) Create(product *entity.Product) error {
	return r.db.Create(product).Error
}

// GetByID возвращает товар по ID (включая мягко удаленные)
func (r *ProductRepo) GetByID(id uint) (*entity.Product, error) {
	var product entity.Product
	err := r.db.First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// GetActiveByID возвращает товар, если он не помечен как удаленный
func (r *ProductRepo) GetActiveByID(id uint) (*entity.Product, error) {
	var product entity.Product
	err := r.db.Where("id = ? AND is_deleted = false", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// ListActive возвращает товары, видимые в публичном каталоге
func (r *ProductRepo) ListActive() ([]entity.Product, error) {
	var products []entity.Product
	if err := r.db.Where("is_deleted = false").Order("id").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListAll возвращает все товары, включая мягко удаленные (админ-панель)
func (r *ProductRepo) ListAll() ([]entity.Product, error) {
	var products []entity.Product
	if err := r.db.Order("id").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Update сохраняет изменения товара
func (r *ProductRepo) Update(product *entity.Product) error {
	return r.db.Save(product).Error
}

// CountActiveRentals возвращает количество неистекших заказов на товар
func (r *ProductRepo) CountActiveRentals(productID uint, now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Order{}).
		Where("product_id = ? AND expires_at > ?", productID, now).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// PurgeDeletedBefore физически удаляет товары, мягко удаленные до cutoff.
// Сначала удаляются зависимые заказы (внешний ключ), затем сами товары —
// в одной транзакции, чтобы не оставить заказы-сироты.
func (r *ProductRepo) PurgeDeletedBefore(cutoff time.Time) (int64, error) {
	var purged int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&entity.Product{}).
			Where("is_deleted = true AND deleted_at < ?", cutoff).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		if err := tx.Where("product_id IN ?", ids).Delete(&entity.Order{}).Error; err != nil {
			return err
		}

		result := tx.Where("id IN ?", ids).Delete(&entity.Product{})
		if result.Error != nil {
			return result.Error
		}
		purged = result.RowsAffected

		log.Printf("[ProductRepo.PurgeDeletedBefore] Окончательно удалено товаров: %d", purged)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return purged, nil
}
