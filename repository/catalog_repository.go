package repository

import (
	"context"

	"cart-service/models"

	"gorm.io/gorm"
)

// CatalogRepository is read-only access to catalog reference data.
type CatalogRepository interface {
	FindProductByID(ctx context.Context, id uint) (*models.Product, error)
	ListProducts(ctx context.Context, page, limit int, categorySlug string) ([]models.Product, int64, error)
}

// GormCatalogRepository implements CatalogRepository using GORM.
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GormCatalogRepository.
func NewGormCatalogRepository(db *gorm.DB) CatalogRepository {
	return &GormCatalogRepository{db: db}
}

// FindProductByID loads a product with its unit, currency and category.
func (r *GormCatalogRepository) FindProductByID(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).
		Preload("Unit").
		Preload("Currency").
		Preload("Category").
		First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProducts returns a page of products, optionally restricted to the
// category with the given slug.
func (r *GormCatalogRepository) ListProducts(ctx context.Context, page, limit int, categorySlug string) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Product{})
	if categorySlug != "" {
		query = query.
			Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug_name = ?", categorySlug)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Offset(offset).
		Limit(limit).
		Order("products.id ASC").
		Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}
