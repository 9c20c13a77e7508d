package services

import (
	"context"
	"errors"

	"cart-service/models"
	"cart-service/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CatalogService exposes read-only product lookups.
type CatalogService interface {
	GetProduct(ctx context.Context, id uint) (*models.Product, *ServiceError)
	ListProducts(ctx context.Context, page, limit int, categorySlug string) ([]models.Product, int64, *ServiceError)
}

type catalogServiceImpl struct {
	repo   repository.CatalogRepository
	logger *zap.Logger
}

func NewCatalogService(repo repository.CatalogRepository, logger *zap.Logger) CatalogService {
	return &catalogServiceImpl{repo: repo, logger: logger}
}

func (s *catalogServiceImpl) GetProduct(ctx context.Context, id uint) (*models.Product, *ServiceError) {
	p, err := s.repo.FindProductByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Product not found")
	}
	if err != nil {
		s.logger.Error("Failed to load product", zap.Uint("product_id", id), zap.Error(err))
		return nil, internalError("Failed to load product")
	}
	return p, nil
}

func (s *catalogServiceImpl) ListProducts(ctx context.Context, page, limit int, categorySlug string) ([]models.Product, int64, *ServiceError) {
	products, total, err := s.repo.ListProducts(ctx, page, limit, categorySlug)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, 0, internalError("Failed to list products")
	}
	return products, total, nil
}
