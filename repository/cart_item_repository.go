package repository

import (
	"context"
	"time"

	"cart-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartItemRepository defines data access for cart lines. Every lookup and
// mutation by item id is scoped to the customer that owns the cart, so an item
// in somebody else's cart behaves exactly like a missing one.
type CartItemRepository interface {
	AddOrIncrement(ctx context.Context, item *models.CartItem) error
	FindForCustomer(ctx context.Context, id uint, customerID uuid.UUID) (*models.CartItem, error)
	ListByCart(ctx context.Context, cartID uint) ([]models.CartItem, error)
	UpdateQuantityForCustomer(ctx context.Context, id uint, customerID uuid.UUID, quantity int) error
	DeleteForCustomer(ctx context.Context, id uint, customerID uuid.UUID) error
}

// GormCartItemRepository implements CartItemRepository using GORM.
type GormCartItemRepository struct {
	db *gorm.DB
}

// NewGormCartItemRepository creates a new GormCartItemRepository.
func NewGormCartItemRepository(db *gorm.DB) CartItemRepository {
	return &GormCartItemRepository{db: db}
}

// AddOrIncrement inserts item, or adds its quantity to the existing line for
// the same (cart, product) pair in one statement. item.ID is set to the id of
// the affected row.
func (r *GormCartItemRepository) AddOrIncrement(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
		}).
		Create(item).Error
}

func (r *GormCartItemRepository) FindForCustomer(ctx context.Context, id uint, customerID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.WithContext(ctx).
		Where("id = ? AND cart_id IN (?)", id, r.customerCarts(ctx, customerID)).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormCartItemRepository) ListByCart(ctx context.Context, cartID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateQuantityForCustomer sets the quantity of a line. Returns
// gorm.ErrRecordNotFound when no line of the customer matches id.
func (r *GormCartItemRepository) UpdateQuantityForCustomer(ctx context.Context, id uint, customerID uuid.UUID, quantity int) error {
	result := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ? AND cart_id IN (?)", id, r.customerCarts(ctx, customerID)).
		Updates(map[string]interface{}{
			"quantity":   quantity,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteForCustomer permanently removes a line. Returns
// gorm.ErrRecordNotFound when no line of the customer matches id.
func (r *GormCartItemRepository) DeleteForCustomer(ctx context.Context, id uint, customerID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND cart_id IN (?)", id, r.customerCarts(ctx, customerID)).
		Delete(&models.CartItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormCartItemRepository) customerCarts(ctx context.Context, customerID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Select("id").
		Where("customer_id = ?", customerID)
}
