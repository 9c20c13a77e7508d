package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the single basket owned by a customer. It is created together with
// the customer's account and is never reassigned.
type Cart struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	CustomerID uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"customer"`
	Customer   *User      `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"-"`
	Items      []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// CartItem is a line in a cart. A cart holds at most one line per product.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"not null;uniqueIndex:idx_cart_items_cart_product,priority:1" json:"cart"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_items_cart_product,priority:2" json:"product"`
	Product   *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// DefaultItemQuantity is used when a create request omits quantity.
const DefaultItemQuantity = 1

// CreateCartItemRequest is the payload for POST /carts/.
// Cart may be omitted, in which case the requester's own cart is used.
type CreateCartItemRequest struct {
	Product  uint `json:"product" form:"product" binding:"required"`
	Cart     uint `json:"cart" form:"cart"`
	Quantity int  `json:"quantity" form:"quantity" binding:"omitempty,gt=0,lte=10000"`
}

// UpdateCartItemRequest is the payload for PUT/PATCH /carts/:id/.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" form:"quantity" binding:"required,gt=0,lte=10000"`
}

// Cart item event types published after a successful mutation.
const (
	EventCartItemAdded   = "cart_item_added"
	EventCartItemUpdated = "cart_item_updated"
	EventCartItemRemoved = "cart_item_removed"
)

// CartItemEvent is published to SNS when a cart line changes.
type CartItemEvent struct {
	EventType  string    `json:"event_type"`
	CustomerID string    `json:"customer_id"`
	CartID     uint      `json:"cart_id,omitempty"`
	ItemID     uint      `json:"item_id"`
	ProductID  uint      `json:"product_id,omitempty"`
	Quantity   int       `json:"quantity,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
