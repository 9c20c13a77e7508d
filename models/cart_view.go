package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItemView is the transport projection of a CartItem. Related records are
// referenced by id only.
type CartItemView struct {
	ID        uint      `json:"id"`
	Cart      uint      `json:"cart"`
	Product   uint      `json:"product"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCartItemView projects item for the API.
func NewCartItemView(item *CartItem) CartItemView {
	return CartItemView{
		ID:        item.ID,
		Cart:      item.CartID,
		Product:   item.ProductID,
		Quantity:  item.Quantity,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

// NewCartItemViews projects a slice of items, never returning nil.
func NewCartItemViews(items []CartItem) []CartItemView {
	views := make([]CartItemView, 0, len(items))
	for i := range items {
		views = append(views, NewCartItemView(&items[i]))
	}
	return views
}

// CartView is the projection of a cart with its lines.
type CartView struct {
	ID       uint           `json:"id"`
	Customer uuid.UUID      `json:"customer"`
	Items    []CartItemView `json:"items"`
}

// NewCartView projects cart together with items.
func NewCartView(cart *Cart, items []CartItem) CartView {
	return CartView{
		ID:       cart.ID,
		Customer: cart.CustomerID,
		Items:    NewCartItemViews(items),
	}
}
