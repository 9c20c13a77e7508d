package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"cart-service/models"
	aws_pkg "cart-service/pkg/aws"
	"cart-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CartItemService defines the business logic for cart lines. Every operation
// takes the authenticated requester explicitly; client-supplied ownership is
// never trusted.
type CartItemService interface {
	AddItem(ctx context.Context, requester uuid.UUID, req *models.CreateCartItemRequest) (*models.CartItem, *ServiceError)
	UpdateItem(ctx context.Context, requester uuid.UUID, id uint, req *models.UpdateCartItemRequest) *ServiceError
	RemoveItem(ctx context.Context, requester uuid.UUID, id uint) *ServiceError
	GetItem(ctx context.Context, requester uuid.UUID, id uint) (*models.CartItem, *ServiceError)
	ListItems(ctx context.Context, requester uuid.UUID) ([]models.CartItem, *ServiceError)
	GetCart(ctx context.Context, requester uuid.UUID) (*models.Cart, []models.CartItem, *ServiceError)
}

type cartItemServiceImpl struct {
	carts       repository.CartRepository
	items       repository.CartItemRepository
	catalog     repository.CatalogRepository
	snsClient   aws_pkg.SNSPublisher
	snsTopicArn string
	metrics     aws_pkg.MetricsRecorder
	logger      *zap.Logger
}

// NewCartItemService creates a new CartItemService. snsClient and metrics may
// be nil.
func NewCartItemService(
	carts repository.CartRepository,
	items repository.CartItemRepository,
	catalog repository.CatalogRepository,
	snsClient aws_pkg.SNSPublisher,
	snsTopicArn string,
	metrics aws_pkg.MetricsRecorder,
	logger *zap.Logger,
) CartItemService {
	return &cartItemServiceImpl{
		carts:       carts,
		items:       items,
		catalog:     catalog,
		snsClient:   snsClient,
		snsTopicArn: snsTopicArn,
		metrics:     metrics,
		logger:      logger,
	}
}

// AddItem puts a product into a cart owned by requester. Adding a product that
// is already in the cart increases the quantity of the existing line.
func (s *cartItemServiceImpl) AddItem(ctx context.Context, requester uuid.UUID, req *models.CreateCartItemRequest) (*models.CartItem, *ServiceError) {
	if req.Product == 0 {
		return nil, badRequest("Product is required")
	}
	if req.Quantity < 0 {
		return nil, badRequest("Quantity must be positive")
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = models.DefaultItemQuantity
	}

	cart, svcErr := s.resolveCart(ctx, requester, req.Cart)
	if svcErr != nil {
		return nil, svcErr
	}

	if _, err := s.catalog.FindProductByID(ctx, req.Product); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, badRequest("Product does not exist")
		}
		s.logger.Error("Failed to load product", zap.Uint("product_id", req.Product), zap.Error(err))
		return nil, internalError("Failed to add product to cart")
	}

	item := &models.CartItem{
		CartID:    cart.ID,
		ProductID: req.Product,
		Quantity:  quantity,
	}
	if err := s.items.AddOrIncrement(ctx, item); err != nil {
		// The product or cart can vanish between the lookups and the insert.
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, badRequest("Product does not exist")
		}
		s.logger.Error("Failed to add cart item",
			zap.Uint("cart_id", cart.ID),
			zap.Uint("product_id", req.Product),
			zap.Error(err),
		)
		return nil, internalError("Failed to add product to cart")
	}

	s.logger.Info("Cart item added",
		zap.String("customer_id", requester.String()),
		zap.Uint("cart_id", cart.ID),
		zap.Uint("item_id", item.ID),
		zap.Int("quantity", quantity),
	)
	s.recordMetric(ctx, aws_pkg.MetricCartItemsAdded)
	s.publishEvent(ctx, models.CartItemEvent{
		EventType:  models.EventCartItemAdded,
		CustomerID: requester.String(),
		CartID:     cart.ID,
		ItemID:     item.ID,
		ProductID:  item.ProductID,
		Quantity:   quantity,
	})

	return item, nil
}

// resolveCart returns the cart a new line goes into. cartID 0 selects the
// requester's own cart.
func (s *cartItemServiceImpl) resolveCart(ctx context.Context, requester uuid.UUID, cartID uint) (*models.Cart, *ServiceError) {
	var (
		cart *models.Cart
		err  error
	)
	if cartID == 0 {
		cart, err = s.carts.FindByCustomer(ctx, requester)
	} else {
		cart, err = s.carts.FindByID(ctx, cartID)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, badRequest("Cart does not exist")
	}
	if err != nil {
		s.logger.Error("Failed to load cart", zap.Uint("cart_id", cartID), zap.Error(err))
		return nil, internalError("Failed to add product to cart")
	}

	if cart.CustomerID != requester {
		s.logger.Warn("Rejected add to foreign cart",
			zap.String("customer_id", requester.String()),
			zap.Uint("cart_id", cart.ID),
		)
		return nil, &ServiceError{StatusCode: http.StatusForbidden, Message: "You can only add products to your own cart"}
	}
	return cart, nil
}

func (s *cartItemServiceImpl) UpdateItem(ctx context.Context, requester uuid.UUID, id uint, req *models.UpdateCartItemRequest) *ServiceError {
	if req.Quantity <= 0 {
		return badRequest("Quantity must be positive")
	}

	if err := s.items.UpdateQuantityForCustomer(ctx, id, requester, req.Quantity); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Cart item not found")
		}
		s.logger.Error("Failed to update cart item", zap.Uint("item_id", id), zap.Error(err))
		return internalError("Failed to update cart item")
	}

	s.logger.Info("Cart item updated",
		zap.String("customer_id", requester.String()),
		zap.Uint("item_id", id),
		zap.Int("quantity", req.Quantity),
	)
	s.recordMetric(ctx, aws_pkg.MetricCartItemsUpdated)
	s.publishEvent(ctx, models.CartItemEvent{
		EventType:  models.EventCartItemUpdated,
		CustomerID: requester.String(),
		ItemID:     id,
		Quantity:   req.Quantity,
	})
	return nil
}

func (s *cartItemServiceImpl) RemoveItem(ctx context.Context, requester uuid.UUID, id uint) *ServiceError {
	if err := s.items.DeleteForCustomer(ctx, id, requester); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Cart item not found")
		}
		s.logger.Error("Failed to delete cart item", zap.Uint("item_id", id), zap.Error(err))
		return internalError("Failed to remove product from cart")
	}

	s.logger.Info("Cart item removed",
		zap.String("customer_id", requester.String()),
		zap.Uint("item_id", id),
	)
	s.recordMetric(ctx, aws_pkg.MetricCartItemsRemoved)
	s.publishEvent(ctx, models.CartItemEvent{
		EventType:  models.EventCartItemRemoved,
		CustomerID: requester.String(),
		ItemID:     id,
	})
	return nil
}

func (s *cartItemServiceImpl) GetItem(ctx context.Context, requester uuid.UUID, id uint) (*models.CartItem, *ServiceError) {
	item, err := s.items.FindForCustomer(ctx, id, requester)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Cart item not found")
	}
	if err != nil {
		s.logger.Error("Failed to load cart item", zap.Uint("item_id", id), zap.Error(err))
		return nil, internalError("Failed to load cart item")
	}
	return item, nil
}

func (s *cartItemServiceImpl) ListItems(ctx context.Context, requester uuid.UUID) ([]models.CartItem, *ServiceError) {
	_, items, svcErr := s.GetCart(ctx, requester)
	return items, svcErr
}

func (s *cartItemServiceImpl) GetCart(ctx context.Context, requester uuid.UUID) (*models.Cart, []models.CartItem, *ServiceError) {
	cart, err := s.carts.FindByCustomer(ctx, requester)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, notFound("Cart not found")
	}
	if err != nil {
		s.logger.Error("Failed to load cart", zap.String("customer_id", requester.String()), zap.Error(err))
		return nil, nil, internalError("Failed to load cart")
	}

	items, err := s.items.ListByCart(ctx, cart.ID)
	if err != nil {
		s.logger.Error("Failed to list cart items", zap.Uint("cart_id", cart.ID), zap.Error(err))
		return nil, nil, internalError("Failed to load cart")
	}
	return cart, items, nil
}

func (s *cartItemServiceImpl) recordMetric(ctx context.Context, name string) {
	if s.metrics == nil {
		return
	}
	if err := s.metrics.RecordCount(ctx, name, map[string]string{"Service": "cart-service"}); err != nil {
		s.logger.Warn("Failed to record metric", zap.String("metric", name), zap.Error(err))
	}
}

// publishEvent is best-effort: failures are logged and never reach the caller.
func (s *cartItemServiceImpl) publishEvent(ctx context.Context, event models.CartItemEvent) {
	if s.snsClient == nil || s.snsTopicArn == "" {
		s.logger.Debug("SNS not configured, skipping event", zap.String("event_type", event.EventType))
		return
	}

	event.Timestamp = time.Now()
	body, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to marshal cart event", zap.String("event_type", event.EventType), zap.Error(err))
		return
	}

	if err := s.snsClient.Publish(ctx, s.snsTopicArn, event.EventType, body); err != nil {
		s.logger.Error("Failed to publish cart event", zap.String("event_type", event.EventType), zap.Error(err))
		return
	}

	s.logger.Debug("Published cart event",
		zap.String("event_type", event.EventType),
		zap.Uint("item_id", event.ItemID),
	)
}
