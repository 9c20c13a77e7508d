package controllers

import (
	"net/http"
	"strconv"

	"cart-service/middleware"
	"cart-service/models"
	"cart-service/services"

	"github.com/gin-gonic/gin"
)

// Response messages of the cart item mutations. Clients match on these
// strings, so they must not change.
const (
	MsgItemAdded   = "Продукт успешно добавлен в корзину"
	MsgItemUpdated = "Данные объекта корзины изменены"
	MsgItemRemoved = "Продукт успешно удалён из корзины"
)

// CartItemController handles HTTP requests for cart lines.
type CartItemController struct {
	cartItemService services.CartItemService
}

// NewCartItemController creates a new CartItemController.
func NewCartItemController(cartItemService services.CartItemService) *CartItemController {
	return &CartItemController{cartItemService: cartItemService}
}

// CreateItem handles POST /carts/.
func (cc *CartItemController) CreateItem(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateCartItemRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if _, svcErr := cc.cartItemService.AddItem(ctx.Request.Context(), userID, &req); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": MsgItemAdded})
}

// UpdateItem handles PUT and PATCH /carts/:id/. It answers 201 on success.
func (cc *CartItemController) UpdateItem(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := parseItemID(ctx)
	if !ok {
		return
	}

	var req models.UpdateCartItemRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if svcErr := cc.cartItemService.UpdateItem(ctx.Request.Context(), userID, id, &req); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": MsgItemUpdated})
}

// DeleteItem handles DELETE /carts/:id/. It answers 201 on success.
func (cc *CartItemController) DeleteItem(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := parseItemID(ctx)
	if !ok {
		return
	}

	if svcErr := cc.cartItemService.RemoveItem(ctx.Request.Context(), userID, id); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": MsgItemRemoved})
}

// ListItems handles GET /carts/.
func (cc *CartItemController) ListItems(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	items, svcErr := cc.cartItemService.ListItems(ctx.Request.Context(), userID)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, models.NewCartItemViews(items))
}

// GetItem handles GET /carts/:id/.
func (cc *CartItemController) GetItem(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := parseItemID(ctx)
	if !ok {
		return
	}

	item, svcErr := cc.cartItemService.GetItem(ctx.Request.Context(), userID, id)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, models.NewCartItemView(item))
}

// GetCart handles GET /cart.
func (cc *CartItemController) GetCart(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	cart, items, svcErr := cc.cartItemService.GetCart(ctx.Request.Context(), userID)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, models.NewCartView(cart, items))
}

// parseItemID reads the :id path parameter, writing a 400 when it is not a
// positive integer.
func parseItemID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart item id"})
		return 0, false
	}
	return uint(id), true
}
