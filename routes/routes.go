package routes

import (
	"fmt"

	"cart-service/controllers"
	"cart-service/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs the custom validation rules on gin's binding
// engine. It must run before any route binds a request.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
	}
	return models.RegisterValidators(v)
}

// RegisterAccountRoutes sets up the public account endpoints.
func RegisterAccountRoutes(r *gin.Engine, ac *controllers.AccountController) {
	authRoutes := r.Group("/auth")
	authRoutes.POST("/register", ac.Register)
	authRoutes.POST("/login", ac.Login)
}

// RegisterCartRoutes sets up the cart endpoints behind auth.
func RegisterCartRoutes(r *gin.Engine, auth gin.HandlerFunc, cc *controllers.CartItemController) {
	cartRoutes := r.Group("/carts")
	cartRoutes.Use(auth)
	cartRoutes.POST("/", cc.CreateItem)
	cartRoutes.GET("/", cc.ListItems)
	cartRoutes.GET("/:id/", cc.GetItem)
	cartRoutes.PUT("/:id/", cc.UpdateItem)
	cartRoutes.PATCH("/:id/", cc.UpdateItem)
	cartRoutes.DELETE("/:id/", cc.DeleteItem)

	r.GET("/cart", auth, cc.GetCart)
}

// RegisterCatalogRoutes sets up the read-only product endpoints behind auth.
func RegisterCatalogRoutes(r *gin.Engine, auth gin.HandlerFunc, pc *controllers.CatalogController) {
	productRoutes := r.Group("/products")
	productRoutes.Use(auth)
	productRoutes.GET("", pc.ListProducts)
	productRoutes.GET("/:id", pc.GetProduct)
}
