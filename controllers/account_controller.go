package controllers

import (
	"net/http"

	"cart-service/models"
	"cart-service/services"

	"github.com/gin-gonic/gin"
)

// AccountController handles registration and login.
type AccountController struct {
	accountService services.AccountService
}

func NewAccountController(accountService services.AccountService) *AccountController {
	return &AccountController{accountService: accountService}
}

// Register handles POST /auth/register. The response carries the id of the
// cart provisioned for the new account.
func (ac *AccountController) Register(ctx *gin.Context) {
	var req models.RegisterRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	account, svcErr := ac.accountService.Register(ctx.Request.Context(), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	resp := gin.H{"user": account.User}
	if account.Cart != nil {
		resp["cart"] = account.Cart.ID
	}
	ctx.JSON(http.StatusCreated, resp)
}

// Login handles POST /auth/login.
func (ac *AccountController) Login(ctx *gin.Context) {
	var req models.LoginRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	token, svcErr := ac.accountService.Login(ctx.Request.Context(), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, token)
}
