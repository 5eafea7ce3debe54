package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"deseos/internal/models/request_models"
	"deseos/internal/services"
	"deseos/pkg/utils"
)

type CartController struct {
	cartService services.CartServiceInterface
}

func NewCartController(cartService services.CartServiceInterface) *CartController {
	return &CartController{cartService: cartService}
}

// Get godoc
// @Summary Current cart
// @Description The cart belongs to the account when logged in, otherwise to the session cookie.
// @Tags Cart
// @Produce json
// @Success 200 {object} utils.APIResponse{data=response_models.CartView}
// @Router /cart [get]
func (cc *CartController) Get(c *gin.Context) {
	view, err := cc.cartService.Get(c.Request.Context(), requestContext(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, view, "Cart fetched successfully")
}

// AddItem godoc
// @Summary Add a gift to the cart
// @Tags Cart
// @Accept json
// @Produce json
// @Param request body request_models.CartItemRequest true "Item"
// @Success 200 {object} utils.APIResponse{data=response_models.CartView}
// @Failure 409 {object} utils.APIResponse
// @Router /cart/items [post]
func (cc *CartController) AddItem(c *gin.Context) {
	var req request_models.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	view, err := cc.cartService.Add(c.Request.Context(), requestContext(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, view, "Item added to cart")
}

// RemoveItem godoc
// @Summary Remove a gift from the cart
// @Tags Cart
// @Param giftId path string true "Gift ID"
// @Success 200 {object} utils.APIResponse{data=response_models.CartView}
// @Router /cart/items/{giftId} [delete]
func (cc *CartController) RemoveItem(c *gin.Context) {
	giftID, ok := pathID(c, "giftId")
	if !ok {
		return
	}

	view, err := cc.cartService.Remove(c.Request.Context(), requestContext(c), giftID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, view, "Item removed from cart")
}

// Clear godoc
// @Summary Empty the cart
// @Tags Cart
// @Success 200 {object} utils.APIResponse
// @Router /cart [delete]
func (cc *CartController) Clear(c *gin.Context) {
	if err := cc.cartService.Clear(c.Request.Context(), requestContext(c)); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Cart cleared")
}

// Checkout godoc
// @Summary Pay for the whole cart
// @Description Starts one gateway checkout with every cart line and empties the cart.
// @Tags Cart
// @Accept json
// @Produce json
// @Param request body request_models.CartCheckoutRequest false "Payer"
// @Success 200 {object} utils.APIResponse{data=response_models.CheckoutResult}
// @Router /cart/checkout [post]
func (cc *CartController) Checkout(c *gin.Context) {
	var req request_models.CartCheckoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
			return
		}
	}

	result, err := cc.cartService.Checkout(c.Request.Context(), requestContext(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, result, result.Message)
}
