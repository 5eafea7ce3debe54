package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"deseos/internal/models/request_models"
	"deseos/internal/services"
	"deseos/pkg/utils"
)

type GiftListController struct {
	giftListService services.GiftListServiceInterface
}

func NewGiftListController(giftListService services.GiftListServiceInterface) *GiftListController {
	return &GiftListController{giftListService: giftListService}
}

// CreateList godoc
// @Summary Create a gift list
// @Tags Lists
// @Accept json
// @Produce json
// @Param request body request_models.GiftListRequest true "List"
// @Success 201 {object} utils.APIResponse
// @Security BearerAuth
// @Router /lists [post]
func (g *GiftListController) CreateList(c *gin.Context) {
	var req request_models.GiftListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	list, err := g.giftListService.CreateList(c.Request.Context(), requestContext(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondCreated(c, list, "Gift list created successfully")
}

// ListMine godoc
// @Summary Lists owned by the caller
// @Tags Lists
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /lists/mine [get]
func (g *GiftListController) ListMine(c *gin.Context) {
	lists, err := g.giftListService.ListMine(c.Request.Context(), requestContext(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, lists, "Gift lists fetched successfully")
}

// ListPublic godoc
// @Summary Public, non-expired lists
// @Tags Lists
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(10) minimum(1) maximum(100)
// @Success 200 {object} utils.APIResponse
// @Router /lists/public [get]
func (g *GiftListController) ListPublic(c *gin.Context) {
	page, pageSize, ok := pagination(c)
	if !ok {
		return
	}

	lists, err := g.giftListService.ListPublic(c.Request.Context(), page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, lists, "Gift lists fetched successfully")
}

// ListAll godoc
// @Summary Every list, for moderation
// @Tags Admin
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(10) minimum(1) maximum(100)
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/lists [get]
func (g *GiftListController) ListAll(c *gin.Context) {
	page, pageSize, ok := pagination(c)
	if !ok {
		return
	}

	lists, err := g.giftListService.ListAll(c.Request.Context(), page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, lists, "Gift lists fetched successfully")
}

// GetShared godoc
// @Summary Resolve a shared list
// @Description Returns the list with its gifts. Private lists only resolve for their owner.
// @Tags Lists
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /lists/share/{token} [get]
func (g *GiftListController) GetShared(c *gin.Context) {
	detail, err := g.giftListService.GetByShareToken(c.Request.Context(), requestContext(c), c.Param("token"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, detail, "Gift list fetched successfully")
}

// UpdateList godoc
// @Summary Update a gift list
// @Tags Lists
// @Accept json
// @Produce json
// @Param id path string true "List ID"
// @Param request body request_models.GiftListRequest true "List"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /lists/{id} [put]
func (g *GiftListController) UpdateList(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req request_models.GiftListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	list, err := g.giftListService.UpdateList(c.Request.Context(), requestContext(c), id, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, list, "Gift list updated successfully")
}

// DeleteList godoc
// @Summary Delete a gift list and its gifts
// @Tags Lists
// @Param id path string true "List ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /lists/{id} [delete]
func (g *GiftListController) DeleteList(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := g.giftListService.DeleteList(c.Request.Context(), requestContext(c), id); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Gift list deleted successfully")
}

// AddGift godoc
// @Summary Add a gift to a list
// @Tags Gifts
// @Accept json
// @Produce json
// @Param id path string true "List ID"
// @Param request body request_models.GiftRequest true "Gift"
// @Success 201 {object} utils.APIResponse
// @Security BearerAuth
// @Router /lists/{id}/gifts [post]
func (g *GiftListController) AddGift(c *gin.Context) {
	listID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req request_models.GiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	gift, err := g.giftListService.AddGift(c.Request.Context(), requestContext(c), listID, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondCreated(c, gift, "Gift added successfully")
}

// UpdateGift godoc
// @Summary Update a gift
// @Tags Gifts
// @Accept json
// @Produce json
// @Param id path string true "Gift ID"
// @Param request body request_models.GiftRequest true "Gift"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /gifts/{id} [put]
func (g *GiftListController) UpdateGift(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req request_models.GiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	gift, err := g.giftListService.UpdateGift(c.Request.Context(), requestContext(c), id, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, gift, "Gift updated successfully")
}

// DeleteGift godoc
// @Summary Delete a gift
// @Tags Gifts
// @Param id path string true "Gift ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /gifts/{id} [delete]
func (g *GiftListController) DeleteGift(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := g.giftListService.DeleteGift(c.Request.Context(), requestContext(c), id); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Gift deleted successfully")
}

// ListTransactions godoc
// @Summary Transactions received by a list
// @Tags Lists
// @Produce json
// @Param id path string true "List ID"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(10) minimum(1) maximum(100)
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /lists/{id}/transactions [get]
func (g *GiftListController) ListTransactions(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	page, pageSize, ok := pagination(c)
	if !ok {
		return
	}

	res, err := g.giftListService.ListTransactions(c.Request.Context(), requestContext(c), id, page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, res, "Transactions fetched successfully")
}
