package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"deseos/internal/models/request_models"
	"deseos/internal/services"
	"deseos/pkg/utils"
)

type CategoryController struct {
	categoryService services.CategoryServiceInterface
}

func NewCategoryController(categoryService services.CategoryServiceInterface) *CategoryController {
	return &CategoryController{categoryService: categoryService}
}

// List godoc
// @Summary List gift categories
// @Tags Categories
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /categories [get]
func (cc *CategoryController) List(c *gin.Context) {
	categories, err := cc.categoryService.List(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, categories, "Categories fetched successfully")
}

// Create godoc
// @Summary Create a category
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body request_models.CategoryRequest true "Category"
// @Success 201 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/categories [post]
func (cc *CategoryController) Create(c *gin.Context) {
	var req request_models.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	category, err := cc.categoryService.Create(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondCreated(c, category, "Category created successfully")
}

// Update godoc
// @Summary Rename a category
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param request body request_models.CategoryRequest true "Category"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/categories/{id} [put]
func (cc *CategoryController) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req request_models.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	category, err := cc.categoryService.Update(c.Request.Context(), id, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, category, "Category updated successfully")
}

// Delete godoc
// @Summary Delete a category
// @Description Gifts in the category are kept and left uncategorised.
// @Tags Admin
// @Param id path string true "Category ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/categories/{id} [delete]
func (cc *CategoryController) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := cc.categoryService.Delete(c.Request.Context(), id); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Category deleted successfully")
}
