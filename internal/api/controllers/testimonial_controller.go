package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"deseos/internal/models/request_models"
	"deseos/internal/services"
	"deseos/pkg/utils"
)

type TestimonialController struct {
	testimonialService services.TestimonialServiceInterface
}

func NewTestimonialController(testimonialService services.TestimonialServiceInterface) *TestimonialController {
	return &TestimonialController{testimonialService: testimonialService}
}

// AddTestimonial godoc
// @Summary Add a testimonial
// @Description Add a comment and rating. It shows up publicly once an admin approves it.
// @Tags Testimonials
// @Accept json
// @Produce json
// @Param request body request_models.TestimonialRequest true "Testimonial payload"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /testimonials [post]
func (t *TestimonialController) AddTestimonial(c *gin.Context) {
	var req request_models.TestimonialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	testimonial, err := t.testimonialService.AddTestimonial(c.Request.Context(), userID, req.Comment, req.Rating)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondCreated(c, testimonial, "Testimonial added successfully")
}

// ListApproved godoc
// @Summary List approved testimonials
// @Tags Testimonials
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(10) minimum(1) maximum(100)
// @Success 200 {object} utils.APIResponse
// @Router /testimonials [get]
func (t *TestimonialController) ListApproved(c *gin.Context) {
	page, pageSize, ok := pagination(c)
	if !ok {
		return
	}

	testimonials, err := t.testimonialService.GetApproved(c.Request.Context(), page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, testimonials, "Testimonials fetched successfully")
}

// ListAll godoc
// @Summary List every testimonial
// @Tags Admin
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(10) minimum(1) maximum(100)
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/testimonials [get]
func (t *TestimonialController) ListAll(c *gin.Context) {
	page, pageSize, ok := pagination(c)
	if !ok {
		return
	}

	testimonials, err := t.testimonialService.GetAll(c.Request.Context(), page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, testimonials, "Testimonials fetched successfully")
}

// Approve godoc
// @Summary Approve a testimonial
// @Tags Admin
// @Param id path string true "Testimonial ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/testimonials/{id}/approve [put]
func (t *TestimonialController) Approve(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := t.testimonialService.Approve(c.Request.Context(), id); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Testimonial approved")
}
