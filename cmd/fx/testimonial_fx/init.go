package testimonial_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"deseos/internal/api/controllers"
	"deseos/internal/repositories"
	"deseos/internal/services"
)

var Module = fx.Provide(
	provideTestimonialRepo, provideTestimonialService, provideTestimonialController,
)

func provideTestimonialRepo(db *gorm.DB) repositories.TestimonialRepositoryInterface {
	return repositories.NewTestimonialRepository(db)
}

func provideTestimonialService(testimonialRepo repositories.TestimonialRepositoryInterface) services.TestimonialServiceInterface {
	return services.NewTestimonialService(testimonialRepo)
}

func provideTestimonialController(testimonialService services.TestimonialServiceInterface) *controllers.TestimonialController {
	return controllers.NewTestimonialController(testimonialService)
}
