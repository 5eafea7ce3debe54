package db_models

import "github.com/google/uuid"

type Testimonial struct {
	BaseModel
	AuthorID uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	Comment  string    `gorm:"type:text;not null" json:"comment"`
	Rating   int       `gorm:"type:int;not null;check:rating >= 1 AND rating <= 5" json:"rating"` // Rating between 1 and 5
	Approved bool      `gorm:"not null;default:false;index" json:"approved"`

	Author Account `gorm:"foreignKey:AuthorID" json:"-"`
}
