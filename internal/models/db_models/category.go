package db_models

type Category struct {
	BaseModel
	Name        string `gorm:"size:80;uniqueIndex;not null" json:"name"`
	Slug        string `gorm:"size:80;uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
}
