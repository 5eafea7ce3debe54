package db_models

type AccountRole string

const (
	RoleUser  AccountRole = "user"
	RoleAdmin AccountRole = "admin"
)

type Account struct {
	BaseModel
	Name         string      `gorm:"size:120;not null" json:"name"`
	Email        string      `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string      `gorm:"not null" json:"-"`
	Role         AccountRole `gorm:"size:16;not null;default:'user'" json:"role"`
	Rut          *string     `gorm:"size:12;uniqueIndex" json:"rut,omitempty"`
	IsActive     bool        `gorm:"not null;default:true" json:"is_active"`

	GiftLists []GiftList `gorm:"foreignKey:OwnerID" json:"-"`
}
