package request_models

type GiftListRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=160"`
	Description string `json:"description" binding:"max=4000"`
	Visibility  string `json:"visibility" binding:"omitempty,oneof=public private link_only"`
	EventDate   *int64 `json:"event_date"`
	ExpiresAt   *int64 `json:"expires_at"`
}

// GiftRequest carries price as text so "12990" and "12990.50" both bind.
type GiftRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=160"`
	Description string `json:"description" binding:"max=4000"`
	ImageURL    string `json:"image_url" binding:"omitempty,url,max=512"`
	Price       string `json:"price"`
	Stock       *int   `json:"stock" binding:"required"`
	CategoryID  string `json:"category_id" binding:"omitempty,uuid"`
}

type CategoryRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=80"`
	Description string `json:"description" binding:"max=2000"`
}
