package request_models

type CartItemRequest struct {
	GiftID   string `json:"gift_id" binding:"required,uuid"`
	Quantity int    `json:"quantity" binding:"omitempty,min=1,max=100"`
}

type CartCheckoutRequest struct {
	PayerName  string `json:"payer_name"`
	PayerEmail string `json:"payer_email" binding:"omitempty,email"`
	CSRFToken  string `json:"csrf_token"`
}

type PayoutRequest struct {
	GiftListID    string `json:"gift_list_id" binding:"required,uuid"`
	Amount        string `json:"amount" binding:"required"`
	BankName      string `json:"bank_name" binding:"required,max=80"`
	AccountNumber string `json:"account_number" binding:"required,max=40"`
	AccountHolder string `json:"account_holder" binding:"required,max=120"`
}

type PayoutStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=approved paid rejected"`
	Note   string `json:"note" binding:"max=2000"`
}

type TestimonialRequest struct {
	Comment string `json:"comment" binding:"required,min=3,max=2000"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
}
