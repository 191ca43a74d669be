package dto

// CreateEventRequest carries the admin event form payload.
type CreateEventRequest struct {
	Title       string   `json:"title" validate:"required"`
	Category    string   `json:"category" validate:"required"`
	Date        string   `json:"date"`
	PosterURL   string   `json:"posterUrl" validate:"omitempty,url"`
	Description string   `json:"description"`
	Rules       []string `json:"rules"`
	Gallery     []string `json:"gallery" validate:"omitempty,dive,url"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	UpiLink     string   `json:"upiLink"`
	QRCodeURL   string   `json:"qrCodeUrl" validate:"omitempty,url"`
	SortOrder   int      `json:"order"`
}

// UpdateEventRequest mirrors the create payload for full updates.
type UpdateEventRequest = CreateEventRequest

// CreateCategoryRequest adds an event category.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}
