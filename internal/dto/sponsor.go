package dto

// CreateSponsorRequest carries the admin sponsor form payload.
type CreateSponsorRequest struct {
	Name    string `json:"name" validate:"required"`
	Tier    string `json:"tier" validate:"required"`
	LogoURL string `json:"logoUrl" validate:"omitempty,url"`
}

// UpdateSponsorRequest mirrors the create payload.
type UpdateSponsorRequest = CreateSponsorRequest

// CreateSponsorTierRequest adds a sponsor tier label.
type CreateSponsorTierRequest struct {
	Name      string `json:"name" validate:"required"`
	SortOrder int    `json:"order"`
}
