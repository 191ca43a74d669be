package models

import "time"

// Sponsor is a festival sponsor shown on the landing page.
type Sponsor struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Tier      string    `db:"tier" json:"tier"`
	LogoURL   string    `db:"logo_url" json:"logoUrl,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// SponsorTier is an admin-managed tier label (PLATINUM, GOLD, ...).
type SponsorTier struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	SortOrder int       `db:"sort_order" json:"order"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
