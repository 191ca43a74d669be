package models

import (
	"time"

	"github.com/lib/pq"
)

// Event is a published festival event. Registrations reference it by free-text
// title, not by ID; the spreadsheet tab name is derived from the title.
type Event struct {
	ID          string         `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Slug        string         `db:"slug" json:"slug"`
	Category    string         `db:"category" json:"category"`
	Date        string         `db:"date" json:"date"`
	PosterURL   string         `db:"poster_url" json:"posterUrl"`
	Description string         `db:"description" json:"description"`
	Rules       pq.StringArray `db:"rules" json:"rules"`
	Gallery     pq.StringArray `db:"gallery" json:"gallery"`
	Price       *float64       `db:"price" json:"price,omitempty"`
	UpiLink     string         `db:"upi_link" json:"upiLink,omitempty"`
	QRCodeURL   string         `db:"qr_code_url" json:"qrCodeUrl,omitempty"`
	SortOrder   int            `db:"sort_order" json:"order"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
}

// Category groups events on the public site.
type Category struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
