// Package resource defines uploaded resource records and their taxonomy.
package resource

import "time"

// Category is a fixed taxonomy entry, read-only from the client.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Resource is a row of the resources table. FileURL holds the storage
// path, not a resolved URL. The joined fields are populated when the query
// embeds the category and uploader projections.
type Resource struct {
	ID            string    `json:"id,omitempty"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	CategoryID    string    `json:"category_id"`
	FileType      string    `json:"file_type"`
	FileURL       string    `json:"file_url"`
	FileSize      int64     `json:"file_size"`
	CoinPrice     int       `json:"coin_price"`
	UploaderID    string    `json:"uploader_id"`
	DownloadCount int       `json:"download_count,omitempty"`
	IsApproved    bool      `json:"is_approved"`
	IsActive      bool      `json:"is_active,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`

	// Joined projections, absent on plain selects.
	CategoryName    string `json:"category_name,omitempty"`
	UploaderName    string `json:"uploader_name,omitempty"`
	UploaderStudent string `json:"uploader_student_id,omitempty"`
}

// Filter narrows resource listings.
type Filter struct {
	Category string // category name; "" or "All" means any
	Search   string // matches title or description
	FileType string
	Limit    int
	Offset   int
}
