// Package download defines download join records.
package download

import "time"

// Download records that a user paid for a resource. Rows are immutable;
// the (resource_id, downloader_id) pair is unique, which gates
// re-downloads and double charges.
type Download struct {
	ID           string    `json:"id,omitempty"`
	ResourceID   string    `json:"resource_id"`
	DownloaderID string    `json:"downloader_id"`
	CoinsSpent   int       `json:"coins_spent"`
	DownloadedAt time.Time `json:"downloaded_at,omitempty"`

	// Joined projections.
	ResourceTitle    string `json:"resource_title,omitempty"`
	ResourceCategory string `json:"resource_category,omitempty"`
}
