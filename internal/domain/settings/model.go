// Package settings defines per-user preferences.
package settings

import "time"

// Settings is a row of the user_settings table.
type Settings struct {
	ID                    string    `json:"id,omitempty"`
	UserID                string    `json:"user_id"`
	PushNotifications     bool      `json:"push_notifications"`
	EmailNotifications    bool      `json:"email_notifications"`
	DownloadNotifications bool      `json:"download_notifications"`
	UploadNotifications   bool      `json:"upload_notifications"`
	ProfileVisible        bool      `json:"profile_visible"`
	ShowStats             bool      `json:"show_stats"`
	AllowMessages         bool      `json:"allow_messages"`
	DarkMode              bool      `json:"dark_mode"`
	Language              string    `json:"language"`
	AutoDownload          bool      `json:"auto_download"`
	CreatedAt             time.Time `json:"created_at,omitempty"`
	UpdatedAt             time.Time `json:"updated_at,omitempty"`
}

// Update carries a partial settings change; nil fields are left untouched.
type Update struct {
	PushNotifications     *bool   `json:"push_notifications,omitempty"`
	EmailNotifications    *bool   `json:"email_notifications,omitempty"`
	DownloadNotifications *bool   `json:"download_notifications,omitempty"`
	UploadNotifications   *bool   `json:"upload_notifications,omitempty"`
	ProfileVisible        *bool   `json:"profile_visible,omitempty"`
	ShowStats             *bool   `json:"show_stats,omitempty"`
	AllowMessages         *bool   `json:"allow_messages,omitempty"`
	DarkMode              *bool   `json:"dark_mode,omitempty"`
	Language              *string `json:"language,omitempty"`
	AutoDownload          *bool   `json:"auto_download,omitempty"`
}
