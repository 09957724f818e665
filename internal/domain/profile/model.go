// Package profile defines the user profile entity.
package profile

import "time"

// UserProfile is a row of the user_profiles table. Balances and activity
// counters are maintained by backend triggers; the client reads them and
// never writes them directly.
type UserProfile struct {
	ID                   string    `json:"id"`
	Email                string    `json:"email"`
	FullName             string    `json:"full_name"`
	StudentID            string    `json:"student_id"`
	Semester             int       `json:"semester"`
	TotalCoins           int       `json:"total_coins"`
	CoinsEarned          int       `json:"coins_earned"`
	CoinsSpent           int       `json:"coins_spent"`
	UploadedFilesCount   int       `json:"uploaded_files_count"`
	DownloadedFilesCount int       `json:"downloaded_files_count"`
	ProfileVisible       bool      `json:"profile_visible"`
	ShowStats            bool      `json:"show_stats"`
	AllowMessages        bool      `json:"allow_messages"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// BalanceConsistent reports whether total = earned - spent. The backend
// enforces this; the client only uses it as a sanity check.
func (p UserProfile) BalanceConsistent() bool {
	return p.TotalCoins == p.CoinsEarned-p.CoinsSpent
}

// CanAfford reports whether the profile holds at least price coins.
func (p UserProfile) CanAfford(price int) bool {
	return p.TotalCoins >= price
}
