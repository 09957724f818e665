// Package achievement defines achievement definitions and per-user earned
// sets.
package achievement

import "time"

// Achievement is a static definition row.
type Achievement struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Icon             string    `json:"icon"`
	Color            string    `json:"color"`
	RequirementType  string    `json:"requirement_type"`
	RequirementValue int       `json:"requirement_value"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
}

// UserAchievement joins a user to an earned achievement.
type UserAchievement struct {
	ID            string       `json:"id"`
	UserID        string       `json:"user_id"`
	AchievementID string       `json:"achievement_id"`
	EarnedAt      time.Time    `json:"earned_at"`
	Achievement   *Achievement `json:"achievement,omitempty"`
}
