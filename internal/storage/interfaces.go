// Package storage defines the persistence interfaces consumed by the
// services. The supabase subpackage implements them against the backend;
// the memory subpackage implements them for tests and local development.
package storage

import (
	"context"
	"errors"

	"github.com/breez-edu/breez/internal/domain/achievement"
	"github.com/breez-edu/breez/internal/domain/coin"
	"github.com/breez-edu/breez/internal/domain/download"
	"github.com/breez-edu/breez/internal/domain/leaderboard"
	"github.com/breez-edu/breez/internal/domain/profile"
	"github.com/breez-edu/breez/internal/domain/resource"
	"github.com/breez-edu/breez/internal/domain/settings"
)

// ErrNotFound reports that the requested row does not exist.
var ErrNotFound = errors.New("storage: not found")

// ErrDuplicateDownload reports a unique (downloader, resource) violation.
var ErrDuplicateDownload = errors.New("storage: resource already downloaded")

// ProfileStore reads and updates user profiles.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (profile.UserProfile, error)
	UpdateProfile(ctx context.Context, p profile.UserProfile) (profile.UserProfile, error)
	// CheckCoins returns only the current coin total.
	CheckCoins(ctx context.Context, userID string) (int, error)
}

// CategoryStore lists the fixed taxonomy.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]resource.Category, error)
}

// ResourceStore persists resource records.
type ResourceStore interface {
	CreateResource(ctx context.Context, res resource.Resource) (resource.Resource, error)
	ListResources(ctx context.Context, f resource.Filter) ([]resource.Resource, error)
	ListUserResources(ctx context.Context, userID string) ([]resource.Resource, error)
}

// DownloadStore persists download join records.
type DownloadStore interface {
	// CreateDownload fails with ErrDuplicateDownload when the
	// (downloader, resource) pair already exists.
	CreateDownload(ctx context.Context, d download.Download) (download.Download, error)
	HasDownloaded(ctx context.Context, userID, resourceID string) (bool, error)
	ListUserDownloads(ctx context.Context, userID string) ([]download.Download, error)
}

// TransactionStore reads the coin audit trail.
type TransactionStore interface {
	ListTransactions(ctx context.Context, userID string, limit int) ([]coin.Transaction, error)
}

// LeaderboardStore reads the ranked standings view.
type LeaderboardStore interface {
	ListLeaderboard(ctx context.Context, limit int) ([]leaderboard.Entry, error)
	// UserRank returns 0 when the user has no leaderboard row.
	UserRank(ctx context.Context, userID string) (int, error)
}

// AchievementStore reads achievement definitions and earned sets.
type AchievementStore interface {
	ListAchievements(ctx context.Context) ([]achievement.Achievement, error)
	ListUserAchievements(ctx context.Context, userID string) ([]achievement.UserAchievement, error)
}

// SettingsStore reads and updates per-user settings.
type SettingsStore interface {
	GetSettings(ctx context.Context, userID string) (settings.Settings, error)
	UpdateSettings(ctx context.Context, userID string, upd settings.Update) (settings.Settings, error)
}
