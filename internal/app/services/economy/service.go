// Package economy exposes the coin economy read model: balances, the
// transaction audit trail, leaderboard standings, achievements, and
// per-user settings. All writes to balances happen in backend triggers;
// this service only reads and reconciles.
package economy

import (
	"context"
	"fmt"
	"strings"

	"github.com/breez-edu/breez/internal/domain/achievement"
	"github.com/breez-edu/breez/internal/domain/coin"
	"github.com/breez-edu/breez/internal/domain/leaderboard"
	"github.com/breez-edu/breez/internal/domain/profile"
	"github.com/breez-edu/breez/internal/domain/settings"
	"github.com/breez-edu/breez/internal/storage"
	"github.com/breez-edu/breez/pkg/logger"
)

// Service is the economy read surface.
type Service struct {
	profiles     storage.ProfileStore
	transactions storage.TransactionStore
	standings    storage.LeaderboardStore
	achievements storage.AchievementStore
	settings     storage.SettingsStore
	log          *logger.Logger
}

// New constructs an economy service.
func New(
	profiles storage.ProfileStore,
	transactions storage.TransactionStore,
	standings storage.LeaderboardStore,
	achievements storage.AchievementStore,
	settingsStore storage.SettingsStore,
	log *logger.Logger,
) *Service {
	if log == nil {
		log = logger.NewDefault("economy")
	}
	return &Service{
		profiles:     profiles,
		transactions: transactions,
		standings:    standings,
		achievements: achievements,
		settings:     settingsStore,
		log:          log,
	}
}

// Profile fetches a user profile by id.
func (s *Service) Profile(ctx context.Context, userID string) (profile.UserProfile, error) {
	if strings.TrimSpace(userID) == "" {
		return profile.UserProfile{}, fmt.Errorf("user id is required")
	}
	return s.profiles.GetProfile(ctx, userID)
}

// UpdateProfile writes the client-owned profile columns.
func (s *Service) UpdateProfile(ctx context.Context, p profile.UserProfile) (profile.UserProfile, error) {
	if p.ID == "" {
		return profile.UserProfile{}, fmt.Errorf("profile id is required")
	}
	updated, err := s.profiles.UpdateProfile(ctx, p)
	if err != nil {
		return profile.UserProfile{}, err
	}
	s.log.WithField("user_id", p.ID).Info("profile updated")
	return updated, nil
}

// CheckCoins returns the current coin balance only.
func (s *Service) CheckCoins(ctx context.Context, userID string) (int, error) {
	return s.profiles.CheckCoins(ctx, userID)
}

// Transactions returns the most recent coin movements, newest first.
// limit <= 0 falls back to the store default.
func (s *Service) Transactions(ctx context.Context, userID string, limit int) ([]coin.Transaction, error) {
	return s.transactions.ListTransactions(ctx, userID, limit)
}

// Leaderboard returns the ranked standings. limit <= 0 falls back to the
// store default.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
	return s.standings.ListLeaderboard(ctx, limit)
}

// UserRank returns a user's leaderboard position, 0 when unranked.
func (s *Service) UserRank(ctx context.Context, userID string) (int, error) {
	return s.standings.UserRank(ctx, userID)
}

// Achievements returns all active achievement definitions.
func (s *Service) Achievements(ctx context.Context) ([]achievement.Achievement, error) {
	return s.achievements.ListAchievements(ctx)
}

// UserAchievements returns the achievements a user has earned.
func (s *Service) UserAchievements(ctx context.Context, userID string) ([]achievement.UserAchievement, error) {
	return s.achievements.ListUserAchievements(ctx, userID)
}

// Settings fetches a user's settings row.
func (s *Service) Settings(ctx context.Context, userID string) (settings.Settings, error) {
	return s.settings.GetSettings(ctx, userID)
}

// UpdateSettings applies a partial settings update.
func (s *Service) UpdateSettings(ctx context.Context, userID string, upd settings.Update) (settings.Settings, error) {
	updated, err := s.settings.UpdateSettings(ctx, userID, upd)
	if err != nil {
		return settings.Settings{}, err
	}
	s.log.WithField("user_id", userID).Info("settings updated")
	return updated, nil
}

// VerifyBalanceInvariant checks total = earned - spent on a fetched
// profile. The backend enforces the equality; a violation here means the
// local copy is stale or the read raced a trigger.
func (s *Service) VerifyBalanceInvariant(p profile.UserProfile) error {
	if p.BalanceConsistent() {
		return nil
	}
	return fmt.Errorf("balance mismatch for %s: total=%d earned=%d spent=%d",
		p.ID, p.TotalCoins, p.CoinsEarned, p.CoinsSpent)
}
