package supabase

import (
	"context"
	"errors"
	"fmt"

	"github.com/breez-edu/breez/internal/domain/achievement"
	"github.com/breez-edu/breez/internal/domain/coin"
	"github.com/breez-edu/breez/internal/domain/leaderboard"
	"github.com/breez-edu/breez/internal/domain/settings"
	"github.com/breez-edu/breez/internal/storage"
	"github.com/breez-edu/breez/supabase/client"
)

// Defaults matching the deployed views.
const (
	defaultTransactionLimit = 20
	defaultLeaderboardLimit = 50
)

// TransactionStore -----------------------------------------------------------

func (r *Repository) ListTransactions(ctx context.Context, userID string, limit int) ([]coin.Transaction, error) {
	if limit <= 0 {
		limit = defaultTransactionLimit
	}

	resp, err := r.client.From("coin_transactions").
		Select("*").
		Eq("user_id", userID).
		Order("created_at", false).
		Limit(limit).
		Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if err := resp.Err(); err != nil {
		return nil, mapErr(err)
	}

	var rows []coin.Transaction
	if err := resp.JSON(&rows); err != nil {
		return nil, fmt.Errorf("unmarshal transactions: %w", err)
	}
	return rows, nil
}

// LeaderboardStore -----------------------------------------------------------

func (r *Repository) ListLeaderboard(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}

	// The leaderboard view is ordered by total coins descending with the
	// rank column computed server-side.
	resp, err := r.client.From("leaderboard").
		Select("*").
		Limit(limit).
		Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leaderboard: %w", err)
	}
	if err := resp.Err(); err != nil {
		return nil, mapErr(err)
	}

	var rows []leaderboard.Entry
	if err := resp.JSON(&rows); err != nil {
		return nil, fmt.Errorf("unmarshal leaderboard: %w", err)
	}
	return rows, nil
}

func (r *Repository) UserRank(ctx context.Context, userID string) (int, error) {
	resp, err := r.client.From("leaderboard").
		Select("rank").
		Eq("id", userID).
		Single().
		Execute(ctx)
	if err != nil {
		return 0, fmt.Errorf("get rank: %w", err)
	}
	if err := resp.Err(); err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return 0, nil
		}
		return 0, mapErr(err)
	}

	var row struct {
		Rank int `json:"rank"`
	}
	if err := resp.JSON(&row); err != nil {
		return 0, fmt.Errorf("unmarshal rank: %w", err)
	}
	return row.Rank, nil
}

// AchievementStore -----------------------------------------------------------

func (r *Repository) ListAchievements(ctx context.Context) ([]achievement.Achievement, error) {
	resp, err := r.client.From("achievements").
		Select("*").
		Eq("is_active", true).
		Order("requirement_value", true).
		Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	if err := resp.Err(); err != nil {
		return nil, mapErr(err)
	}

	var rows []achievement.Achievement
	if err := resp.JSON(&rows); err != nil {
		return nil, fmt.Errorf("unmarshal achievements: %w", err)
	}
	return rows, nil
}

func (r *Repository) ListUserAchievements(ctx context.Context, userID string) ([]achievement.UserAchievement, error) {
	resp, err := r.client.From("user_achievements").
		Select("*,achievements(*)").
		Eq("user_id", userID).
		Order("earned_at", false).
		Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("list user achievements: %w", err)
	}
	if err := resp.Err(); err != nil {
		return nil, mapErr(err)
	}

	var rows []struct {
		achievement.UserAchievement
		Achievements *achievement.Achievement `json:"achievements,omitempty"`
	}
	if err := resp.JSON(&rows); err != nil {
		return nil, fmt.Errorf("unmarshal user achievements: %w", err)
	}

	out := make([]achievement.UserAchievement, len(rows))
	for i, row := range rows {
		ua := row.UserAchievement
		ua.Achievement = row.Achievements
		out[i] = ua
	}
	return out, nil
}

// SettingsStore --------------------------------------------------------------

func (r *Repository) GetSettings(ctx context.Context, userID string) (settings.Settings, error) {
	resp, err := r.client.From("user_settings").
		Select("*").
		Eq("user_id", userID).
		Single().
		Execute(ctx)
	if err != nil {
		return settings.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	if err := resp.Err(); err != nil {
		return settings.Settings{}, mapErr(err)
	}

	var row settings.Settings
	if err := resp.JSON(&row); err != nil {
		return settings.Settings{}, fmt.Errorf("unmarshal settings: %w", err)
	}
	return row, nil
}

func (r *Repository) UpdateSettings(ctx context.Context, userID string, upd settings.Update) (settings.Settings, error) {
	resp, err := r.client.From("user_settings").
		Eq("user_id", userID).
		Update(ctx, upd)
	if err != nil {
		return settings.Settings{}, fmt.Errorf("update settings: %w", err)
	}
	if err := resp.Err(); err != nil {
		return settings.Settings{}, mapErr(err)
	}

	var rows []settings.Settings
	if err := resp.JSON(&rows); err != nil {
		return settings.Settings{}, fmt.Errorf("unmarshal settings: %w", err)
	}
	if len(rows) == 0 {
		return settings.Settings{}, storage.ErrNotFound
	}
	return rows[0], nil
}
