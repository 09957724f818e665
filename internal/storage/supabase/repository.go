// Package supabase implements the storage interfaces against the
// backend's PostgREST surface, shaping queries the way the deployed
// database expects and flattening foreign-table embeds into the domain
// structs.
package supabase

import (
	"context"
	"errors"
	"fmt"

	"github.com/breez-edu/breez/internal/domain/profile"
	"github.com/breez-edu/breez/internal/domain/resource"
	"github.com/breez-edu/breez/internal/storage"
	"github.com/breez-edu/breez/supabase/client"
)

// Postgres unique_violation; PostgREST forwards it on duplicate inserts.
const codeUniqueViolation = "23505"

// Repository provides data access over a Supabase client. It implements
// every interface in the storage package.
type Repository struct {
	client *client.Client
}

var _ storage.ProfileStore = (*Repository)(nil)
var _ storage.CategoryStore = (*Repository)(nil)
var _ storage.ResourceStore = (*Repository)(nil)
var _ storage.DownloadStore = (*Repository)(nil)
var _ storage.TransactionStore = (*Repository)(nil)
var _ storage.LeaderboardStore = (*Repository)(nil)
var _ storage.AchievementStore = (*Repository)(nil)
var _ storage.SettingsStore = (*Repository)(nil)

// NewRepository creates a repository over the given client.
func NewRepository(c *client.Client) *Repository {
	return &Repository{client: c}
}

// mapErr converts client-level errors to storage-level sentinels where a
// sentinel exists, passing everything else through untouched.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, client.ErrNotFound) {
		return storage.ErrNotFound
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Code == codeUniqueViolation {
		return storage.ErrDuplicateDownload
	}
	return err
}

// ProfileStore ---------------------------------------------------------------

func (r *Repository) GetProfile(ctx context.Context, userID string) (profile.UserProfile, error) {
	resp, err := r.client.From("user_profiles").
		Select("*").
		Eq("id", userID).
		Single().
		Execute(ctx)
	if err != nil {
		return profile.UserProfile{}, fmt.Errorf("get profile: %w", err)
	}
	if err := resp.Err(); err != nil {
		return profile.UserProfile{}, mapErr(err)
	}

	var p profile.UserProfile
	if err := resp.JSON(&p); err != nil {
		return profile.UserProfile{}, fmt.Errorf("unmarshal profile: %w", err)
	}
	return p, nil
}

func (r *Repository) UpdateProfile(ctx context.Context, p profile.UserProfile) (profile.UserProfile, error) {
	if p.ID == "" {
		return profile.UserProfile{}, fmt.Errorf("profile id cannot be empty")
	}

	// Only client-owned columns; balances and counters belong to the
	// backend's triggers.
	updates := map[string]any{
		"full_name":       p.FullName,
		"student_id":      p.StudentID,
		"semester":        p.Semester,
		"profile_visible": p.ProfileVisible,
		"show_stats":      p.ShowStats,
		"allow_messages":  p.AllowMessages,
	}

	resp, err := r.client.From("user_profiles").
		Eq("id", p.ID).
		Update(ctx, updates)
	if err != nil {
		return profile.UserProfile{}, fmt.Errorf("update profile: %w", err)
	}
	if err := resp.Err(); err != nil {
		return profile.UserProfile{}, mapErr(err)
	}

	var rows []profile.UserProfile
	if err := resp.JSON(&rows); err != nil {
		return profile.UserProfile{}, fmt.Errorf("unmarshal profile: %w", err)
	}
	if len(rows) == 0 {
		return profile.UserProfile{}, storage.ErrNotFound
	}
	return rows[0], nil
}

func (r *Repository) CheckCoins(ctx context.Context, userID string) (int, error) {
	resp, err := r.client.From("user_profiles").
		Select("total_coins").
		Eq("id", userID).
		Single().
		Execute(ctx)
	if err != nil {
		return 0, fmt.Errorf("check coins: %w", err)
	}
	if err := resp.Err(); err != nil {
		return 0, mapErr(err)
	}

	var row struct {
		TotalCoins int `json:"total_coins"`
	}
	if err := resp.JSON(&row); err != nil {
		return 0, fmt.Errorf("unmarshal coins: %w", err)
	}
	return row.TotalCoins, nil
}

// CategoryStore --------------------------------------------------------------

func (r *Repository) ListCategories(ctx context.Context) ([]resource.Category, error) {
	resp, err := r.client.From("categories").
		Select("*").
		Eq("is_active", true).
		Order("name", true).
		Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if err := resp.Err(); err != nil {
		return nil, mapErr(err)
	}

	var rows []resource.Category
	if err := resp.JSON(&rows); err != nil {
		return nil, fmt.Errorf("unmarshal categories: %w", err)
	}
	return rows, nil
}
