package economy

import (
	"context"
	"errors"
	"testing"

	"github.com/breez-edu/breez/internal/domain/achievement"
	"github.com/breez-edu/breez/internal/domain/profile"
	"github.com/breez-edu/breez/internal/domain/settings"
	"github.com/breez-edu/breez/internal/storage"
	"github.com/breez-edu/breez/internal/storage/memory"
)

func newService(store *memory.Store) *Service {
	return New(store, store, store, store, store, nil)
}

func TestProfileRequiresUserID(t *testing.T) {
	svc := newService(memory.New())
	if _, err := svc.Profile(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank user id")
	}
}

func TestProfileNotFound(t *testing.T) {
	svc := newService(memory.New())
	_, err := svc.Profile(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLeaderboardAndRank(t *testing.T) {
	store := memory.New()
	store.PutProfile(profile.UserProfile{ID: "a", CoinsEarned: 30, TotalCoins: 30})
	store.PutProfile(profile.UserProfile{ID: "b", CoinsEarned: 50, TotalCoins: 50})
	store.PutProfile(profile.UserProfile{ID: "c", CoinsEarned: 10, TotalCoins: 10})
	svc := newService(store)

	entries, err := svc.Leaderboard(context.Background(), 2)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "b" || entries[0].Rank != 1 {
		t.Fatalf("entries = %+v", entries)
	}

	rank, err := svc.UserRank(context.Background(), "c")
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if rank != 3 {
		t.Fatalf("rank = %d, want 3", rank)
	}

	rank, err = svc.UserRank(context.Background(), "nobody")
	if err != nil || rank != 0 {
		t.Fatalf("unranked user: rank=%d err=%v", rank, err)
	}
}

func TestVerifyBalanceInvariant(t *testing.T) {
	svc := newService(memory.New())

	ok := profile.UserProfile{ID: "u", TotalCoins: 7, CoinsEarned: 12, CoinsSpent: 5}
	if err := svc.VerifyBalanceInvariant(ok); err != nil {
		t.Fatalf("consistent profile rejected: %v", err)
	}

	stale := profile.UserProfile{ID: "u", TotalCoins: 9, CoinsEarned: 12, CoinsSpent: 5}
	if err := svc.VerifyBalanceInvariant(stale); err == nil {
		t.Fatal("inconsistent profile accepted")
	}
}

func TestAchievements(t *testing.T) {
	store := memory.New()
	store.PutAchievement(achievement.Achievement{ID: "a1", Name: "First Upload", RequirementValue: 1, IsActive: true})
	store.PutAchievement(achievement.Achievement{ID: "a2", Name: "Power Uploader", RequirementValue: 10, IsActive: true})
	store.PutAchievement(achievement.Achievement{ID: "a3", Name: "Retired", RequirementValue: 5, IsActive: false})
	store.PutUserAchievement(achievement.UserAchievement{UserID: "u1", AchievementID: "a1"})
	svc := newService(store)

	defs, err := svc.Achievements(context.Background())
	if err != nil {
		t.Fatalf("achievements: %v", err)
	}
	if len(defs) != 2 || defs[0].ID != "a1" {
		t.Fatalf("defs = %+v", defs)
	}

	earned, err := svc.UserAchievements(context.Background(), "u1")
	if err != nil {
		t.Fatalf("user achievements: %v", err)
	}
	if len(earned) != 1 || earned[0].Achievement == nil || earned[0].Achievement.Name != "First Upload" {
		t.Fatalf("earned = %+v", earned)
	}
}

func TestUpdateSettingsPartial(t *testing.T) {
	store := memory.New()
	store.PutSettings(settings.Settings{UserID: "u1", PushNotifications: true, ShowStats: true})
	svc := newService(store)

	off := false
	updated, err := svc.UpdateSettings(context.Background(), "u1", settings.Update{PushNotifications: &off})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.PushNotifications {
		t.Fatal("push notifications still on")
	}
	if !updated.ShowStats {
		t.Fatal("untouched field changed")
	}
}
