// Package memory is an in-memory implementation of the storage
// interfaces. It is safe for concurrent use and is intended for tests and
// local development. CreateDownload emulates the backend's triggers
// (balance debit, audit row, counters) so workflow tests observe the same
// effects the deployed database produces.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/breez-edu/breez/internal/domain/achievement"
	"github.com/breez-edu/breez/internal/domain/coin"
	"github.com/breez-edu/breez/internal/domain/download"
	"github.com/breez-edu/breez/internal/domain/leaderboard"
	"github.com/breez-edu/breez/internal/domain/profile"
	"github.com/breez-edu/breez/internal/domain/resource"
	"github.com/breez-edu/breez/internal/domain/settings"
	"github.com/breez-edu/breez/internal/storage"
)

// Store is the in-memory store.
type Store struct {
	mu               sync.RWMutex
	nextID           int64
	profiles         map[string]profile.UserProfile
	categories       map[string]resource.Category
	resources        map[string]resource.Resource
	downloads        map[string]download.Download
	downloadPairs    map[string]string // downloader|resource -> download id
	transactions     map[string][]coin.Transaction
	achievements     map[string]achievement.Achievement
	userAchievements map[string][]achievement.UserAchievement
	settings         map[string]settings.Settings
}

var _ storage.ProfileStore = (*Store)(nil)
var _ storage.CategoryStore = (*Store)(nil)
var _ storage.ResourceStore = (*Store)(nil)
var _ storage.DownloadStore = (*Store)(nil)
var _ storage.TransactionStore = (*Store)(nil)
var _ storage.LeaderboardStore = (*Store)(nil)
var _ storage.AchievementStore = (*Store)(nil)
var _ storage.SettingsStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:           1,
		profiles:         make(map[string]profile.UserProfile),
		categories:       make(map[string]resource.Category),
		resources:        make(map[string]resource.Resource),
		downloads:        make(map[string]download.Download),
		downloadPairs:    make(map[string]string),
		transactions:     make(map[string][]coin.Transaction),
		achievements:     make(map[string]achievement.Achievement),
		userAchievements: make(map[string][]achievement.UserAchievement),
		settings:         make(map[string]settings.Settings),
	}
}

func (s *Store) nextIDLocked() string {
	id := s.nextID
	s.nextID++
	return fmt.Sprintf("%d", id)
}

func pairKey(userID, resourceID string) string {
	return userID + "|" + resourceID
}

// Seed helpers --------------------------------------------------------------

// PutProfile inserts or replaces a profile row.
func (s *Store) PutProfile(p profile.UserProfile) profile.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = s.nextIDLocked()
	}
	s.profiles[p.ID] = p
	return p
}

// PutCategory inserts or replaces a category row.
func (s *Store) PutCategory(c resource.Category) resource.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = s.nextIDLocked()
	}
	s.categories[c.ID] = c
	return c
}

// PutAchievement inserts or replaces an achievement definition.
func (s *Store) PutAchievement(a achievement.Achievement) achievement.Achievement {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = s.nextIDLocked()
	}
	s.achievements[a.ID] = a
	return a
}

// PutUserAchievement records an earned achievement.
func (s *Store) PutUserAchievement(ua achievement.UserAchievement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ua.ID == "" {
		ua.ID = s.nextIDLocked()
	}
	s.userAchievements[ua.UserID] = append(s.userAchievements[ua.UserID], ua)
}

// PutSettings inserts or replaces a settings row.
func (s *Store) PutSettings(row settings.Settings) settings.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row.ID == "" {
		row.ID = s.nextIDLocked()
	}
	s.settings[row.UserID] = row
	return row
}

// ProfileStore ---------------------------------------------------------------

func (s *Store) GetProfile(_ context.Context, userID string) (profile.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return profile.UserProfile{}, storage.ErrNotFound
	}
	return p, nil
}

func (s *Store) UpdateProfile(_ context.Context, p profile.UserProfile) (profile.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[p.ID]; !ok {
		return profile.UserProfile{}, storage.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	s.profiles[p.ID] = p
	return p, nil
}

func (s *Store) CheckCoins(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return 0, storage.ErrNotFound
	}
	return p.TotalCoins, nil
}

// CategoryStore --------------------------------------------------------------

func (s *Store) ListCategories(_ context.Context) ([]resource.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]resource.Category, 0, len(s.categories))
	for _, c := range s.categories {
		if c.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ResourceStore --------------------------------------------------------------

func (s *Store) CreateResource(_ context.Context, res resource.Resource) (resource.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if res.ID == "" {
		res.ID = s.nextIDLocked()
	} else if _, exists := s.resources[res.ID]; exists {
		return resource.Resource{}, fmt.Errorf("resource %s already exists", res.ID)
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now()
	}
	res.UpdatedAt = res.CreatedAt
	res.IsActive = true
	s.resources[res.ID] = res

	// Backend trigger emulation: uploads credit the uploader.
	if p, ok := s.profiles[res.UploaderID]; ok {
		p.CoinsEarned += res.CoinPrice
		p.TotalCoins = p.CoinsEarned - p.CoinsSpent
		p.UploadedFilesCount++
		s.profiles[p.ID] = p
		s.transactions[p.ID] = append(s.transactions[p.ID], coin.Transaction{
			ID:              s.nextIDLocked(),
			UserID:          p.ID,
			TransactionType: coin.TypeEarned,
			Amount:          res.CoinPrice,
			Description:     "Uploaded " + res.Title,
			ReferenceID:     res.ID,
			ReferenceType:   coin.RefUpload,
			CreatedAt:       time.Now(),
		})
	}

	return res, nil
}

func (s *Store) ListResources(_ context.Context, f resource.Filter) ([]resource.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []resource.Resource
	for _, res := range s.resources {
		if !res.IsApproved || !res.IsActive {
			continue
		}
		if f.Category != "" && f.Category != "All" {
			if cat, ok := s.categories[res.CategoryID]; !ok || cat.Name != f.Category {
				continue
			}
		}
		if f.FileType != "" && !strings.EqualFold(res.FileType, f.FileType) {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(res.Title), q) &&
				!strings.Contains(strings.ToLower(res.Description), q) {
				continue
			}
		}
		out = append(out, s.joinResourceLocked(res))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].DownloadCount > out[j].DownloadCount })
	return paginate(out, f.Limit, f.Offset), nil
}

func (s *Store) ListUserResources(_ context.Context, userID string) ([]resource.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []resource.Resource
	for _, res := range s.resources {
		if res.UploaderID == userID {
			out = append(out, s.joinResourceLocked(res))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) joinResourceLocked(res resource.Resource) resource.Resource {
	if cat, ok := s.categories[res.CategoryID]; ok {
		res.CategoryName = cat.Name
	}
	if up, ok := s.profiles[res.UploaderID]; ok {
		res.UploaderName = up.FullName
		res.UploaderStudent = up.StudentID
	}
	return res
}

func paginate(rows []resource.Resource, limit, offset int) []resource.Resource {
	if offset > 0 {
		if offset >= len(rows) {
			return nil
		}
		rows = rows[offset:]
	}
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

// DownloadStore --------------------------------------------------------------

func (s *Store) CreateDownload(_ context.Context, d download.Download) (download.Download, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(d.DownloaderID, d.ResourceID)
	if _, exists := s.downloadPairs[key]; exists {
		return download.Download{}, storage.ErrDuplicateDownload
	}

	if d.ID == "" {
		d.ID = s.nextIDLocked()
	}
	if d.DownloadedAt.IsZero() {
		d.DownloadedAt = time.Now()
	}
	s.downloads[d.ID] = d
	s.downloadPairs[key] = d.ID

	// Backend trigger emulation: debit the downloader, bump counters,
	// append the audit row.
	if p, ok := s.profiles[d.DownloaderID]; ok {
		p.CoinsSpent += d.CoinsSpent
		p.TotalCoins = p.CoinsEarned - p.CoinsSpent
		p.DownloadedFilesCount++
		s.profiles[p.ID] = p
		s.transactions[p.ID] = append(s.transactions[p.ID], coin.Transaction{
			ID:              s.nextIDLocked(),
			UserID:          p.ID,
			TransactionType: coin.TypeSpent,
			Amount:          d.CoinsSpent,
			ReferenceID:     d.ResourceID,
			ReferenceType:   coin.RefDownload,
			CreatedAt:       time.Now(),
		})
	}
	if res, ok := s.resources[d.ResourceID]; ok {
		res.DownloadCount++
		s.resources[res.ID] = res
	}

	return d, nil
}

func (s *Store) HasDownloaded(_ context.Context, userID, resourceID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.downloadPairs[pairKey(userID, resourceID)]
	return ok, nil
}

func (s *Store) ListUserDownloads(_ context.Context, userID string) ([]download.Download, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []download.Download
	for _, d := range s.downloads {
		if d.DownloaderID != userID {
			continue
		}
		if res, ok := s.resources[d.ResourceID]; ok {
			d.ResourceTitle = res.Title
			if cat, ok := s.categories[res.CategoryID]; ok {
				d.ResourceCategory = cat.Name
			}
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DownloadedAt.After(out[j].DownloadedAt) })
	return out, nil
}

// TransactionStore -----------------------------------------------------------

func (s *Store) ListTransactions(_ context.Context, userID string, limit int) ([]coin.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := append([]coin.Transaction(nil), s.transactions[userID]...)
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, nil
}

// LeaderboardStore -----------------------------------------------------------

func (s *Store) ListLeaderboard(_ context.Context, limit int) ([]leaderboard.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.rankedLocked()
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *Store) UserRank(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.rankedLocked() {
		if e.ID == userID {
			return e.Rank, nil
		}
	}
	return 0, nil
}

func (s *Store) rankedLocked() []leaderboard.Entry {
	entries := make([]leaderboard.Entry, 0, len(s.profiles))
	for _, p := range s.profiles {
		entries = append(entries, leaderboard.Entry{
			ID:                   p.ID,
			FullName:             p.FullName,
			StudentID:            p.StudentID,
			Semester:             p.Semester,
			TotalCoins:           p.TotalCoins,
			CoinsEarned:          p.CoinsEarned,
			UploadedFilesCount:   p.UploadedFilesCount,
			DownloadedFilesCount: p.DownloadedFilesCount,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].TotalCoins > entries[j].TotalCoins })
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// AchievementStore -----------------------------------------------------------

func (s *Store) ListAchievements(_ context.Context) ([]achievement.Achievement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []achievement.Achievement
	for _, a := range s.achievements {
		if a.IsActive {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequirementValue < out[j].RequirementValue })
	return out, nil
}

func (s *Store) ListUserAchievements(_ context.Context, userID string) ([]achievement.UserAchievement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := append([]achievement.UserAchievement(nil), s.userAchievements[userID]...)
	for i, ua := range rows {
		if def, ok := s.achievements[ua.AchievementID]; ok {
			d := def
			rows[i].Achievement = &d
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].EarnedAt.After(rows[j].EarnedAt) })
	return rows, nil
}

// SettingsStore --------------------------------------------------------------

func (s *Store) GetSettings(_ context.Context, userID string) (settings.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.settings[userID]
	if !ok {
		return settings.Settings{}, storage.ErrNotFound
	}
	return row, nil
}

func (s *Store) UpdateSettings(_ context.Context, userID string, upd settings.Update) (settings.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.settings[userID]
	if !ok {
		return settings.Settings{}, storage.ErrNotFound
	}
	applyUpdate(&row, upd)
	row.UpdatedAt = time.Now()
	s.settings[userID] = row
	return row, nil
}

func applyUpdate(row *settings.Settings, upd settings.Update) {
	if upd.PushNotifications != nil {
		row.PushNotifications = *upd.PushNotifications
	}
	if upd.EmailNotifications != nil {
		row.EmailNotifications = *upd.EmailNotifications
	}
	if upd.DownloadNotifications != nil {
		row.DownloadNotifications = *upd.DownloadNotifications
	}
	if upd.UploadNotifications != nil {
		row.UploadNotifications = *upd.UploadNotifications
	}
	if upd.ProfileVisible != nil {
		row.ProfileVisible = *upd.ProfileVisible
	}
	if upd.ShowStats != nil {
		row.ShowStats = *upd.ShowStats
	}
	if upd.AllowMessages != nil {
		row.AllowMessages = *upd.AllowMessages
	}
	if upd.DarkMode != nil {
		row.DarkMode = *upd.DarkMode
	}
	if upd.Language != nil {
		row.Language = *upd.Language
	}
	if upd.AutoDownload != nil {
		row.AutoDownload = *upd.AutoDownload
	}
}
