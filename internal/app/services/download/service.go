// Package download implements the paid download workflow with its
// ordered preconditions and single-charge guarantee.
package download

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/breez-edu/breez/internal/domain/download"
	"github.com/breez-edu/breez/internal/domain/resource"
	"github.com/breez-edu/breez/internal/metrics"
	"github.com/breez-edu/breez/internal/storage"
	"github.com/breez-edu/breez/pkg/logger"
)

var (
	// ErrNotAuthenticated reports a download attempt without a signed-in
	// user.
	ErrNotAuthenticated = errors.New("download: not authenticated")

	// ErrAlreadyDownloaded reports that the user already paid for this
	// resource.
	ErrAlreadyDownloaded = errors.New("download: resource already downloaded")

	// ErrInsufficientCoins is the errors.Is target for
	// InsufficientCoinsError.
	ErrInsufficientCoins = errors.New("download: insufficient coins")

	// ErrDownloadInFlight reports a concurrent download of the same
	// resource by the same workflow instance.
	ErrDownloadInFlight = errors.New("download: already in progress")

	// ErrDownloadFailed wraps a failed download record insert. No coins
	// were spent.
	ErrDownloadFailed = errors.New("download: could not record download")
)

// InsufficientCoinsError carries the price against the balance.
type InsufficientCoinsError struct {
	Required  int
	Available int
}

func (e *InsufficientCoinsError) Error() string {
	return fmt.Sprintf("download: need %d coins, have %d", e.Required, e.Available)
}

func (e *InsufficientCoinsError) Is(target error) bool {
	return target == ErrInsufficientCoins
}

// URLResolver turns a stored object path into a shareable URL.
type URLResolver interface {
	PublicURL(path string) string
}

// Opener hands the resolved URL to the platform. A failing opener is a
// soft outcome, not a workflow failure: the charge already stands.
type Opener interface {
	Open(url string) error
}

// BalanceListener observes the optimistic local balance after a
// successful charge, before the backend trigger result is re-fetched.
type BalanceListener func(userID string, newBalance int)

// Result is a completed download.
type Result struct {
	Download   download.Download
	URL        string
	NewBalance int
	OpenFailed bool
}

// Service runs the download workflow.
type Service struct {
	profiles  storage.ProfileStore
	downloads storage.DownloadStore
	resolver  URLResolver
	opener    Opener
	listener  BalanceListener
	log       *logger.Logger

	mu       sync.Mutex
	inFlight map[string]bool
}

// New constructs a download service. resolver, opener, and listener may
// be nil; the corresponding steps are then skipped.
func New(profiles storage.ProfileStore, downloads storage.DownloadStore, resolver URLResolver, opener Opener, listener BalanceListener, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("download")
	}
	return &Service{
		profiles:  profiles,
		downloads: downloads,
		resolver:  resolver,
		opener:    opener,
		listener:  listener,
		log:       log,
		inFlight:  make(map[string]bool),
	}
}

// Download charges the user for the resource and opens it. Preconditions
// are checked in order: authentication, balance, prior download. The
// backend's unique (downloader, resource) index is the final arbiter, so
// a race past the precondition checks still produces exactly one row and
// one debit.
func (s *Service) Download(ctx context.Context, userID string, res resource.Resource) (Result, error) {
	if userID == "" {
		metrics.RecordDownload("not_authenticated", 0)
		return Result{}, ErrNotAuthenticated
	}

	if !s.acquire(res.ID) {
		metrics.RecordDownload("in_flight", 0)
		return Result{}, ErrDownloadInFlight
	}
	defer s.release(res.ID)

	available, err := s.profiles.CheckCoins(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("check balance: %w", err)
	}
	if available < res.CoinPrice {
		metrics.RecordDownload("insufficient_coins", 0)
		return Result{}, &InsufficientCoinsError{Required: res.CoinPrice, Available: available}
	}

	downloaded, err := s.downloads.HasDownloaded(ctx, userID, res.ID)
	if err != nil {
		return Result{}, fmt.Errorf("check prior download: %w", err)
	}
	if downloaded {
		metrics.RecordDownload("already_downloaded", 0)
		return Result{}, ErrAlreadyDownloaded
	}

	row, err := s.downloads.CreateDownload(ctx, download.Download{
		ResourceID:   res.ID,
		DownloaderID: userID,
		CoinsSpent:   res.CoinPrice,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateDownload) {
			metrics.RecordDownload("already_downloaded", 0)
			return Result{}, ErrAlreadyDownloaded
		}
		metrics.RecordDownload("failed", 0)
		return Result{}, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	result := Result{
		Download:   row,
		NewBalance: available - res.CoinPrice,
	}
	if s.listener != nil {
		// Optimistic: the authoritative balance arrives with the next
		// profile fetch.
		s.listener(userID, result.NewBalance)
	}
	if s.resolver != nil {
		result.URL = s.resolver.PublicURL(res.FileURL)
	}
	if s.opener != nil && result.URL != "" {
		if err := s.opener.Open(result.URL); err != nil {
			s.log.WithError(err).WithField("resource_id", res.ID).Warn("open after download failed")
			result.OpenFailed = true
		}
	}

	metrics.RecordDownload("success", res.CoinPrice)
	s.log.WithField("resource_id", res.ID).
		WithField("user_id", userID).
		WithField("coins_spent", res.CoinPrice).
		Info("resource downloaded")
	return result, nil
}

func (s *Service) acquire(resourceID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[resourceID] {
		return false
	}
	s.inFlight[resourceID] = true
	return true
}

func (s *Service) release(resourceID string) {
	s.mu.Lock()
	delete(s.inFlight, resourceID)
	s.mu.Unlock()
}
