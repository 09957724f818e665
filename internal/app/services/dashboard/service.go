// Package dashboard assembles the home-screen data set in one parallel
// fan-out.
package dashboard

import (
	"context"
	"sync"

	"github.com/breez-edu/breez/internal/domain/coin"
	"github.com/breez-edu/breez/internal/domain/download"
	"github.com/breez-edu/breez/internal/domain/profile"
	"github.com/breez-edu/breez/internal/domain/resource"
	"github.com/breez-edu/breez/internal/storage"
	"github.com/breez-edu/breez/pkg/logger"
)

// Data is everything the dashboard shows. Fields that failed to load are
// zero-valued; the accompanying error says which fetch failed first.
type Data struct {
	Profile      profile.UserProfile
	Resources    []resource.Resource
	Downloads    []download.Download
	Transactions []coin.Transaction
}

// Service loads the dashboard.
type Service struct {
	profiles     storage.ProfileStore
	resources    storage.ResourceStore
	downloads    storage.DownloadStore
	transactions storage.TransactionStore
	log          *logger.Logger
}

// New constructs a dashboard service.
func New(profiles storage.ProfileStore, resources storage.ResourceStore, downloads storage.DownloadStore, transactions storage.TransactionStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("dashboard")
	}
	return &Service{
		profiles:     profiles,
		resources:    resources,
		downloads:    downloads,
		transactions: transactions,
		log:          log,
	}
}

// Load fetches the profile, the user's uploads, their downloads, and
// recent coin transactions concurrently, joining once all four resolve.
// Partial data is returned alongside the first error so the caller can
// render what arrived.
func (s *Service) Load(ctx context.Context, userID string) (Data, error) {
	var (
		data Data
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		p, err := s.profiles.GetProfile(ctx, userID)
		if err != nil {
			fail(err)
			return
		}
		data.Profile = p
	}()
	go func() {
		defer wg.Done()
		rows, err := s.resources.ListUserResources(ctx, userID)
		if err != nil {
			fail(err)
			return
		}
		data.Resources = rows
	}()
	go func() {
		defer wg.Done()
		rows, err := s.downloads.ListUserDownloads(ctx, userID)
		if err != nil {
			fail(err)
			return
		}
		data.Downloads = rows
	}()
	go func() {
		defer wg.Done()
		rows, err := s.transactions.ListTransactions(ctx, userID, 0)
		if err != nil {
			fail(err)
			return
		}
		data.Transactions = rows
	}()
	wg.Wait()

	if len(errs) > 0 {
		s.log.WithError(errs[0]).Warn("dashboard load incomplete")
		return data, errs[0]
	}
	return data, nil
}
