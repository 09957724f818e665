package download

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/breez-edu/breez/internal/domain/profile"
	"github.com/breez-edu/breez/internal/domain/resource"
	"github.com/breez-edu/breez/internal/storage/memory"
)

type fakeResolver struct{}

func (fakeResolver) PublicURL(path string) string { return "https://cdn.example/" + path }

type fakeOpener struct {
	mu      sync.Mutex
	failing bool
	opened  []string
}

func (o *fakeOpener) Open(url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.failing {
		return errors.New("no handler for url")
	}
	o.opened = append(o.opened, url)
	return nil
}

// fixture seeds an uploader, a downloader holding 10 coins, and one
// priced resource.
func fixture(t *testing.T) (*memory.Store, resource.Resource) {
	t.Helper()
	store := memory.New()
	store.PutCategory(resource.Category{ID: "cat1", Name: "Notes", IsActive: true})
	store.PutProfile(profile.UserProfile{ID: "uploader"})
	store.PutProfile(profile.UserProfile{ID: "buyer", CoinsEarned: 10, TotalCoins: 10})

	res, err := store.CreateResource(context.Background(), resource.Resource{
		Title:      "Physics Formula Sheet",
		CategoryID: "cat1",
		FileType:   "PDF",
		FileURL:    "123-abc.pdf",
		CoinPrice:  5,
		UploaderID: "uploader",
		IsApproved: true,
	})
	if err != nil {
		t.Fatalf("seed resource: %v", err)
	}
	return store, res
}

func TestDownloadSuccess(t *testing.T) {
	store, res := fixture(t)
	opener := &fakeOpener{}

	var gotUser string
	var gotBalance int
	listener := func(userID string, newBalance int) {
		gotUser, gotBalance = userID, newBalance
	}

	svc := New(store, store, fakeResolver{}, opener, listener, nil)
	result, err := svc.Download(context.Background(), "buyer", res)
	if err != nil {
		t.Fatalf("download: %v", err)
	}

	if result.Download.CoinsSpent != 5 {
		t.Fatalf("coins spent = %d", result.Download.CoinsSpent)
	}
	if result.NewBalance != 5 {
		t.Fatalf("new balance = %d", result.NewBalance)
	}
	if gotUser != "buyer" || gotBalance != 5 {
		t.Fatalf("listener saw %s/%d", gotUser, gotBalance)
	}
	if result.URL != "https://cdn.example/123-abc.pdf" {
		t.Fatalf("url = %q", result.URL)
	}
	if len(opener.opened) != 1 {
		t.Fatalf("opener calls = %d", len(opener.opened))
	}

	// The memory store emulates the backend debit trigger.
	p, _ := store.GetProfile(context.Background(), "buyer")
	if p.TotalCoins != 5 || p.CoinsSpent != 5 || p.DownloadedFilesCount != 1 {
		t.Fatalf("debit not applied: %+v", p)
	}
}

func TestDownloadRequiresAuthentication(t *testing.T) {
	store, res := fixture(t)
	svc := New(store, store, nil, nil, nil, nil)

	_, err := svc.Download(context.Background(), "", res)
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
}

func TestDownloadInsufficientCoinsLeavesNoRow(t *testing.T) {
	store, res := fixture(t)
	store.PutProfile(profile.UserProfile{ID: "poor", CoinsEarned: 2, TotalCoins: 2})
	svc := New(store, store, nil, nil, nil, nil)

	_, err := svc.Download(context.Background(), "poor", res)
	if !errors.Is(err, ErrInsufficientCoins) {
		t.Fatalf("err = %v, want ErrInsufficientCoins", err)
	}
	var insufficient *InsufficientCoinsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("err type = %T", err)
	}
	if insufficient.Required != 5 || insufficient.Available != 2 {
		t.Fatalf("required/available = %d/%d", insufficient.Required, insufficient.Available)
	}

	rows, _ := store.ListUserDownloads(context.Background(), "poor")
	if len(rows) != 0 {
		t.Fatalf("download rows = %d, want 0", len(rows))
	}
	if balance, _ := store.CheckCoins(context.Background(), "poor"); balance != 2 {
		t.Fatalf("balance changed: %d", balance)
	}
}

func TestDownloadTwiceIsRejected(t *testing.T) {
	store, res := fixture(t)
	svc := New(store, store, nil, nil, nil, nil)

	if _, err := svc.Download(context.Background(), "buyer", res); err != nil {
		t.Fatalf("first download: %v", err)
	}
	_, err := svc.Download(context.Background(), "buyer", res)
	if !errors.Is(err, ErrAlreadyDownloaded) {
		t.Fatalf("err = %v, want ErrAlreadyDownloaded", err)
	}

	// Exactly one row, exactly one debit.
	rows, _ := store.ListUserDownloads(context.Background(), "buyer")
	if len(rows) != 1 {
		t.Fatalf("download rows = %d, want 1", len(rows))
	}
	if balance, _ := store.CheckCoins(context.Background(), "buyer"); balance != 5 {
		t.Fatalf("balance = %d, want 5", balance)
	}
}

func TestConcurrentDownloadsChargeOnce(t *testing.T) {
	store, res := fixture(t)
	svc := New(store, store, nil, nil, nil, nil)

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Download(context.Background(), "buyer", res)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrDownloadInFlight), errors.Is(err, ErrAlreadyDownloaded):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("successful downloads = %d, want 1", succeeded)
	}

	rows, _ := store.ListUserDownloads(context.Background(), "buyer")
	if len(rows) != 1 {
		t.Fatalf("download rows = %d, want 1", len(rows))
	}
	if balance, _ := store.CheckCoins(context.Background(), "buyer"); balance != 5 {
		t.Fatalf("balance = %d, want exactly one debit from 10", balance)
	}
}

func TestOpenerFailureIsSoft(t *testing.T) {
	store, res := fixture(t)
	opener := &fakeOpener{failing: true}
	svc := New(store, store, fakeResolver{}, opener, nil, nil)

	result, err := svc.Download(context.Background(), "buyer", res)
	if err != nil {
		t.Fatalf("opener failure must not fail the workflow: %v", err)
	}
	if !result.OpenFailed {
		t.Fatal("OpenFailed not set")
	}
	// The charge stands.
	if balance, _ := store.CheckCoins(context.Background(), "buyer"); balance != 5 {
		t.Fatalf("balance = %d, want 5", balance)
	}
}
