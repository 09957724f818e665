package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/breez-edu/breez/internal/domain/download"
	"github.com/breez-edu/breez/internal/domain/profile"
	"github.com/breez-edu/breez/internal/domain/resource"
	"github.com/breez-edu/breez/internal/storage/memory"
)

func seed(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.New()
	store.PutCategory(resource.Category{ID: "cat1", Name: "Notes", IsActive: true})
	store.PutProfile(profile.UserProfile{ID: "u1", FullName: "Karim Ahmed", CoinsEarned: 10, TotalCoins: 10})
	store.PutProfile(profile.UserProfile{ID: "u2"})

	res, err := store.CreateResource(context.Background(), resource.Resource{
		Title:      "Microeconomics Slides",
		CategoryID: "cat1",
		FileType:   "PDF",
		CoinPrice:  5,
		UploaderID: "u2",
		IsApproved: true,
	})
	if err != nil {
		t.Fatalf("seed resource: %v", err)
	}
	if _, err := store.CreateDownload(context.Background(), download.Download{
		ResourceID:   res.ID,
		DownloaderID: "u1",
		CoinsSpent:   5,
	}); err != nil {
		t.Fatalf("seed download: %v", err)
	}

	if _, err := store.CreateResource(context.Background(), resource.Resource{
		Title:      "Own Lab Report Template",
		CategoryID: "cat1",
		FileType:   "DOCX",
		CoinPrice:  4,
		UploaderID: "u1",
		IsApproved: true,
	}); err != nil {
		t.Fatalf("seed own resource: %v", err)
	}
	return store
}

func TestLoadJoinsAllSections(t *testing.T) {
	store := seed(t)
	svc := New(store, store, store, store, nil)

	data, err := svc.Load(context.Background(), "u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if data.Profile.FullName != "Karim Ahmed" {
		t.Fatalf("profile = %+v", data.Profile)
	}
	if len(data.Resources) != 1 {
		t.Fatalf("own resources = %d, want 1", len(data.Resources))
	}
	if len(data.Downloads) != 1 {
		t.Fatalf("downloads = %d, want 1", len(data.Downloads))
	}
	if data.Downloads[0].ResourceTitle != "Microeconomics Slides" {
		t.Fatalf("download join missing: %+v", data.Downloads[0])
	}
	// One debit plus one upload credit.
	if len(data.Transactions) != 2 {
		t.Fatalf("transactions = %d, want 2", len(data.Transactions))
	}
}

type failingProfiles struct{}

func (failingProfiles) GetProfile(context.Context, string) (profile.UserProfile, error) {
	return profile.UserProfile{}, errors.New("profiles unavailable")
}

func (failingProfiles) UpdateProfile(context.Context, profile.UserProfile) (profile.UserProfile, error) {
	return profile.UserProfile{}, errors.New("profiles unavailable")
}

func (failingProfiles) CheckCoins(context.Context, string) (int, error) {
	return 0, errors.New("profiles unavailable")
}

func TestLoadReturnsPartialDataWithError(t *testing.T) {
	store := seed(t)
	svc := New(failingProfiles{}, store, store, store, nil)

	data, err := svc.Load(context.Background(), "u1")
	if err == nil {
		t.Fatal("expected error from failing profile fetch")
	}
	// The other sections still arrive.
	if len(data.Downloads) != 1 || len(data.Resources) != 1 {
		t.Fatalf("partial data missing: %+v", data)
	}
}
