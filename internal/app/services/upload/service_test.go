package upload

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/breez-edu/breez/internal/domain/profile"
	"github.com/breez-edu/breez/internal/domain/resource"
	"github.com/breez-edu/breez/internal/storage/memory"
)

type fakeObjects struct {
	failWith error
	uploads  []string
}

func (f *fakeObjects) Upload(_ context.Context, path string, data []byte, contentType string) (string, error) {
	if f.failWith != nil {
		return "", f.failWith
	}
	f.uploads = append(f.uploads, path)
	return path, nil
}

func (f *fakeObjects) PublicURL(path string) string {
	return "https://cdn.example/" + path
}

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.New()
	store.PutCategory(resource.Category{ID: "cat-notes", Name: "Notes", IsActive: true})
	store.PutProfile(profile.UserProfile{ID: "u1", FullName: "Rahim Uddin", StudentID: "EDU123456"})
	return store
}

func collectProgress(dst *[]int) ProgressFunc {
	return func(pct int) { *dst = append(*dst, pct) }
}

func TestSubmitRealFile(t *testing.T) {
	store := seedStore(t)
	objects := &fakeObjects{}
	svc := New(store, store, objects, nil)

	var progress []int
	res, err := svc.Submit(context.Background(), Request{
		UploaderID:  "u1",
		Title:       "Calculus II Midterm Notes",
		Description: "chapter 4 to 7",
		Category:    "Notes",
		FileType:    "PDF",
		File:        &File{Name: "midterm.pdf", ContentType: "application/pdf", Data: make([]byte, 2048)},
	}, collectProgress(&progress))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if res.Simulated {
		t.Fatal("real file marked simulated")
	}
	if res.Resource.CoinPrice != 5 {
		t.Fatalf("coin price = %d, want 5", res.Resource.CoinPrice)
	}
	if !res.Resource.IsApproved {
		t.Fatal("upload not auto-approved")
	}
	if !strings.HasSuffix(res.Resource.FileURL, ".pdf") {
		t.Fatalf("object path = %q", res.Resource.FileURL)
	}
	if len(objects.uploads) != 1 {
		t.Fatalf("uploads staged = %d", len(objects.uploads))
	}
	if res.PublicURL == "" {
		t.Fatal("public url not resolved")
	}

	want := []int{25, 50, 75, 100}
	if len(progress) != len(want) {
		t.Fatalf("progress = %v, want %v", progress, want)
	}
	for i, pct := range want {
		if progress[i] != pct {
			t.Fatalf("progress = %v, want %v", progress, want)
		}
	}

	// The backend trigger credits the uploader; the memory store emulates it.
	p, err := store.GetProfile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if p.TotalCoins != 5 || p.UploadedFilesCount != 1 {
		t.Fatalf("uploader not credited: coins=%d uploads=%d", p.TotalCoins, p.UploadedFilesCount)
	}
}

func TestSubmitSimulatedSource(t *testing.T) {
	store := seedStore(t)
	svc := New(store, store, &fakeObjects{}, nil)
	svc.simDelay = time.Millisecond

	var progress []int
	res, err := svc.Submit(context.Background(), Request{
		UploaderID: "u1",
		Title:      "Data Structures Lab Manual",
		Category:   "notes", // case-insensitive match
		FileType:   "DOCX",
	}, collectProgress(&progress))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if !res.Simulated {
		t.Fatal("nil file should use the simulated source")
	}
	if !strings.HasPrefix(res.Resource.FileURL, "mock-") {
		t.Fatalf("mock path = %q", res.Resource.FileURL)
	}
	if res.Resource.FileSize < 100_000 || res.Resource.FileSize >= 1_000_000 {
		t.Fatalf("fabricated size out of range: %d", res.Resource.FileSize)
	}
	for i := 1; i < len(progress); i++ {
		if progress[i] <= progress[i-1] {
			t.Fatalf("progress not monotonic: %v", progress)
		}
	}
	if progress[len(progress)-1] != 100 {
		t.Fatalf("progress did not complete: %v", progress)
	}
}

func TestSubmitUnknownCategory(t *testing.T) {
	store := seedStore(t)
	svc := New(store, store, &fakeObjects{}, nil)

	_, err := svc.Submit(context.Background(), Request{
		UploaderID: "u1",
		Title:      "Misfiled Notes",
		Category:   "Cooking",
		FileType:   "PDF",
	}, nil)
	if !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("err = %v, want ErrInvalidCategory", err)
	}
}

func TestProgressAbandonedOnFailure(t *testing.T) {
	store := seedStore(t)
	objects := &fakeObjects{failWith: errors.New("bucket unavailable")}
	svc := New(store, store, objects, nil)

	var progress []int
	_, err := svc.Submit(context.Background(), Request{
		UploaderID: "u1",
		Title:      "Broken Upload",
		Category:   "Notes",
		FileType:   "PDF",
		File:       &File{Name: "x.pdf", Data: []byte("x")},
	}, collectProgress(&progress))
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("err = %v, want ErrUploadFailed", err)
	}

	// The bar stays where it was, never reset.
	if len(progress) == 0 || progress[len(progress)-1] != 25 {
		t.Fatalf("progress = %v, want to stop at 25", progress)
	}

	// No record was created for the failed stage.
	rows, err := store.ListUserResources(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("unexpected resource rows: %d", len(rows))
	}
}

func TestTitleTags(t *testing.T) {
	tags := titleTags("An Intro to Go II")
	if len(tags) != 1 || tags[0] != "intro" {
		t.Fatalf("tags = %v, want [intro]", tags)
	}
}
