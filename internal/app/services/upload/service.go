// Package upload implements the resource submission workflow: category
// resolution, blob staging, pricing, and record creation.
package upload

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/breez-edu/breez/internal/domain/resource"
	"github.com/breez-edu/breez/internal/metrics"
	"github.com/breez-edu/breez/internal/pricing"
	"github.com/breez-edu/breez/internal/storage"
	"github.com/breez-edu/breez/pkg/logger"
	"github.com/breez-edu/breez/supabase/client"
)

// ErrInvalidCategory reports a category name with no active taxonomy row.
var ErrInvalidCategory = errors.New("upload: unknown category")

// ErrUploadFailed reports a blob staging failure.
var ErrUploadFailed = errors.New("upload: storage upload failed")

// ObjectStore is the blob surface the workflow stages files into.
type ObjectStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
	PublicURL(path string) string
}

// NewBucketObjects adapts a storage bucket to the ObjectStore surface.
func NewBucketObjects(b *client.BucketClient) ObjectStore {
	return bucketObjects{bucket: b}
}

type bucketObjects struct {
	bucket *client.BucketClient
}

func (o bucketObjects) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	return o.bucket.Upload(ctx, path, data, contentType)
}

func (o bucketObjects) PublicURL(path string) string {
	return o.bucket.GetPublicURL(path)
}

// File is the binary payload of a real upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Request describes one submission. A nil File selects the simulated
// source: no blob is staged, but a real resource record is still created.
type Request struct {
	UploaderID  string
	Title       string
	Description string
	Category    string
	FileType    string
	File        *File
}

// ProgressFunc receives checkpoint percentages. Reports are monotonic and
// stop where they are on failure.
type ProgressFunc func(percent int)

// Result is a completed submission.
type Result struct {
	Resource  resource.Resource
	PublicURL string
	Simulated bool
}

// Service runs the submission workflow.
type Service struct {
	categories storage.CategoryStore
	resources  storage.ResourceStore
	objects    ObjectStore
	log        *logger.Logger

	// simDelay paces the simulated source; shortened in tests.
	simDelay time.Duration
	now      func() time.Time
}

// New constructs an upload service.
func New(categories storage.CategoryStore, resources storage.ResourceStore, objects ObjectStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("upload")
	}
	return &Service{
		categories: categories,
		resources:  resources,
		objects:    objects,
		log:        log,
		simDelay:   time.Second,
		now:        time.Now,
	}
}

// Submit stages the file, prices it, and creates the resource record.
// Uploads are auto-approved; coin credits happen in backend triggers, not
// here. When the record insert fails after a successful blob stage the
// blob is left in place.
func (s *Service) Submit(ctx context.Context, req Request, progress ProgressFunc) (Result, error) {
	start := s.now()
	track := &progressTracker{fn: progress}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Category = strings.TrimSpace(req.Category)
	req.FileType = strings.TrimSpace(req.FileType)
	if req.UploaderID == "" {
		return Result{}, fmt.Errorf("uploader id is required")
	}
	if req.Title == "" {
		return Result{}, fmt.Errorf("title is required")
	}

	cat, err := s.resolveCategory(ctx, req.Category)
	if err != nil {
		metrics.RecordUpload(req.FileType, "invalid_category", 0, 0)
		return Result{}, err
	}
	track.report(25)

	var src source
	if req.File != nil {
		src = fileSource{objects: s.objects, file: req.File}
	} else {
		src = simulatedSource{delay: s.simDelay}
	}

	path, size, err := src.stage(ctx, s.objectName(req), track)
	if err != nil {
		metrics.RecordUpload(req.FileType, "upload_failed", 0, 0)
		return Result{}, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	track.report(50)

	price := pricing.CoinPrice(req.FileType, size)
	track.report(75)

	created, err := s.resources.CreateResource(ctx, resource.Resource{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  cat.ID,
		FileType:    req.FileType,
		FileURL:     path,
		FileSize:    size,
		CoinPrice:   price,
		UploaderID:  req.UploaderID,
		IsApproved:  true,
		IsActive:    true,
		Tags:        titleTags(req.Title),
	})
	if err != nil {
		metrics.RecordUpload(req.FileType, "record_failed", 0, 0)
		return Result{}, fmt.Errorf("create resource record: %w", err)
	}
	track.report(100)

	metrics.RecordUpload(req.FileType, "success", s.now().Sub(start), created.CoinPrice)
	s.log.WithField("resource_id", created.ID).
		WithField("uploader_id", req.UploaderID).
		WithField("coin_price", created.CoinPrice).
		Info("resource uploaded")

	result := Result{
		Resource:  created,
		Simulated: req.File == nil,
	}
	if req.File != nil {
		result.PublicURL = s.objects.PublicURL(path)
	}
	return result, nil
}

func (s *Service) resolveCategory(ctx context.Context, name string) (resource.Category, error) {
	if name == "" {
		return resource.Category{}, ErrInvalidCategory
	}
	cats, err := s.categories.ListCategories(ctx)
	if err != nil {
		return resource.Category{}, fmt.Errorf("list categories: %w", err)
	}
	for _, c := range cats {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return resource.Category{}, fmt.Errorf("%w: %q", ErrInvalidCategory, name)
}

// objectName builds `<unix-millis>-<token>.<ext>` for the staged blob.
func (s *Service) objectName(req Request) string {
	token := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%d-%s.%s", s.now().UnixMilli(), token, extFor(req))
}

func extFor(req Request) string {
	if req.File != nil {
		if ext := strings.TrimPrefix(filepath.Ext(req.File.Name), "."); ext != "" {
			return strings.ToLower(ext)
		}
	}
	switch strings.ToLower(req.FileType) {
	case "pdf":
		return "pdf"
	case "doc":
		return "doc"
	case "docx":
		return "docx"
	case "png":
		return "png"
	case "image", "jpg", "jpeg":
		return "jpg"
	default:
		return "bin"
	}
}

// titleTags derives search tags from the title: words longer than two
// characters, lower-cased.
func titleTags(title string) []string {
	var tags []string
	for _, word := range strings.Fields(title) {
		if len(word) > 2 {
			tags = append(tags, strings.ToLower(word))
		}
	}
	return tags
}

type progressTracker struct {
	fn   ProgressFunc
	last int
}

func (t *progressTracker) report(pct int) {
	if t.fn == nil || pct <= t.last {
		return
	}
	t.last = pct
	t.fn(pct)
}

// source stages the submission payload and reports its final path and
// size.
type source interface {
	stage(ctx context.Context, objectName string, track *progressTracker) (path string, size int64, err error)
}

type fileSource struct {
	objects ObjectStore
	file    *File
}

func (f fileSource) stage(ctx context.Context, objectName string, track *progressTracker) (string, int64, error) {
	path, err := f.objects.Upload(ctx, objectName, f.file.Data, f.file.ContentType)
	if err != nil {
		return "", 0, err
	}
	return path, int64(len(f.file.Data)), nil
}

// simulatedSource mimics a staged upload for devices that hand over no
// file handle: two pacing delays, a fabricated plausible size, and a
// mock path. The resource record it feeds is real.
type simulatedSource struct {
	delay time.Duration
}

func (m simulatedSource) stage(ctx context.Context, objectName string, track *progressTracker) (string, int64, error) {
	if err := m.pause(ctx); err != nil {
		return "", 0, err
	}
	track.report(40)
	if err := m.pause(ctx); err != nil {
		return "", 0, err
	}

	size := int64(100_000 + rand.Intn(900_000))
	path := "mock-" + objectName
	return path, size, nil
}

func (m simulatedSource) pause(ctx context.Context) error {
	timer := time.NewTimer(m.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
