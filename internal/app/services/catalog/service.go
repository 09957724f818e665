// Package catalog serves resource listings and the category taxonomy.
package catalog

import (
	"context"
	"strings"

	"github.com/breez-edu/breez/internal/domain/resource"
	"github.com/breez-edu/breez/internal/storage"
	"github.com/breez-edu/breez/pkg/logger"
)

// Service answers browse and search queries over approved resources.
type Service struct {
	categories storage.CategoryStore
	resources  storage.ResourceStore
	log        *logger.Logger
}

// New constructs a catalog service.
func New(categories storage.CategoryStore, resources storage.ResourceStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("catalog")
	}
	return &Service{
		categories: categories,
		resources:  resources,
		log:        log,
	}
}

// Categories returns the active taxonomy.
func (s *Service) Categories(ctx context.Context) ([]resource.Category, error) {
	return s.categories.ListCategories(ctx)
}

// Resources lists approved, active resources. The "All" category and
// surrounding whitespace are normalized away before the query is shaped.
func (s *Service) Resources(ctx context.Context, f resource.Filter) ([]resource.Resource, error) {
	f.Category = strings.TrimSpace(f.Category)
	if strings.EqualFold(f.Category, "All") {
		f.Category = ""
	}
	f.Search = strings.TrimSpace(f.Search)
	return s.resources.ListResources(ctx, f)
}

// Search is Resources with only a free-text query.
func (s *Service) Search(ctx context.Context, query string) ([]resource.Resource, error) {
	return s.Resources(ctx, resource.Filter{Search: query})
}

// UserResources returns everything a user has uploaded, newest first.
func (s *Service) UserResources(ctx context.Context, userID string) ([]resource.Resource, error) {
	return s.resources.ListUserResources(ctx, userID)
}
