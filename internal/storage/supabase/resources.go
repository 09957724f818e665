package supabase

import (
	"context"
	"errors"
	"fmt"

	"github.com/breez-edu/breez/internal/domain/download"
	"github.com/breez-edu/breez/internal/domain/resource"
	"github.com/breez-edu/breez/supabase/client"
)

// resourceRow carries the embedded projections PostgREST nests under the
// foreign-table names.
type resourceRow struct {
	resource.Resource
	Categories *struct {
		Name string `json:"name"`
	} `json:"categories,omitempty"`
	UserProfiles *struct {
		FullName  string `json:"full_name"`
		StudentID string `json:"student_id"`
	} `json:"user_profiles,omitempty"`
}

func (row resourceRow) flatten() resource.Resource {
	res := row.Resource
	if row.Categories != nil {
		res.CategoryName = row.Categories.Name
	}
	if row.UserProfiles != nil {
		res.UploaderName = row.UserProfiles.FullName
		res.UploaderStudent = row.UserProfiles.StudentID
	}
	return res
}

func flattenRows(rows []resourceRow) []resource.Resource {
	out := make([]resource.Resource, len(rows))
	for i, row := range rows {
		out[i] = row.flatten()
	}
	return out
}

// ResourceStore --------------------------------------------------------------

func (r *Repository) CreateResource(ctx context.Context, res resource.Resource) (resource.Resource, error) {
	if res.UploaderID == "" {
		return resource.Resource{}, fmt.Errorf("uploader_id cannot be empty")
	}

	resp, err := r.client.From("resources").Insert(ctx, res)
	if err != nil {
		return resource.Resource{}, fmt.Errorf("create resource: %w", err)
	}
	if err := resp.Err(); err != nil {
		return resource.Resource{}, mapErr(err)
	}

	var rows []resource.Resource
	if err := resp.JSON(&rows); err != nil {
		return resource.Resource{}, fmt.Errorf("unmarshal resource: %w", err)
	}
	if len(rows) == 0 {
		return res, nil
	}
	return rows[0], nil
}

func (r *Repository) ListResources(ctx context.Context, f resource.Filter) ([]resource.Resource, error) {
	q := r.client.From("resources").
		Select("*,categories(name),user_profiles(full_name,student_id)").
		Eq("is_approved", true).
		Eq("is_active", true)

	if f.Category != "" && f.Category != "All" {
		q = q.Eq("categories.name", f.Category)
	}
	if f.FileType != "" {
		q = q.Eq("file_type", f.FileType)
	}
	if f.Search != "" {
		q = q.Or(
			fmt.Sprintf("title.ilike.*%s*", f.Search),
			fmt.Sprintf("description.ilike.*%s*", f.Search),
		)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	q = q.Order("download_count", false)

	resp, err := q.Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	if err := resp.Err(); err != nil {
		return nil, mapErr(err)
	}

	var rows []resourceRow
	if err := resp.JSON(&rows); err != nil {
		return nil, fmt.Errorf("unmarshal resources: %w", err)
	}
	return flattenRows(rows), nil
}

func (r *Repository) ListUserResources(ctx context.Context, userID string) ([]resource.Resource, error) {
	resp, err := r.client.From("resources").
		Select("*,categories(name)").
		Eq("uploader_id", userID).
		Order("created_at", false).
		Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("list user resources: %w", err)
	}
	if err := resp.Err(); err != nil {
		return nil, mapErr(err)
	}

	var rows []resourceRow
	if err := resp.JSON(&rows); err != nil {
		return nil, fmt.Errorf("unmarshal resources: %w", err)
	}
	return flattenRows(rows), nil
}

// DownloadStore --------------------------------------------------------------

func (r *Repository) CreateDownload(ctx context.Context, d download.Download) (download.Download, error) {
	if d.ResourceID == "" || d.DownloaderID == "" {
		return download.Download{}, fmt.Errorf("resource_id and downloader_id are required")
	}

	resp, err := r.client.From("downloads").Insert(ctx, map[string]any{
		"resource_id":   d.ResourceID,
		"downloader_id": d.DownloaderID,
		"coins_spent":   d.CoinsSpent,
	})
	if err != nil {
		return download.Download{}, fmt.Errorf("record download: %w", err)
	}
	if err := resp.Err(); err != nil {
		return download.Download{}, mapErr(err)
	}

	var rows []download.Download
	if err := resp.JSON(&rows); err != nil {
		return download.Download{}, fmt.Errorf("unmarshal download: %w", err)
	}
	if len(rows) == 0 {
		return d, nil
	}
	return rows[0], nil
}

func (r *Repository) HasDownloaded(ctx context.Context, userID, resourceID string) (bool, error) {
	resp, err := r.client.From("downloads").
		Select("id").
		Eq("downloader_id", userID).
		Eq("resource_id", resourceID).
		Single().
		Execute(ctx)
	if err != nil {
		return false, fmt.Errorf("check download: %w", err)
	}
	if err := resp.Err(); err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return false, nil
		}
		return false, mapErr(err)
	}
	return true, nil
}

func (r *Repository) ListUserDownloads(ctx context.Context, userID string) ([]download.Download, error) {
	resp, err := r.client.From("downloads").
		Select("*,resources(title,categories(name))").
		Eq("downloader_id", userID).
		Order("downloaded_at", false).
		Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("list downloads: %w", err)
	}
	if err := resp.Err(); err != nil {
		return nil, mapErr(err)
	}

	var rows []struct {
		download.Download
		Resources *struct {
			Title      string `json:"title"`
			Categories *struct {
				Name string `json:"name"`
			} `json:"categories"`
		} `json:"resources,omitempty"`
	}
	if err := resp.JSON(&rows); err != nil {
		return nil, fmt.Errorf("unmarshal downloads: %w", err)
	}

	out := make([]download.Download, len(rows))
	for i, row := range rows {
		d := row.Download
		if row.Resources != nil {
			d.ResourceTitle = row.Resources.Title
			if row.Resources.Categories != nil {
				d.ResourceCategory = row.Resources.Categories.Name
			}
		}
		out[i] = d
	}
	return out, nil
}
