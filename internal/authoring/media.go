package authoring

import (
	"context"
	"fmt"

	"merchant-studio/internal/domain"
	"merchant-studio/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// MediaSlotAllocator enforces the per-owner media slot limit. The catalog API is the
// source of truth for counts, so stats are refetched after every upload or delete.
type MediaSlotAllocator struct {
	media       domain.MediaGateway
	concurrency int
}

func NewMediaSlotAllocator(media domain.MediaGateway, concurrency int) *MediaSlotAllocator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &MediaSlotAllocator{media: media, concurrency: concurrency}
}

// FileResult is the outcome of one file of a batch.
type FileResult struct {
	Name  string            `json:"name"`
	Item  *domain.MediaItem `json:"item,omitempty"`
	Error string            `json:"error,omitempty"`
	Err   error             `json:"-"`
}

type UploadReport struct {
	Results []FileResult       `json:"results"`
	Stats   *domain.MediaStats `json:"stats,omitempty"`
	// StatsStale is set when the post-upload stats refresh failed.
	StatsStale bool `json:"statsStale,omitempty"`
}

// Uploaded returns the items that made it, in batch order.
func (r *UploadReport) Uploaded() []domain.MediaItem {
	var items []domain.MediaItem
	for _, res := range r.Results {
		if res.Item != nil {
			items = append(items, *res.Item)
		}
	}
	return items
}

func (r *UploadReport) Failures() []FileResult {
	var failed []FileResult
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

func (a *MediaSlotAllocator) Stats(ctx context.Context, owner domain.MediaOwner) (*domain.MediaStats, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	stats, err := a.media.GetMediaStats(ctx, owner)
	if err != nil {
		return nil, err
	}
	normalized := stats.Normalize()
	return &normalized, nil
}

// Upload admits the whole batch or none of it. Once admitted every file is sent on its
// own; a failure on one file never cancels or rolls back the others.
func (a *MediaSlotAllocator) Upload(ctx context.Context, owner domain.MediaOwner, files []domain.MediaFile) (*UploadReport, error) {
	if len(files) == 0 {
		return nil, domain.FieldInvalid("files", "select at least one file")
	}
	stats, err := a.Stats(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(files) > stats.Remaining {
		return nil, &domain.UploadRejected{Requested: len(files), Remaining: stats.Remaining}
	}

	results := make([]FileResult, len(files))
	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, file := range files {
		sortOrder := stats.Total + i
		g.Go(func() error {
			results[i] = a.uploadOne(ctx, owner, file, sortOrder)
			return nil
		})
	}
	_ = g.Wait()

	report := &UploadReport{Results: results}
	if fresh, err := a.Stats(ctx, owner); err != nil {
		logger.WithContext(ctx).Warn().Err(err).Str("owner_id", owner.ID).Msg("Media stats refresh failed after upload")
		report.StatsStale = true
	} else {
		report.Stats = fresh
	}
	return report, nil
}

func (a *MediaSlotAllocator) uploadOne(ctx context.Context, owner domain.MediaOwner, file domain.MediaFile, sortOrder int) FileResult {
	res := FileResult{Name: file.Name}
	mediaType, ok := domain.MediaTypeFor(file.ContentType)
	if !ok {
		res.Err = domain.FieldInvalid("files."+file.Name, "%s is not an image or video", file.Name)
		res.Error = domain.UserMessage(res.Err)
		return res
	}

	item, err := a.media.UploadMedia(ctx, owner, file, mediaType, sortOrder)
	if err != nil {
		logger.WithContext(ctx).Warn().Err(err).
			Str("owner_id", owner.ID).
			Str("file", file.Name).
			Msg("Media upload failed")
		res.Err = err
		res.Error = domain.UserMessage(err)
		return res
	}
	res.Item = item
	return res
}

// Delete removes one item and returns the refreshed stats.
func (a *MediaSlotAllocator) Delete(ctx context.Context, owner domain.MediaOwner, mediaID string) (*domain.MediaStats, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	if err := a.media.DeleteMedia(ctx, owner, mediaID); err != nil {
		return nil, err
	}
	return a.Stats(ctx, owner)
}

// SetPrimary marks mediaID as the only primary item of *items before calling the catalog
// API, and restores the previous flags when the call fails.
func (a *MediaSlotAllocator) SetPrimary(ctx context.Context, owner domain.MediaOwner, items *[]domain.MediaItem, mediaID string) error {
	if err := requireOwner(owner); err != nil {
		return err
	}
	if domain.FindMedia(*items, mediaID) < 0 {
		return fmt.Errorf("%w: %s", domain.ErrMediaNotFound, mediaID)
	}

	previous := *items
	*items = domain.MarkPrimary(previous, mediaID)
	if err := a.media.SetPrimaryMedia(ctx, owner, mediaID); err != nil {
		*items = previous
		return err
	}
	return nil
}

func requireOwner(owner domain.MediaOwner) error {
	if owner.ID == "" {
		return domain.FieldInvalid("media", "media can only be managed once the %s is saved", owner.Kind)
	}
	return nil
}
