package catalogapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"merchant-studio/internal/domain"
	"merchant-studio/pkg/logger"
	"merchant-studio/pkg/utils"
)

var errNoObjectStore = errors.New("object storage is not configured")

func ownerPath(owner domain.MediaOwner) string {
	if owner.Kind == domain.OwnerVariant {
		return "/variants/" + escape(owner.ID)
	}
	return "/products/" + escape(owner.ID)
}

type registerMediaRequest struct {
	URL       string           `json:"url"`
	Type      domain.MediaType `json:"type"`
	SortOrder int              `json:"sortOrder"`
}

// UploadMedia stores the binary in object storage and registers its URL with the
// catalog. Decodable images (JPEG, PNG, WebP, GIF) are resized and re-encoded first;
// other media is stored as sent. When registration fails the stored object is removed.
func (c *Client) UploadMedia(ctx context.Context, owner domain.MediaOwner, file domain.MediaFile, mediaType domain.MediaType, sortOrder int) (*domain.MediaItem, error) {
	if c.objects == nil {
		return nil, &domain.NetworkError{Op: "store media", Err: errNoObjectStore}
	}

	data, err := io.ReadAll(file.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file.Name, err)
	}
	contentType := file.ContentType
	if c.normalize != nil && utils.IsImage(contentType) {
		processed, processedType, err := c.normalize(bytes.NewReader(data), file.Name)
		if err != nil {
			return nil, domain.FieldInvalid("files."+file.Name, "%s could not be read as an image", file.Name)
		}
		data, contentType = processed, processedType
	}

	folder := fmt.Sprintf("media/%s/%s", owner.Kind, owner.ID)
	fileURL, err := c.objects.UploadBuffer(ctx, folder, file.Name, data, contentType)
	if err != nil {
		return nil, &domain.NetworkError{Op: "store media", Err: err}
	}

	var item domain.MediaItem
	err = c.do(ctx, call{
		op:     "register media",
		method: http.MethodPost,
		path:   ownerPath(owner) + "/media",
		body:   registerMediaRequest{URL: fileURL, Type: mediaType, SortOrder: sortOrder},
		out:    &item,
		write:  true,
	})
	if err != nil {
		if delErr := c.objects.DeleteFile(context.WithoutCancel(ctx), fileURL); delErr != nil {
			logger.WithContext(ctx).Warn().Err(delErr).Str("url", fileURL).Msg("Failed to remove orphaned media object")
		}
		return nil, err
	}
	if item.URL == "" {
		item.URL = fileURL
	}
	if item.Type == "" {
		item.Type = mediaType
	}
	return &item, nil
}

func (c *Client) DeleteMedia(ctx context.Context, owner domain.MediaOwner, mediaID string) error {
	return c.do(ctx, call{
		op:     "delete media",
		method: http.MethodDelete,
		path:   ownerPath(owner) + "/media/" + escape(mediaID),
		write:  true,
	})
}

func (c *Client) GetMediaStats(ctx context.Context, owner domain.MediaOwner) (*domain.MediaStats, error) {
	var stats domain.MediaStats
	err := c.do(ctx, call{
		op:     "fetch media stats",
		method: http.MethodGet,
		path:   ownerPath(owner) + "/media/stats",
		out:    &stats,
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) SetPrimaryMedia(ctx context.Context, owner domain.MediaOwner, mediaID string) error {
	return c.do(ctx, call{
		op:     "set primary media",
		method: http.MethodPost,
		path:   ownerPath(owner) + "/media/" + escape(mediaID) + "/primary",
		write:  true,
	})
}
