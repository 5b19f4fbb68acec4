package service

import (
	"context"
	"time"

	"vidtube/internal/media"
	"vidtube/pkg/errors"
	"vidtube/pkg/logger"
)

// uploadStaged sends a staged file to the media store. Failures surface as 502.
func uploadStaged(ctx context.Context, store media.Store, f *media.StagedFile, kind media.Kind, field string) (*media.Asset, error) {
	asset, err := store.Upload(ctx, f.Path, kind)
	if err != nil {
		return nil, errors.NewExternalError("Failed to upload "+field, err).WithDetails("field", field)
	}
	if asset == nil || asset.URL == "" {
		return nil, errors.NewExternalError("Media host returned no URL for "+field, nil).WithDetails("field", field)
	}
	return asset, nil
}

// discardAssets deletes already uploaded files after a later step failed.
// It runs on a fresh context so a cancelled request still cleans up.
func discardAssets(store media.Store, log *logger.Logger, urls ...string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, u := range urls {
		if u == "" {
			continue
		}
		if err := store.Delete(ctx, u); err != nil {
			log.WithError(err).WithField("url", u).Warn("Failed to delete orphaned media")
		}
	}
}
