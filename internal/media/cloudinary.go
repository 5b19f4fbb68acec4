package media

import (
	"context"
	"fmt"
	"os"
	"time"

	"vidtube/pkg/logger"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryConfig holds account credentials
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	// UploadPrefix overrides the API host, mainly for tests
	UploadPrefix string
}

// Cloudinary stores files through the Cloudinary upload API. Files above the
// SDK chunk size are sent as a chunked upload.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	probe  Prober
	logger *logger.Logger
}

// NewCloudinary creates a Cloudinary store. A nil probe falls back to ffprobe.
func NewCloudinary(cfg CloudinaryConfig, probe Prober, log *logger.Logger) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	if cfg.UploadPrefix != "" {
		cld.Upload.Config.API.UploadPrefix = cfg.UploadPrefix
	}
	if probe == nil {
		probe = FFProbe
	}
	return &Cloudinary{cld: cld, probe: probe, logger: log}, nil
}

// resourceType maps a kind to the Cloudinary resource type. Audio is stored as video.
func resourceType(kind Kind) string {
	if kind == KindImage {
		return "image"
	}
	return "video"
}

// Upload sends the file at localPath to Cloudinary
func (c *Cloudinary) Upload(ctx context.Context, localPath string, kind Kind) (*Asset, error) {
	info, err := os.Stat(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}

	resource := resourceType(kind)
	start := time.Now()
	res, err := c.cld.Upload.Upload(ctx, localPath, uploader.UploadParams{ResourceType: resource})
	if err != nil {
		return nil, fmt.Errorf("failed to call Cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("Cloudinary upload failed: %s", res.Error.Message)
	}
	if res.SecureURL == "" {
		return nil, fmt.Errorf("Cloudinary upload returned no url")
	}

	asset := &Asset{
		URL:      res.SecureURL,
		PublicID: res.PublicID,
		Kind:     kind,
		Width:    res.Width,
		Height:   res.Height,
	}
	if kind != KindImage {
		meta, err := c.probe(localPath)
		if err != nil {
			c.logger.WithError(err).WithField("public_id", res.PublicID).Warn("Failed to probe media, storing without duration")
		} else {
			asset.Duration = meta.Duration
			if asset.Width == 0 && asset.Height == 0 {
				asset.Width, asset.Height = meta.Width, meta.Height
			}
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"public_id":     res.PublicID,
		"resource_type": resource,
		"size":          info.Size(),
		"duration_ms":   time.Since(start).Milliseconds(),
	}).Debug("Uploaded file to Cloudinary")
	return asset, nil
}

// Delete destroys the asset behind a delivery URL. A missing asset is not an error.
func (c *Cloudinary) Delete(ctx context.Context, rawURL string) error {
	publicID, resource, err := PublicID(rawURL)
	if err != nil {
		return err
	}

	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID, ResourceType: resource})
	if err != nil {
		return fmt.Errorf("failed to call Cloudinary destroy: %w", err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("Cloudinary destroy failed: %s", res.Error.Message)
	}
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("Cloudinary destroy returned %q", res.Result)
	}

	c.logger.WithFields(map[string]interface{}{
		"public_id": publicID,
		"result":    res.Result,
	}).Debug("Deleted file from Cloudinary")
	return nil
}
