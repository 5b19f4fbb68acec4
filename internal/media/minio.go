package media

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"vidtube/pkg/logger"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig holds object store settings
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the base URL clients use to fetch objects
	PublicURL string
}

// Minio stores media in an S3 compatible bucket and probes files locally
type Minio struct {
	client *minio.Client
	cfg    MinioConfig
	probe  Prober
	logger *logger.Logger
}

// NewMinio connects to the object store and makes sure the bucket exists
func NewMinio(ctx context.Context, cfg MinioConfig, probe Prober, log *logger.Logger) (*Minio, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket error: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket error: %w", err)
		}
		log.WithField("bucket", cfg.Bucket).Info("Created media bucket")
	}

	if cfg.PublicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		cfg.PublicURL = scheme + "://" + cfg.Endpoint
	}
	if probe == nil {
		probe = FFProbe
	}

	return &Minio{client: client, cfg: cfg, probe: probe, logger: log}, nil
}

func (m *Minio) Upload(ctx context.Context, localPath string, kind Kind) (*Asset, error) {
	ext := strings.ToLower(filepath.Ext(localPath))
	objectName := fmt.Sprintf("%ss/%s%s", kind, uuid.NewString(), ext)

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	asset := &Asset{Kind: kind, PublicID: objectName}
	if kind != KindImage {
		meta, err := m.probe(localPath)
		if err != nil {
			m.logger.WithError(err).WithField("object", objectName).Warn("Failed to probe media, storing without metadata")
		} else {
			asset.Duration = meta.Duration
			asset.Width = meta.Width
			asset.Height = meta.Height
		}
	}

	info, err := m.client.FPutObject(ctx, m.cfg.Bucket, objectName, localPath, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return nil, fmt.Errorf("failed to upload object: %w", err)
	}

	asset.URL = strings.TrimRight(m.cfg.PublicURL, "/") + "/" + m.cfg.Bucket + "/" + objectName
	m.logger.WithFields(map[string]interface{}{
		"object": objectName,
		"size":   info.Size,
	}).Debug("Uploaded file to object store")
	return asset, nil
}

func (m *Minio) Delete(ctx context.Context, rawURL string) error {
	name, err := ObjectName(rawURL, m.cfg.PublicURL, m.cfg.Bucket)
	if err != nil {
		return err
	}
	if err := m.client.RemoveObject(ctx, m.cfg.Bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}
