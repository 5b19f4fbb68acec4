// Package media stores uploaded files on a media host and reads their metadata.
package media

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
)

// Kind is the category of an uploaded file
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

// Asset describes a stored file
type Asset struct {
	URL      string  `json:"url"`
	PublicID string  `json:"public_id"`
	Kind     Kind    `json:"kind"`
	Duration float64 `json:"duration"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
}

// Store uploads local files and deletes stored ones by URL
type Store interface {
	Upload(ctx context.Context, localPath string, kind Kind) (*Asset, error)
	Delete(ctx context.Context, url string) error
}

// ErrInvalidURL is returned when a stored URL cannot be mapped back to an asset
var ErrInvalidURL = errors.New("media url does not belong to this store")

var audioExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".aac": true, ".flac": true, ".ogg": true, ".m4a": true,
}

// IsAudio reports whether a file looks like audio from its name or content type
func IsAudio(filename, contentType string) bool {
	if strings.HasPrefix(strings.ToLower(contentType), "audio/") {
		return true
	}
	return audioExtensions[strings.ToLower(filepath.Ext(filename))]
}
