package media

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Stager writes uploaded parts to uniquely named temporary files
type Stager struct {
	dir string
}

// NewStager creates dir if needed. An empty dir uses the OS temp directory.
func NewStager(dir string) (*Stager, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Stager{dir: dir}, nil
}

// StagedFile is a local copy of an uploaded part
type StagedFile struct {
	Path        string
	Filename    string
	ContentType string
	Size        int64
}

// Remove deletes the local copy
func (f *StagedFile) Remove() {
	if f != nil && f.Path != "" {
		_ = os.Remove(f.Path)
	}
}

// Stage copies fh to disk under a uuid name that keeps the original extension
func (s *Stager) Stage(fh *multipart.FileHeader) (*StagedFile, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	path := filepath.Join(s.dir, uuid.NewString()+ext)

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	n, err := io.Copy(dst, src)
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to save upload: %w", err)
	}

	return &StagedFile{
		Path:        path,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        n,
	}, nil
}
