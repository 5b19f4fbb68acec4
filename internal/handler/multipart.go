package handler

import (
	stderrors "errors"
	"net/http"
	"strings"

	"vidtube/internal/media"
	"vidtube/pkg/errors"
)

// form is a parsed multipart request whose staged files are removed by Cleanup
type form struct {
	r      *http.Request
	stager *media.Stager
	files  []*media.StagedFile
}

// parseForm limits the body to maxBytes and parses it as multipart
func parseForm(w http.ResponseWriter, r *http.Request, stager *media.Stager, maxBytes int64) (*form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.NewValidationError("Upload is too large", map[string]interface{}{"max_bytes": maxBytes})
		}
		return nil, errors.NewValidationError("Invalid multipart form", nil)
	}
	return &form{r: r, stager: stager}, nil
}

// Value returns a trimmed text field
func (f *form) Value(name string) string {
	return strings.TrimSpace(f.r.FormValue(name))
}

// File stages the named part to disk. A missing part returns nil without error.
func (f *form) File(name string) (*media.StagedFile, error) {
	file, fh, err := f.r.FormFile(name)
	if err != nil {
		if stderrors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, errors.NewValidationError("Invalid file", map[string]interface{}{"field": name})
	}
	file.Close()

	staged, err := f.stager.Stage(fh)
	if err != nil {
		return nil, errors.NewInternalError("Failed to store upload", err)
	}
	f.files = append(f.files, staged)
	return staged, nil
}

// Cleanup removes every staged file and the parser's temporary files
func (f *form) Cleanup() {
	for _, file := range f.files {
		file.Remove()
	}
	if f.r.MultipartForm != nil {
		_ = f.r.MultipartForm.RemoveAll()
	}
}
