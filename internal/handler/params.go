package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"omegavideos/internal/model"
)

// multipartOverhead covers form fields sent next to the file.
const multipartOverhead = 1 << 20

var errInvalidID = errors.New("invalid id")

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		return 0, errInvalidID
	}
	return id, nil
}

// parseMultipart caps the body at maxFile plus form overhead. An oversized
// body is reported as model.ErrFileTooLarge.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxFile int64) error {
	limit := maxFile + multipartOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return model.ErrFileTooLarge
		}
		return err
	}
	return nil
}

// formMedia returns the uploaded file under field, or nil when absent.
// The caller closes the returned file.
func formMedia(r *http.Request, field string) (*model.MediaFile, multipart.File, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	return &model.MediaFile{
		Filename:    filepath.Base(header.Filename),
		Size:        header.Size,
		ContentType: strings.TrimSpace(header.Header.Get("Content-Type")),
		Body:        file,
	}, file, nil
}
