package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/desertthunder/musicapp/internal/services"
	"github.com/desertthunder/musicapp/internal/shared"
)

// maxUploadBytes bounds request bodies, including song uploads.
const maxUploadBytes = 32 << 20

// parseForm reads a multipart or urlencoded body into r.Form.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(maxUploadBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return fmt.Errorf("%w: failed to parse form: %v", shared.ErrInvalidInput, err)
	}
	return nil
}

// formFile returns the uploaded file in field, or nil when none was submitted.
func formFile(r *http.Request, field string) (*services.Upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", shared.ErrInvalidInput, field, err)
	}
	defer file.Close()

	if header.Filename == "" {
		return nil, nil
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", shared.ErrInvalidInput, field, err)
	}
	return &services.Upload{Filename: header.Filename, Body: bytes.NewReader(data)}, nil
}

// formDate parses a YYYY-MM-DD field. An empty field yields nil.
func formDate(r *http.Request, field string) (*time.Time, error) {
	value := strings.TrimSpace(r.FormValue(field))
	if value == "" {
		return nil, nil
	}

	date, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a YYYY-MM-DD date", shared.ErrInvalidInput, field)
	}
	return &date, nil
}
