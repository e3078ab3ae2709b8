package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// validate checks request DTO struct tags once at the entry boundary, so
// handlers never re-check field presence downstream.
var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeBody parses and validates a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return badRequest("invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return badRequest(fmt.Sprintf("field %s is %s", fieldErrs[0].Field(), fieldErrs[0].Tag()))
		}
		return badRequest("invalid request body")
	}
	return nil
}

// pathID extracts and format-checks a uuid path parameter. The format check
// runs before any store access: a malformed id is a validation failure, not
// a lookup miss.
func pathID(r *http.Request, name string) (string, error) {
	value := chi.URLParam(r, name)
	if value == "" {
		return "", badRequest(name + " is required")
	}
	if err := uuid.Validate(value); err != nil {
		return "", badRequest(name + " is not a valid id")
	}
	return value, nil
}

// pageParams reads page and limit query parameters, defaulting to 1 and 10.
// Non-numeric values are a validation failure; clamping happens downstream.
func pageParams(r *http.Request) (int, int, error) {
	page, err := intParam(r, "page", 1)
	if err != nil {
		return 0, 0, err
	}
	limit, err := intParam(r, "limit", 10)
	if err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, badRequest(name + " must be a positive integer")
	}
	return value, nil
}

// stageUpload copies a multipart form file into the staging directory and
// returns its local path. The caller owns the staged file; the media store
// removes it after binding, and callers must remove it themselves on the
// failure paths before that handoff.
func stageUpload(r *http.Request, field, dir string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", badRequest(field + " file is required")
		}
		return "", badRequest("invalid multipart body")
	}
	defer file.Close()

	return copyToStaging(file, header, dir)
}

// stageOptionalUpload behaves like stageUpload but treats a missing file as
// ("", nil).
func stageOptionalUpload(r *http.Request, field, dir string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", badRequest("invalid multipart body")
	}
	defer file.Close()

	return copyToStaging(file, header, dir)
}

func copyToStaging(file multipart.File, header *multipart.FileHeader, dir string) (string, error) {
	staged, err := os.CreateTemp(dir, "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}

	if _, err := io.Copy(staged, file); err != nil {
		staged.Close()
		os.Remove(staged.Name())
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if err := staged.Close(); err != nil {
		os.Remove(staged.Name())
		return "", fmt.Errorf("close staged file: %w", err)
	}

	return staged.Name(), nil
}

// discardStaged removes a staged file on a failure path before the media
// store takes ownership of it.
func discardStaged(paths ...string) {
	for _, p := range paths {
		if p != "" {
			_ = os.Remove(p)
		}
	}
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
