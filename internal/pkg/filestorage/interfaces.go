package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// Storage subdirectories used by the application
const (
	DirBriefs          = "briefs"
	DirRubrics         = "rubrics"
	DirStudentWork     = "student_work"
	DirProfilePictures = "profile_pictures"
)

// MaxTextBytes bounds how much of a stored document is read as text
const MaxTextBytes = 10 << 20

// ErrFileNotFound is returned when a stored object does not exist
var ErrFileNotFound = errors.New("stored file not found")

// FileStorage defines the interface for file storage operations.
// Keys are slash separated paths relative to the storage root, e.g. "briefs/<uuid>.txt".
type FileStorage interface {
	// Save stores an uploaded file under subdir with a generated name and returns its key
	Save(ctx context.Context, fileHeader *multipart.FileHeader, subdir string) (string, error)

	// Open returns a reader for the stored object
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a stored object; deleting a missing object is not an error
	Delete(ctx context.Context, key string) error

	// URL returns a path or URL through which clients can fetch the object
	URL(ctx context.Context, key string) (string, error)
}

// ReadText reads a stored document as UTF-8 text, bounded by MaxTextBytes
func ReadText(ctx context.Context, storage FileStorage, key string) (string, error) {
	rc, err := storage.Open(ctx, key)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxTextBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return strings.ToValidUTF8(string(data), ""), nil
}

// cleanKey normalises a key and rejects paths escaping the storage root
func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(filepath.ToSlash(strings.TrimSpace(key)), "/")
	if key == "" {
		return "", fmt.Errorf("empty storage key")
	}
	cleaned := filepath.ToSlash(filepath.Clean(key))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("invalid storage key: %s", key)
	}
	return cleaned, nil
}

// Extension returns the lowercased extension of an uploaded file name
func Extension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}
