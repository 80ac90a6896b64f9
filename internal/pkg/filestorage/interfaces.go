package filestorage

import (
	"context"
	"errors"
	"mime/multipart"
	"path"
	"strings"
)

// ErrInvalidReference is returned for references that escape the storage root
var ErrInvalidReference = errors.New("invalid file reference")

// FileStorage stores participant photos. References returned by SaveFile
// are what the database keeps.
type FileStorage interface {
	// SaveFile stores the upload under subPath and returns its reference
	SaveFile(ctx context.Context, fileHeader *multipart.FileHeader, subPath string) (string, error)

	// DeleteFile removes a stored file. Missing files are not an error.
	DeleteFile(ctx context.Context, ref string) error

	// Exists reports whether a reference still points at a stored file
	Exists(ctx context.Context, ref string) (bool, error)

	// URL returns the public address of a reference
	URL(ref string) string
}

// cleanRef normalizes a reference to a slash-separated relative key.
func cleanRef(ref string) (string, error) {
	ref = strings.TrimSpace(strings.ReplaceAll(ref, "\\", "/"))
	if ref == "" {
		return "", ErrInvalidReference
	}
	cleaned := path.Clean("/" + ref)[1:]
	if cleaned == "" || strings.HasPrefix(cleaned, "..") {
		return "", ErrInvalidReference
	}
	return cleaned, nil
}
