// Package upload stores merchant documents and signatures and returns the URL
// they can be fetched from.
package upload

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Failure categories surfaced to the merchant.
var (
	ErrInvalidType = errors.New("file type not allowed")
	ErrTooLarge    = errors.New("file too large")
	ErrEmpty       = errors.New("file is empty")
	ErrRejected    = errors.New("upload rejected by file host")
	ErrUnavailable = errors.New("file host unavailable")
)

// allowedTypes maps accepted content types to their file extensions.
var allowedTypes = map[string][]string{
	"image/jpeg":      {".jpg", ".jpeg"},
	"image/png":       {".png"},
	"application/pdf": {".pdf"},
}

// File is one document to store.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Uploader stores a file and returns its URL.
type Uploader interface {
	Upload(ctx context.Context, f File) (string, error)
}

// Validate checks type and size before any network call. An empty content
// type is sniffed from the data.
func Validate(f *File, maxBytes int64) error {
	if len(f.Data) == 0 {
		return ErrEmpty
	}
	if maxBytes > 0 && int64(len(f.Data)) > maxBytes {
		return fmt.Errorf("%w: %d bytes exceeds the %d byte limit", ErrTooLarge, len(f.Data), maxBytes)
	}
	ct := f.ContentType
	if ct == "" || ct == "application/octet-stream" {
		ct = mimetype.Detect(f.Data).String()
	}
	ct = strings.TrimSpace(strings.SplitN(ct, ";", 2)[0])
	if _, ok := allowedTypes[ct]; !ok {
		return fmt.Errorf("%w: %s", ErrInvalidType, ct)
	}
	f.ContentType = ct
	return nil
}

// AllowedExtension reports whether the path of a stored document URL ends in
// an extension the portal accepts.
func AllowedExtension(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	for _, exts := range allowedTypes {
		for _, e := range exts {
			if e == ext {
				return true
			}
		}
	}
	return false
}
