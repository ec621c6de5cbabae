// Package storage describes remote hosting of build archives.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Uploader is the interface for uploading a build archive to a hosting service that makes it retrievable by the
// target server. path is the archive on local disk, name the file name it should be published under.
type Uploader interface {
	Upload(ctx context.Context, path, name string) (Item, error)
}

// Item represents the metadata about the uploaded file.
type Item struct {
	// URL is the Retrieval URL from which the archive can be downloaded.
	URL      string `json:"url"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Provider string `json:"provider"`
}

// ErrAccessDenied is returned when the hosting service refused the upload.
var ErrAccessDenied = errors.New("access denied")

// ErrTooManyRequests is returned when the hosting service rate limits the upload.
var ErrTooManyRequests = errors.New("too many requests")

// ErrFileTooLarge is returned when the archive exceeds the size accepted by the hosting service.
var ErrFileTooLarge = errors.New("file too large")

// ErrMalformedResponse is returned when the hosting service accepted the upload but the response does not carry a
// usable Retrieval URL.
var ErrMalformedResponse = errors.New("malformed upload response")

// ServerError represents a non-success response of the hosting service that does not map to any of the
// sentinel errors.
type ServerError struct {
	Code  int
	Title string
	Msg   string
}

// Error returns the error string.
func (s *ServerError) Error() string {
	return fmt.Sprintf("%s: %s", s.Title, s.Msg)
}
