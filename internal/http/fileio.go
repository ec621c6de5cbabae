package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/qbpharma/deployctl/internal/multipartext"
	"github.com/qbpharma/deployctl/internal/progress"
	"github.com/qbpharma/deployctl/internal/storage"
)

// DefaultFileIOURL is the public file.io endpoint.
const DefaultFileIOURL = "https://file.io"

// fileIOResponse represents the response as is returned by file.io.
type fileIOResponse struct {
	Success bool   `json:"success"`
	Link    string `json:"link"`
	Key     string `json:"key"`
	Expires string `json:"expires"`
}

// FileIO implements storage.Uploader for file.io, an anonymous file host that returns the download link as JSON.
type FileIO struct {
	HTTPClient *retryablehttp.Client
	URL        string
}

// NewFileIO returns an implementation for FileIO.
func NewFileIO(url string, client *retryablehttp.Client) *FileIO {
	if url == "" {
		url = DefaultFileIOURL
	}
	return &FileIO{HTTPClient: client, URL: url}
}

// Upload posts the archive at path as multipart form field "file" and returns the download link.
func (s *FileIO) Upload(ctx context.Context, path, name string) (storage.Item, error) {
	file, err := os.Open(path)
	if err != nil {
		return storage.Item{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	finfo, err := file.Stat()
	if err != nil {
		return storage.Item{}, fmt.Errorf("failed to inspect file: %w", err)
	}

	bar := progress.NewBar(finfo.Size(), "Uploading")
	src := progress.NewReadSeeker(file, bar)
	defer bar.Finish()

	body, contentType, err := multipartext.NewMultipartReader("file", name, &src)
	if err != nil {
		return storage.Item{}, err
	}
	size, err := multipartext.Size(body)
	if err != nil {
		return storage.Item{}, err
	}

	req, err := newUploadRequest(ctx, http.MethodPost, s.URL, body, size, contentType)
	if err != nil {
		return storage.Item{}, err
	}

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return storage.Item{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var ur fileIOResponse
		if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
			return storage.Item{}, fmt.Errorf("%w: %v", storage.ErrMalformedResponse, err)
		}
		if !ur.Success || ur.Link == "" {
			return storage.Item{}, fmt.Errorf("%w: no download link in response", storage.ErrMalformedResponse)
		}

		return storage.Item{
			URL:      ur.Link,
			Name:     name,
			Size:     finfo.Size(),
			Provider: ProviderFileIO,
		}, nil
	default:
		return storage.Item{}, statusError(resp)
	}
}
