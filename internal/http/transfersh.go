package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/qbpharma/deployctl/internal/progress"
	"github.com/qbpharma/deployctl/internal/storage"
)

// DefaultTransferShURL is the public transfer.sh endpoint.
const DefaultTransferShURL = "https://transfer.sh"

// TransferSh implements storage.Uploader for transfer.sh compatible hosts, which accept a raw PUT and reply with the
// download link as plain text.
type TransferSh struct {
	HTTPClient *retryablehttp.Client
	URL        string
}

// NewTransferSh returns an implementation for TransferSh.
func NewTransferSh(url string, client *retryablehttp.Client) *TransferSh {
	if url == "" {
		url = DefaultTransferShURL
	}
	return &TransferSh{HTTPClient: client, URL: url}
}

// Upload puts the archive at path to {URL}/{name} and returns the download link.
func (s *TransferSh) Upload(ctx context.Context, path, name string) (storage.Item, error) {
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

	target := fmt.Sprintf("%s/%s", strings.TrimSuffix(s.URL, "/"), url.PathEscape(name))
	req, err := newUploadRequest(ctx, http.MethodPut, target, &src, finfo.Size(), "application/octet-stream")
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
		b, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err != nil {
			return storage.Item{}, fmt.Errorf("%w: %v", storage.ErrMalformedResponse, err)
		}

		link := strings.TrimSpace(string(b))
		u, err := url.Parse(link)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return storage.Item{}, fmt.Errorf("%w: expected a URL, got %q", storage.ErrMalformedResponse, link)
		}

		return storage.Item{
			URL:      link,
			Name:     name,
			Size:     finfo.Size(),
			Provider: ProviderTransferSh,
		}, nil
	default:
		return storage.Item{}, statusError(resp)
	}
}
