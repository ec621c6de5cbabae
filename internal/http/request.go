package http

import (
	"context"
	"io"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/qbpharma/deployctl/internal/version"
)

// userAgent identifies deployctl to the file hosts.
var userAgent = "deployctl/" + version.Version

// newUploadRequest prepares a request that streams size bytes of body. Since body is seekable, retryablehttp rewinds
// and replays it on every attempt instead of buffering it in memory.
func newUploadRequest(ctx context.Context, method, url string, body io.ReadSeeker, size int64, contentType string) (*retryablehttp.Request, error) {
	r, err := retryablehttp.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	r.ContentLength = size
	r.Header.Set("User-Agent", userAgent)
	r.Header.Set("Content-Type", contentType)

	return r, nil
}
