package http

import (
	"fmt"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/qbpharma/deployctl/internal/storage"
)

// Supported upload providers.
const (
	ProviderFileIO     = "fileio"
	ProviderTransferSh = "transfersh"
)

// Providers lists the names accepted by NewUploader.
var Providers = []string{ProviderFileIO, ProviderTransferSh}

// NewUploader returns the storage.Uploader for provider. An empty endpoint selects the provider's public default.
func NewUploader(provider, endpoint string, client *retryablehttp.Client) (storage.Uploader, error) {
	switch provider {
	case ProviderFileIO:
		return NewFileIO(endpoint, client), nil
	case ProviderTransferSh:
		return NewTransferSh(endpoint, client), nil
	}
	return nil, fmt.Errorf("unknown upload provider '%s', expected one of: %v", provider, Providers)
}
