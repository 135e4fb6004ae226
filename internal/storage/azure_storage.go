package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"go-domino-counter/internal/detector"
)

// BlobStorage fetches archived candidate payloads from Azure blob storage.
// Segmentation collaborators archive per-frame candidate JSON there for
// offline re-analysis.
type BlobStorage interface {
	GetCandidates(ctx context.Context, blobURL string) (*detector.FrameCandidates, error)
}

type azureStorage struct {
	client *azblob.Client
}

func NewAzureStorage(accountName string, accountKey string) (BlobStorage, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, err
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &azureStorage{client: client}, nil
}

func (s *azureStorage) GetCandidates(ctx context.Context, blobURL string) (*detector.FrameCandidates, error) {
	parsedURL, err := url.Parse(blobURL)
	if err != nil {
		return nil, fmt.Errorf("invalid blob URL: %w", err)
	}

	containerName := parsedURL.Path[1:] // Remove leading slash
	blobName := parsedURL.Query().Get("blob")

	downloadResponse, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}

	retryReader := downloadResponse.Body
	defer retryReader.Close()

	var frame detector.FrameCandidates
	if err := json.NewDecoder(retryReader).Decode(&frame); err != nil {
		return nil, fmt.Errorf("failed to decode candidate payload: %w", err)
	}
	return &frame, nil
}
