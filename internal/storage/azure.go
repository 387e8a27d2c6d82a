package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"docmanager/internal/config"
)

// azureStore implements BlobStore on Azure Blob Storage.
type azureStore struct {
	client    *azblob.Client
	container string
	guard     *containerGuard
}

// NewAzure creates a blob store from an account connection string. The container is
// created with private access on first upload.
func NewAzure(cfg config.AzureConfig, container string) (BlobStore, error) {
	if cfg.ConnectionString == "" {
		return nil, fmt.Errorf("azure storage connection string is required")
	}
	if container == "" {
		return nil, fmt.Errorf("azure container is required")
	}
	cli, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create azure blob client: %w", err)
	}
	as := &azureStore{client: cli, container: container}
	as.guard = &containerGuard{ensure: as.ensureContainer}
	return as, nil
}

func (a *azureStore) ensureContainer(ctx context.Context) error {
	_, err := a.client.CreateContainer(ctx, a.container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("create container: %w", err)
	}
	return nil
}

func (a *azureStore) Upload(ctx context.Context, name string, r io.Reader, opt PutObjectOptions) (string, error) {
	if err := a.guard.do(ctx); err != nil {
		return "", err
	}
	var uo azblob.UploadStreamOptions
	if opt.ContentType != "" {
		ct := opt.ContentType
		uo.HTTPHeaders = &blob.HTTPHeaders{BlobContentType: &ct}
	}
	if _, err := a.client.UploadStream(ctx, a.container, name, r, &uo); err != nil {
		return "", err
	}
	return a.URL(name), nil
}

func (a *azureStore) Download(ctx context.Context, name string) (io.ReadCloser, error) {
	resp, err := a.client.DownloadStream(ctx, a.container, name, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrObjectNotFound, err)
		}
		return nil, err
	}
	return resp.Body, nil
}

func (a *azureStore) Delete(ctx context.Context, name string) error {
	_, err := a.client.DeleteBlob(ctx, a.container, name, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
		return err
	}
	return nil
}

func (a *azureStore) URL(name string) string {
	return a.client.ServiceClient().NewContainerClient(a.container).NewBlobClient(name).URL()
}
