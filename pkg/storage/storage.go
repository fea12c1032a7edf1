// Package storage implements the workspace store on Azure Blob Storage.
// A workspace is a marker blob <id>/.workspace plus one blob per artifact at
// <id>/<area>/<name>.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"

	"github.com/JaimeStill/folio/pkg/lifecycle"
	"github.com/JaimeStill/folio/pkg/workspace"
)

const markerName = ".workspace"

// System is a workspace.Store backed by a blob container that also takes
// part in the service lifecycle.
type System interface {
	workspace.Store
	// Start registers a startup hook that initializes the storage container.
	Start(lc *lifecycle.Coordinator) error
}

type azure struct {
	client    *azblob.Client
	container string
	pageSize  int32
	logger    *slog.Logger
}

// New creates a storage system from the given configuration.
// It validates the connection string and creates the Azure client
// but does not establish a connection until Start is called.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &azure{
		client:    client,
		container: cfg.ContainerName,
		pageSize:  cfg.MaxListSize,
		logger:    logger.With("system", "storage"),
	}, nil
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	a.logger.Info("starting storage system")

	lc.OnStartup(func() {
		_, err := a.client.CreateContainer(lc.Context(), a.container, nil)
		if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			a.logger.Error("storage container initialization failed", "error", err)
			return
		}

		a.logger.Info("storage container ready", "container", a.container)
	})

	return nil
}

func (a *azure) Init(ctx context.Context, id string) error {
	if err := validateKey(id); err != nil {
		return err
	}

	opts := &azblob.UploadBufferOptions{
		AccessConditions: &blob.AccessConditions{
			ModifiedAccessConditions: &blob.ModifiedAccessConditions{
				IfNoneMatch: to.Ptr(azcore.ETagAny),
			},
		},
	}

	_, err := a.client.UploadBuffer(ctx, a.container, id+"/"+markerName, []byte{}, opts)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobAlreadyExists, bloberror.ConditionNotMet) {
			return workspace.ErrExists
		}
		return fmt.Errorf("create workspace marker %s: %w", id, err)
	}
	return nil
}

func (a *azure) Remove(ctx context.Context, id string) error {
	if err := validateKey(id); err != nil {
		return err
	}
	return a.deletePrefix(ctx, id+"/")
}

func (a *azure) RemoveArea(ctx context.Context, id, area string) error {
	if err := validateKey(id, area); err != nil {
		return err
	}
	return a.deletePrefix(ctx, id+"/"+area+"/")
}

func (a *azure) List(ctx context.Context) ([]string, error) {
	pager := a.client.
		ServiceClient().
		NewContainerClient(a.container).
		NewListBlobsHierarchyPager("/", &container.ListBlobsHierarchyOptions{
			MaxResults: &a.pageSize,
		})

	var ids []string
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list workspaces: %w", err)
		}
		for _, p := range page.Segment.BlobPrefixes {
			if p.Name != nil {
				ids = append(ids, strings.TrimSuffix(*p.Name, "/"))
			}
		}
	}
	return ids, nil
}

func (a *azure) Write(ctx context.Context, id, area, name string, r io.Reader) (string, error) {
	key, err := objectKey(id, area, name)
	if err != nil {
		return "", err
	}

	opts := &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: to.Ptr(contentType(name)),
		},
	}

	if _, err := a.client.UploadStream(ctx, a.container, key, r, opts); err != nil {
		return "", fmt.Errorf("upload blob %s: %w", key, err)
	}
	return a.path(key), nil
}

func (a *azure) Open(ctx context.Context, id, area, name string) (io.ReadCloser, error) {
	key, err := objectKey(id, area, name)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.DownloadStream(ctx, a.container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, workspace.ErrNotFound
		}
		return nil, fmt.Errorf("download blob %s: %w", key, err)
	}
	return resp.Body, nil
}

func (a *azure) Exists(ctx context.Context, id, area, name string) (string, bool, error) {
	key, err := objectKey(id, area, name)
	if err != nil {
		return "", false, err
	}

	_, err = a.client.
		ServiceClient().
		NewContainerClient(a.container).
		NewBlobClient(key).
		GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("check blob existence %s: %w", key, err)
	}
	return a.path(key), true, nil
}

func (a *azure) deletePrefix(ctx context.Context, prefix string) error {
	pager := a.client.NewListBlobsFlatPager(a.container, &azblob.ListBlobsFlatOptions{
		Prefix:     &prefix,
		MaxResults: &a.pageSize,
	})

	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("list %s: %w", prefix, err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			_, err := a.client.DeleteBlob(ctx, a.container, *item.Name, nil)
			if err != nil && !bloberror.HasCode(err, bloberror.BlobNotFound) {
				return fmt.Errorf("delete blob %s: %w", *item.Name, err)
			}
		}
	}
	return nil
}

func (a *azure) path(key string) string {
	return a.container + "/" + key
}

func objectKey(id, area, name string) (string, error) {
	if err := validateKey(id, area, name); err != nil {
		return "", err
	}
	return id + "/" + area + "/" + name, nil
}

func contentType(name string) string {
	if strings.HasSuffix(strings.ToLower(name), ".pdf") {
		return "application/pdf"
	}
	return "application/octet-stream"
}

func validateKey(parts ...string) error {
	for _, p := range parts {
		if p == "" || strings.Contains(p, "..") || strings.ContainsAny(p, "/\\") {
			return fmt.Errorf("%w: %q", workspace.ErrInvalidName, p)
		}
	}
	return nil
}
