package metadata

import (
	"context"
	"fmt"

	"github.com/solstice-labs/ipfs-pinner/pkg/pinner/filestorage"
)

// MetadataUploader pins an asset and a JSON metadata document that
// references it, returning the metadata CID.
type MetadataUploader struct {
	uploader filestorage.Uploader
}

func NewMetadataUploader(uploader filestorage.Uploader) *MetadataUploader {
	return &MetadataUploader{
		uploader: uploader,
	}
}

func (u *MetadataUploader) Upload(ctx context.Context, name, description, imageUri string) (string, error) {
	imageIpfsHash, err := u.uploader.UploadUrl(ctx, imageUri)
	if err != nil {
		return "", fmt.Errorf("failed to upload file to ipfs: %v", err)
	}

	metadataIpfsHash, err := u.uploader.UploadJson(ctx, map[string]string{
		"name":        name,
		"description": description,
		"image":       "ipfs://" + imageIpfsHash,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload metadata to ipfs: %v", err)
	}

	return metadataIpfsHash, nil
}
