package filestorage

import (
	"context"
	"io"

	"github.com/solstice-labs/ipfs-pinner/pkg/pinner/source"
)

type Uploader interface {
	UploadUrl(ctx context.Context, fileUrl string) (string, error)
	UploadJson(ctx context.Context, json interface{}) (string, error)
}

type FileUploader interface {
	Uploader
	UploadFile(ctx context.Context, name string, r io.Reader) (string, error)
	Resolve(ctx context.Context, src source.Source) (*source.Payload, error)
}
