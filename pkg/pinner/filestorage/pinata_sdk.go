package filestorage

import (
	"context"

	"github.com/zde37/pinata-go-sdk/pinata"
)

// PinataSdkUploader pins URLs and JSON documents through the Pinata SDK
// instead of the raw HTTP API.
type PinataSdkUploader struct {
	jwtKey string

	client *pinata.Client
}

var _ Uploader = (*PinataSdkUploader)(nil)

func NewPinataSdkUploader(jwtKey string) *PinataSdkUploader {
	return &PinataSdkUploader{
		jwtKey: jwtKey,
		client: pinata.New(pinata.NewAuthWithJWT(jwtKey)),
	}
}

func (u *PinataSdkUploader) UploadUrl(ctx context.Context, fileUrl string) (string, error) {
	if u.jwtKey == "" {
		return "", ErrConfigMissing
	}

	pinResponse, err := u.client.PinURL(fileUrl, nil)
	if err != nil {
		return "", uploadError(err)
	}

	return pinResponse.IpfsHash, nil
}

func (u *PinataSdkUploader) UploadJson(ctx context.Context, json interface{}) (string, error) {
	if u.jwtKey == "" {
		return "", ErrConfigMissing
	}

	pinResponse, err := u.client.PinJSON(json, nil)
	if err != nil {
		return "", uploadError(err)
	}

	return pinResponse.IpfsHash, nil
}
