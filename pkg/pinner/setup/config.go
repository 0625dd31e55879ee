package setup

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/solstice-labs/ipfs-pinner/pkg/pinner/filestorage"
)

const (
	UploaderApi = "api"
	UploaderSdk = "sdk"

	defaultUploadWorkers = 8
)

type Config struct {
	PinataJwt      string
	PinataApiUrl   string
	PinataUploader string
	IpfsGatewayUrl string
	ApiIpPort      string
	UploadWorkers  int
}

func NewConfigFromEnv() (*Config, error) {
	config := &Config{
		PinataJwt:      os.Getenv(EnvPinataJwt),
		PinataApiUrl:   os.Getenv(EnvPinataApiUrl),
		PinataUploader: os.Getenv(EnvPinataUploader),
		IpfsGatewayUrl: os.Getenv(EnvIpfsGatewayUrl),
		ApiIpPort:      os.Getenv(EnvApiIpPort),
		UploadWorkers:  defaultUploadWorkers,
	}

	if workers := os.Getenv(EnvUploadWorkers); workers != "" {
		parsed, err := strconv.Atoi(workers)
		if err != nil {
			return nil, fmt.Errorf("%s is not a number: %v", EnvUploadWorkers, err)
		}
		config.UploadWorkers = parsed
	}

	if config.PinataApiUrl == "" {
		config.PinataApiUrl = filestorage.DefaultApiUrl
	}
	if config.IpfsGatewayUrl == "" {
		config.IpfsGatewayUrl = filestorage.DefaultGatewayUrl
	}
	if config.PinataUploader == "" {
		config.PinataUploader = UploaderApi
	}

	err := config.Validate()
	if err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.PinataJwt == "" {
		return errors.New("PINATA_JWT is required")
	}
	if c.PinataUploader != UploaderApi && c.PinataUploader != UploaderSdk {
		return fmt.Errorf("PINATA_UPLOADER must be %q or %q", UploaderApi, UploaderSdk)
	}
	if c.UploadWorkers <= 0 {
		return errors.New("UPLOAD_WORKERS must be positive")
	}

	return nil
}
