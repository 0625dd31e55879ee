package pinner

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alitto/pond/v2"
	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/solstice-labs/ipfs-pinner/pkg/pinner/filestorage"
	"github.com/solstice-labs/ipfs-pinner/pkg/pinner/metadata"
	"github.com/solstice-labs/ipfs-pinner/pkg/pinner/setup"
	"github.com/solstice-labs/ipfs-pinner/pkg/pinner/source"
)

type Service struct {
	uploader         filestorage.FileUploader
	metadataUploader *metadata.MetadataUploader
	apiRouter        *gin.Engine
	pool             pond.Pool

	cidCache    *expirable.LRU[string, string]
	uploadGroup singleflight.Group

	gatewayUrl string
	apiIpPort  string
}

type ServiceConfig struct {
	Uploader         filestorage.FileUploader
	MetadataUploader *metadata.MetadataUploader

	GatewayUrl    string
	ApiIpPort     string
	UploadWorkers int
}

const (
	cidCacheSize = 4096
	cidCacheTTL  = 0 // entries never expire, eviction is size-driven

	defaultUploadWorkers = 8
)

func NewService(config *ServiceConfig) (*Service, error) {
	if config == nil {
		return nil, errors.New("config is nil")
	}
	if config.Uploader == nil {
		return nil, errors.New("uploader is nil")
	}

	if config.GatewayUrl == "" {
		config.GatewayUrl = filestorage.DefaultGatewayUrl
	}
	if config.UploadWorkers <= 0 {
		config.UploadWorkers = defaultUploadWorkers
	}
	if config.MetadataUploader == nil {
		config.MetadataUploader = metadata.NewMetadataUploader(config.Uploader)
	}

	service := &Service{
		uploader:         config.Uploader,
		metadataUploader: config.MetadataUploader,
		pool:             pond.NewPool(config.UploadWorkers),

		cidCache: expirable.NewLRU[string, string](cidCacheSize, nil, cidCacheTTL),

		gatewayUrl: config.GatewayUrl,
		apiIpPort:  config.ApiIpPort,
	}

	service.apiRouter = service.generateRouter()

	return service, nil
}

func NewServiceConfigFromSetup(config *setup.Config) (*ServiceConfig, error) {
	if config == nil {
		return nil, errors.New("config is nil")
	}

	apiUploader := filestorage.NewPinataApiUploader(filestorage.PinataApiConfig{
		Jwt:    config.PinataJwt,
		ApiUrl: config.PinataApiUrl,
	})

	var metadataUploader *metadata.MetadataUploader
	if config.PinataUploader == setup.UploaderSdk {
		metadataUploader = metadata.NewMetadataUploader(filestorage.NewPinataSdkUploader(config.PinataJwt))
	} else {
		metadataUploader = metadata.NewMetadataUploader(apiUploader)
	}

	return &ServiceConfig{
		Uploader:         apiUploader,
		MetadataUploader: metadataUploader,

		GatewayUrl:    config.IpfsGatewayUrl,
		ApiIpPort:     config.ApiIpPort,
		UploadWorkers: config.UploadWorkers,
	}, nil
}

// Pin normalizes the source and pins it, deduplicating identical
// payloads through the CID cache.
func (s *Service) Pin(ctx context.Context, src source.Source) (string, error) {
	payload, err := s.uploader.Resolve(ctx, src)
	if err != nil {
		return "", err
	}

	return s.pinPayload(ctx, payload)
}

// PinReader pins raw content from a reader under the given name.
func (s *Service) PinReader(ctx context.Context, name string, r io.Reader) (string, error) {
	return s.Pin(ctx, source.FromReader(name, r))
}

// PinJson pins a JSON document and returns its CID.
func (s *Service) PinJson(ctx context.Context, value interface{}) (string, error) {
	return s.uploader.UploadJson(ctx, value)
}

// PinMetadata pins an asset URL and a metadata document referencing it.
func (s *Service) PinMetadata(ctx context.Context, name, description, imageUri string) (string, error) {
	return s.metadataUploader.Upload(ctx, name, description, imageUri)
}

type BatchResult struct {
	Input string `json:"input"`
	Cid   string `json:"cid,omitempty"`
	Url   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}

// PinBatch pins every input on the worker pool and returns results in
// input order. Failures are reported per item, successful items are
// unaffected.
func (s *Service) PinBatch(ctx context.Context, inputs []string) []BatchResult {
	results := make([]BatchResult, len(inputs))

	group := s.pool.NewGroup()
	for i, input := range inputs {
		i, input := i, input
		group.Submit(func() {
			results[i].Input = input

			src, err := source.FromString(input)
			if err != nil {
				results[i].Error = err.Error()
				return
			}

			cid, err := s.Pin(ctx, src)
			if err != nil {
				results[i].Error = err.Error()
				return
			}

			results[i].Cid = cid
			results[i].Url = s.GatewayUrl(cid)
		})
	}
	_ = group.Wait()

	return results
}

// GatewayUrl returns the public gateway URL for a CID.
func (s *Service) GatewayUrl(cid string) string {
	if strings.HasSuffix(s.gatewayUrl, "/") {
		return s.gatewayUrl + cid
	}
	return s.gatewayUrl + "/" + cid
}

func (s *Service) ApiIpPort() string {
	return s.apiIpPort
}

func (s *Service) pinPayload(ctx context.Context, payload *source.Payload) (string, error) {
	key := payloadKey(payload.Data)

	if cid, ok := s.cidCache.Get(key); ok {
		return cid, nil
	}

	cid, err, _ := s.uploadGroup.Do(key, func() (interface{}, error) {
		cid, err := s.uploader.UploadFile(ctx, payload.Name, bytes.NewReader(payload.Data))
		if err != nil {
			return "", err
		}

		s.cidCache.Add(key, cid)

		return cid, nil
	})
	if err != nil {
		return "", err
	}

	return cid.(string), nil
}

func payloadKey(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Start runs the API server until the context is cancelled.
func (s *Service) Start(ctx context.Context) error {
	if err := s.StartServer(ctx); err != nil {
		return fmt.Errorf("failed to start server: %v", err)
	}

	<-ctx.Done()
	return ctx.Err()
}
