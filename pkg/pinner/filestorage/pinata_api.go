package filestorage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/solstice-labs/ipfs-pinner/pkg/pinner/source"
)

const (
	DefaultApiUrl = "https://api.pinata.cloud"

	pinFilePath = "/pinning/pinFileToIPFS"
	pinJsonPath = "/pinning/pinJSONToIPFS"

	defaultTimeout = 30 * time.Second
)

var (
	// ErrConfigMissing is returned when no JWT is configured. No network
	// call is attempted in that case.
	ErrConfigMissing = errors.New("IPFS upload configuration missing.")

	// ErrInvalidResponse is returned when Pinata answers 2xx but the body
	// carries no IpfsHash.
	ErrInvalidResponse = errors.New("IPFS upload failed: Invalid response from Pinata.")
)

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

type pinataError struct {
	Error struct {
		Reason  string `json:"reason"`
		Details string `json:"details"`
	} `json:"error"`
}

// PinataApiUploader pins content through Pinata's HTTP API directly.
type PinataApiUploader struct {
	jwt    string
	apiUrl string

	httpClient *http.Client
}

type PinataApiConfig struct {
	Jwt        string
	ApiUrl     string
	HttpClient *http.Client
}

var _ FileUploader = (*PinataApiUploader)(nil)

func NewPinataApiUploader(config PinataApiConfig) *PinataApiUploader {
	if config.ApiUrl == "" {
		config.ApiUrl = DefaultApiUrl
	}
	if config.HttpClient == nil {
		config.HttpClient = &http.Client{
			Timeout: defaultTimeout,
		}
	}

	return &PinataApiUploader{
		jwt:        config.Jwt,
		apiUrl:     config.ApiUrl,
		httpClient: config.HttpClient,
	}
}

func (u *PinataApiUploader) UploadFile(ctx context.Context, name string, r io.Reader) (string, error) {
	if u.jwt == "" {
		return "", ErrConfigMissing
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", uploadError(fmt.Errorf("failed to read file: %v", err))
	}

	return u.pinFile(ctx, name, data)
}

func (u *PinataApiUploader) UploadUrl(ctx context.Context, fileUrl string) (string, error) {
	if u.jwt == "" {
		return "", ErrConfigMissing
	}

	data, err := u.fetchUrl(ctx, fileUrl)
	if err != nil {
		return "", uploadError(err)
	}

	return u.pinFile(ctx, fileNameFromUrl(fileUrl), data)
}

func (u *PinataApiUploader) UploadJson(ctx context.Context, value interface{}) (string, error) {
	if u.jwt == "" {
		return "", ErrConfigMissing
	}

	body, err := json.Marshal(value)
	if err != nil {
		return "", uploadError(fmt.Errorf("failed to marshal json: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.apiUrl+pinJsonPath, bytes.NewReader(body))
	if err != nil {
		return "", uploadError(err)
	}
	req.Header.Set("Authorization", "Bearer "+u.jwt)
	req.Header.Set("Content-Type", "application/json")

	return u.doPin(req)
}

// Resolve normalizes a source into an in-memory payload. Remote URLs
// are fetched with the same bearer token used for pinning.
func (u *PinataApiUploader) Resolve(ctx context.Context, src source.Source) (*source.Payload, error) {
	if u.jwt == "" {
		return nil, ErrConfigMissing
	}

	switch src.Kind() {
	case source.KindReader:
		data, err := io.ReadAll(src.Reader())
		if err != nil {
			return nil, uploadError(fmt.Errorf("failed to read file: %v", err))
		}
		return &source.Payload{Name: src.Name(), Data: data}, nil
	case source.KindDataUrl:
		payload, err := source.DecodeDataUrl(src)
		if err != nil {
			return nil, uploadError(err)
		}
		return payload, nil
	case source.KindRemoteUrl:
		data, err := u.fetchUrl(ctx, src.Url())
		if err != nil {
			return nil, uploadError(err)
		}
		return &source.Payload{Name: fileNameFromUrl(src.Url()), Data: data}, nil
	default:
		return nil, uploadError(fmt.Errorf("unknown source kind %d", src.Kind()))
	}
}

// Upload normalizes a source and pins it with a single multipart POST.
func (u *PinataApiUploader) Upload(ctx context.Context, src source.Source) (string, error) {
	payload, err := u.Resolve(ctx, src)
	if err != nil {
		return "", err
	}

	return u.pinFile(ctx, payload.Name, payload.Data)
}

func (u *PinataApiUploader) pinFile(ctx context.Context, name string, data []byte) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", uploadError(fmt.Errorf("failed to create form file: %v", err))
	}

	if _, err := part.Write(data); err != nil {
		return "", uploadError(fmt.Errorf("failed to write form file: %v", err))
	}

	if err := writer.Close(); err != nil {
		return "", uploadError(fmt.Errorf("failed to close multipart writer: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.apiUrl+pinFilePath, body)
	if err != nil {
		return "", uploadError(err)
	}
	req.Header.Set("Authorization", "Bearer "+u.jwt)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return u.doPin(req)
}

func (u *PinataApiUploader) doPin(req *http.Request) (string, error) {
	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", uploadError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", uploadError(fmt.Errorf("failed to read response: %v", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", uploadError(errors.New(pinataErrorDetail(resp.StatusCode, body)))
	}

	var parsed pinResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", ErrInvalidResponse
	}
	if parsed.IpfsHash == "" {
		return "", ErrInvalidResponse
	}

	return parsed.IpfsHash, nil
}

func (u *PinataApiUploader) fetchUrl(ctx context.Context, fileUrl string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileUrl, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+u.jwt)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to fetch %s: status %d", fileUrl, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %v", fileUrl, err)
	}

	return data, nil
}

// uploadError maps any failure into the fixed upload error contract,
// leaving the sentinel errors untouched.
func uploadError(err error) error {
	if errors.Is(err, ErrConfigMissing) || errors.Is(err, ErrInvalidResponse) {
		return err
	}
	return fmt.Errorf("IPFS upload failed: %v", err)
}

func pinataErrorDetail(statusCode int, body []byte) string {
	var parsed pinataError
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Details != "" {
		return parsed.Error.Details
	}
	return fmt.Sprintf("pinata returned status %d", statusCode)
}

func fileNameFromUrl(fileUrl string) string {
	parsed, err := url.Parse(fileUrl)
	if err != nil || path.Base(parsed.Path) == "/" || path.Base(parsed.Path) == "." {
		return uuid.NewString()
	}
	return path.Base(parsed.Path)
}
