package pinner_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solstice-labs/ipfs-pinner/pkg/pinner"
)

func TestServiceApi_GetRouter(t *testing.T) {
	t.Run("GET /health", func(t *testing.T) {
		router := setupTestService(t).GetRouter()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/health", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", w.Body.String())
	})

	t.Run("GET /ipfs/:cid", func(t *testing.T) {
		router := setupTestService(t).GetRouter()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ipfs/test-cid", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://gateway.pinata.cloud/ipfs/test-cid", w.Body.String())
	})

	t.Run("POST /pin", func(t *testing.T) {
		router := setupTestService(t).GetRouter()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/pin", strings.NewReader(`{"input": "data:text/plain;base64,aGVsbG8="}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var result map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
		assert.Equal(t, "test-cid", result["cid"])
		assert.Equal(t, "https://gateway.pinata.cloud/ipfs/test-cid", result["url"])
	})

	t.Run("POST /pin missing input", func(t *testing.T) {
		router := setupTestService(t).GetRouter()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/pin", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("POST /pin unsupported input", func(t *testing.T) {
		router := setupTestService(t).GetRouter()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/pin", strings.NewReader(`{"input": "not a url"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("POST /pin upload error", func(t *testing.T) {
		uploader := newMockFileUploader()
		uploader.uploadFile = func(ctx context.Context, name string, r io.Reader) (string, error) {
			return "", assert.AnError
		}

		router := setupTestService(t, func(config *pinner.ServiceConfig) {
			config.Uploader = uploader
		}).GetRouter()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/pin", strings.NewReader(`{"input": "data:text/plain;base64,aGVsbG8="}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, assert.AnError.Error(), w.Body.String())
	})

	t.Run("POST /pin/file", func(t *testing.T) {
		uploader := newMockFileUploader()
		uploader.uploadFile = func(ctx context.Context, name string, r io.Reader) (string, error) {
			data, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, "a.txt", name)
			assert.Equal(t, []byte("file-bytes"), data)
			return "test-cid", nil
		}

		router := setupTestService(t, func(config *pinner.ServiceConfig) {
			config.Uploader = uploader
		}).GetRouter()

		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile("file", "a.txt")
		require.NoError(t, err)
		_, err = part.Write([]byte("file-bytes"))
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/pin/file", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var result map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
		assert.Equal(t, "test-cid", result["cid"])
	})

	t.Run("POST /pin/file without file field", func(t *testing.T) {
		router := setupTestService(t).GetRouter()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/pin/file", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("POST /pin/json", func(t *testing.T) {
		var uploaded interface{}
		uploader := newMockFileUploader()
		uploader.uploadJson = func(ctx context.Context, json interface{}) (string, error) {
			uploaded = json
			return "json-cid", nil
		}

		router := setupTestService(t, func(config *pinner.ServiceConfig) {
			config.Uploader = uploader
		}).GetRouter()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/pin/json", strings.NewReader(`{"name": "cat"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, map[string]interface{}{"name": "cat"}, uploaded)

		var result map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
		assert.Equal(t, "json-cid", result["cid"])
	})

	t.Run("POST /pin/metadata", func(t *testing.T) {
		router := setupTestService(t).GetRouter()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/pin/metadata", strings.NewReader(
			`{"name": "Cat", "description": "A cat.", "image": "https://example.com/cat.png"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var result map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
		assert.Equal(t, "json-cid", result["cid"])
	})

	t.Run("POST /pin/metadata missing image", func(t *testing.T) {
		router := setupTestService(t).GetRouter()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/pin/metadata", strings.NewReader(`{"name": "Cat"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("POST /pin/batch", func(t *testing.T) {
		router := setupTestService(t).GetRouter()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/pin/batch", strings.NewReader(
			`{"inputs": ["data:text/plain;base64,aGVsbG8=", "bogus"]}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var results []pinner.BatchResult
		require.NoError(t, json.NewDecoder(w.Body).Decode(&results))
		require.Len(t, results, 2)
		assert.Equal(t, "test-cid", results[0].Cid)
		assert.Contains(t, results[1].Error, "unsupported input")
	})
}
