package photo

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func upload(t *testing.T, app *fiber.App, filename string, content []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/photos", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestUploadAndServe(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	app := fiber.New()
	app.Post("/photos", UploadHandler(store, zap.NewNop()))
	app.Get("/photos/:name", ServeHandler(store))

	resp := upload(t, app, "receipt.png", pngHeader)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.True(t, strings.HasSuffix(body["photo"], ".png"), body["photo"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/photos/"+body["photo"], nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}

func TestUploadRejectsNonImages(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	app := fiber.New()
	app.Post("/photos", UploadHandler(store, zap.NewNop()))

	resp := upload(t, app, "notes.png", []byte("just some text"))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}
