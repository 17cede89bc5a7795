package handlers

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alextreichler/shoppingmall/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addProductForm(name, price string) url.Values {
	return url.Values{
		"name":          {name},
		"category":      {"Tools"},
		"price":         {price},
		"thumbnail_url": {"url"},
	}
}

func TestAddProduct_ListProducts(t *testing.T) {
	ts := newTestServer(t, RouterOptions{})

	rec := ts.get(t, "/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = ts.get(t, "/add_product", addProductForm("Widget", "9.99"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Product added successfully!", decode[productResponse](t, rec).Message)

	rec = ts.get(t, "/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	products := decode[[]models.Product](t, rec)
	require.Len(t, products, 1)
	assert.Equal(t, "Widget", products[0].Name)
	assert.Equal(t, "Tools", products[0].Category)
	assert.True(t, decimal.RequireFromString("9.99").Equal(products[0].Price))
	assert.Equal(t, "url", products[0].ThumbnailURL)
}

func TestAddProduct_InvalidPrice(t *testing.T) {
	ts := newTestServer(t, RouterOptions{})

	rec := ts.get(t, "/add_product", addProductForm("Widget", "-1"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "price must be a non-negative finite number", detail(t, rec))

	rec = ts.get(t, "/add_product", addProductForm("Widget", "cheap"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = ts.get(t, "/add_product", addProductForm("Widget", "1e400"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = ts.get(t, "/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.Product](t, rec))
}

func TestProducts_ServerTimingAndRequestID(t *testing.T) {
	ts := newTestServer(t, RouterOptions{})

	rec := ts.get(t, "/products", nil)
	assert.Contains(t, rec.Header().Get("Server-Timing"), "db")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func pngUpload(t *testing.T, filename string, width, height int) (*bytes.Buffer, string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var imgBuf bytes.Buffer
	require.NoError(t, png.Encode(&imgBuf, img))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = fw.Write(imgBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestUploadThumbnail(t *testing.T) {
	uploadDir := filepath.Join(t.TempDir(), "uploads")
	ts := newTestServer(t, RouterOptions{UploadDir: uploadDir, UploadURL: "/static/uploads"})

	body, contentType := pngUpload(t, "big.png", 800, 200)
	req := httptest.NewRequest(http.MethodPost, "/upload_thumbnail", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[thumbnailResponse](t, rec)
	require.True(t, strings.HasPrefix(resp.ThumbnailURL, "/static/uploads/"), resp.ThumbnailURL)
	require.True(t, strings.HasSuffix(resp.ThumbnailURL, ".jpg"))

	f, err := os.Open(filepath.Join(uploadDir, filepath.Base(resp.ThumbnailURL)))
	require.NoError(t, err)
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Width)
	assert.Equal(t, 100, cfg.Height)
}

func TestUploadThumbnail_Rejects(t *testing.T) {
	ts := newTestServer(t, RouterOptions{UploadDir: t.TempDir(), UploadURL: "/static/uploads"})

	body, contentType := pngUpload(t, "picture.gif", 10, 10)
	req := httptest.NewRequest(http.MethodPost, "/upload_thumbnail", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.postForm(t, "/upload_thumbnail", url.Values{"image": {"not a file"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.get(t, "/upload_thumbnail", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
