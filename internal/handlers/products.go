package handlers

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/alextreichler/shoppingmall/internal/models"
	"github.com/alextreichler/shoppingmall/internal/store"
	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"github.com/shopspring/decimal"
)

const (
	maxUploadBytes = 10 << 20 // 10MB
	thumbnailWidth = 400
)

type ProductHandler struct {
	Store *store.Store

	// UploadDir receives resized thumbnails; UploadURL is the public prefix it is served under.
	UploadDir string
	UploadURL string
}

type productResponse struct {
	Message string          `json:"message"`
	Product *models.Product `json:"product"`
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.Store.ListProducts(r.Context())
	if err != nil {
		writeStoreError(w, r, "products", err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Add(w http.ResponseWriter, r *http.Request) {
	p, ok := parseParams(w, r)
	if !ok {
		return
	}
	name := p.required("name")
	category := p.required("category")
	priceStr := p.required("price")
	thumbnailURL := p.required("thumbnail_url")
	if !p.check(w) {
		return
	}

	price, err := decimal.NewFromString(strings.TrimSpace(priceStr))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid price format.")
		return
	}

	product, err := h.Store.AddProduct(r.Context(), name, category, price, thumbnailURL)
	if err != nil {
		writeStoreError(w, r, "add_product", err)
		return
	}

	slog.Info("Product added", "id", product.ID, "name", product.Name)
	writeJSON(w, http.StatusOK, productResponse{Message: "Product added successfully!", Product: product})
}

type thumbnailResponse struct {
	Message      string `json:"message"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// UploadThumbnail stores a resized JPEG copy of the uploaded PNG or JPEG and
// returns the URL to pass as thumbnail_url to /add_product.
func (h *ProductHandler) UploadThumbnail(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "File too large or not a multipart form. Max 10MB.")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Image file is required.")
		return
	}
	defer file.Close()

	var img image.Image
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".png":
		img, err = png.Decode(file)
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(file)
	default:
		writeError(w, http.StatusBadRequest, "Unsupported image format. Only PNG, JPG, JPEG are allowed.")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to decode image.")
		return
	}

	if img.Bounds().Dx() > thumbnailWidth {
		img = resize.Resize(thumbnailWidth, 0, img, resize.Lanczos3)
	}

	filename := fmt.Sprintf("%s.jpg", uuid.New().String())
	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		slog.Error("Failed to create upload directory", "dir", h.UploadDir, "error", err)
		writeError(w, http.StatusInternalServerError, "Error saving image file.")
		return
	}
	out, err := os.Create(filepath.Join(h.UploadDir, filename))
	if err != nil {
		slog.Error("Failed to create thumbnail file", "error", err)
		writeError(w, http.StatusInternalServerError, "Error saving image file.")
		return
	}
	defer out.Close()

	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: 80}); err != nil {
		slog.Error("Failed to encode thumbnail", "error", err)
		writeError(w, http.StatusInternalServerError, "Error encoding image.")
		return
	}

	url := path.Join(h.UploadURL, filename)
	slog.Info("Thumbnail uploaded", "url", url, "original", header.Filename)
	writeJSON(w, http.StatusOK, thumbnailResponse{Message: "Thumbnail uploaded successfully!", ThumbnailURL: url})
}
