package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/01moynul/relique/internal/imaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UploadFile handles POST /v1/uploads
// It normalises the image, saves it to the upload folder and returns the URL.
func (h *Handlers) UploadFile(c *gin.Context) {
	// 1. Cap the body and get the file from the request
	if h.Config.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Config.MaxUploadBytes)
	}
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read upload"})
		return
	}
	defer file.Close()

	// 2. Decode, downscale and re-encode
	img, err := imaging.Process(file)
	if errors.Is(err, imaging.ErrUnsupportedFormat) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only JPEG and PNG images are accepted"})
		return
	}
	if errors.Is(err, imaging.ErrTooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image dimensions too large"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not decode image"})
		return
	}

	// 3. Create the upload directory if it doesn't exist
	if err := os.MkdirAll(h.Config.UploadDir, 0o755); err != nil {
		h.respondError(c, err, "Upload")
		return
	}

	// 4. Save under a fresh name
	newFilename := uuid.NewString() + img.Ext()
	if err := os.WriteFile(filepath.Join(h.Config.UploadDir, newFilename), img.Data, 0o644); err != nil {
		h.respondError(c, err, "Upload")
		return
	}

	// 5. Return the public URL
	publicURL := fmt.Sprintf("%s/uploads/%s", strings.TrimRight(h.Config.BaseURL, "/"), newFilename)
	h.recordActivity(c, "upload.create", "upload", newFilename, header.Filename)

	c.JSON(http.StatusCreated, gin.H{
		"url":    publicURL,
		"mime":   img.MIME,
		"width":  img.Width,
		"height": img.Height,
	})
}
