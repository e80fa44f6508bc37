package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/adrium/goheif"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	"golang.org/x/image/draw"
)

// ImageProcessor normalizes uploaded images: HEIC/HEIF from phones is
// decoded, oversized images are scaled down, and everything is re-encoded
// as lossy WebP.
type ImageProcessor struct {
	Quality  int // WebP quality (0-100)
	MaxWidth int // longest allowed edge in pixels; 0 disables resizing
}

// NewImageProcessor creates an image processor with the given WebP quality.
func NewImageProcessor(quality int) *ImageProcessor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return &ImageProcessor{Quality: quality, MaxWidth: 2560}
}

// IsImageFile checks if the file is a supported image type.
func (ip *ImageProcessor) IsImageFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".heic", ".heif":
		return true
	}
	return false
}

// ConvertToWebP converts an uploaded image to WebP and returns the bytes
// and new filename. Non-image files and files already in WebP return nil
// bytes, meaning the original should be stored as-is.
func (ip *ImageProcessor) ConvertToWebP(file *multipart.FileHeader) ([]byte, string, error) {
	if !ip.IsImageFile(file.Filename) {
		return nil, file.Filename, nil
	}
	if strings.ToLower(filepath.Ext(file.Filename)) == ".webp" {
		return nil, file.Filename, nil
	}

	src, err := file.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}

	return ip.ConvertToWebPBytes(data, file.Filename)
}

// ConvertToWebPBytes converts raw image bytes to WebP.
func (ip *ImageProcessor) ConvertToWebPBytes(data []byte, originalFilename string) ([]byte, string, error) {
	img, err := ip.decodeImage(bytes.NewReader(data), originalFilename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	img = ip.resize(img)

	var buf bytes.Buffer
	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(ip.Quality))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create encoder options: %w", err)
	}
	if err := webp.Encode(&buf, img, options); err != nil {
		return nil, "", fmt.Errorf("failed to encode to webp: %w", err)
	}

	ext := filepath.Ext(originalFilename)
	newFilename := strings.TrimSuffix(originalFilename, ext) + ".webp"
	return buf.Bytes(), newFilename, nil
}

// Thumbnail renders a small JPEG preview of the image, longest edge capped
// at maxEdge pixels.
func (ip *ImageProcessor) Thumbnail(data []byte, originalFilename string, maxEdge int) ([]byte, error) {
	img, err := ip.decodeImage(bytes.NewReader(data), originalFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	scaled := scaleDown(img, maxEdge)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

func (ip *ImageProcessor) resize(img image.Image) image.Image {
	if ip.MaxWidth <= 0 {
		return img
	}
	return scaleDown(img, ip.MaxWidth)
}

// scaleDown proportionally scales img so its longest edge is at most
// maxEdge. Images already small enough pass through untouched.
func scaleDown(img image.Image, maxEdge int) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	longest := width
	if height > longest {
		longest = height
	}
	if longest <= maxEdge {
		return img
	}

	scale := float64(maxEdge) / float64(longest)
	dst := image.NewRGBA(image.Rect(0, 0, int(float64(width)*scale), int(float64(height)*scale)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// decodeImage decodes an image from a reader based on file extension.
func (ip *ImageProcessor) decodeImage(r io.Reader, filename string) (image.Image, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".jpg", ".jpeg":
		return jpeg.Decode(r)
	case ".png":
		return png.Decode(r)
	case ".webp":
		return webp.Decode(r, nil)
	case ".heic", ".heif":
		return goheif.Decode(r)
	default:
		img, _, err := image.Decode(r)
		return img, err
	}
}
