package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

var ErrInvalidFileType = errors.New("invalid file type")

const (
	maxAttachmentImageSize = 500 * 1024
	maxLogoDimension       = 512
)

var (
	imageExts      = []string{".jpg", ".jpeg", ".png"}
	attachmentExts = []string{".jpg", ".jpeg", ".png", ".pdf"}
)

type FileService interface {
	// UploadLeaveAttachment stores a leave request attachment (pdf, jpg, png).
	// Large images are re-encoded as JPEG.
	UploadLeaveAttachment(ctx context.Context, employeeID string, file io.Reader, filename string) (string, error)

	// UploadCompanyLogo stores a logo scaled down to fit 512x512.
	UploadCompanyLogo(ctx context.Context, companyUsername string, file io.Reader, filename string) (string, error)

	DeleteFile(ctx context.Context, path string) error
	GetFileURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}

type fileServiceImpl struct {
	storage storage.FileStorage
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
	}
}

func extension(filename string, allowed []string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !slices.Contains(allowed, ext) {
		return "", fmt.Errorf("%w: only %s allowed", ErrInvalidFileType, strings.Join(allowed, ", "))
	}
	return ext, nil
}

func contentType(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	default:
		return "image/jpeg"
	}
}

// UploadLeaveAttachment uploads leave request attachment
func (s *fileServiceImpl) UploadLeaveAttachment(ctx context.Context, employeeID string, file io.Reader, filename string) (string, error) {
	ext, err := extension(filename, attachmentExts)
	if err != nil {
		return "", err
	}

	buffer, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read attachment: %w", err)
	}

	if ext != ".pdf" && len(buffer) > maxAttachmentImageSize {
		compressed, err := compressImage(buffer, maxAttachmentImageSize)
		if err != nil {
			return "", fmt.Errorf("failed to compress attachment: %w", err)
		}
		buffer, ext = compressed, ".jpg"
	}

	newFilename := fmt.Sprintf("%s-%d%s", uuid.New().String(), time.Now().Unix(), ext)
	p := path.Join("leave", employeeID, newFilename)

	uploadedPath, err := s.storage.Upload(ctx, bytes.NewReader(buffer), p, contentType(ext))
	if err != nil {
		return "", fmt.Errorf("failed to upload leave attachment: %w", err)
	}

	return uploadedPath, nil
}

// UploadCompanyLogo uploads a company logo
func (s *fileServiceImpl) UploadCompanyLogo(ctx context.Context, companyUsername string, file io.Reader, filename string) (string, error) {
	ext, err := extension(filename, imageExts)
	if err != nil {
		return "", err
	}

	buffer, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read logo: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return "", fmt.Errorf("%w: failed to decode image: %v", ErrInvalidFileType, err)
	}

	// PNG keeps transparency, everything else becomes JPEG
	var out bytes.Buffer
	scaled := fitWithin(img, maxLogoDimension)
	if ext == ".png" {
		err = png.Encode(&out, scaled)
	} else {
		ext = ".jpg"
		err = jpeg.Encode(&out, scaled, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return "", fmt.Errorf("failed to encode logo: %w", err)
	}

	newFilename := fmt.Sprintf("%s-%s%s", companyUsername, uuid.New().String(), ext)
	p := path.Join("logos", companyUsername, newFilename)

	uploadedPath, err := s.storage.Upload(ctx, &out, p, contentType(ext))
	if err != nil {
		return "", fmt.Errorf("failed to upload company logo: %w", err)
	}

	return uploadedPath, nil
}

// DeleteFile deletes a file
func (s *fileServiceImpl) DeleteFile(ctx context.Context, path string) error {
	return s.storage.Delete(ctx, path)
}

// GetFileURL generates URL to access file
func (s *fileServiceImpl) GetFileURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	return s.storage.GetURL(ctx, path, expiry)
}

// ==================== HELPER FUNCTIONS ====================

// compressImage re-encodes an image as JPEG with decreasing quality, then
// halves its dimensions until the result fits maxSize.
func compressImage(buffer []byte, maxSize int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image: %v", ErrInvalidFileType, err)
	}

	current := img
	for {
		for quality := 85; quality >= 50; quality -= 5 {
			buf := new(bytes.Buffer)
			if err := jpeg.Encode(buf, current, &jpeg.Options{Quality: quality}); err != nil {
				return nil, fmt.Errorf("failed to encode JPEG: %w", err)
			}
			if buf.Len() <= maxSize {
				return buf.Bytes(), nil
			}
		}

		b := current.Bounds()
		if b.Dx() <= 320 || b.Dy() <= 320 {
			buf := new(bytes.Buffer)
			if err := jpeg.Encode(buf, current, &jpeg.Options{Quality: 50}); err != nil {
				return nil, fmt.Errorf("failed to encode JPEG: %w", err)
			}
			return buf.Bytes(), nil
		}
		current = resizeImage(current, b.Dx()/2, b.Dy()/2)
	}
}

// fitWithin scales img down so neither side exceeds max, keeping the aspect ratio.
func fitWithin(img image.Image, max int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= max && h <= max {
		return img
	}
	if w >= h {
		h = h * max / w
		w = max
	} else {
		w = w * max / h
		h = max
	}
	return resizeImage(img, max1(w), max1(h))
}

func max1(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

// resizeImage resizes an image to the specified dimensions using high-quality interpolation
func resizeImage(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
