package file

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (FileService, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir, "http://localhost:8080/uploads")
	require.NoError(t, err)
	return NewFileService(store), dir
}

func pngBytes(t *testing.T, w, h int, noisy bool) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	rng := rand.New(rand.NewSource(1))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: 200, G: 100, B: 50, A: 255}
			if noisy {
				c = color.RGBA{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadLeaveAttachment_PDF(t *testing.T) {
	svc, dir := newTestService(t)

	p, err := svc.UploadLeaveAttachment(context.Background(), "emp-1", strings.NewReader("%PDF-1.4"), "note.PDF")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, "leave/emp-1/"))
	assert.True(t, strings.HasSuffix(p, ".pdf"))

	data, err := os.ReadFile(filepath.Join(dir, p))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestUploadLeaveAttachment_RejectsUnknownType(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.UploadLeaveAttachment(context.Background(), "emp-1", strings.NewReader("x"), "run.exe")
	assert.ErrorIs(t, err, ErrInvalidFileType)
}

func TestUploadLeaveAttachment_CompressesLargeImages(t *testing.T) {
	svc, dir := newTestService(t)
	raw := pngBytes(t, 800, 800, true)
	require.Greater(t, len(raw), maxAttachmentImageSize)

	p, err := svc.UploadLeaveAttachment(context.Background(), "emp-1", bytes.NewReader(raw), "scan.png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(p, ".jpg"))

	info, err := os.Stat(filepath.Join(dir, p))
	require.NoError(t, err)
	assert.Less(t, info.Size(), int64(len(raw)))
}

func TestUploadCompanyLogo_FitsWithinBounds(t *testing.T) {
	svc, dir := newTestService(t)

	p, err := svc.UploadCompanyLogo(context.Background(), "acme", bytes.NewReader(pngBytes(t, 1024, 256, false)), "logo.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, "logos/acme/"))

	f, err := os.Open(filepath.Join(dir, p))
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.Width)
	assert.Equal(t, 128, cfg.Height)
}

func TestUploadCompanyLogo_RejectsGarbage(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.UploadCompanyLogo(context.Background(), "acme", strings.NewReader("not an image"), "logo.jpg")
	assert.ErrorIs(t, err, ErrInvalidFileType)
}

func TestFitWithin_KeepsSmallImages(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 50))
	assert.Same(t, image.Image(img), fitWithin(img, 512))
}
