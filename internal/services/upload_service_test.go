package services_test

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avtosotuv/internal/domain"
	"avtosotuv/internal/services"
)

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpegHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")
)

type memStore struct{ saved []string }

func (m *memStore) Save(_ context.Context, ext, _ string, _ []byte) (string, error) {
	u := fmt.Sprintf("/uploads/%d%s", len(m.saved), ext)
	m.saved = append(m.saved, u)
	return u, nil
}

func fileHeaders(t *testing.T, files ...[]byte) []*multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for i, data := range files {
		part, err := w.CreateFormFile("images", fmt.Sprintf("f%d.bin", i))
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["images"]
}

func TestSaveImagesSniffsType(t *testing.T) {
	store := &memStore{}
	svc := &services.UploadService{Store: store, MaxFiles: 5, MaxFileSize: 1 << 20}

	urls, err := svc.SaveImages(context.Background(), fileHeaders(t, pngHeader, jpegHeader))
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/0.png", "/uploads/1.jpg"}, urls)
}

func TestSaveImagesRejects(t *testing.T) {
	ctx := context.Background()
	var ve *domain.ValidationError

	store := &memStore{}
	svc := &services.UploadService{Store: store, MaxFiles: 2, MaxFileSize: 64}

	_, err := svc.SaveImages(ctx, nil)
	assert.ErrorAs(t, err, &ve)

	_, err = svc.SaveImages(ctx, fileHeaders(t, pngHeader, pngHeader, pngHeader))
	assert.ErrorAs(t, err, &ve)

	_, err = svc.SaveImages(ctx, fileHeaders(t, pngHeader, []byte("<html><body>not an image</body></html>")))
	assert.ErrorAs(t, err, &ve)

	_, err = svc.SaveImages(ctx, fileHeaders(t, append(pngHeader, make([]byte, 100)...)))
	assert.ErrorAs(t, err, &ve)

	assert.Empty(t, store.saved, "nothing is stored when any file fails")
}
