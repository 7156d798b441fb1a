package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"avtosotuv/internal/domain"
)

// ImageStore persists an image and returns the URL clients should reference.
type ImageStore interface {
	Save(ctx context.Context, ext, contentType string, data []byte) (string, error)
}

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type UploadService struct {
	Store       ImageStore
	MaxFiles    int
	MaxFileSize int64
}

// SaveImages stores every file after checking count, size and sniffed type.
// Nothing is stored unless every file passes.
func (s *UploadService) SaveImages(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 {
		return nil, domain.Invalid("images", "Rasm yuklanmadi")
	}
	if len(files) > s.MaxFiles {
		return nil, domain.Invalid("images", fmt.Sprintf("Juda ko'p fayl (max %d ta)", s.MaxFiles))
	}

	type blob struct {
		ext, ctype string
		data       []byte
	}
	blobs := make([]blob, 0, len(files))
	for _, fh := range files {
		if fh.Size > s.MaxFileSize {
			return nil, domain.Invalid("images", fmt.Sprintf("Fayl hajmi juda katta (max %dMB)", s.MaxFileSize>>20))
		}
		data, err := readAll(fh, s.MaxFileSize)
		if err != nil {
			return nil, err
		}
		ctype := http.DetectContentType(data)
		ext, ok := imageExt[ctype]
		if !ok {
			return nil, domain.Invalid("images", "Faqat JPG, PNG va WebP formatdagi rasmlar ruxsat etiladi")
		}
		blobs = append(blobs, blob{ext: ext, ctype: ctype, data: data})
	}

	urls := make([]string, 0, len(blobs))
	for _, b := range blobs {
		u, err := s.Store.Save(ctx, b.ext, b.ctype, b.data)
		if err != nil {
			return nil, fmt.Errorf("store image: %w", err)
		}
		urls = append(urls, u)
	}
	return urls, nil
}

func readAll(fh *multipart.FileHeader, max int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, max+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > max {
		return nil, domain.Invalid("images", fmt.Sprintf("Fayl hajmi juda katta (max %dMB)", max>>20))
	}
	return data, nil
}
