package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // registers the webp decoder used by imaging.Decode

	"omegavideos/internal/metrics"
	domain "omegavideos/internal/model"
	"omegavideos/internal/storage"
)

const avatarJPEGQuality = 85

// MediaService validates uploads and writes them to the configured store.
type MediaService struct {
	store            storage.Store
	defaultAvatarURL string
}

func NewMediaService(store storage.Store, defaultAvatarURL string) *MediaService {
	return &MediaService{store: store, defaultAvatarURL: defaultAvatarURL}
}

// DefaultAvatarURL is the avatar given to new accounts, nil when unset.
func (s *MediaService) DefaultAvatarURL() *string {
	if s.defaultAvatarURL == "" {
		return nil
	}
	url := s.defaultAvatarURL
	return &url
}

// UploadVideo checks extension and size and stores the file unchanged.
func (s *MediaService) UploadVideo(ctx context.Context, file *domain.MediaFile) (*domain.UploadResult, error) {
	if file == nil || file.Body == nil {
		return nil, domain.ErrMediaRequired
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType, ok := domain.VideoContentType(ext)
	if !ok {
		metrics.MediaUploadsTotal.WithLabelValues("video", "rejected").Inc()
		return nil, domain.ErrUnsupportedVideoType
	}
	if file.Size > domain.MaxVideoSizeBytes {
		metrics.MediaUploadsTotal.WithLabelValues("video", "rejected").Inc()
		return nil, domain.ErrFileTooLarge
	}

	key := fmt.Sprintf("%s/%s%s", domain.VideoFolder, uuid.NewString(), ext)
	res, err := s.store.Put(ctx, key, file.Body, contentType, domain.VideoCacheControl)
	if err != nil {
		metrics.MediaUploadsTotal.WithLabelValues("video", "error").Inc()
		return nil, err
	}

	metrics.MediaUploadsTotal.WithLabelValues("video", "ok").Inc()
	return res, nil
}

// UploadAvatar enforces size/type, normalizes to 200x200 JPEG and stores it.
func (s *MediaService) UploadAvatar(ctx context.Context, file *domain.MediaFile) (*domain.UploadResult, error) {
	if file == nil || file.Body == nil {
		return nil, domain.ErrMediaRequired
	}

	data, err := readAndValidateImage(file, domain.MaxAvatarSizeBytes)
	if err != nil {
		metrics.MediaUploadsTotal.WithLabelValues("avatar", "rejected").Inc()
		return nil, err
	}

	jpegBytes, err := resizeToJPEG(data, domain.AvatarWidth, domain.AvatarHeight, avatarJPEGQuality)
	if err != nil {
		metrics.MediaUploadsTotal.WithLabelValues("avatar", "rejected").Inc()
		return nil, err
	}

	key := fmt.Sprintf("%s/%s%s", domain.AvatarFolder, uuid.NewString(), domain.AvatarExt)
	res, err := s.store.Put(ctx, key, bytes.NewReader(jpegBytes), domain.ContentTypeJPEG, domain.AvatarCacheControl)
	if err != nil {
		metrics.MediaUploadsTotal.WithLabelValues("avatar", "error").Inc()
		return nil, err
	}

	metrics.MediaUploadsTotal.WithLabelValues("avatar", "ok").Inc()
	return res, nil
}

// Delete removes an object by key. An empty key is a no-op.
func (s *MediaService) Delete(ctx context.Context, key string) error {
	return s.store.Delete(ctx, key)
}

// readAndValidateImage loads the upload into memory with size and type checks.
func readAndValidateImage(file *domain.MediaFile, maxSize int64) ([]byte, error) {
	if file.Size > maxSize {
		return nil, domain.ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(file.Body, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, domain.ErrFileTooLarge
	}

	contentType := file.ContentType
	if contentType == "" && len(data) > 0 {
		contentType = http.DetectContentType(data[:min(len(data), 512)])
	}
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	if !domain.IsAllowedImageType(contentType) {
		return nil, domain.ErrInvalidImageType
	}

	return data, nil
}

// resizeToJPEG center-crops to the target size and encodes as JPEG.
func resizeToJPEG(data []byte, width, height, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImageType, err)
	}

	resized := imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
