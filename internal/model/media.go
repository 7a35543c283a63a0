package model

import "io"

// Stored objects never change once written.
const immutableCacheControl = "public, max-age=31536000"

// Video uploads are stored as sent.
const (
	MaxVideoSizeBytes = 100 * 1024 * 1024
	VideoFolder       = "videos"
	VideoCacheControl = immutableCacheControl
)

// Avatars are re-encoded to a fixed square JPEG before storage.
const (
	MaxAvatarSizeBytes = 5 * 1024 * 1024
	AvatarWidth        = 200
	AvatarHeight       = 200
	AvatarFolder       = "avatars"
	AvatarExt          = ".jpg"
	AvatarCacheControl = immutableCacheControl
)

const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeWebP = "image/webp"
)

// videoTypes maps the accepted file extensions to their content type.
var videoTypes = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
}

var avatarSourceTypes = map[string]bool{
	ContentTypeJPEG: true,
	ContentTypePNG:  true,
	ContentTypeWebP: true,
}

// VideoContentType returns the content type for an accepted extension.
func VideoContentType(ext string) (string, bool) {
	ct, ok := videoTypes[ext]
	return ct, ok
}

// IsAllowedImageType reports whether an avatar upload can be decoded.
func IsAllowedImageType(contentType string) bool {
	return avatarSourceTypes[contentType]
}

// MediaFile is an uploaded binary as the services see it.
type MediaFile struct {
	Filename    string
	Size        int64
	ContentType string
	Body        io.ReadSeeker
}

// UploadResult locates a stored object. Key is what Delete takes.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}
