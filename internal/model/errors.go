package model

import (
	"errors"
	"fmt"
)

// Error classes. Specific errors below wrap one of these so callers can
// match either the exact rule or the whole class with errors.Is.
var (
	ErrNotFound               = errors.New("not found")
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrForbidden              = errors.New("forbidden")
	ErrValidation             = errors.New("validation failed")

	// ErrDuplicateRelation is returned by relation inserts when the pair
	// already exists. Services turn it into a toggle-off.
	ErrDuplicateRelation = errors.New("relation already exists")
)

// Not found
var (
	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
	ErrVideoNotFound        = fmt.Errorf("video %w", ErrNotFound)
	ErrCommentNotFound      = fmt.Errorf("comment %w", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("notification %w", ErrNotFound)
)

// Authorization
var (
	ErrNotVideoOwner       = fmt.Errorf("%w: not the owner of this video", ErrForbidden)
	ErrCannotDeleteComment = fmt.Errorf("%w: only the comment author or video owner can delete", ErrForbidden)
)

// Validation
var (
	ErrTitleRequired        = fmt.Errorf("%w: title is required", ErrValidation)
	ErrTitleTooLong         = fmt.Errorf("%w: title too long", ErrValidation)
	ErrDescriptionTooLong   = fmt.Errorf("%w: description too long", ErrValidation)
	ErrCommentEmpty         = fmt.Errorf("%w: comment text is empty", ErrValidation)
	ErrCommentTooLong       = fmt.Errorf("%w: comment text too long", ErrValidation)
	ErrBioTooLong           = fmt.Errorf("%w: bio too long", ErrValidation)
	ErrInvalidLanguage      = fmt.Errorf("%w: unsupported language", ErrValidation)
	ErrUnsupportedVideoType = fmt.Errorf("%w: unsupported video type", ErrValidation)
	ErrFileTooLarge         = fmt.Errorf("%w: file too large", ErrValidation)
	ErrInvalidImageType     = fmt.Errorf("%w: invalid image type", ErrValidation)
	ErrMediaRequired        = fmt.Errorf("%w: media file is required", ErrValidation)

	// ErrOrphanReply means the parent comment is missing or belongs to another video.
	ErrOrphanReply = fmt.Errorf("%w: parent comment not found on this video", ErrValidation)

	// ErrInvalidFollowTarget covers following yourself or a missing account.
	ErrInvalidFollowTarget = fmt.Errorf("%w: invalid follow target", ErrValidation)
)

// Error codes for HTTP responses
const (
	CodeAuthRequired         = "AUTH_REQUIRED"
	CodeTokenExpired         = "TOKEN_EXPIRED"
	CodeTokenInvalid         = "TOKEN_INVALID"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeValidation           = "VALIDATION_ERROR"
	CodeTitleRequired        = "TITLE_REQUIRED"
	CodeTitleTooLong         = "TITLE_TOO_LONG"
	CodeDescriptionTooLong   = "DESCRIPTION_TOO_LONG"
	CodeCommentEmpty         = "COMMENT_EMPTY"
	CodeCommentTooLong       = "COMMENT_TOO_LONG"
	CodeBioTooLong           = "BIO_TOO_LONG"
	CodeInvalidLanguage      = "INVALID_LANGUAGE"
	CodeOrphanReply          = "ORPHAN_REPLY"
	CodeInvalidFollowTarget  = "INVALID_FOLLOW_TARGET"
	CodeFileTooLarge         = "FILE_TOO_LARGE"
	CodeUnsupportedVideoType = "UNSUPPORTED_VIDEO_TYPE"
	CodeInvalidImageType     = "INVALID_IMAGE_TYPE"
	CodeMediaRequired        = "MEDIA_REQUIRED"
)
