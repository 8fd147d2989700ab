package attachment

import "errors"

var (
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrInvalidType        = errors.New("invalid attachment type")
)
