package storage

import "errors"

var (
	ErrInvalidFile    = errors.New("invalid file")
	ErrFileTooLarge   = errors.New("file too large")
	ErrUploadFailed   = errors.New("file upload failed")
	ErrStorageFailure = errors.New("storage backend failure")
)
