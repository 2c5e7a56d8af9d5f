package service

import "errors"

var (
	ErrIDRequired           = errors.New("id is required")
	ErrNotFound             = errors.New("not found")
	ErrReaderNil            = errors.New("reader is nil")
	ErrInvalidFileType      = errors.New("invalid file type, only PDFs are accepted")
	ErrNotValidated         = errors.New("file has not been validated or is invalid")
	ErrAlreadyProcessed     = errors.New("file has already been processed")
	ErrProcessingInProgress = errors.New("file is already being processed")
	ErrExtractionFailed     = errors.New("failed to extract data from receipt")
)
