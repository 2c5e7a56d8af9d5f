package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"mime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"receiptiq/internal/lock"
	"receiptiq/internal/logging"
	"receiptiq/internal/model"
	"receiptiq/internal/pdfcheck"
	"receiptiq/internal/record"
	"receiptiq/internal/repository"
	"receiptiq/internal/storage"
)

const pdfContentType = "application/pdf"

// PdfValidator checks that a file on disk is a readable PDF.
type PdfValidator interface {
	Validate(path string) (bool, string)
}

// Pipeline extracts a structured record from a PDF on disk.
type Pipeline interface {
	Run(ctx context.Context, path string) (record.Record, error)
}

// Reconciler persists a structured record as a receipt of fileID.
type Reconciler interface {
	Reconcile(ctx context.Context, rec record.Record, fileID string) (*model.Receipt, error)
}

// ValidationResult is returned by ReceiptFileService.Validate.
type ValidationResult struct {
	FileID  string `json:"file_id"`
	IsValid bool   `json:"is_valid"`
	Message string `json:"message"`
}

// ReceiptFileService covers the lifecycle of an uploaded receipt:
// upload, validate, process.
type ReceiptFileService interface {
	// Upload stores the PDF and its metadata. The object is removed again if the metadata insert fails.
	Upload(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64) (*model.ReceiptFile, error)

	// Get returns a file by ID.
	Get(ctx context.Context, id string) (*model.ReceiptFile, error)

	// DownloadURL returns a presigned URL for the stored PDF.
	DownloadURL(ctx context.Context, id string) (string, error)

	// Delete removes the stored object and the file row. Receipts cascade.
	Delete(ctx context.Context, id string) error

	// Validate checks the stored PDF and records the verdict.
	Validate(ctx context.Context, id string) (*ValidationResult, error)

	// Process runs extraction for a validated, unprocessed file and stores the receipt.
	Process(ctx context.Context, id string) (*model.Receipt, error)
}

// ReceiptFileDeps wires ReceiptFileService.
type ReceiptFileDeps struct {
	Store         storage.Storage
	Files         repository.ReceiptFileRepository
	Validator     PdfValidator
	Pipeline      Pipeline
	Reconciler    Reconciler
	Locker        lock.Locker
	LockTTL       time.Duration
	PresignExpiry time.Duration
	TempDir       string
	Logger        zerolog.Logger
}

type receiptFileService struct {
	ReceiptFileDeps
	logger zerolog.Logger
}

// NewReceiptFileService constructs a ReceiptFileService.
func NewReceiptFileService(deps ReceiptFileDeps) ReceiptFileService {
	if deps.LockTTL <= 0 {
		deps.LockTTL = 10 * time.Minute
	}
	if deps.PresignExpiry <= 0 {
		deps.PresignExpiry = 15 * time.Minute
	}
	return &receiptFileService{ReceiptFileDeps: deps, logger: logging.Component(deps.Logger, "receipt_files")}
}

func (s *receiptFileService) Upload(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64) (*model.ReceiptFile, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err != nil || mediaType != pdfContentType {
		return nil, ErrInvalidFileType
	}

	id := uuid.New().String()
	key := storage.ReceiptKey(id)

	objInfo, err := s.Store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: pdfContentType,
		FileName:    originalFilename,
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	stored, err := s.Files.Create(ctx, &model.ReceiptFile{
		ID:          id,
		FileName:    originalFilename,
		StoragePath: objInfo.Key,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		if delErr := s.Store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	s.logger.Info().Str("event", "file_uploaded").Str("file_id", stored.ID).Str("file_name", originalFilename).Str("key", key).Msg("uploaded file saved")
	return stored, nil
}

func (s *receiptFileService) Get(ctx context.Context, id string) (*model.ReceiptFile, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	f, err := s.Files.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *receiptFileService) DownloadURL(ctx context.Context, id string) (string, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	u, err := s.Store.PresignGet(ctx, f.StoragePath, s.PresignExpiry)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("presign: %w", err)
	}
	return u, nil
}

func (s *receiptFileService) Delete(ctx context.Context, id string) error {
	f, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	// Storage first; a failure keeps the row so the object is not orphaned.
	if err := s.Store.Delete(ctx, f.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.Files.Delete(ctx, id)
}

func (s *receiptFileService) Validate(ctx context.Context, id string) (*ValidationResult, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	isValid, reason, err := s.check(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := s.Files.UpdateValidation(ctx, id, isValid, reason); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("save validation: %w", err)
	}

	msg := pdfcheck.ReasonValid
	if !isValid {
		msg = "File is invalid: " + reason
	}
	s.logger.Info().Str("event", "file_validated").Str("file_id", id).Bool("is_valid", isValid).Msg(msg)
	return &ValidationResult{FileID: id, IsValid: isValid, Message: msg}, nil
}

func (s *receiptFileService) check(ctx context.Context, f *model.ReceiptFile) (bool, string, error) {
	localPath, cleanup, err := storage.LocalCopy(ctx, s.Store, f.StoragePath, s.TempDir)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return false, pdfcheck.ReasonNotFound, nil
		}
		return false, "", err
	}
	defer cleanup()

	ok, reason := s.Validator.Validate(localPath)
	return ok, reason, nil
}

func (s *receiptFileService) Process(ctx context.Context, id string) (*model.Receipt, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !f.Validated() {
		return nil, ErrNotValidated
	}
	if f.IsProcessed {
		return nil, ErrAlreadyProcessed
	}

	release, err := s.Locker.Acquire(ctx, "process:"+id, s.LockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrLockHeld) {
			return nil, ErrProcessingInProgress
		}
		return nil, fmt.Errorf("acquire processing lock: %w", err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn().Str("event", "lock_release_failed").Str("file_id", id).Err(err).Msg("processing lock not released")
		}
	}()

	localPath, cleanup, err := storage.LocalCopy(ctx, s.Store, f.StoragePath, s.TempDir)
	if err != nil {
		return nil, fmt.Errorf("fetch receipt file: %w", err)
	}
	defer cleanup()

	rec, err := s.Pipeline.Run(ctx, localPath)
	if err != nil {
		s.logger.Error().Str("event", "process_failed").Str("file_id", id).Err(err).Msg("extraction failed")
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	receipt, err := s.Reconciler.Reconcile(ctx, rec, id)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyProcessed) {
			return nil, ErrAlreadyProcessed
		}
		return nil, err
	}

	s.logger.Info().Str("event", "file_processed").Str("file_id", id).Str("receipt_id", receipt.ID).Msg("receipt processed successfully")
	return receipt, nil
}
