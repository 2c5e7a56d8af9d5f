package model

import "time"

// ReceiptFile is the metadata of an uploaded receipt PDF.
// IsValid stays nil until the file has been validated; IsProcessed guards against
// running extraction twice for the same file.
type ReceiptFile struct {
	ID            string     `json:"id"`
	FileName      string     `json:"file_name"`
	StoragePath   string     `json:"storage_path"`
	IsValid       *bool      `json:"is_valid"`
	InvalidReason *string    `json:"invalid_reason"`
	IsProcessed   bool       `json:"is_processed"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at"`
}

// Validated reports whether the file passed validation.
func (f *ReceiptFile) Validated() bool {
	return f.IsValid != nil && *f.IsValid
}
