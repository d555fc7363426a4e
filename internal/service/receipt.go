package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ReceiptStore persists uploaded receipt files and returns their public URL.
type ReceiptStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// DefaultMaxReceiptBytes is used when no limit is configured.
const DefaultMaxReceiptBytes = 10 << 20

// ReceiptService handles bank-transfer receipt uploads.
type ReceiptService struct {
	store    ReceiptStore
	maxBytes int64
	now      func() time.Time
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(store ReceiptStore, maxBytes int64) *ReceiptService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxReceiptBytes
	}
	return &ReceiptService{
		store:    store,
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

// MaxBytes returns the largest accepted upload.
func (s *ReceiptService) MaxBytes() int64 {
	return s.maxBytes
}

// UploadedReceipt is the location of a stored receipt.
type UploadedReceipt struct {
	FileURL string
	Key     string
}

// Upload sniffs the file type, stores the file and returns its URL.
// Only images and PDFs are accepted.
func (s *ReceiptService) Upload(ctx context.Context, filename string, body []byte) (*UploadedReceipt, error) {
	if len(body) == 0 {
		return nil, ErrMissingFile
	}
	if int64(len(body)) > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	mtype := mimetype.Detect(body)
	if !allowedReceiptType(mtype) {
		log.Printf("[Upload] rejected %q detected as %s", filename, mtype.String())
		return nil, ErrUnsupportedFileType
	}

	key := fmt.Sprintf("receipts/%d_%s_%s", s.now().UnixMilli(), uuid.New().String(), safeBaseName(filename))

	url, err := s.store.Put(ctx, key, mtype.String(), body)
	if err != nil {
		log.Printf("[Upload] put %s failed: %v", key, err)
		return nil, errors.Join(ErrStorageUnavailable, err)
	}

	return &UploadedReceipt{FileURL: url, Key: key}, nil
}

func allowedReceiptType(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") || m.Is("application/pdf") {
			return true
		}
	}
	return false
}

// safeBaseName strips any directory component and spaces from a client filename.
func safeBaseName(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "receipt"
	}
	return strings.ReplaceAll(name, " ", "_")
}
