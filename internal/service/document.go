package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"rxledger/internal/fingerprint"
	"rxledger/internal/storage"
)

// StoredDocument is the result of pinning canonical document bytes off-chain:
// the content fingerprint (also the future record ID) and the locator string
// the ledger will store alongside it.
type StoredDocument struct {
	Fingerprint string `json:"fingerprint"`
	Locator     string `json:"locator"`
	Size        int64  `json:"size"`
}

// DocumentService is the off-chain collaborator: given bytes it returns a
// deterministic content fingerprint, and given a fingerprint it can point
// back at the stored document.
type DocumentService interface {
	// Store hashes the document bytes, uploads them under a key derived from
	// the fingerprint, and returns fingerprint plus locator.
	Store(ctx context.Context, r io.Reader, contentType string) (*StoredDocument, error)

	// PresignURL returns a time-limited download URL for a stored document.
	// Fails with ErrNotFound if no document is stored for the fingerprint.
	PresignURL(ctx context.Context, fp string, expiry time.Duration) (string, error)
}

type documentService struct {
	store storage.Storage
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage) DocumentService {
	return &documentService{store: store}
}

// documentKey derives the object key from the content fingerprint, so the
// locator is reproducible from the fingerprint alone.
func documentKey(f fingerprint.Fingerprint) string {
	return "prescriptions/" + f.Hex()
}

func (s *documentService) Store(ctx context.Context, r io.Reader, contentType string) (*StoredDocument, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	// The fingerprint must be known before the upload key can be chosen, so
	// the document is buffered. Prescription documents are single-page PDFs.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	fp := fingerprint.Compute(data)
	info, err := s.store.Put(ctx, documentKey(fp), bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	return &StoredDocument{
		Fingerprint: fp.String(),
		Locator:     info.Key,
		Size:        info.Size,
	}, nil
}

func (s *documentService) PresignURL(ctx context.Context, fp string, expiry time.Duration) (string, error) {
	f, err := fingerprint.Parse(fp)
	if err != nil {
		return "", err
	}
	key := documentKey(f)

	if _, err := s.store.Stat(ctx, key); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("stat document: %w", err)
	}
	return s.store.PresignGet(ctx, key, expiry)
}
