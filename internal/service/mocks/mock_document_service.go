package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"rxledger/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Store(ctx context.Context, r io.Reader, contentType string) (*service.StoredDocument, error) {
	args := m.Called(ctx, r, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StoredDocument), args.Error(1)
}

func (m *MockDocumentService) PresignURL(ctx context.Context, fp string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, fp, expiry)
	return args.String(0), args.Error(1)
}
