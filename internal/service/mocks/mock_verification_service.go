package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"rxledger/internal/fingerprint"
	"rxledger/internal/model"
)

type MockVerificationService struct {
	mock.Mock
}

func (m *MockVerificationService) Verify(ctx context.Context, claimed, carried fingerprint.Fingerprint) (model.Verdict, error) {
	args := m.Called(ctx, claimed, carried)
	return args.Get(0).(model.Verdict), args.Error(1)
}
