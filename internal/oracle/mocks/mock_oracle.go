package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"rxledger/internal/oracle"
)

type MockOracle struct {
	mock.Mock
}

func (m *MockOracle) IsAuthorized(ctx context.Context, identity string, role oracle.Role) (bool, error) {
	args := m.Called(ctx, identity, role)
	return args.Bool(0), args.Error(1)
}

func (m *MockOracle) DisplayName(ctx context.Context, identity string, role oracle.Role) (string, error) {
	args := m.Called(ctx, identity, role)
	return args.String(0), args.Error(1)
}
