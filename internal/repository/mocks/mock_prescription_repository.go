package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"rxledger/internal/model"
)

type MockPrescriptionRepository struct {
	mock.Mock
}

func (m *MockPrescriptionRepository) Create(ctx context.Context, p *model.Prescription) (*model.Prescription, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Prescription), args.Error(1)
}

func (m *MockPrescriptionRepository) FindByID(ctx context.Context, id string) (*model.Prescription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Prescription), args.Error(1)
}

func (m *MockPrescriptionRepository) AppendFulfillment(ctx context.Context, prescriptionID string, f *model.Fulfillment) (*model.Fulfillment, error) {
	args := m.Called(ctx, prescriptionID, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Fulfillment), args.Error(1)
}

func (m *MockPrescriptionRepository) HasFulfillment(ctx context.Context, prescriptionID, party string) (bool, error) {
	args := m.Called(ctx, prescriptionID, party)
	return args.Bool(0), args.Error(1)
}

func (m *MockPrescriptionRepository) ListByIssuer(ctx context.Context, issuer string) ([]string, error) {
	args := m.Called(ctx, issuer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPrescriptionRepository) ListByRecipient(ctx context.Context, recipient string) ([]string, error) {
	args := m.Called(ctx, recipient)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
