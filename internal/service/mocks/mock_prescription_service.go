package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"rxledger/internal/model"
	"rxledger/internal/service"
)

type MockPrescriptionService struct {
	mock.Mock
}

func (m *MockPrescriptionService) Issue(ctx context.Context, in service.IssueInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func (m *MockPrescriptionService) Fulfill(ctx context.Context, prescriptionID, dispenserID string) (*model.Fulfillment, error) {
	args := m.Called(ctx, prescriptionID, dispenserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Fulfillment), args.Error(1)
}

func (m *MockPrescriptionService) GetDetails(ctx context.Context, prescriptionID string) (*model.Prescription, error) {
	args := m.Called(ctx, prescriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Prescription), args.Error(1)
}

func (m *MockPrescriptionService) HasPartyFulfilled(ctx context.Context, prescriptionID, party string) (bool, error) {
	args := m.Called(ctx, prescriptionID, party)
	return args.Bool(0), args.Error(1)
}

func (m *MockPrescriptionService) ListByRecipient(ctx context.Context, recipient string) ([]string, error) {
	args := m.Called(ctx, recipient)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPrescriptionService) ListByIssuer(ctx context.Context, issuer string) ([]string, error) {
	args := m.Called(ctx, issuer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPrescriptionService) ScanPayload(ctx context.Context, prescriptionID string) (string, error) {
	args := m.Called(ctx, prescriptionID)
	return args.String(0), args.Error(1)
}
