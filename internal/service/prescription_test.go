package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rxledger/internal/fingerprint"
	"rxledger/internal/model"
	"rxledger/internal/oracle"
	oracleMocks "rxledger/internal/oracle/mocks"
	"rxledger/internal/repository"
	repoMocks "rxledger/internal/repository/mocks"
)

var (
	testTime = time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	testFP   = fingerprint.Compute([]byte("canonical prescription pdf"))
	testID   = testFP.String()
)

func newTestService(repo *repoMocks.MockPrescriptionRepository, authz *oracleMocks.MockOracle, now time.Time) *prescriptionService {
	return &prescriptionService{
		repo:          repo,
		authz:         authz,
		oracleTimeout: time.Second,
		now:           func() time.Time { return now },
	}
}

func TestPrescriptionService_Issue(t *testing.T) {
	ctx := context.Background()

	validInput := IssueInput{
		Issuer:      "doctor-1",
		Recipient:   "patient-1",
		Fingerprint: testID,
		Locator:     "prescriptions/" + testFP.Hex(),
		ExpiresAt:   testTime.Add(1000 * time.Second),
	}

	tests := []struct {
		name       string
		input      IssueInput
		setupMocks func(mRepo *repoMocks.MockPrescriptionRepository, mOracle *oracleMocks.MockOracle)
		wantErr    error
	}{
		{
			name:  "happy path",
			input: validInput,
			setupMocks: func(mRepo *repoMocks.MockPrescriptionRepository, mOracle *oracleMocks.MockOracle) {
				mOracle.On("IsAuthorized", mock.Anything, "doctor-1", oracle.RoleIssuer).Return(true, nil)
				mRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Prescription) bool {
					return p.ID == testID &&
						p.Fingerprint == p.ID &&
						p.Issuer == "doctor-1" &&
						p.Recipient == "patient-1" &&
						p.IssuedAt.Equal(testTime) &&
						len(p.Fulfillments) == 0
				})).Return(&model.Prescription{ID: testID}, nil)
			},
		},
		{
			name: "fingerprint normalized to canonical form",
			input: IssueInput{
				Issuer:      "doctor-1",
				Recipient:   "patient-1",
				Fingerprint: testFP.Hex(), // bare hex, no 0x
				Locator:     "loc1",
				ExpiresAt:   testTime.Add(time.Hour),
			},
			setupMocks: func(mRepo *repoMocks.MockPrescriptionRepository, mOracle *oracleMocks.MockOracle) {
				mOracle.On("IsAuthorized", mock.Anything, "doctor-1", oracle.RoleIssuer).Return(true, nil)
				mRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Prescription) bool {
					return p.ID == testID
				})).Return(&model.Prescription{ID: testID}, nil)
			},
		},
		{
			name:  "issuer not authorized",
			input: validInput,
			setupMocks: func(mRepo *repoMocks.MockPrescriptionRepository, mOracle *oracleMocks.MockOracle) {
				mOracle.On("IsAuthorized", mock.Anything, "doctor-1", oracle.RoleIssuer).Return(false, nil)
			},
			wantErr: ErrUnauthorized,
		},
		{
			name:  "oracle failure fails closed",
			input: validInput,
			setupMocks: func(mRepo *repoMocks.MockPrescriptionRepository, mOracle *oracleMocks.MockOracle) {
				mOracle.On("IsAuthorized", mock.Anything, "doctor-1", oracle.RoleIssuer).
					Return(false, context.DeadlineExceeded)
			},
			wantErr: ErrUnauthorized,
		},
		{
			name: "expiry equal to now is invalid",
			input: IssueInput{
				Issuer:      "doctor-1",
				Recipient:   "patient-1",
				Fingerprint: testID,
				Locator:     "loc1",
				ExpiresAt:   testTime,
			},
			setupMocks: func(mRepo *repoMocks.MockPrescriptionRepository, mOracle *oracleMocks.MockOracle) {
				mOracle.On("IsAuthorized", mock.Anything, "doctor-1", oracle.RoleIssuer).Return(true, nil)
			},
			wantErr: ErrInvalidExpiry,
		},
		{
			name: "expiry in the past is invalid",
			input: IssueInput{
				Issuer:      "doctor-1",
				Recipient:   "patient-1",
				Fingerprint: testID,
				Locator:     "loc1",
				ExpiresAt:   testTime.Add(-time.Second),
			},
			setupMocks: func(mRepo *repoMocks.MockPrescriptionRepository, mOracle *oracleMocks.MockOracle) {
				mOracle.On("IsAuthorized", mock.Anything, "doctor-1", oracle.RoleIssuer).Return(true, nil)
			},
			wantErr: ErrInvalidExpiry,
		},
		{
			name:  "duplicate fingerprint rejected, not overwritten",
			input: validInput,
			setupMocks: func(mRepo *repoMocks.MockPrescriptionRepository, mOracle *oracleMocks.MockOracle) {
				mOracle.On("IsAuthorized", mock.Anything, "doctor-1", oracle.RoleIssuer).Return(true, nil)
				mRepo.On("Create", mock.Anything, mock.Anything).Return(nil, repository.ErrDuplicateID)
			},
			wantErr: ErrDuplicateRecord,
		},
		{
			name: "malformed fingerprint",
			input: IssueInput{
				Issuer:      "doctor-1",
				Recipient:   "patient-1",
				Fingerprint: "0xnothex",
				Locator:     "loc1",
				ExpiresAt:   testTime.Add(time.Hour),
			},
			setupMocks: func(mRepo *repoMocks.MockPrescriptionRepository, mOracle *oracleMocks.MockOracle) {},
			wantErr:    fingerprint.ErrInvalid,
		},
		{
			name: "missing identity",
			input: IssueInput{
				Recipient:   "patient-1",
				Fingerprint: testID,
				Locator:     "loc1",
				ExpiresAt:   testTime.Add(time.Hour),
			},
			setupMocks: func(mRepo *repoMocks.MockPrescriptionRepository, mOracle *oracleMocks.MockOracle) {},
			wantErr:    ErrIdentityRequired,
		},
		{
			name: "missing locator",
			input: IssueInput{
				Issuer:      "doctor-1",
				Recipient:   "patient-1",
				Fingerprint: testID,
				ExpiresAt:   testTime.Add(time.Hour),
			},
			setupMocks: func(mRepo *repoMocks.MockPrescriptionRepository, mOracle *oracleMocks.MockOracle) {},
			wantErr:    ErrLocatorRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockPrescriptionRepository)
			mOracle := new(oracleMocks.MockOracle)
			svc := newTestService(mRepo, mOracle, testTime)

			tt.setupMocks(mRepo, mOracle)

			id, err := svc.Issue(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, id)
			} else {
				require.NoError(t, err)
				assert.Equal(t, testID, id)
			}
			mRepo.AssertExpectations(t)
			mOracle.AssertExpectations(t)
		})
	}
}

func TestPrescriptionService_Fulfill(t *testing.T) {
	ctx := context.Background()
	expiresAt := testTime.Add(1000 * time.Second)

	record := func() *model.Prescription {
		return &model.Prescription{
			ID:          testID,
			Issuer:      "doctor-1",
			Recipient:   "patient-1",
			Fingerprint: testID,
			Locator:     "loc1",
			IssuedAt:    testTime.Add(-time.Hour),
			ExpiresAt:   expiresAt,
		}
	}

	tests := []struct {
		name       string
		now        time.Time
		setupMocks func(mRepo *repoMocks.MockPrescriptionRepository, mOracle *oracleMocks.MockOracle)
		wantErr    error
	}{
		{
			name: "happy path captures current display name",
			now:  testTime,
			setupMocks: func(mRepo *repoMocks.MockPrescriptionRepository, mOracle *oracleMocks.MockOracle) {
				mRepo.On("FindByID", mock.Anything, testID).Return(record(), nil)
				mOracle.On("IsAuthorized", mock.Anything, "pharmacy-x", oracle.RoleDispenser).Return(true, nil)
				mOracle.On("DisplayName", mock.Anything, "pharmacy-x", oracle.RoleDispenser).Return("Pharmacy X", nil)
				mRepo.On("AppendFulfillment", mock.Anything, testID, mock.MatchedBy(func(f *model.Fulfillment) bool {
					return f.Party == "pharmacy-x" && f.PartyName == "Pharmacy X" && f.FulfilledAt.Equal(testTime)
				})).Return(&model.Fulfillment{
					PrescriptionID: testID,
					Party:          "pharmacy-x",
					PartyName:      "Pharmacy X",
					FulfilledAt:    testTime,
				}, nil)
			},
		},
		{
			name: "fulfillable exactly at expiry",
			now:  expiresAt,
			setupMocks: func(mRepo *repoMocks.MockPrescriptionRepository, mOracle *oracleMocks.MockOracle) {
				mRepo.On("FindByID", mock.Anything, testID).Return(record(), nil)
				mOracle.On("IsAuthorized", mock.Anything, "pharmacy-x", oracle.RoleDispenser).Return(true, nil)
				mOracle.On("DisplayName", mock.Anything, "pharmacy-x", oracle.RoleDispenser).Return("Pharmacy X", nil)
				mRepo.On("AppendFulfillment", mock.Anything, testID, mock.Anything).
					Return(&model.Fulfillment{Party: "pharmacy-x"}, nil)
			},
		},
		{
			name: "expired one second past expiry",
			now:  expiresAt.Add(time.Second),
			setupMocks: func(mRepo *repoMocks.MockPrescriptionRepository, mOracle *oracleMocks.MockOracle) {
				mRepo.On("FindByID", mock.Anything, testID).Return(record(), nil)
				mOracle.On("IsAuthorized", mock.Anything, "pharmacy-x", oracle.RoleDispenser).Return(true, nil)
			},
			wantErr: ErrExpired,
		},
		{
			name: "unknown prescription",
			now:  testTime,
			setupMocks: func(mRepo *repoMocks.MockPrescriptionRepository, mOracle *oracleMocks.MockOracle) {
				mRepo.On("FindByID", mock.Anything, testID).Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "dispenser not authorized",
			now:  testTime,
			setupMocks: func(mRepo *repoMocks.MockPrescriptionRepository, mOracle *oracleMocks.MockOracle) {
				mRepo.On("FindByID", mock.Anything, testID).Return(record(), nil)
				mOracle.On("IsAuthorized", mock.Anything, "pharmacy-x", oracle.RoleDispenser).Return(false, nil)
			},
			wantErr: ErrUnauthorized,
		},
		{
			name: "oracle timeout fails closed",
			now:  testTime,
			setupMocks: func(mRepo *repoMocks.MockPrescriptionRepository, mOracle *oracleMocks.MockOracle) {
				mRepo.On("FindByID", mock.Anything, testID).Return(record(), nil)
				mOracle.On("IsAuthorized", mock.Anything, "pharmacy-x", oracle.RoleDispenser).
					Return(false, context.DeadlineExceeded)
			},
			wantErr: ErrUnauthorized,
		},
		{
			name: "display name lookup failure fails closed",
			now:  testTime,
			setupMocks: func(mRepo *repoMocks.MockPrescriptionRepository, mOracle *oracleMocks.MockOracle) {
				mRepo.On("FindByID", mock.Anything, testID).Return(record(), nil)
				mOracle.On("IsAuthorized", mock.Anything, "pharmacy-x", oracle.RoleDispenser).Return(true, nil)
				mOracle.On("DisplayName", mock.Anything, "pharmacy-x", oracle.RoleDispenser).
					Return("", errors.New("registry unreachable"))
			},
			wantErr: ErrUnauthorized,
		},
		{
			name: "second fulfillment by same party rejected",
			now:  testTime,
			setupMocks: func(mRepo *repoMocks.MockPrescriptionRepository, mOracle *oracleMocks.MockOracle) {
				mRepo.On("FindByID", mock.Anything, testID).Return(record(), nil)
				mOracle.On("IsAuthorized", mock.Anything, "pharmacy-x", oracle.RoleDispenser).Return(true, nil)
				mOracle.On("DisplayName", mock.Anything, "pharmacy-x", oracle.RoleDispenser).Return("Pharmacy X", nil)
				mRepo.On("AppendFulfillment", mock.Anything, testID, mock.Anything).
					Return(nil, repository.ErrFulfillmentExists)
			},
			wantErr: ErrAlreadyFulfilled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockPrescriptionRepository)
			mOracle := new(oracleMocks.MockOracle)
			svc := newTestService(mRepo, mOracle, tt.now)

			tt.setupMocks(mRepo, mOracle)

			entry, err := svc.Fulfill(ctx, testID, "pharmacy-x")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, entry)
			} else {
				require.NoError(t, err)
				require.NotNil(t, entry)
				assert.Equal(t, "pharmacy-x", entry.Party)
			}
			mRepo.AssertExpectations(t)
			mOracle.AssertExpectations(t)
		})
	}
}

func TestPrescriptionService_Fulfill_DistinctParties(t *testing.T) {
	// One record may accumulate fulfillments from many distinct parties; only
	// a repeat by the same party is rejected.
	ctx := context.Background()
	mRepo := new(repoMocks.MockPrescriptionRepository)
	mOracle := new(oracleMocks.MockOracle)
	svc := newTestService(mRepo, mOracle, testTime)

	record := &model.Prescription{
		ID: testID, Fingerprint: testID, ExpiresAt: testTime.Add(time.Hour),
		Fulfillments: []model.Fulfillment{{Party: "pharmacy-x", PartyName: "Pharmacy X"}},
	}
	mRepo.On("FindByID", mock.Anything, testID).Return(record, nil)
	mOracle.On("IsAuthorized", mock.Anything, "pharmacy-y", oracle.RoleDispenser).Return(true, nil)
	mOracle.On("DisplayName", mock.Anything, "pharmacy-y", oracle.RoleDispenser).Return("Pharmacy Y", nil)
	mRepo.On("AppendFulfillment", mock.Anything, testID, mock.MatchedBy(func(f *model.Fulfillment) bool {
		return f.Party == "pharmacy-y"
	})).Return(&model.Fulfillment{PrescriptionID: testID, Party: "pharmacy-y", PartyName: "Pharmacy Y"}, nil)

	entry, err := svc.Fulfill(ctx, testID, "pharmacy-y")

	require.NoError(t, err)
	assert.Equal(t, "pharmacy-y", entry.Party)
	mRepo.AssertExpectations(t)
	mOracle.AssertExpectations(t)
}

func TestPrescriptionService_GetDetails(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockPrescriptionRepository)
	svc := newTestService(mRepo, new(oracleMocks.MockOracle), testTime)

	t.Run("found", func(t *testing.T) {
		mRepo.On("FindByID", mock.Anything, testID).Return(&model.Prescription{ID: testID}, nil).Once()

		rec, err := svc.GetDetails(ctx, testID)

		require.NoError(t, err)
		assert.Equal(t, testID, rec.ID)
	})

	t.Run("not found", func(t *testing.T) {
		mRepo.On("FindByID", mock.Anything, testID).Return(nil, sql.ErrNoRows).Once()

		rec, err := svc.GetDetails(ctx, testID)

		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, rec)
	})
}

func TestPrescriptionService_HasPartyFulfilled(t *testing.T) {
	// GetDetails errors on an unknown ID; this check does not. The asymmetry
	// keeps dispenser-side eligibility a single boolean branch.
	ctx := context.Background()
	mRepo := new(repoMocks.MockPrescriptionRepository)
	svc := newTestService(mRepo, new(oracleMocks.MockOracle), testTime)

	unknown := fingerprint.Compute([]byte("never issued")).String()
	mRepo.On("HasFulfillment", mock.Anything, unknown, "pharmacy-x").Return(false, nil)

	ok, err := svc.HasPartyFulfilled(ctx, unknown, "pharmacy-x")

	require.NoError(t, err)
	assert.False(t, ok)
	mRepo.AssertExpectations(t)
}

func TestPrescriptionService_Lists(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockPrescriptionRepository)
	svc := newTestService(mRepo, new(oracleMocks.MockOracle), testTime)

	mRepo.On("ListByRecipient", mock.Anything, "patient-1").Return([]string{"0xaa", "0xbb"}, nil)
	mRepo.On("ListByIssuer", mock.Anything, "doctor-9").Return([]string{}, nil)

	byRecipient, err := svc.ListByRecipient(ctx, "patient-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"0xaa", "0xbb"}, byRecipient)

	byIssuer, err := svc.ListByIssuer(ctx, "doctor-9")
	require.NoError(t, err)
	assert.Empty(t, byIssuer)
}

func TestPrescriptionService_ScanPayload(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockPrescriptionRepository)
	svc := newTestService(mRepo, new(oracleMocks.MockOracle), testTime)

	t.Run("pairs the fingerprint with itself", func(t *testing.T) {
		mRepo.On("FindByID", mock.Anything, testID).
			Return(&model.Prescription{ID: testID, Fingerprint: testID}, nil).Once()

		payload, err := svc.ScanPayload(ctx, testID)

		require.NoError(t, err)
		assert.Equal(t, testID+"|"+testID, payload)

		claimed, carried, err := fingerprint.DecodeScanPayload(payload)
		require.NoError(t, err)
		assert.Equal(t, claimed, carried)
	})

	t.Run("not found", func(t *testing.T) {
		mRepo.On("FindByID", mock.Anything, testID).Return(nil, sql.ErrNoRows).Once()

		_, err := svc.ScanPayload(ctx, testID)

		assert.ErrorIs(t, err, ErrNotFound)
	})
}
