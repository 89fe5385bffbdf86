package shifts

import (
	"context"

	"github.com/stretchr/testify/mock"

	"shiftbot/models"
)

// MockPocketBaseAPI is a mock implementation of the PocketBaseAPI interface
type MockPocketBaseAPI struct {
	mock.Mock
}

func (m *MockPocketBaseAPI) GetUserByDiscordID(ctx context.Context, authToken, discordUserID string) (*models.PocketBaseUser, error) {
	args := m.Called(ctx, authToken, discordUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PocketBaseUser), args.Error(1)
}

func (m *MockPocketBaseAPI) GetActiveShift(ctx context.Context, authToken, userID string) (*models.Shift, error) {
	args := m.Called(ctx, authToken, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shift), args.Error(1)
}

func (m *MockPocketBaseAPI) GetLatestShift(ctx context.Context, authToken, userID string) (*models.Shift, error) {
	args := m.Called(ctx, authToken, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shift), args.Error(1)
}

func (m *MockPocketBaseAPI) CreateShift(ctx context.Context, authToken, userID string) (*models.Shift, error) {
	args := m.Called(ctx, authToken, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shift), args.Error(1)
}

func (m *MockPocketBaseAPI) CompleteShift(ctx context.Context, authToken, shiftID, endTime string, durationMinutes int) (*models.Shift, error) {
	args := m.Called(ctx, authToken, shiftID, endTime, durationMinutes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shift), args.Error(1)
}

// MockTokensStore is a mock implementation of the TokensStore interface
type MockTokensStore struct {
	mock.Mock
}

func (m *MockTokensStore) SetToken(ctx context.Context, discordUserID, authToken string) (*models.PocketBaseToken, error) {
	args := m.Called(ctx, discordUserID, authToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PocketBaseToken), args.Error(1)
}

func (m *MockTokensStore) GetToken(ctx context.Context, discordUserID string) (*models.PocketBaseToken, error) {
	args := m.Called(ctx, discordUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PocketBaseToken), args.Error(1)
}

func (m *MockTokensStore) ClearToken(ctx context.Context, discordUserID string) error {
	args := m.Called(ctx, discordUserID)
	return args.Error(0)
}
