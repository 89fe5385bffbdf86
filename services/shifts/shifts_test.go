package shifts

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shiftbot/clients/pocketbase"
	"shiftbot/models"
)

const (
	testDiscordID = "111222333"
	testAuthKey   = "pb_key_abc"
	testUserID    = "pbuser1"
)

func newTestService(pb *MockPocketBaseAPI, tokens *MockTokensStore, now time.Time) *Service {
	svc := NewService(pb, tokens)
	svc.now = func() time.Time { return now }
	return svc
}

func linkedToken() *models.PocketBaseToken {
	return &models.PocketBaseToken{DiscordUserID: testDiscordID, AuthToken: testAuthKey}
}

func pbUser() *models.PocketBaseUser {
	return &models.PocketBaseUser{ID: testUserID, Name: "Staff Member", DiscordUserID: json.Number(testDiscordID)}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("links matching user", func(t *testing.T) {
		pb := new(MockPocketBaseAPI)
		tokens := new(MockTokensStore)
		svc := newTestService(pb, tokens, time.Now())

		pb.On("GetUserByDiscordID", ctx, testAuthKey, testDiscordID).Return(pbUser(), nil)
		tokens.On("SetToken", ctx, testDiscordID, testAuthKey).Return(linkedToken(), nil)

		user, err := svc.Login(ctx, testDiscordID, testAuthKey)
		require.NoError(t, err)
		assert.Equal(t, testUserID, user.ID)
		tokens.AssertExpectations(t)
	})

	t.Run("rejects key belonging to another user", func(t *testing.T) {
		pb := new(MockPocketBaseAPI)
		tokens := new(MockTokensStore)
		svc := newTestService(pb, tokens, time.Now())

		other := pbUser()
		other.DiscordUserID = json.Number("999")
		pb.On("GetUserByDiscordID", ctx, testAuthKey, testDiscordID).Return(other, nil)

		_, err := svc.Login(ctx, testDiscordID, testAuthKey)
		assert.ErrorIs(t, err, ErrKeyMismatch)
		tokens.AssertNotCalled(t, "SetToken", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("requires inputs", func(t *testing.T) {
		svc := newTestService(new(MockPocketBaseAPI), new(MockTokensStore), time.Now())

		_, err := svc.Login(ctx, "", testAuthKey)
		assert.Error(t, err)
		_, err = svc.Login(ctx, testDiscordID, "")
		assert.Error(t, err)
	})
}

func TestStartShift(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a shift when none is active", func(t *testing.T) {
		pb := new(MockPocketBaseAPI)
		tokens := new(MockTokensStore)
		svc := newTestService(pb, tokens, time.Now())

		tokens.On("GetToken", ctx, testDiscordID).Return(linkedToken(), nil)
		pb.On("GetUserByDiscordID", ctx, testAuthKey, testDiscordID).Return(pbUser(), nil)
		pb.On("GetActiveShift", ctx, testAuthKey, testUserID).Return(nil, nil)
		created := &models.Shift{ID: "s1", User: testUserID, Status: models.ShiftStatusActive, StartTime: "2025-06-01 09:00:00.000Z"}
		pb.On("CreateShift", ctx, testAuthKey, testUserID).Return(created, nil)

		shift, err := svc.StartShift(ctx, testDiscordID)
		require.NoError(t, err)
		assert.Equal(t, "s1", shift.ID)
	})

	t.Run("rejects a second active shift", func(t *testing.T) {
		pb := new(MockPocketBaseAPI)
		tokens := new(MockTokensStore)
		svc := newTestService(pb, tokens, time.Now())

		tokens.On("GetToken", ctx, testDiscordID).Return(linkedToken(), nil)
		pb.On("GetUserByDiscordID", ctx, testAuthKey, testDiscordID).Return(pbUser(), nil)
		active := &models.Shift{ID: "s1", Status: models.ShiftStatusActive, StartTime: "2025-06-01 09:00:00.000Z"}
		pb.On("GetActiveShift", ctx, testAuthKey, testUserID).Return(active, nil)

		shift, err := svc.StartShift(ctx, testDiscordID)
		assert.ErrorIs(t, err, ErrShiftAlreadyActive)
		require.NotNil(t, shift, "the active shift is returned so callers can show when it started")
		assert.Equal(t, "s1", shift.ID)
		pb.AssertNotCalled(t, "CreateShift", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("requires a linked auth key", func(t *testing.T) {
		pb := new(MockPocketBaseAPI)
		tokens := new(MockTokensStore)
		svc := newTestService(pb, tokens, time.Now())

		tokens.On("GetToken", ctx, testDiscordID).Return(nil, nil)

		_, err := svc.StartShift(ctx, testDiscordID)
		assert.ErrorIs(t, err, ErrNotLinked)
	})

	t.Run("clears linkage when pocketbase rejects the key", func(t *testing.T) {
		pb := new(MockPocketBaseAPI)
		tokens := new(MockTokensStore)
		svc := newTestService(pb, tokens, time.Now())

		tokens.On("GetToken", ctx, testDiscordID).Return(linkedToken(), nil)
		pb.On("GetUserByDiscordID", ctx, testAuthKey, testDiscordID).Return(nil, pocketbase.ErrAuthRejected)
		tokens.On("ClearToken", ctx, testDiscordID).Return(nil)

		_, err := svc.StartShift(ctx, testDiscordID)
		assert.ErrorIs(t, err, pocketbase.ErrAuthRejected)
		tokens.AssertCalled(t, "ClearToken", ctx, testDiscordID)
	})
}

func TestEndShift(t *testing.T) {
	ctx := context.Background()

	t.Run("records elapsed duration", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
		pb := new(MockPocketBaseAPI)
		tokens := new(MockTokensStore)
		svc := newTestService(pb, tokens, now)

		tokens.On("GetToken", ctx, testDiscordID).Return(linkedToken(), nil)
		pb.On("GetUserByDiscordID", ctx, testAuthKey, testDiscordID).Return(pbUser(), nil)
		active := &models.Shift{ID: "s1", Status: models.ShiftStatusActive, StartTime: "2025-06-01 09:00:00.000Z"}
		pb.On("GetActiveShift", ctx, testAuthKey, testUserID).Return(active, nil)
		completed := &models.Shift{ID: "s1", Status: models.ShiftStatusCompleted, StartTime: active.StartTime, DurationMinutes: 90}
		pb.On("CompleteShift", ctx, testAuthKey, "s1", FormatTimestamp(now), 90).Return(completed, nil)

		summary, err := svc.EndShift(ctx, testDiscordID)
		require.NoError(t, err)
		assert.Equal(t, 90, summary.DurationMinutes)
		assert.False(t, summary.Capped)
		assert.Equal(t, now, summary.EndTime)
	})

	t.Run("caps duration at the maximum", func(t *testing.T) {
		// Ten hours after the shift started
		now := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
		pb := new(MockPocketBaseAPI)
		tokens := new(MockTokensStore)
		svc := newTestService(pb, tokens, now)

		tokens.On("GetToken", ctx, testDiscordID).Return(linkedToken(), nil)
		pb.On("GetUserByDiscordID", ctx, testAuthKey, testDiscordID).Return(pbUser(), nil)
		active := &models.Shift{ID: "s1", Status: models.ShiftStatusActive, StartTime: "2025-06-01 09:00:00.000Z"}
		pb.On("GetActiveShift", ctx, testAuthKey, testUserID).Return(active, nil)
		completed := &models.Shift{ID: "s1", Status: models.ShiftStatusCompleted, DurationMinutes: MaxShiftDurationMinutes}
		pb.On("CompleteShift", ctx, testAuthKey, "s1", FormatTimestamp(now), MaxShiftDurationMinutes).Return(completed, nil)

		summary, err := svc.EndShift(ctx, testDiscordID)
		require.NoError(t, err)
		assert.Equal(t, MaxShiftDurationMinutes, summary.DurationMinutes)
		assert.True(t, summary.Capped)
	})

	t.Run("rejects ending without an active shift", func(t *testing.T) {
		pb := new(MockPocketBaseAPI)
		tokens := new(MockTokensStore)
		svc := newTestService(pb, tokens, time.Now())

		tokens.On("GetToken", ctx, testDiscordID).Return(linkedToken(), nil)
		pb.On("GetUserByDiscordID", ctx, testAuthKey, testDiscordID).Return(pbUser(), nil)
		pb.On("GetActiveShift", ctx, testAuthKey, testUserID).Return(nil, nil)

		_, err := svc.EndShift(ctx, testDiscordID)
		assert.ErrorIs(t, err, ErrNoActiveShift)
	})
}

func TestShiftStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("reports the active shift", func(t *testing.T) {
		pb := new(MockPocketBaseAPI)
		tokens := new(MockTokensStore)
		svc := newTestService(pb, tokens, time.Now())

		tokens.On("GetToken", ctx, testDiscordID).Return(linkedToken(), nil)
		pb.On("GetUserByDiscordID", ctx, testAuthKey, testDiscordID).Return(pbUser(), nil)
		active := &models.Shift{ID: "s1", Status: models.ShiftStatusActive}
		pb.On("GetActiveShift", ctx, testAuthKey, testUserID).Return(active, nil)

		status, err := svc.ShiftStatus(ctx, testDiscordID)
		require.NoError(t, err)
		assert.True(t, status.Active.IsPresent())
		assert.False(t, status.Latest.IsPresent())
		pb.AssertNotCalled(t, "GetLatestShift", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("falls back to the latest shift", func(t *testing.T) {
		pb := new(MockPocketBaseAPI)
		tokens := new(MockTokensStore)
		svc := newTestService(pb, tokens, time.Now())

		tokens.On("GetToken", ctx, testDiscordID).Return(linkedToken(), nil)
		pb.On("GetUserByDiscordID", ctx, testAuthKey, testDiscordID).Return(pbUser(), nil)
		pb.On("GetActiveShift", ctx, testAuthKey, testUserID).Return(nil, nil)
		latest := &models.Shift{ID: "s0", Status: models.ShiftStatusCompleted, DurationMinutes: 45}
		pb.On("GetLatestShift", ctx, testAuthKey, testUserID).Return(latest, nil)

		status, err := svc.ShiftStatus(ctx, testDiscordID)
		require.NoError(t, err)
		assert.False(t, status.Active.IsPresent())
		shift, ok := status.Latest.Get()
		require.True(t, ok)
		assert.Equal(t, "s0", shift.ID)
	})

	t.Run("reports no shifts on record", func(t *testing.T) {
		pb := new(MockPocketBaseAPI)
		tokens := new(MockTokensStore)
		svc := newTestService(pb, tokens, time.Now())

		tokens.On("GetToken", ctx, testDiscordID).Return(linkedToken(), nil)
		pb.On("GetUserByDiscordID", ctx, testAuthKey, testDiscordID).Return(pbUser(), nil)
		pb.On("GetActiveShift", ctx, testAuthKey, testUserID).Return(nil, nil)
		pb.On("GetLatestShift", ctx, testAuthKey, testUserID).Return(nil, nil)

		status, err := svc.ShiftStatus(ctx, testDiscordID)
		require.NoError(t, err)
		assert.False(t, status.Active.IsPresent())
		assert.False(t, status.Latest.IsPresent())
	})
}

func TestTimestampHelpers(t *testing.T) {
	parsed, err := ParseTimestamp("2025-06-01 09:00:00.000Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), parsed)

	parsed, err = ParseTimestamp("2025-06-01T09:00:00.000Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), parsed)

	_, err = ParseTimestamp("yesterday")
	assert.Error(t, err)

	assert.Equal(t, "2025-06-01T09:00:00.000Z", FormatTimestamp(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)))
}

func TestMinutesBetween(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, minutesBetween(start, start), "a shift always records at least one minute")
	assert.Equal(t, 1, minutesBetween(start, start.Add(30*time.Second)))
	assert.Equal(t, 90, minutesBetween(start, start.Add(90*time.Minute)))
	assert.Equal(t, 1, minutesBetween(start, start.Add(-5*time.Minute)), "clock skew never yields negative durations")
}
