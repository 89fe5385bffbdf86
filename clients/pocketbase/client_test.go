package pocketbase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "pb_key_abc"

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	return NewClient(server.Client(), server.URL), server
}

func TestGetUserByDiscordID(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the linked user", func(t *testing.T) {
		var gotAuth, gotFilter string
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotFilter = r.URL.Query().Get("filter")
			assert.Equal(t, "/api/collections/users/records", r.URL.Path)
			w.Write([]byte(`{"items":[{"id":"u1","name":"Staff Member","discord_user_id":111222333}]}`))
		})
		defer server.Close()

		user, err := client.GetUserByDiscordID(ctx, testToken, "111222333")
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
		assert.Equal(t, "111222333", user.DiscordUserID.String())
		assert.Equal(t, "Bearer "+testToken, gotAuth)
		assert.Equal(t, "discord_user_id=111222333", gotFilter)
	})

	t.Run("reports unlinked accounts", func(t *testing.T) {
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"items":[]}`))
		})
		defer server.Close()

		_, err := client.GetUserByDiscordID(ctx, testToken, "111222333")
		assert.ErrorIs(t, err, ErrUserNotLinked)
	})

	t.Run("maps 401 to auth rejection", func(t *testing.T) {
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		defer server.Close()

		_, err := client.GetUserByDiscordID(ctx, testToken, "111222333")
		assert.ErrorIs(t, err, ErrAuthRejected)
	})

	t.Run("rejects empty auth tokens without a request", func(t *testing.T) {
		called := false
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			called = true
		})
		defer server.Close()

		_, err := client.GetUserByDiscordID(ctx, "", "111222333")
		assert.ErrorIs(t, err, ErrAuthRejected)
		assert.False(t, called)
	})
}

func TestGetActiveShift(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the open shift", func(t *testing.T) {
		var gotFilter string
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			gotFilter = r.URL.Query().Get("filter")
			w.Write([]byte(`{"items":[{"id":"s1","user":"u1","status":"active","start_time":"2025-06-01 09:00:00.000Z"}]}`))
		})
		defer server.Close()

		shift, err := client.GetActiveShift(ctx, testToken, "u1")
		require.NoError(t, err)
		assert.Equal(t, "s1", shift.ID)
		assert.Equal(t, `user="u1" && status="active"`, gotFilter)
	})

	t.Run("returns nil when no shift is open", func(t *testing.T) {
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"items":[]}`))
		})
		defer server.Close()

		shift, err := client.GetActiveShift(ctx, testToken, "u1")
		require.NoError(t, err)
		assert.Nil(t, shift)
	})
}

func TestGetLatestShift(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "-start_time", r.URL.Query().Get("sort"))
		w.Write([]byte(`{"items":[{"id":"s0","status":"completed","duration_minutes":45}]}`))
	})
	defer server.Close()

	shift, err := client.GetLatestShift(context.Background(), testToken, "u1")
	require.NoError(t, err)
	assert.Equal(t, "s0", shift.ID)
	assert.Equal(t, 45, shift.DurationMinutes)
}

func TestCreateShift(t *testing.T) {
	var gotPayload map[string]any
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/collections/shifts/records", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Write([]byte(`{"id":"s2","user":"u1","status":"active","start_time":"2025-06-01 09:00:00.000Z"}`))
	})
	defer server.Close()

	shift, err := client.CreateShift(context.Background(), testToken, "u1")
	require.NoError(t, err)
	assert.Equal(t, "s2", shift.ID)
	assert.Equal(t, "u1", gotPayload["user"])
	assert.Equal(t, "active", gotPayload["status"])
}

func TestCompleteShift(t *testing.T) {
	var gotPayload map[string]any
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PATCH", r.Method)
		assert.Equal(t, "/api/collections/shifts/records/s1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Write([]byte(`{"id":"s1","status":"completed","duration_minutes":90}`))
	})
	defer server.Close()

	shift, err := client.CompleteShift(context.Background(), testToken, "s1", "2025-06-01T10:30:00.000Z", 90)
	require.NoError(t, err)
	assert.Equal(t, "completed", shift.Status)
	assert.Equal(t, "2025-06-01T10:30:00.000Z", gotPayload["end_time"])
	assert.Equal(t, float64(90), gotPayload["duration_minutes"])
}

func TestRequestErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("unconfigured client", func(t *testing.T) {
		client := NewClient(http.DefaultClient, "")
		assert.False(t, client.IsConfigured())

		_, err := client.GetActiveShift(ctx, testToken, "u1")
		assert.Error(t, err)
	})

	t.Run("surfaces pocketbase error messages", func(t *testing.T) {
		client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"Failed to create record.","data":{"user":{"message":"Missing required value."}}}`))
		})
		defer server.Close()

		_, err := client.CreateShift(ctx, testToken, "u1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 400")
		assert.Contains(t, err.Error(), "Failed to create record.")
		assert.Contains(t, err.Error(), "user: Missing required value.")
	})
}

func TestExtractErrorMessage(t *testing.T) {
	assert.Equal(t, "plain text", extractErrorMessage([]byte("plain text\n")))
	assert.Equal(t, "Not found.", extractErrorMessage([]byte(`{"message":"Not found."}`)))
	assert.Equal(t, "Bad. (field: wrong)", extractErrorMessage([]byte(`{"message":"Bad.","data":{"field":{"message":"wrong"}}}`)))
}
