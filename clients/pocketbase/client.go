package pocketbase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"shiftbot/models"
)

// ErrAuthRejected is returned when PocketBase rejects the supplied auth key
var ErrAuthRejected = errors.New("pocketbase rejected the auth key")

// ErrUserNotLinked is returned when no PocketBase user matches a Discord account
var ErrUserNotLinked = errors.New("no pocketbase user is linked to this discord account")

// Client talks to the PocketBase REST API backing the shift records
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new PocketBase client. The base URL may be empty when
// the integration is not configured; IsConfigured reports usability.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// IsConfigured returns true if the client has a base URL to talk to
func (c *Client) IsConfigured() bool {
	return c.baseURL != ""
}

type listResponse struct {
	Items []json.RawMessage `json:"items"`
}

// GetUserByDiscordID looks up the PocketBase user linked to a Discord account
func (c *Client) GetUserByDiscordID(
	ctx context.Context,
	authToken, discordUserID string,
) (*models.PocketBaseUser, error) {
	params := url.Values{}
	params.Set("filter", fmt.Sprintf("discord_user_id=%s", discordUserID))
	params.Set("perPage", "1")

	body, err := c.request(ctx, "GET", "/api/collections/users/records", params, nil, authToken)
	if err != nil {
		return nil, err
	}

	var list listResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to parse users response: %w", err)
	}
	if len(list.Items) == 0 {
		return nil, ErrUserNotLinked
	}

	user := &models.PocketBaseUser{}
	if err := json.Unmarshal(list.Items[0], user); err != nil {
		return nil, fmt.Errorf("failed to parse user record: %w", err)
	}

	return user, nil
}

// GetActiveShift returns the user's active shift, nil when none is open
func (c *Client) GetActiveShift(
	ctx context.Context,
	authToken, userID string,
) (*models.Shift, error) {
	params := url.Values{}
	params.Set("filter", fmt.Sprintf(`user=%q && status=%q`, userID, models.ShiftStatusActive))
	params.Set("perPage", "1")

	return c.getShift(ctx, authToken, params)
}

// GetLatestShift returns the user's most recent shift, nil when none exists
func (c *Client) GetLatestShift(
	ctx context.Context,
	authToken, userID string,
) (*models.Shift, error) {
	params := url.Values{}
	params.Set("filter", fmt.Sprintf("user=%q", userID))
	params.Set("sort", "-start_time")
	params.Set("perPage", "1")

	return c.getShift(ctx, authToken, params)
}

func (c *Client) getShift(ctx context.Context, authToken string, params url.Values) (*models.Shift, error) {
	body, err := c.request(ctx, "GET", "/api/collections/shifts/records", params, nil, authToken)
	if err != nil {
		return nil, err
	}

	var list listResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to parse shifts response: %w", err)
	}
	if len(list.Items) == 0 {
		return nil, nil // No matching shift
	}

	shift := &models.Shift{}
	if err := json.Unmarshal(list.Items[0], shift); err != nil {
		return nil, fmt.Errorf("failed to parse shift record: %w", err)
	}

	return shift, nil
}

// CreateShift opens a new active shift for the user
func (c *Client) CreateShift(
	ctx context.Context,
	authToken, userID string,
) (*models.Shift, error) {
	payload := map[string]any{
		"user":   userID,
		"status": models.ShiftStatusActive,
	}

	body, err := c.request(ctx, "POST", "/api/collections/shifts/records", nil, payload, authToken)
	if err != nil {
		return nil, err
	}

	shift := &models.Shift{}
	if err := json.Unmarshal(body, shift); err != nil {
		return nil, fmt.Errorf("failed to parse created shift: %w", err)
	}

	return shift, nil
}

// CompleteShift closes a shift with its end time and recorded duration
func (c *Client) CompleteShift(
	ctx context.Context,
	authToken, shiftID, endTime string,
	durationMinutes int,
) (*models.Shift, error) {
	payload := map[string]any{
		"end_time":         endTime,
		"status":           models.ShiftStatusCompleted,
		"duration_minutes": durationMinutes,
	}

	path := fmt.Sprintf("/api/collections/shifts/records/%s", shiftID)
	body, err := c.request(ctx, "PATCH", path, nil, payload, authToken)
	if err != nil {
		return nil, err
	}

	shift := &models.Shift{}
	if err := json.Unmarshal(body, shift); err != nil {
		return nil, fmt.Errorf("failed to parse completed shift: %w", err)
	}

	return shift, nil
}

func (c *Client) request(
	ctx context.Context,
	method, path string,
	params url.Values,
	payload any,
	authToken string,
) ([]byte, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("pocketbase base URL has not been configured")
	}
	if authToken == "" {
		return nil, ErrAuthRejected
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode pocketbase payload: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create pocketbase request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+authToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute pocketbase request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read pocketbase response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrAuthRejected
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("pocketbase request failed with status %d: %s", resp.StatusCode, extractErrorMessage(body))
	}

	return body, nil
}

// extractErrorMessage pulls a readable message out of a PocketBase error body
func extractErrorMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Data    map[string]struct {
			Message string `json:"message"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Message == "" {
		return strings.TrimSpace(string(body))
	}

	details := make([]string, 0, len(parsed.Data))
	for field, detail := range parsed.Data {
		if detail.Message != "" {
			details = append(details, fmt.Sprintf("%s: %s", field, detail.Message))
		}
	}
	if len(details) == 0 {
		return parsed.Message
	}
	return fmt.Sprintf("%s (%s)", parsed.Message, strings.Join(details, "; "))
}
