package models

import "encoding/json"

// Shift lifecycle states in PocketBase
const (
	ShiftStatusActive    = "active"
	ShiftStatusCompleted = "completed"
)

// PocketBaseUser is a user record from the PocketBase users collection
type PocketBaseUser struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Role          string      `json:"role"`
	DiscordUserID json.Number `json:"discord_user_id"`
}

// Shift is a shift record from the PocketBase shifts collection. Timestamps
// stay in PocketBase's string format until a caller needs them parsed.
type Shift struct {
	ID              string `json:"id"`
	User            string `json:"user"`
	Status          string `json:"status"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}
