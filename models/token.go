package models

import "time"

// PocketBaseToken links a Discord user to their PocketBase auth key
type PocketBaseToken struct {
	DiscordUserID string    `db:"discord_user_id" json:"discord_user_id"`
	AuthToken     string    `db:"auth_token"      json:"-"`
	CreatedAt     time.Time `db:"created_at"      json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"      json:"updated_at"`
}
