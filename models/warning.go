package models

import "time"

// Warning is a moderation warning issued to a Discord user
type Warning struct {
	ID            string    `db:"id"              json:"id"`
	DiscordUserID string    `db:"discord_user_id" json:"discord_user_id"`
	ModeratorID   string    `db:"moderator_id"    json:"moderator_id"`
	Reason        string    `db:"reason"          json:"reason"`
	CreatedAt     time.Time `db:"created_at"      json:"created_at"`
}
