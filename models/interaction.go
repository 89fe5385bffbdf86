package models

import (
	"encoding/json"
	"fmt"
)

// Interaction types Discord sends to the webhook. Anything outside this set is
// treated as unsupported rather than rejected.
// See https://discord.com/developers/docs/interactions/receiving-and-responding#interaction-object
const (
	InteractionTypePing               = 1
	InteractionTypeApplicationCommand = 2
)

type InteractionOption struct {
	Name  string `json:"name"`
	Type  int    `json:"type,omitempty"`
	Value any    `json:"value,omitempty"`
}

type InteractionData struct {
	Name    string              `json:"name"`
	Options []InteractionOption `json:"options,omitempty"`
}

// Interaction is the parsed inbound payload. These are partial structs - only
// the fields the dispatch pipeline needs are decoded.
type Interaction struct {
	ID        string          `json:"id,omitempty"`
	Type      int             `json:"type"`
	Data      InteractionData `json:"data,omitempty"`
	GuildID   string          `json:"guild_id,omitempty"`
	ChannelID string          `json:"channel_id,omitempty"`
}

// ParseInteraction decodes a raw interaction body. Callers must only pass
// bodies that already passed signature verification.
func ParseInteraction(raw []byte) (*Interaction, error) {
	var interaction Interaction
	if err := json.Unmarshal(raw, &interaction); err != nil {
		return nil, fmt.Errorf("failed to parse interaction payload: %w", err)
	}
	return &interaction, nil
}

// CommandName returns the invoked slash command name, empty for
// non-command interactions
func (i *Interaction) CommandName() string {
	return i.Data.Name
}

// StringOption returns the string value of the named option. The second return
// is false when the option is absent or not a string.
func (i *Interaction) StringOption(name string) (string, bool) {
	for _, opt := range i.Data.Options {
		if opt.Name == name {
			value, ok := opt.Value.(string)
			return value, ok
		}
	}
	return "", false
}
