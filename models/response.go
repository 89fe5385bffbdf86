package models

// Interaction response types the webhook produces
const (
	ResponseTypePong                     = 1
	ResponseTypeChannelMessageWithSource = 4
	ResponseTypeDeferredChannelMessage   = 5
)

// FlagEphemeral makes a response visible only to the invoking user
const FlagEphemeral = 1 << 6

// Embed colors shared across the bot's replies
const (
	ColorSuccess = 0xBEBEFE
	ColorError   = 0xE02B2B
)

type EmbedFooter struct {
	Text string `json:"text"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

type ResponseData struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
	Flags   int     `json:"flags,omitempty"`
}

// InteractionResponse is the outbound wire envelope
type InteractionResponse struct {
	Type int           `json:"type"`
	Data *ResponseData `json:"data,omitempty"`
}

// PongResponse acknowledges Discord's liveness check. The envelope carries
// nothing beyond the type discriminator.
func PongResponse() *InteractionResponse {
	return &InteractionResponse{Type: ResponseTypePong}
}

// EphemeralMessage builds a plain text reply only the invoking user can see
func EphemeralMessage(content string) *InteractionResponse {
	return &InteractionResponse{
		Type: ResponseTypeChannelMessageWithSource,
		Data: &ResponseData{
			Content: content,
			Flags:   FlagEphemeral,
		},
	}
}

// EmbedResponse builds a channel message carrying a single embed
func EmbedResponse(embed Embed, ephemeral bool) *InteractionResponse {
	data := &ResponseData{
		Embeds: []Embed{embed},
	}
	if ephemeral {
		data.Flags = FlagEphemeral
	}
	return &InteractionResponse{
		Type: ResponseTypeChannelMessageWithSource,
		Data: data,
	}
}

// ErrorEmbed builds the standard red error embed used for user-visible failures
func ErrorEmbed(message string) Embed {
	return Embed{
		Description: message,
		Color:       ColorError,
	}
}
