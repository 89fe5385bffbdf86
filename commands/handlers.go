package commands

import (
	"context"
	"fmt"
	"strings"

	"shiftbot/models"
)

// notImplemented is the handler for commands whose business logic lives on the
// gateway bot deployment
type notImplemented struct{}

func (notImplemented) Handle(_ context.Context, _ *models.Interaction, _ *Env) (*models.InteractionResponse, error) {
	return nil, ErrNotImplemented
}

func handlePing(_ context.Context, _ *models.Interaction, _ *Env) (*models.InteractionResponse, error) {
	embed := models.Embed{
		Title:       "🏓 Pong!",
		Description: "The bot is up and answering interactions.",
		Color:       models.ColorSuccess,
	}
	return models.EmbedResponse(embed, false), nil
}

func handleLogin(_ context.Context, interaction *models.Interaction, _ *Env) (*models.InteractionResponse, error) {
	authKey, ok := interaction.StringOption("auth_key")
	if !ok || authKey == "" {
		return models.EphemeralMessage("Auth key is required"), nil
	}

	// Linking runs on the gateway deployment, which has the PocketBase and
	// token store wiring
	return nil, ErrNotImplemented
}

func handleEightBall(_ context.Context, interaction *models.Interaction, _ *Env) (*models.InteractionResponse, error) {
	question, ok := interaction.StringOption("question")
	if !ok || question == "" {
		return models.EphemeralMessage("Question is required"), nil
	}

	return nil, ErrNotImplemented
}

func handleHelp(_ context.Context, _ *models.Interaction, _ *Env) (*models.InteractionResponse, error) {
	var lines []string
	for _, def := range catalog {
		lines = append(lines, fmt.Sprintf("`/%s` - %s", def.Name, def.Description))
	}

	embed := models.Embed{
		Title:       "Help",
		Description: strings.Join(lines, "\n"),
		Color:       models.ColorSuccess,
	}
	return models.EmbedResponse(embed, true), nil
}
