package commands

import (
	"context"
	"errors"
	"fmt"
	"log"

	"shiftbot/models"
)

// ErrNotImplemented marks a command whose business logic runs on the gateway
// bot deployment rather than this webhook surface. The dispatcher converts it
// into the standard placeholder response.
var ErrNotImplemented = errors.New("command is not implemented on this deployment")

// Handler produces a response for a single slash command
type Handler interface {
	Handle(ctx context.Context, interaction *models.Interaction, env *Env) (*models.InteractionResponse, error)
}

// HandlerFunc adapts a plain function to the Handler interface
type HandlerFunc func(ctx context.Context, interaction *models.Interaction, env *Env) (*models.InteractionResponse, error)

func (f HandlerFunc) Handle(ctx context.Context, interaction *models.Interaction, env *Env) (*models.InteractionResponse, error) {
	return f(ctx, interaction, env)
}

// Registry is the immutable command name to handler mapping. It is built once
// at startup from the fixed catalog and never mutated, so concurrent reads
// need no locking.
type Registry struct {
	handlers map[string]Handler
	env      *Env
}

func NewRegistry(env *Env) *Registry {
	handlers := make(map[string]Handler, len(catalog))
	for _, def := range catalog {
		handlers[def.Name] = def.Handler
	}
	return &Registry{handlers: handlers, env: env}
}

// Resolve looks up a handler by exact, case-sensitive command name
func (r *Registry) Resolve(name string) (Handler, bool) {
	handler, ok := r.handlers[name]
	return handler, ok
}

// Dispatch routes a command interaction to its handler and always returns a
// well-formed response: unknown commands, not-implemented commands, handler
// errors and handler panics all map to user-visible ephemeral replies.
func (r *Registry) Dispatch(ctx context.Context, interaction *models.Interaction) (resp *models.InteractionResponse) {
	name := interaction.CommandName()

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("❌ Handler for command %q panicked: %v", name, rec)
			resp = failureResponse()
		}
	}()

	handler, ok := r.Resolve(name)
	if !ok {
		log.Printf("⚠️ Unknown command: %s", name)
		return models.EphemeralMessage(fmt.Sprintf("Unknown command: %s", name))
	}

	resp, err := handler.Handle(ctx, interaction, r.env)
	if err != nil {
		if errors.Is(err, ErrNotImplemented) {
			return NotImplementedResponse(name)
		}
		log.Printf("❌ Handler for command %q failed: %v", name, err)
		return failureResponse()
	}
	if resp == nil {
		log.Printf("❌ Handler for command %q returned no response", name)
		return failureResponse()
	}

	return resp
}

// NotImplementedResponse is the placeholder reply for commands that only run
// on the gateway bot deployment. Centralized so every stub names its command
// the same way.
func NotImplementedResponse(name string) *models.InteractionResponse {
	embed := models.Embed{
		Title:       "Feature in Development",
		Description: fmt.Sprintf("The `/%s` command is not available on this deployment yet. Please use the main bot to run it.", name),
		Color:       models.ColorSuccess,
		Footer:      &models.EmbedFooter{Text: "This endpoint only acknowledges interactions."},
	}
	return models.EmbedResponse(embed, true)
}

func failureResponse() *models.InteractionResponse {
	return models.EphemeralMessage("Something went wrong while handling this command. Please try again later.")
}
