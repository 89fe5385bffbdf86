package commands

// OptionSpec describes one argument of a slash command as Discord registers it
type OptionSpec struct {
	Name        string
	Description string
	Required    bool
}

// Definition pairs a slash command's registration shape with its handler. The
// deployment tool registers commands from this same catalog, which keeps the
// registry consistent with what Discord knows about.
type Definition struct {
	Name        string
	Description string
	Options     []OptionSpec
	Handler     Handler
}

// catalog is the fixed command set. Order is the order commands are registered
// and listed by /help.
var catalog []Definition

func init() {
	catalog = []Definition{
		{
			Name:        "ping",
			Description: "Check if the bot is alive.",
			Handler:     HandlerFunc(handlePing),
		},
		{
			Name:        "login",
			Description: "Link your PocketBase auth key so you can use the shift commands.",
			Options: []OptionSpec{
				{Name: "auth_key", Description: "Your PocketBase auth key from the staff portal.", Required: true},
			},
			Handler: HandlerFunc(handleLogin),
		},
		{
			Name:        "start-shift",
			Description: "Start your shift and log it in PocketBase.",
			Handler:     notImplemented{},
		},
		{
			Name:        "end-shift",
			Description: "End your active shift and record it in PocketBase.",
			Handler:     notImplemented{},
		},
		{
			Name:        "shift-status",
			Description: "Check your current shift or view the most recent shift on record.",
			Handler:     notImplemented{},
		},
		{
			Name:        "help",
			Description: "List all commands the bot has loaded.",
			Handler:     HandlerFunc(handleHelp),
		},
		{
			Name:        "botinfo",
			Description: "Get some useful (or not) information about the bot.",
			Handler:     notImplemented{},
		},
		{
			Name:        "serverinfo",
			Description: "Get some useful (or not) information about the server.",
			Handler:     notImplemented{},
		},
		{
			Name:        "invite",
			Description: "Get the invite link of the bot to be able to invite it.",
			Handler:     notImplemented{},
		},
		{
			Name:        "server",
			Description: "Get the invite link of the discord server of the bot for some support.",
			Handler:     notImplemented{},
		},
		{
			Name:        "8ball",
			Description: "Ask any question to the bot.",
			Options: []OptionSpec{
				{Name: "question", Description: "The question you want to ask.", Required: true},
			},
			Handler: HandlerFunc(handleEightBall),
		},
		{
			Name:        "bitcoin",
			Description: "Get the current price of bitcoin.",
			Handler:     notImplemented{},
		},
		{
			Name:        "feedback",
			Description: "Submit a feedback for the owners of the bot.",
			Handler:     notImplemented{},
		},
	}
}

// Catalog returns the command definitions for registration tooling
func Catalog() []Definition {
	defs := make([]Definition, len(catalog))
	copy(defs, catalog)
	return defs
}
