package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"shiftbot/commands"
	"shiftbot/config"
)

// Registers the slash command catalog with Discord. Run separately from the
// webhook whenever the catalog changes; global commands take up to an hour to
// propagate, guild commands appear immediately.
func main() {
	deleteAll := flag.Bool("delete", false, "delete all registered commands instead of registering")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	if cfg.DiscordConfig.BotToken == "" || cfg.DiscordConfig.ApplicationID == "" {
		log.Fatalf("❌ DISCORD_BOT_TOKEN and DISCORD_APPLICATION_ID must be set")
	}

	session, err := discordgo.New("Bot " + cfg.DiscordConfig.BotToken)
	if err != nil {
		log.Fatalf("❌ Failed to create Discord session: %v", err)
	}

	appID := cfg.DiscordConfig.ApplicationID
	guildID := cfg.DiscordConfig.GuildID // empty targets global commands

	if *deleteAll {
		removeAllCommands(session, appID, guildID)
		return
	}
	registerCommands(session, appID, guildID)
}

func registerCommands(session *discordgo.Session, appID, guildID string) {
	defs := commands.Catalog()
	log.Printf("🚀 Registering %d commands (guild: %q)...", len(defs), guildID)

	for _, def := range defs {
		cmd := &discordgo.ApplicationCommand{
			Name:        def.Name,
			Description: def.Description,
		}
		for _, opt := range def.Options {
			cmd.Options = append(cmd.Options, &discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        opt.Name,
				Description: opt.Description,
				Required:    opt.Required,
			})
		}

		if _, err := session.ApplicationCommandCreate(appID, guildID, cmd); err != nil {
			log.Printf("❌ Failed to register %s: %v", def.Name, err)
			continue
		}
		log.Printf("✅ Registered command: %s", def.Name)
	}

	if guildID == "" {
		fmt.Println("Global commands registered. They may take up to an hour to appear.")
	}
}

func removeAllCommands(session *discordgo.Session, appID, guildID string) {
	existing, err := session.ApplicationCommands(appID, guildID)
	if err != nil {
		log.Fatalf("❌ Failed to fetch registered commands: %v", err)
	}

	log.Printf("🚀 Deleting %d commands (guild: %q)...", len(existing), guildID)
	for _, cmd := range existing {
		if err := session.ApplicationCommandDelete(appID, guildID, cmd.ID); err != nil {
			log.Printf("❌ Failed to delete %s: %v", cmd.Name, err)
			continue
		}
		log.Printf("✅ Deleted command: %s", cmd.Name)
	}
}
