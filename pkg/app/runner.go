package app

import (
	"fmt"
	"time"

	"github.com/small-frappuccino/rolemenu/pkg/discord/commands/core"
	maintenancecmd "github.com/small-frappuccino/rolemenu/pkg/discord/commands/maintenance"
	rolemenucmd "github.com/small-frappuccino/rolemenu/pkg/discord/commands/rolemenu"
	"github.com/small-frappuccino/rolemenu/pkg/discord/maintenance"
	"github.com/small-frappuccino/rolemenu/pkg/discord/menus"
	"github.com/small-frappuccino/rolemenu/pkg/discord/session"
	"github.com/small-frappuccino/rolemenu/pkg/log"
	"github.com/small-frappuccino/rolemenu/pkg/menu"
	"github.com/small-frappuccino/rolemenu/pkg/storage"
	"github.com/small-frappuccino/rolemenu/pkg/task"
	"github.com/small-frappuccino/rolemenu/pkg/util"
)

// Run bootstraps the bot and blocks until shutdown. appName affects
// cache/log paths; tokenEnv names the environment variable holding the bot
// token, read from the process environment first and from the
// $HOME/.local/bin/.env fallback file second.
func Run(appName, tokenEnv string) error {
	started := time.Now()

	// App name first, it shapes every on-disk path.
	util.SetAppName(appName)

	token, loadErr := util.LoadEnvWithLocalBinFallback(tokenEnv)

	if err := log.SetupLogger(); err != nil {
		return fmt.Errorf("configure logger: %w", err)
	}
	defer func() { _ = log.Close() }()

	if loadErr != nil {
		log.ApplicationLogger().Warn("env fallback load failed", "err", loadErr)
	}
	log.ApplicationLogger().Info("starting", "app", appName)

	if token == "" {
		return fmt.Errorf("%s not set in environment or .env file", tokenEnv)
	}

	// SQLite store holding the menu definitions.
	dbPath := util.EnvString("ROLEMENU_DB_PATH", util.MenuDBPath())
	store := storage.NewStore(dbPath)
	if err := store.Init(); err != nil {
		return fmt.Errorf("initialize SQLite store: %w", err)
	}
	defer func() { _ = store.Close() }()
	svc := menu.NewService(store)

	discordSession, err := session.NewDiscordSession(token)
	if err != nil {
		return fmt.Errorf("create discord session: %w", err)
	}
	defer func() { _ = session.CloseSession(discordSession) }()
	if discordSession.State == nil || discordSession.State.User == nil {
		return fmt.Errorf("discord session state not properly initialized")
	}
	log.DiscordLogger().Info("authenticated",
		"user", discordSession.State.User.Username, "id", discordSession.State.User.ID)

	router := task.NewRouter(task.Defaults())
	defer router.Close()

	// Menu runtime: platform adapter, handle registry, resolver, reconciler,
	// attachment manager.
	platform := menus.NewSessionPlatform(discordSession)
	dispatcher := menus.NewDispatcher()
	resolver := menus.NewResolver(svc, platform)
	reconciler := menus.NewReconciler(svc, platform, dispatcher, router)
	attacher := menus.NewAttacher(svc, platform, dispatcher)

	// Command surface.
	commandManager := core.NewCommandManager(discordSession)
	cmdRouter := commandManager.Router()
	confirmer := core.NewConfirmer(cmdRouter.Responder())
	checker := cmdRouter.Permissions()

	cmdRouter.RegisterCommand(rolemenucmd.NewCommand(rolemenucmd.Deps{
		Service:    svc,
		Reconciler: reconciler,
		Attacher:   attacher,
		Confirmer:  confirmer,
	}, checker))
	sweeper := maintenance.NewSweeper(maintenance.NewSessionDirectory(discordSession))
	cmdRouter.RegisterCommand(maintenancecmd.NewCommand(sweeper, confirmer, checker))

	cmdRouter.RegisterComponentHandler(menus.ComponentPrefix,
		rolemenucmd.NewPressHandler(resolver, dispatcher, cmdRouter.Responder()))
	cmdRouter.RegisterComponentHandler(core.ConfirmPrefix, confirmer.HandleComponent)

	if err := commandManager.SetupCommands(); err != nil {
		return fmt.Errorf("setup commands: %w", err)
	}

	// One-shot startup reconcile, gated on the gateway Ready event.
	reconciler.RunOnceWhenReady(discordSession)

	log.ApplicationLogger().Info("bot ready",
		"startup", time.Since(started).String(), "db", dbPath)

	util.WaitForInterruptWithCallback(func() {
		log.ApplicationLogger().Info("shutting down")
	})
	return nil
}
