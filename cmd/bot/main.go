package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kavita_notification_bot/internal/app"
	"kavita_notification_bot/internal/domain/notified"
	"kavita_notification_bot/internal/infra/config"
	idb "kavita_notification_bot/internal/infra/database"
	"kavita_notification_bot/internal/infra/kavita"
	"kavita_notification_bot/internal/infra/logger"
	"kavita_notification_bot/internal/infra/scheduler"
	"kavita_notification_bot/internal/infra/telegram"
	"kavita_notification_bot/internal/infra/vault"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// sourceName is the logical key the vault uses for this catalog's credential
// and notified-id list.
const sourceName = "kavita"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	log := logger.Get()
	log.Infof("Configuration loaded. Backend: %s, interval: %dh, lookback: %dh", cfg.NotifiedBackend, cfg.CheckIntervalHours, cfg.LookbackHours)

	// Vault client: issues the catalog credential and (by default) stores the
	// notified-id list.
	vaultClient := vault.NewClient(cfg.VaultURL, nil)

	// Notified-set store selection.
	var store notified.Store
	switch cfg.NotifiedBackend {
	case config.BackendPostgres:
		db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("FATAL: Could not connect to database: %v", err)
		}
		defer db.Close()
		repo := idb.NewPostgresNotifiedRepository(db, sourceName, log)
		if err := repo.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("FATAL: Could not prepare notified_items table: %v", err)
		}
		store = repo
		log.Info("Notified set backed by postgres.")
	default:
		store = vault.NewNotifiedStore(vaultClient, sourceName, log)
		log.Info("Notified set backed by vault.")
	}

	// Catalog client with transparent credential refresh.
	credentials := kavita.NewCredentialProvider(vaultClient, sourceName)
	catalogClient := kavita.NewClient(cfg.KavitaURL, credentials, nil)

	// Telegram bot.
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			log.Errorf("Telebot error: %v", err)
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		log.Fatalf("FATAL: Could not create Telegram bot: %v", err)
	}
	messenger := telegram.NewTelebotAdapter(bot, cfg.NotifyChatID)

	// Notification pipeline.
	notifService := app.NewNotificationService(
		catalogClient,
		messenger,
		store,
		time.Duration(cfg.LookbackHours)*time.Hour,
		log,
	)
	cycleScheduler := scheduler.NewCycleScheduler(
		notifService,
		store,
		log,
		time.Duration(cfg.CheckIntervalHours)*time.Hour,
	)
	if err := cycleScheduler.Start(context.Background()); err != nil {
		log.Fatalf("FATAL: Could not start cycle scheduler: %v", err)
	}

	telegram.RegisterAdminHandlers(bot, cycleScheduler, cfg.AdminTelegramID, log.WithField("component", "telegram"))
	log.Info("Admin command handlers registered.")

	log.Info("Application setup complete. Bot and scheduler are starting...")
	go bot.Start()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application...")
	cycleScheduler.Stop()
	bot.Stop()
	log.Info("Application shut down gracefully.")
}
